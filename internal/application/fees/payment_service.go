package fees

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/academy/backend/internal/domain/fees"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/domain/wallet"
	"github.com/academy/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
)

// PaymentService applies payments to bills. One call mutates up to three
// aggregates (bill, account, wallet) plus the wallet ledger; all of it
// commits in a single transaction so a settled bill can never be observed
// without its wallet movement.
type PaymentService struct {
	accountRepo    fees.FeeAccountRepository
	billRepo       fees.BillRepository
	walletRepo     wallet.WalletRepository
	walletTxRepo   wallet.TransactionRepository
	txManager      shared.TransactionManager
	processor      *fees.PaymentProcessor
	eventPublisher shared.EventPublisher
	metrics        *telemetry.BusinessMetrics
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	accountRepo fees.FeeAccountRepository,
	billRepo fees.BillRepository,
	walletRepo wallet.WalletRepository,
	walletTxRepo wallet.TransactionRepository,
	txManager shared.TransactionManager,
) *PaymentService {
	return &PaymentService{
		accountRepo:  accountRepo,
		billRepo:     billRepo,
		walletRepo:   walletRepo,
		walletTxRepo: walletTxRepo,
		txManager:    txManager,
		processor:    fees.NewPaymentProcessor(),
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the metrics recorder for payment activity
func (s *PaymentService) SetBusinessMetrics(metrics *telemetry.BusinessMetrics) {
	s.metrics = metrics
}

// MarkAsPaid applies a payment to a bill.
//
// The account row is locked for the duration of the transaction, so two
// submissions for the same bill serialize: the first settles it, the second
// fails with BILL_ALREADY_PAID. Replaying a payment is an error by contract,
// not an idempotent no-op.
func (s *PaymentService) MarkAsPaid(ctx context.Context, billID uuid.UUID, req MarkAsPaidRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "mark_as_paid")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrBillID, billID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
		telemetry.SpanAttrPaymentMethod, req.PaymentMethod,
		telemetry.SpanAttrUseWallet, req.UseWallet,
	)

	method := fees.PaymentMethod(req.PaymentMethod)
	if !method.IsValid() {
		err := fees.NewValidationError("Payment method is not valid")
		telemetry.RecordError(span, err)
		return nil, err
	}

	paymentDate := time.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	var (
		account *fees.FeeAccount
		bill    *fees.Bill
		wlt     *wallet.Wallet
		outcome *fees.PaymentOutcome
		summary fees.Summary
	)
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		bill, err = s.billRepo.FindByID(ctx, billID)
		if err != nil {
			return err
		}
		if bill == nil {
			return fees.ErrBillNotFound
		}

		account, err = s.accountRepo.FindByIDForUpdate(ctx, bill.AccountID)
		if err != nil {
			return err
		}
		if account == nil {
			return fees.ErrAccountNotFound
		}

		wlt, outcome, summary, err = s.settle(ctx, account, bill, req.Amount, req.UseWallet, method, paymentDate)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.recordPaymentMetric(ctx, string(method), telemetry.PaymentStatusFailed, req.Amount)
		return nil, err
	}

	return s.finishPayment(ctx, span, method, req.Amount, account, bill, wlt, outcome, summary), nil
}

// MarkPartialPayment applies an explicit-amount payment to a bill on a
// partial account. Unlike MarkAsPaid it is addressed by account: the bill
// must belong to the account and the account must accept underpayment, so a
// short payment is absorbed into the running balance and recorded as a
// history entry instead of rejected.
func (s *PaymentService) MarkPartialPayment(ctx context.Context, accountID uuid.UUID, req PartialPaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "mark_partial_payment")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrAccountID, accountID.String(),
		telemetry.SpanAttrBillID, req.BillID.String(),
		telemetry.SpanAttrAmount, req.PaidAmount.String(),
		telemetry.SpanAttrPaymentMethod, req.PaymentMethod,
		telemetry.SpanAttrUseWallet, req.UseWallet,
	)

	method := fees.PaymentMethod(req.PaymentMethod)
	if !method.IsValid() {
		err := fees.NewValidationError("Payment method is not valid")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.PaidAmount.LessThanOrEqual(decimal.Zero) {
		err := fees.NewValidationError("Paid amount must be positive")
		telemetry.RecordError(span, err)
		return nil, err
	}

	paymentDate := time.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	var (
		account *fees.FeeAccount
		bill    *fees.Bill
		wlt     *wallet.Wallet
		outcome *fees.PaymentOutcome
		summary fees.Summary
	)
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		account, err = s.accountRepo.FindByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return fees.ErrAccountNotFound
		}
		if !account.AccountType.AllowsUnderpayment() {
			return shared.NewDomainError("INVALID_STATE", "Only partial accounts accept partial payments")
		}

		bill, err = s.billRepo.FindByID(ctx, req.BillID)
		if err != nil {
			return err
		}
		// a bill belonging to another account reads as not found rather
		// than leaking its existence
		if bill == nil || bill.AccountID != account.ID {
			return fees.ErrBillNotFound
		}

		wlt, outcome, summary, err = s.settle(ctx, account, bill, req.PaidAmount, req.UseWallet, method, paymentDate)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.recordPaymentMetric(ctx, string(method), telemetry.PaymentStatusFailed, req.PaidAmount)
		return nil, err
	}

	return s.finishPayment(ctx, span, method, req.PaidAmount, account, bill, wlt, outcome, summary), nil
}

// settle runs the payment pipeline against an already-locked account and one
// of its bills: wallet load when drawn on, processor application, wallet
// movements, and persistence of the bill and refreshed account. Must run
// inside the caller's transaction.
func (s *PaymentService) settle(
	ctx context.Context,
	account *fees.FeeAccount,
	bill *fees.Bill,
	amount decimal.Decimal,
	useWallet bool,
	method fees.PaymentMethod,
	paymentDate time.Time,
) (*wallet.Wallet, *fees.PaymentOutcome, fees.Summary, error) {
	var wlt *wallet.Wallet
	walletBalance := decimal.Zero
	if useWallet {
		var err error
		wlt, err = s.loadWallet(ctx, account.StudentID)
		if err != nil {
			return nil, nil, fees.Summary{}, err
		}
		if wlt != nil {
			walletBalance = wlt.Balance
		}
	}

	outcome, err := s.processor.Apply(account, bill, amount, walletBalance,
		fees.WalletPolicy{UseWallet: useWallet}, method, paymentDate)
	if err != nil {
		return nil, nil, fees.Summary{}, err
	}

	if err := s.applyWalletMovements(ctx, account.StudentID, bill.ID, &wlt, outcome); err != nil {
		return nil, nil, fees.Summary{}, err
	}

	if err := s.billRepo.Save(ctx, bill); err != nil {
		return nil, nil, fees.Summary{}, fmt.Errorf("failed to save bill: %w", err)
	}

	bills, err := s.billRepo.FindByAccount(ctx, account.ID)
	if err != nil {
		return nil, nil, fees.Summary{}, fmt.Errorf("failed to load bills: %w", err)
	}
	summary := fees.ProjectSummary(account, bills)
	account.RefreshPaidAmount(summary)

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, nil, fees.Summary{}, err
	}
	return wlt, outcome, summary, nil
}

// finishPayment publishes the accumulated domain events, records the payment
// metric, and shapes the response. Runs after the transaction commits.
func (s *PaymentService) finishPayment(
	ctx context.Context,
	span trace.Span,
	method fees.PaymentMethod,
	amount decimal.Decimal,
	account *fees.FeeAccount,
	bill *fees.Bill,
	wlt *wallet.Wallet,
	outcome *fees.PaymentOutcome,
	summary fees.Summary,
) *PaymentResponse {
	aggregates := []shared.AggregateRoot{account, bill}
	if wlt != nil {
		aggregates = append(aggregates, wlt)
	}
	s.publishEvents(ctx, aggregates...)

	status := telemetry.PaymentStatusPartial
	if outcome.Settled {
		status = telemetry.PaymentStatusSettled
	}
	s.recordPaymentMetric(ctx, string(method), status, amount)

	telemetry.AddEvent(span, "payment_applied",
		"settled", outcome.Settled,
		"wallet_deduction", outcome.WalletDeduction.String(),
		"excess_credited", outcome.Excess.String(),
	)

	response := &PaymentResponse{
		Bill:            ToBillResponse(bill),
		Settled:         outcome.Settled,
		WalletDeduction: outcome.WalletDeduction,
		ExcessCredited:  outcome.Excess,
		Summary:         ToSummaryResponse(summary),
	}
	if outcome.HistoryEntry != nil {
		entry := ToInstallmentResponse(outcome.HistoryEntry)
		response.HistoryEntry = &entry
	}
	return response
}

// loadWallet fetches the student's wallet, mapping not-found to nil so the
// caller can treat a missing wallet as a zero balance.
func (s *PaymentService) loadWallet(ctx context.Context, studentID uuid.UUID) (*wallet.Wallet, error) {
	wlt, err := s.walletRepo.FindByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	return wlt, nil
}

// applyWalletMovements executes the deduction and excess credit the processor
// decided on. A wallet is created lazily when excess arrives for a student
// who never had one. The wallet row saves with optimistic locking so a
// concurrent writer surfaces as CONCURRENCY_CONFLICT and rolls the whole
// payment back.
func (s *PaymentService) applyWalletMovements(
	ctx context.Context,
	studentID uuid.UUID,
	billID uuid.UUID,
	wlt **wallet.Wallet,
	outcome *fees.PaymentOutcome,
) error {
	ledger := make([]*wallet.Transaction, 0, 2)
	created := false

	if outcome.WalletDeduction.IsPositive() {
		if *wlt == nil {
			return shared.ErrInsufficientBalance
		}
		entry, err := (*wlt).Debit(outcome.WalletDeduction, wallet.SourceBillDeduction, &billID)
		if err != nil {
			return err
		}
		ledger = append(ledger, entry)
	}

	if outcome.Excess.IsPositive() {
		if *wlt == nil {
			// the wallet was not loaded up front when the payment did not
			// draw on it, so look again before lazily creating one
			w, err := s.loadWallet(ctx, studentID)
			if err != nil {
				return err
			}
			if w == nil {
				if w, err = wallet.NewWallet(studentID); err != nil {
					return err
				}
				created = true
			}
			*wlt = w
		}
		entry, err := (*wlt).Credit(outcome.Excess, wallet.SourceOverpayment, &billID)
		if err != nil {
			return err
		}
		ledger = append(ledger, entry)
	}

	if len(ledger) == 0 {
		return nil
	}

	if created {
		if err := s.walletRepo.Save(ctx, *wlt); err != nil {
			return fmt.Errorf("failed to save wallet: %w", err)
		}
	} else {
		if err := s.walletRepo.SaveWithLock(ctx, *wlt); err != nil {
			return err
		}
	}

	for _, entry := range ledger {
		if err := s.walletTxRepo.Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to save wallet transaction: %w", err)
		}
	}
	return nil
}

func (s *PaymentService) recordPaymentMetric(ctx context.Context, method string, status telemetry.PaymentStatus, amount decimal.Decimal) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordPayment(ctx, method, status, amount)
}

func (s *PaymentService) publishEvents(ctx context.Context, aggregates ...shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	for _, aggregate := range aggregates {
		if aggregate == nil {
			continue
		}
		for _, event := range aggregate.GetDomainEvents() {
			_ = s.eventPublisher.Publish(ctx, event)
		}
		aggregate.ClearDomainEvents()
	}
}
