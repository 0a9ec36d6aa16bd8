package fees

import (
	"context"
	"fmt"
	"time"

	"github.com/academy/backend/internal/domain/fees"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// BillingService handles fee account and bill generation operations.
// Every mutating method runs inside one transaction and takes a row lock on
// the account first, so concurrent generation requests against the same
// account serialize and the matcher's check-then-act stays atomic.
type BillingService struct {
	accountRepo    fees.FeeAccountRepository
	billRepo       fees.BillRepository
	txManager      shared.TransactionManager
	generator      *fees.BillGenerator
	eventPublisher shared.EventPublisher
	summaryCache   SummaryCache
}

// SummaryCache caches projected fee summaries per account. Implementations
// must treat every failure as a miss; the projection is always available as
// the fallback.
type SummaryCache interface {
	Get(ctx context.Context, accountID uuid.UUID) (*fees.Summary, error)
	Set(ctx context.Context, accountID uuid.UUID, summary fees.Summary) error
	Invalidate(ctx context.Context, accountID uuid.UUID) error
}

// NewBillingService creates a new BillingService
func NewBillingService(
	accountRepo fees.FeeAccountRepository,
	billRepo fees.BillRepository,
	txManager shared.TransactionManager,
	generator *fees.BillGenerator,
) *BillingService {
	return &BillingService{
		accountRepo: accountRepo,
		billRepo:    billRepo,
		txManager:   txManager,
		generator:   generator,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *BillingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetSummaryCache enables read-through caching of projected summaries.
// Without it every fee-details read projects from the bill history.
func (s *BillingService) SetSummaryCache(cache SummaryCache) {
	s.summaryCache = cache
}

// projectedSummary returns the account summary, consulting the cache first
// when one is configured. Cache errors degrade to a fresh projection.
func (s *BillingService) projectedSummary(ctx context.Context, account *fees.FeeAccount, bills []fees.Bill) fees.Summary {
	if s.summaryCache != nil {
		if cached, err := s.summaryCache.Get(ctx, account.ID); err == nil && cached != nil {
			return *cached
		}
	}

	summary := fees.ProjectSummary(account, bills)

	if s.summaryCache != nil {
		_ = s.summaryCache.Set(ctx, account.ID, summary)
	}
	return summary
}

// CreateFeeAccount opens a fee account for an enrollment
func (s *BillingService) CreateFeeAccount(ctx context.Context, req CreateFeeAccountRequest) (*FeeAccountResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "create_fee_account")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrStudentID, req.StudentID.String(),
		telemetry.SpanAttrCourseID, req.CourseID.String(),
		telemetry.SpanAttrAccountType, req.AccountType,
	)

	schedule := make([]fees.Installment, 0, len(req.Schedule))
	for _, entry := range req.Schedule {
		installment, err := fees.NewInstallment(entry.DueMonth, entry.Amount)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		schedule = append(schedule, *installment)
	}

	account, err := fees.NewFeeAccount(
		req.StudentID,
		req.CourseID,
		fees.AccountType(req.AccountType),
		req.TotalFee,
		req.RegistrationFee,
		req.Tax,
		schedule,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save fee account: %w", err)
	}

	s.publishEvents(ctx, account)

	telemetry.SetAttribute(span, telemetry.SpanAttrAccountID, account.ID.String())
	response := ToFeeAccountResponse(account)
	return &response, nil
}

// GetFeeDetails returns an account together with its bills and the projected
// summary. The summary is recomputed from the bill history, with an optional
// cache in front; the projection stays the source of truth.
func (s *BillingService) GetFeeDetails(ctx context.Context, accountID uuid.UUID) (*FeeDetailsResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fees.ErrAccountNotFound
	}

	bills, err := s.billRepo.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bills: %w", err)
	}

	summary := s.projectedSummary(ctx, account, bills)

	return &FeeDetailsResponse{
		Account: ToFeeAccountResponse(account),
		Bills:   ToBillResponses(bills),
		Summary: ToSummaryResponse(summary),
	}, nil
}

// ListStudentAccounts returns all fee accounts for a student
func (s *BillingService) ListStudentAccounts(ctx context.Context, studentID uuid.UUID) ([]FeeAccountResponse, error) {
	accounts, err := s.accountRepo.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	responses := make([]FeeAccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToFeeAccountResponse(&accounts[i])
	}
	return responses, nil
}

// ListStudentBills returns every bill issued to a student, oldest first
func (s *BillingService) ListStudentBills(ctx context.Context, studentID uuid.UUID) ([]BillResponse, error) {
	bills, err := s.billRepo.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return ToBillResponses(bills), nil
}

// GenerateInstallmentBill produces a bill for one pending installment.
// Duplicate requests fail with ALREADY_BILLED while a live bill exists.
func (s *BillingService) GenerateInstallmentBill(ctx context.Context, accountID, installmentID uuid.UUID) (*BillResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "generate_installment_bill")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrAccountID, accountID.String(),
		telemetry.SpanAttrInstallmentID, installmentID.String(),
	)

	var account *fees.FeeAccount
	var bill *fees.Bill
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		account, err = s.accountRepo.FindByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return fees.ErrAccountNotFound
		}

		bills, err := s.billRepo.FindByAccount(ctx, accountID)
		if err != nil {
			return fmt.Errorf("failed to load bills: %w", err)
		}

		invoiceNo, err := s.billRepo.NextInvoiceNo(ctx, s.generator.CenterPrefix())
		if err != nil {
			return fmt.Errorf("failed to reserve invoice number: %w", err)
		}

		bill, err = s.generator.GenerateInstallmentBill(account, installmentID, bills, invoiceNo, time.Now())
		if err != nil {
			return err
		}

		if err := s.billRepo.Save(ctx, bill); err != nil {
			return fmt.Errorf("failed to save bill: %w", err)
		}
		return s.accountRepo.Save(ctx, account)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, account, bill)

	telemetry.AddEvent(span, "bill_generated",
		telemetry.SpanAttrBillID, bill.ID.String(),
		telemetry.SpanAttrInvoiceNo, bill.InvoiceNo,
	)

	response := ToBillResponse(bill)
	return &response, nil
}

// GeneratePartialBalanceBill bills the projected outstanding balance of a
// partial account. When an open balance bill already exists at a different
// amount it is re-issued instead of duplicated.
func (s *BillingService) GeneratePartialBalanceBill(ctx context.Context, accountID uuid.UUID) (*BillResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "generate_partial_balance_bill")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrAccountID, accountID.String())

	var account *fees.FeeAccount
	var bill *fees.Bill
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		account, err = s.accountRepo.FindByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return fees.ErrAccountNotFound
		}

		bills, err := s.billRepo.FindByAccount(ctx, accountID)
		if err != nil {
			return fmt.Errorf("failed to load bills: %w", err)
		}

		invoiceNo, err := s.billRepo.NextInvoiceNo(ctx, s.generator.CenterPrefix())
		if err != nil {
			return fmt.Errorf("failed to reserve invoice number: %w", err)
		}

		bill, err = s.generator.GeneratePartialBalanceBill(account, bills, invoiceNo, time.Now())
		if err != nil {
			return err
		}

		return s.billRepo.Save(ctx, bill)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, bill)

	telemetry.AddEvent(span, "balance_bill_generated",
		telemetry.SpanAttrBillID, bill.ID.String(),
		telemetry.SpanAttrAmount, bill.Total.String(),
	)

	response := ToBillResponse(bill)
	return &response, nil
}

// MarkInstallmentAsPaid settles a pending installment without producing a
// bill. This is the waiver path; the caller is expected to have
// confirmation-gated it.
func (s *BillingService) MarkInstallmentAsPaid(ctx context.Context, accountID, installmentID uuid.UUID) (*InstallmentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "mark_installment_paid")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrAccountID, accountID.String(),
		telemetry.SpanAttrInstallmentID, installmentID.String(),
	)

	var account *fees.FeeAccount
	var installment *fees.Installment
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		account, err = s.accountRepo.FindByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return fees.ErrAccountNotFound
		}

		installment, err = account.MarkInstallmentPaid(installmentID)
		if err != nil {
			return err
		}

		bills, err := s.billRepo.FindByAccount(ctx, accountID)
		if err != nil {
			return fmt.Errorf("failed to load bills: %w", err)
		}
		account.RefreshPaidAmount(fees.ProjectSummary(account, bills))

		return s.accountRepo.Save(ctx, account)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, account)

	response := ToInstallmentResponse(installment)
	return &response, nil
}

// publishEvents drains and publishes pending domain events from the given
// aggregates. Publish failures are swallowed; event handling is best-effort
// cache invalidation and notification, never part of the financial state.
func (s *BillingService) publishEvents(ctx context.Context, aggregates ...shared.AggregateRoot) {
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
