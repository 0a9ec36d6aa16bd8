package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/domain/wallet"
	"github.com/academy/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// WalletService handles student wallet operations outside of bill payment:
// staff top-ups, manual adjustments and ledger queries. Wallets are created
// lazily on the first credit.
type WalletService struct {
	walletRepo     wallet.WalletRepository
	txRepo         wallet.TransactionRepository
	txManager      shared.TransactionManager
	eventPublisher shared.EventPublisher
}

// NewWalletService creates a new WalletService
func NewWalletService(
	walletRepo wallet.WalletRepository,
	txRepo wallet.TransactionRepository,
	txManager shared.TransactionManager,
) *WalletService {
	return &WalletService{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		txManager:  txManager,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *WalletService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GetWallet returns the wallet for a student. A student who never received a
// credit reads as an empty wallet rather than an error.
func (s *WalletService) GetWallet(ctx context.Context, studentID uuid.UUID) (*WalletResponse, error) {
	w, err := s.walletRepo.FindByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			empty, err := wallet.NewWallet(studentID)
			if err != nil {
				return nil, err
			}
			response := ToWalletResponse(empty)
			return &response, nil
		}
		return nil, err
	}
	response := ToWalletResponse(w)
	return &response, nil
}

// TopUp deposits into a student wallet, creating the wallet on first use
func (s *WalletService) TopUp(ctx context.Context, studentID uuid.UUID, req TopUpRequest) (*TransactionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "wallet", "top_up")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrStudentID, studentID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	entry, err := s.mutate(ctx, studentID, true, func(w *wallet.Wallet) (*wallet.Transaction, error) {
		return w.Credit(req.Amount, wallet.SourceManualTopup, nil)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := ToTransactionResponse(entry)
	return &response, nil
}

// Deduct withdraws from a student wallet. A student without a wallet has
// nothing to withdraw, so the call fails with INSUFFICIENT_BALANCE rather
// than creating an empty wallet first.
func (s *WalletService) Deduct(ctx context.Context, studentID uuid.UUID, req DeductRequest) (*TransactionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "wallet", "deduct")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrStudentID, studentID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	entry, err := s.mutate(ctx, studentID, false, func(w *wallet.Wallet) (*wallet.Transaction, error) {
		return w.Debit(req.Amount, wallet.SourceAdjustment, nil)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := ToTransactionResponse(entry)
	return &response, nil
}

// Adjust applies a manual correction to a wallet. Credits create the wallet
// when missing; debits against a missing wallet fail with
// INSUFFICIENT_BALANCE since there is nothing to take from.
func (s *WalletService) Adjust(ctx context.Context, studentID uuid.UUID, req AdjustRequest) (*TransactionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "wallet", "adjust")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrStudentID, studentID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
		"debit", req.Debit,
	)

	entry, err := s.mutate(ctx, studentID, !req.Debit, func(w *wallet.Wallet) (*wallet.Transaction, error) {
		if req.Debit {
			return w.Debit(req.Amount, wallet.SourceAdjustment, nil)
		}
		return w.Credit(req.Amount, wallet.SourceAdjustment, nil)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := ToTransactionResponse(entry)
	return &response, nil
}

// ListTransactions returns the wallet ledger for a student, newest first
func (s *WalletService) ListTransactions(ctx context.Context, studentID uuid.UUID, filter shared.Filter) (*shared.Paginated[TransactionResponse], error) {
	txs, total, err := s.txRepo.FindByStudent(ctx, studentID, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToTransactionResponses(txs), total, filter.Page, filter.Limit())
	return &page, nil
}

// mutate runs one wallet mutation inside a transaction: load (or lazily
// create), apply, save with optimistic locking, append the ledger entry.
func (s *WalletService) mutate(
	ctx context.Context,
	studentID uuid.UUID,
	createIfMissing bool,
	fn func(w *wallet.Wallet) (*wallet.Transaction, error),
) (*wallet.Transaction, error) {
	var entry *wallet.Transaction
	var w *wallet.Wallet
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		created := false
		var err error
		w, err = s.walletRepo.FindByStudent(ctx, studentID)
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			if !createIfMissing {
				return shared.ErrInsufficientBalance
			}
			w, err = wallet.NewWallet(studentID)
			if err != nil {
				return err
			}
			created = true
		}

		entry, err = fn(w)
		if err != nil {
			return err
		}

		if created {
			if err := s.walletRepo.Save(ctx, w); err != nil {
				return fmt.Errorf("failed to save wallet: %w", err)
			}
		} else {
			if err := s.walletRepo.SaveWithLock(ctx, w); err != nil {
				return err
			}
		}

		return s.txRepo.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil && w != nil {
		for _, event := range w.GetDomainEvents() {
			_ = s.eventPublisher.Publish(ctx, event)
		}
		w.ClearDomainEvents()
	}
	return entry, nil
}
