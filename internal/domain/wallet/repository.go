package wallet

import (
	"context"

	"github.com/academy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// WalletRepository persists wallet aggregates
type WalletRepository interface {
	// FindByStudent finds the wallet for a student, or shared.ErrNotFound
	FindByStudent(ctx context.Context, studentID uuid.UUID) (*Wallet, error)
	// Save persists a new wallet
	Save(ctx context.Context, w *Wallet) error
	// SaveWithLock persists the wallet using optimistic locking on its
	// version; returns shared.ErrConcurrencyConflict when another writer
	// got there first. This is what keeps concurrent payments from
	// overdrafting a balance.
	SaveWithLock(ctx context.Context, w *Wallet) error
}

// TransactionRepository persists the append-only wallet ledger
type TransactionRepository interface {
	// Create appends a ledger entry; entries are never updated or deleted
	Create(ctx context.Context, tx *Transaction) error
	// FindByStudent returns ledger entries for a student, newest first
	FindByStudent(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]Transaction, int64, error)
}
