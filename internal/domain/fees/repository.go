package fees

import (
	"context"

	"github.com/google/uuid"
)

// FeeAccountRepository persists fee account aggregates
type FeeAccountRepository interface {
	// FindByID finds a fee account by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*FeeAccount, error)
	// FindByIDForUpdate finds a fee account and takes a row lock on it.
	// Must run inside a transaction; this is the serialization point for
	// every mutating fee operation, making check-then-act sequences atomic.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*FeeAccount, error)
	// FindByStudent finds all fee accounts for a student
	FindByStudent(ctx context.Context, studentID uuid.UUID) ([]FeeAccount, error)
	// Save persists the account and its installments
	Save(ctx context.Context, account *FeeAccount) error
}

// BillRepository persists bill aggregates. Bills are append-mostly: once
// paid they are never written again.
type BillRepository interface {
	// FindByID finds a bill by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	// FindByAccount returns all bills ever produced against an account,
	// oldest first
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]Bill, error)
	// FindByStudent returns all bills for a student, oldest first
	FindByStudent(ctx context.Context, studentID uuid.UUID) ([]Bill, error)
	// NextInvoiceNo reserves the next invoice number for the center
	NextInvoiceNo(ctx context.Context, centerPrefix string) (string, error)
	// Save persists the bill
	Save(ctx context.Context, bill *Bill) error
}
