package wallet

import (
	"github.com/academy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet is a student-level cash-equivalent balance. It absorbs overpayment
// excess and covers shortfalls during bill settlement, and lives
// independently of any single fee account.
//
// Balance is derived from the transaction ledger but persisted for O(1)
// reads; every mutation appends a Transaction carrying the before/after
// snapshot, so the stored balance is always reconcilable against the ledger.
type Wallet struct {
	shared.BaseAggregateRoot
	StudentID uuid.UUID       `json:"student_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// NewWallet creates an empty wallet for a student. Wallets are created
// lazily on first credit.
func NewWallet(studentID uuid.UUID) (*Wallet, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	return &Wallet{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StudentID:         studentID,
		Balance:           decimal.Zero,
	}, nil
}

// Credit increases the balance and returns the ledger entry recording it
func (w *Wallet) Credit(amount decimal.Decimal, source TransactionSource, relatedBillID *uuid.UUID) (*Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}
	before := w.Balance
	w.Balance = w.Balance.Add(amount)
	w.Touch()

	tx, err := NewTransaction(w.StudentID, TransactionTypeCredit, amount, before, w.Balance, source)
	if err != nil {
		return nil, err
	}
	if relatedBillID != nil {
		tx.WithRelatedBill(*relatedBillID)
	}
	w.AddDomainEvent(NewWalletCreditedEvent(w, tx))
	return tx, nil
}

// Debit decreases the balance and returns the ledger entry recording it.
// The balance never goes negative.
func (w *Wallet) Debit(amount decimal.Decimal, source TransactionSource, relatedBillID *uuid.UUID) (*Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Debit amount must be positive")
	}
	if w.Balance.LessThan(amount) {
		return nil, shared.ErrInsufficientBalance
	}
	before := w.Balance
	w.Balance = w.Balance.Sub(amount)
	w.Touch()

	tx, err := NewTransaction(w.StudentID, TransactionTypeDebit, amount, before, w.Balance, source)
	if err != nil {
		return nil, err
	}
	if relatedBillID != nil {
		tx.WithRelatedBill(*relatedBillID)
	}
	w.AddDomainEvent(NewWalletDebitedEvent(w, tx))
	return tx, nil
}

