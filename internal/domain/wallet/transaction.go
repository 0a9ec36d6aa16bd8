package wallet

import (
	"time"

	"github.com/academy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a wallet ledger entry
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeCredit || t == TransactionTypeDebit
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// TransactionSource identifies what produced a wallet ledger entry
type TransactionSource string

const (
	// SourceManualTopup is a staff-initiated deposit
	SourceManualTopup TransactionSource = "MANUAL_TOPUP"
	// SourceAdjustment is a manual correction (either direction)
	SourceAdjustment TransactionSource = "ADJUSTMENT"
	// SourceOverpayment is excess from a bill payment credited back
	SourceOverpayment TransactionSource = "OVERPAYMENT"
	// SourceBillDeduction is balance consumed to settle a bill
	SourceBillDeduction TransactionSource = "BILL_DEDUCTION"
)

// IsValid returns true if the source is valid
func (s TransactionSource) IsValid() bool {
	switch s {
	case SourceManualTopup, SourceAdjustment, SourceOverpayment, SourceBillDeduction:
		return true
	}
	return false
}

// String returns the string representation of TransactionSource
func (s TransactionSource) String() string {
	return string(s)
}

// Transaction is an immutable record of one wallet balance change. Once
// created it is never modified or deleted; corrections are made with new
// entries.
type Transaction struct {
	shared.BaseEntity
	StudentID       uuid.UUID         `json:"student_id"`
	TransactionType TransactionType   `json:"transaction_type"`
	Amount          decimal.Decimal   `json:"amount"` // always positive, direction from type
	BalanceBefore   decimal.Decimal   `json:"balance_before"`
	BalanceAfter    decimal.Decimal   `json:"balance_after"`
	Source          TransactionSource `json:"source"`
	RelatedBillID   *uuid.UUID        `json:"related_bill_id,omitempty"`
	TransactionDate time.Time         `json:"transaction_date"`
}

// NewTransaction creates a wallet ledger entry
func NewTransaction(
	studentID uuid.UUID,
	txType TransactionType,
	amount decimal.Decimal,
	balanceBefore decimal.Decimal,
	balanceAfter decimal.Decimal,
	source TransactionSource,
) (*Transaction, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Invalid wallet transaction type")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if balanceBefore.IsNegative() || balanceAfter.IsNegative() {
		return nil, shared.NewDomainError("INVALID_BALANCE", "Wallet balance cannot be negative")
	}
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Invalid transaction source")
	}

	return &Transaction{
		BaseEntity:      shared.NewBaseEntity(),
		StudentID:       studentID,
		TransactionType: txType,
		Amount:          amount,
		BalanceBefore:   balanceBefore,
		BalanceAfter:    balanceAfter,
		Source:          source,
		TransactionDate: time.Now(),
	}, nil
}

// WithRelatedBill links the entry to the bill that caused it
func (t *Transaction) WithRelatedBill(billID uuid.UUID) *Transaction {
	t.RelatedBillID = &billID
	return t
}

// SignedAmount returns the amount with its direction applied:
// positive for credits, negative for debits.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.TransactionType == TransactionTypeDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}
