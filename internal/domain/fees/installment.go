package fees

import (
	"time"

	"github.com/academy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentStatus represents the lifecycle state of an installment.
// Transitions only move forward: pending -> billed -> paid, or
// pending -> paid directly when an installment is settled without an invoice.
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "PENDING"
	InstallmentStatusBilled  InstallmentStatus = "BILLED"
	InstallmentStatusPaid    InstallmentStatus = "PAID"
)

// IsValid checks if the status is a valid InstallmentStatus
func (s InstallmentStatus) IsValid() bool {
	switch s {
	case InstallmentStatusPending, InstallmentStatusBilled, InstallmentStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of InstallmentStatus
func (s InstallmentStatus) String() string {
	return string(s)
}

// Installment is one payment period inside a FeeAccount.
//
// For installment-type accounts, DueMonth is the calendar month the amount
// falls due in. For partial-type accounts, entries double as payment history:
// DueMonth carries the exact instant the partial payment was recorded.
// Installments are never deleted; their status only advances.
type Installment struct {
	ID       uuid.UUID         `json:"id"`
	DueMonth time.Time         `json:"due_month"`
	Amount   decimal.Decimal   `json:"amount"`
	Status   InstallmentStatus `json:"status"`
}

// NewInstallment creates a pending installment for the given period
func NewInstallment(dueMonth time.Time, amount decimal.Decimal) (*Installment, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Installment amount must be positive")
	}
	return &Installment{
		ID:       uuid.New(),
		DueMonth: dueMonth,
		Amount:   amount,
		Status:   InstallmentStatusPending,
	}, nil
}

// newPaymentHistoryEntry records an accepted partial payment as an already
// settled installment stamped with the payment instant.
func newPaymentHistoryEntry(paidAt time.Time, amount decimal.Decimal) *Installment {
	return &Installment{
		ID:       uuid.New(),
		DueMonth: paidAt,
		Amount:   amount,
		Status:   InstallmentStatusPaid,
	}
}

// MarkBilled advances the installment from pending to billed
func (i *Installment) MarkBilled() error {
	if i.Status != InstallmentStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending installments can be billed")
	}
	i.Status = InstallmentStatusBilled
	return nil
}

// MarkPaid advances the installment to paid. Billed installments settle
// through payment application against their bill; the direct pending -> paid
// move is the no-invoice bypass for waived or manually reconciled periods.
func (i *Installment) MarkPaid() {
	i.Status = InstallmentStatusPaid
}

// IsPending returns true while neither a bill nor a payment exists for the period
func (i *Installment) IsPending() bool {
	return i.Status == InstallmentStatusPending
}

// IsPaid returns true once the installment is settled
func (i *Installment) IsPaid() bool {
	return i.Status == InstallmentStatusPaid
}
