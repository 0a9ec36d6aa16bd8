package fees

import (
	"fmt"

	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/domain/shared/valueobject"
)

// Domain-state conflicts surfaced to the caller. None of these are retried
// by the engine; state is left untouched when they are returned.
var (
	ErrAccountNotFound     = shared.NewDomainError("NOT_FOUND", "Fee account not found")
	ErrBillNotFound        = shared.NewDomainError("NOT_FOUND", "Bill not found")
	ErrInstallmentNotFound = shared.NewDomainError("NOT_FOUND", "Installment not found")
	ErrAlreadyBilled       = shared.NewDomainError("ALREADY_BILLED", "A bill already exists for this installment")
	ErrNothingToBill       = shared.NewDomainError("NOTHING_TO_BILL", "No outstanding balance to bill")
	ErrBillAlreadyPaid     = shared.NewDomainError("BILL_ALREADY_PAID", "Bill has already been paid")
)

// NewInsufficientPaymentError reports an underpayment on a non-partial
// account. The shortfall is included so the caller can prompt for the
// difference.
func NewInsufficientPaymentError(shortfall valueobject.Money) *shared.DomainError {
	return shared.NewDomainError(
		"INSUFFICIENT_PAYMENT",
		fmt.Sprintf("Payment is short by %s; this account requires full payment", shortfall.StringFixed(2)),
	)
}

// NewValidationError reports invalid caller input (non-positive amounts,
// missing required payment fields).
func NewValidationError(message string) *shared.DomainError {
	return shared.NewDomainError("VALIDATION", message)
}
