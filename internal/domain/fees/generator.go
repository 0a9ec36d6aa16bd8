package fees

import (
	"time"

	"github.com/academy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillGenerator turns unbilled obligations into invoice records. It is a
// stateless domain service: invoice numbers and the clock are supplied by
// the caller so generation stays deterministic and testable.
type BillGenerator struct {
	centerPrefix string
}

// NewBillGenerator creates a bill generator stamping bills with the given center prefix
func NewBillGenerator(centerPrefix string) *BillGenerator {
	return &BillGenerator{centerPrefix: centerPrefix}
}

// CenterPrefix returns the center prefix stamped onto generated bills
func (g *BillGenerator) CenterPrefix() string {
	return g.centerPrefix
}

// GenerateInstallmentBill produces an unpaid bill for a pending installment
// and advances the installment to billed.
//
// Fails with ErrInstallmentNotFound for an unknown id and ErrAlreadyBilled
// when a live (non-paid) bill already matches the installment. The matcher
// check and the status change happen under the caller's per-account
// serialization, so the check-then-act pair is atomic.
func (g *BillGenerator) GenerateInstallmentBill(
	account *FeeAccount,
	installmentID uuid.UUID,
	bills []Bill,
	invoiceNo string,
	now time.Time,
) (*Bill, error) {
	installment, err := account.Installment(installmentID)
	if err != nil {
		return nil, err
	}

	if existing := FindBillForInstallment(installment, bills); existing != nil && !existing.IsPaid() {
		return nil, ErrAlreadyBilled
	}
	if !installment.IsPending() {
		if installment.Status == InstallmentStatusBilled {
			return nil, ErrAlreadyBilled
		}
		return nil, shared.NewDomainError("INVALID_STATE", "Installment is already settled")
	}

	bill, err := NewBill(invoiceNo, g.centerPrefix, account.ID, account.StudentID,
		installment.Amount, BillSubjectCourse, now)
	if err != nil {
		return nil, err
	}
	bill.ForInstallment(installment.ID)

	if err := account.MarkInstallmentBilled(installment.ID); err != nil {
		return nil, err
	}
	return bill, nil
}

// GeneratePartialBalanceBill bills the outstanding balance of a partial
// account. The amount is the projected balance, never the account's stored
// PaidAmount.
//
// Partial accounts keep at most one outstanding balance bill. When an open
// bill already covers the current balance there is nothing new to bill.
// When partial payments have reduced the balance below the open bill's
// total, the open bill is re-issued at the reduced amount rather than a
// second invoice being minted next to it.
func (g *BillGenerator) GeneratePartialBalanceBill(
	account *FeeAccount,
	bills []Bill,
	invoiceNo string,
	now time.Time,
) (*Bill, error) {
	if account.AccountType != AccountTypePartial {
		return nil, shared.NewDomainError("INVALID_STATE", "Balance bills only apply to partial accounts")
	}

	summary := ProjectSummary(account, bills)
	if summary.Balance.LessThanOrEqual(decimal.Zero) {
		return nil, ErrNothingToBill
	}

	for i := range bills {
		if bills[i].IsPaid() {
			continue
		}
		open := &bills[i]
		if open.Total.Equal(summary.Balance) {
			return nil, ErrNothingToBill
		}
		if err := open.Reissue(summary.Balance, now); err != nil {
			return nil, err
		}
		return open, nil
	}

	return NewBill(invoiceNo, g.centerPrefix, account.ID, account.StudentID,
		summary.Balance, BillSubjectCourse, now)
}
