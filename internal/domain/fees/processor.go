package fees

import (
	"time"

	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// WalletPolicy tells the payment processor whether the student's wallet
// balance participates in settling the bill.
type WalletPolicy struct {
	UseWallet bool
}

// PaymentOutcome describes every state change a payment application
// produced. The caller commits the bill, account and wallet mutations in one
// transaction; a crash must never leave a paid bill without its wallet
// movement or vice versa.
//
// Wallet invariant, for every outcome:
//
//	balanceAfter = balanceBefore + Excess - WalletDeduction, and >= 0
type PaymentOutcome struct {
	Bill            *Bill
	WalletDeduction decimal.Decimal // debited from the wallet against this bill
	Excess          decimal.Decimal // overpayment credited to the wallet
	HistoryEntry    *Installment    // recorded slice for an accepted underpayment
	Settled         bool            // true when the bill reached paid
}

// PaymentProcessor applies payments to bills. It computes shortfall and
// overage, decides the wallet interaction, and advances bill and installment
// state. It holds no state of its own; per-account serialization is the
// transaction boundary's job.
type PaymentProcessor struct{}

// NewPaymentProcessor creates a payment processor
func NewPaymentProcessor() *PaymentProcessor {
	return &PaymentProcessor{}
}

// Apply applies a cash payment (possibly zero when the wallet carries the
// bill) to an open bill.
//
// With the wallet in play, min(walletBalance, bill.Total) is earmarked as a
// deduction first and the cash amount is compared against what remains.
// Exact cash settles the bill. Overage settles it and reports the excess as
// a wallet credit. Shortage is rejected for single and installment accounts
// and absorbed as a payment-history entry for partial accounts, leaving the
// bill open against the reduced projected balance.
//
// Apply is not idempotent: a bill that is already paid fails with
// ErrBillAlreadyPaid, always. At-most-once submission is the caller's
// concern; the processor's contract is to fail fast and mutate nothing on
// any error path.
func (p *PaymentProcessor) Apply(
	account *FeeAccount,
	bill *Bill,
	paidAmount decimal.Decimal,
	walletBalance decimal.Decimal,
	policy WalletPolicy,
	method PaymentMethod,
	paymentDate time.Time,
) (*PaymentOutcome, error) {
	if bill == nil {
		return nil, ErrBillNotFound
	}
	if bill.IsPaid() {
		return nil, ErrBillAlreadyPaid
	}
	if bill.AccountID != account.ID {
		return nil, shared.NewDomainError("INVALID_STATE", "Bill does not belong to this fee account")
	}
	if paidAmount.IsNegative() {
		return nil, NewValidationError("Payment amount cannot be negative")
	}
	if paidAmount.IsZero() && !policy.UseWallet {
		return nil, NewValidationError("Payment amount must be positive")
	}
	if policy.UseWallet && walletBalance.IsNegative() {
		return nil, shared.NewDomainError("INVALID_STATE", "Wallet balance cannot be negative")
	}

	deduction := decimal.Zero
	if policy.UseWallet {
		deduction = decimal.Min(walletBalance, bill.Total)
	}
	amountDue := bill.Total.Sub(deduction)

	outcome := &PaymentOutcome{
		Bill:            bill,
		WalletDeduction: deduction,
		Excess:          decimal.Zero,
	}

	switch {
	case paidAmount.GreaterThanOrEqual(amountDue):
		outcome.Excess = paidAmount.Sub(amountDue)
		if err := p.settle(account, bill, method, paymentDate); err != nil {
			return nil, err
		}
		outcome.Settled = true

	default:
		shortfall := amountDue.Sub(paidAmount)
		if !account.AccountType.AllowsUnderpayment() {
			return nil, NewInsufficientPaymentError(valueobject.NewMoneyINR(shortfall))
		}
		applied := paidAmount.Add(deduction)
		if applied.IsZero() {
			return nil, NewValidationError("Payment amount must be positive")
		}
		entry, err := account.RecordPartialPayment(applied, paymentDate)
		if err != nil {
			return nil, err
		}
		outcome.HistoryEntry = entry
	}

	return outcome, nil
}

// settle marks the bill paid and, when the bill invoices a specific
// installment, advances that installment to paid with it.
func (p *PaymentProcessor) settle(account *FeeAccount, bill *Bill, method PaymentMethod, paymentDate time.Time) error {
	if err := bill.MarkPaid(method, paymentDate); err != nil {
		return err
	}
	if bill.InstallmentID != nil {
		if installment, err := account.Installment(*bill.InstallmentID); err == nil {
			installment.MarkPaid()
		}
	}
	return nil
}
