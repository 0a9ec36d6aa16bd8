package fees

import (
	"github.com/shopspring/decimal"
)

// Summary is the derived, always-recomputed view of what an account owes.
// It is the single authoritative source of truth for billing decisions:
// generators consult the projection, never the account's stored PaidAmount,
// because that cache is written once at creation and not every mutation path
// (wallet-covered payments in particular) refreshes it.
type Summary struct {
	AccountID       string          `json:"account_id"`
	TotalFees       decimal.Decimal `json:"total_fees"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	Balance         decimal.Decimal `json:"balance"`
	CourseFee       decimal.Decimal `json:"course_fee"`
	RegistrationFee decimal.Decimal `json:"registration_fee"`
	TotalTax        decimal.Decimal `json:"total_tax"`
}

// ProjectSummary computes the fee summary for an account from its immutable
// bill history. It mutates nothing and may run against a snapshot.
//
// AmountPaid counts every paid bill plus every settled installment that has
// no paid bill of its own: bypass-settled periods and partial payment
// history entries. A settled installment whose own bill is paid is already
// counted through the bill and is skipped. Partial-account history entries
// never have bills of their own (the balance bill covers the remainder, not
// the recorded slice), so they always count.
//
// TotalFees is the all-in contract amount; CourseFee is what remains of it
// after the registration and tax portions are split out.
func ProjectSummary(account *FeeAccount, bills []Bill) Summary {
	amountPaid := decimal.Zero

	for i := range bills {
		if bills[i].IsPaid() {
			amountPaid = amountPaid.Add(bills[i].Total)
		}
	}

	for i := range account.Installments {
		installment := &account.Installments[i]
		if !installment.IsPaid() {
			continue
		}
		if account.AccountType != AccountTypePartial && settledByOwnBill(installment, bills) {
			continue
		}
		amountPaid = amountPaid.Add(installment.Amount)
	}

	return Summary{
		AccountID:       account.ID.String(),
		TotalFees:       account.TotalFee,
		AmountPaid:      amountPaid,
		Balance:         account.TotalFee.Sub(amountPaid),
		CourseFee:       account.TotalFee.Sub(account.RegistrationFee).Sub(account.Tax),
		RegistrationFee: account.RegistrationFee,
		TotalTax:        account.Tax,
	}
}

// settledByOwnBill reports whether a paid bill invoices this installment,
// either through the explicit linkage or, for bills recorded before the
// linkage existed, through date matching.
func settledByOwnBill(installment *Installment, bills []Bill) bool {
	for i := range bills {
		if !bills[i].IsPaid() {
			continue
		}
		if bills[i].InstallmentID != nil && *bills[i].InstallmentID == installment.ID {
			return true
		}
	}
	if bill := FindBillForInstallment(installment, bills); bill != nil && bill.IsPaid() && bill.InstallmentID == nil {
		return true
	}
	return false
}
