package fees

// FindBillForInstallment finds the bill that invoices the given installment.
// It is pure and total: it never mutates its inputs and returns nil when no
// bill matches, which is the normal state of a not-yet-billed installment.
//
// Matching runs in two tiers against Bill.GeneratedOn vs Installment.DueMonth:
//
//  1. Day-level: same calendar year, month and day. Partial accounts log
//     multiple same-month payments as separate history entries, so month
//     granularity alone would collide; the day tier keeps them apart.
//  2. Month-level fallback: same calendar year and month. True monthly
//     installments are billed at most once per calendar month, so month
//     granularity is unambiguous there.
//
// Known precision bound: two independent partial payments on the same
// calendar day cannot be told apart at the day tier; the first bill in slice
// order wins. That ambiguity is inherent to date-based matching and is left
// unresolved rather than guessed at.
func FindBillForInstallment(installment *Installment, bills []Bill) *Bill {
	if installment == nil {
		return nil
	}

	due := installment.DueMonth
	for i := range bills {
		g := bills[i].GeneratedOn
		if g.Year() == due.Year() && g.Month() == due.Month() && g.Day() == due.Day() {
			return &bills[i]
		}
	}
	for i := range bills {
		g := bills[i].GeneratedOn
		if g.Year() == due.Year() && g.Month() == due.Month() {
			return &bills[i]
		}
	}
	return nil
}
