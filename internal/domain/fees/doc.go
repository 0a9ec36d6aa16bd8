// Package fees implements the fee reconciliation bounded context: what a
// student owes for an enrollment, how it is invoiced, and how payments are
// applied.
//
// Key Aggregates:
//   - FeeAccount: the billing contract for one enrollment, governed by one of
//     three mutually exclusive strategies (single, partial, installment)
//   - Bill: an invoice record produced against an account; immutable once paid
//
// Entities and Value Objects:
//   - Installment: one scheduled period, or a recorded partial-payment slice
//   - Summary: the derived projection of owed vs paid amounts
//
// Domain Services:
//   - BillGenerator: turns unbilled obligations into invoice records
//   - PaymentProcessor: applies payments, decides wallet interaction
//   - FindBillForInstallment: pure two-tier bill/installment matching
//
// All monetary amounts are exact decimals. Billing decisions always consult
// the projected Summary, never the account's cached PaidAmount.
//
// The fees domain integrates with:
//   - wallet domain: overpayment excess is credited there, shortfalls may be
//     covered from it
package fees
