package persistence

import (
	"fmt"
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// columns. Returns the defaultField if the input is empty or not whitelisted.
// Sort input comes straight from query parameters, so anything outside the
// whitelist never reaches an ORDER BY clause.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// OrderClause builds a validated ORDER BY expression from raw filter input,
// appending created_at DESC as a stable tiebreaker unless created_at is
// already the sort field.
func OrderClause(sortField, orderDir string, allowedFields map[string]bool, defaultField string) string {
	field := ValidateSortField(sortField, allowedFields, defaultField)
	clause := fmt.Sprintf("%s %s", field, ValidateSortOrder(orderDir))
	if field != "created_at" {
		clause += ", created_at DESC"
	}
	return clause
}

// FeeAccountSortFields contains allowed sort fields for fee accounts
var FeeAccountSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"student_id":   true,
	"course_id":    true,
	"account_type": true,
	"total_fee":    true,
	"paid_amount":  true,
}

// BillSortFields contains allowed sort fields for bills
var BillSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"invoice_no":   true,
	"total":        true,
	"status":       true,
	"subject":      true,
	"generated_on": true,
	"payment_date": true,
}

// WalletTransactionSortFields contains allowed sort fields for wallet ledger entries
var WalletTransactionSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"transaction_date": true,
	"transaction_type": true,
	"amount":           true,
	"source":           true,
}
