package wallet

import (
	"time"

	"github.com/academy/backend/internal/domain/wallet"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TopUpRequest represents a request to deposit into a student wallet
type TopUpRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// DeductRequest represents a request to withdraw from a student wallet
type DeductRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// AdjustRequest represents a manual wallet correction in either direction
type AdjustRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Debit  bool            `json:"debit"`
}

// WalletResponse represents a wallet in API responses
type WalletResponse struct {
	ID        uuid.UUID       `json:"id"`
	StudentID uuid.UUID       `json:"student_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TransactionResponse represents a wallet ledger entry in API responses
type TransactionResponse struct {
	ID              uuid.UUID       `json:"id"`
	StudentID       uuid.UUID       `json:"student_id"`
	TransactionType string          `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	BalanceBefore   decimal.Decimal `json:"balance_before"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	Source          string          `json:"source"`
	RelatedBillID   *uuid.UUID      `json:"related_bill_id,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
}

// ToWalletResponse converts a domain wallet to its response form
func ToWalletResponse(w *wallet.Wallet) WalletResponse {
	return WalletResponse{
		ID:        w.ID,
		StudentID: w.StudentID,
		Balance:   w.Balance,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// ToTransactionResponse converts a domain ledger entry to its response form
func ToTransactionResponse(tx *wallet.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              tx.ID,
		StudentID:       tx.StudentID,
		TransactionType: string(tx.TransactionType),
		Amount:          tx.Amount,
		BalanceBefore:   tx.BalanceBefore,
		BalanceAfter:    tx.BalanceAfter,
		Source:          string(tx.Source),
		RelatedBillID:   tx.RelatedBillID,
		TransactionDate: tx.TransactionDate,
	}
}

// ToTransactionResponses converts a slice of ledger entries
func ToTransactionResponses(txs []wallet.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txs))
	for i := range txs {
		out[i] = ToTransactionResponse(&txs[i])
	}
	return out
}
