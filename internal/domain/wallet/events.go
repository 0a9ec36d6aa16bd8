package wallet

import (
	"github.com/academy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletCreditedEvent is raised when a wallet balance increases
type WalletCreditedEvent struct {
	shared.BaseDomainEvent
	WalletID      uuid.UUID         `json:"wallet_id"`
	StudentID     uuid.UUID         `json:"student_id"`
	Amount        decimal.Decimal   `json:"amount"`
	BalanceAfter  decimal.Decimal   `json:"balance_after"`
	Source        TransactionSource `json:"source"`
	RelatedBillID *uuid.UUID        `json:"related_bill_id,omitempty"`
}

// EventType returns the event type name
func (e *WalletCreditedEvent) EventType() string {
	return "WalletCredited"
}

// NewWalletCreditedEvent creates a new WalletCreditedEvent
func NewWalletCreditedEvent(w *Wallet, tx *Transaction) *WalletCreditedEvent {
	return &WalletCreditedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("WalletCredited", "Wallet", w.ID),
		WalletID:        w.ID,
		StudentID:       w.StudentID,
		Amount:          tx.Amount,
		BalanceAfter:    tx.BalanceAfter,
		Source:          tx.Source,
		RelatedBillID:   tx.RelatedBillID,
	}
}

// WalletDebitedEvent is raised when a wallet balance decreases
type WalletDebitedEvent struct {
	shared.BaseDomainEvent
	WalletID      uuid.UUID         `json:"wallet_id"`
	StudentID     uuid.UUID         `json:"student_id"`
	Amount        decimal.Decimal   `json:"amount"`
	BalanceAfter  decimal.Decimal   `json:"balance_after"`
	Source        TransactionSource `json:"source"`
	RelatedBillID *uuid.UUID        `json:"related_bill_id,omitempty"`
}

// EventType returns the event type name
func (e *WalletDebitedEvent) EventType() string {
	return "WalletDebited"
}

// NewWalletDebitedEvent creates a new WalletDebitedEvent
func NewWalletDebitedEvent(w *Wallet, tx *Transaction) *WalletDebitedEvent {
	return &WalletDebitedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("WalletDebited", "Wallet", w.ID),
		WalletID:        w.ID,
		StudentID:       w.StudentID,
		Amount:          tx.Amount,
		BalanceAfter:    tx.BalanceAfter,
		Source:          tx.Source,
		RelatedBillID:   tx.RelatedBillID,
	}
}
