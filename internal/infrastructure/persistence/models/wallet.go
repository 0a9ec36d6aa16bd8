package models

import (
	"time"

	"github.com/academy/backend/internal/domain/wallet"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletModel is the persistence model for the Wallet aggregate.
// One wallet per student, enforced by the unique index.
type WalletModel struct {
	AggregateModel
	StudentID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_wallets_student"`
	Balance   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (WalletModel) TableName() string {
	return "wallets"
}

// ToDomain converts the persistence model to a domain Wallet aggregate.
func (m *WalletModel) ToDomain() *wallet.Wallet {
	return &wallet.Wallet{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		StudentID:         m.StudentID,
		Balance:           m.Balance,
	}
}

// FromDomain populates the persistence model from a domain Wallet.
func (m *WalletModel) FromDomain(w *wallet.Wallet) {
	m.FromDomainAggregateRoot(w.BaseAggregateRoot)
	m.StudentID = w.StudentID
	m.Balance = w.Balance
}

// WalletTransactionModel is the persistence model for wallet ledger entries.
// Rows are insert-only.
type WalletTransactionModel struct {
	BaseModel
	StudentID       uuid.UUID                `gorm:"type:uuid;not null;index:idx_wallet_tx_student"`
	TransactionType wallet.TransactionType   `gorm:"type:varchar(10);not null"`
	Amount          decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	BalanceBefore   decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	BalanceAfter    decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Source          wallet.TransactionSource `gorm:"type:varchar(20);not null"`
	RelatedBillID   *uuid.UUID               `gorm:"type:uuid;index"`
	TransactionDate time.Time                `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (WalletTransactionModel) TableName() string {
	return "wallet_transactions"
}

// ToDomain converts the persistence model to a domain Transaction entity.
func (m *WalletTransactionModel) ToDomain() *wallet.Transaction {
	return &wallet.Transaction{
		BaseEntity:      m.BaseModel.ToDomain(),
		StudentID:       m.StudentID,
		TransactionType: m.TransactionType,
		Amount:          m.Amount,
		BalanceBefore:   m.BalanceBefore,
		BalanceAfter:    m.BalanceAfter,
		Source:          m.Source,
		RelatedBillID:   m.RelatedBillID,
		TransactionDate: m.TransactionDate,
	}
}

// FromDomain populates the persistence model from a domain Transaction.
func (m *WalletTransactionModel) FromDomain(t *wallet.Transaction) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.StudentID = t.StudentID
	m.TransactionType = t.TransactionType
	m.Amount = t.Amount
	m.BalanceBefore = t.BalanceBefore
	m.BalanceAfter = t.BalanceAfter
	m.Source = t.Source
	m.RelatedBillID = t.RelatedBillID
	m.TransactionDate = t.TransactionDate
}
