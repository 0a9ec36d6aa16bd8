package models

import (
	"time"

	"github.com/academy/backend/internal/domain/fees"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeeAccountModel is the persistence model for the FeeAccount aggregate.
// Installments are stored as a JSONB document on the account row: they are
// always read and written together with their account, never queried on
// their own.
type FeeAccountModel struct {
	AggregateModel
	StudentID       uuid.UUID         `gorm:"type:uuid;not null;index:idx_fee_accounts_student"`
	CourseID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	AccountType     fees.AccountType  `gorm:"type:varchar(20);not null"`
	TotalFee        decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	RegistrationFee decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	Tax             decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAmount      decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	Installments    fees.Installments `gorm:"type:jsonb;not null;default:'[]'"`
}

// TableName returns the table name for GORM
func (FeeAccountModel) TableName() string {
	return "fee_accounts"
}

// ToDomain converts the persistence model to a domain FeeAccount aggregate.
func (m *FeeAccountModel) ToDomain() *fees.FeeAccount {
	return &fees.FeeAccount{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		StudentID:         m.StudentID,
		CourseID:          m.CourseID,
		AccountType:       m.AccountType,
		TotalFee:          m.TotalFee,
		RegistrationFee:   m.RegistrationFee,
		Tax:               m.Tax,
		PaidAmount:        m.PaidAmount,
		Installments:      m.Installments,
	}
}

// FromDomain populates the persistence model from a domain FeeAccount.
func (m *FeeAccountModel) FromDomain(a *fees.FeeAccount) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.StudentID = a.StudentID
	m.CourseID = a.CourseID
	m.AccountType = a.AccountType
	m.TotalFee = a.TotalFee
	m.RegistrationFee = a.RegistrationFee
	m.Tax = a.Tax
	m.PaidAmount = a.PaidAmount
	m.Installments = a.Installments
	if m.Installments == nil {
		m.Installments = fees.Installments{}
	}
}

// BillModel is the persistence model for the Bill aggregate.
type BillModel struct {
	AggregateModel
	InvoiceNo     string           `gorm:"type:varchar(50);not null;uniqueIndex:idx_bills_invoice_no"`
	CenterPrefix  string           `gorm:"type:varchar(10);not null;index"`
	AccountID     uuid.UUID        `gorm:"type:uuid;not null;index:idx_bills_account"`
	StudentID     uuid.UUID        `gorm:"type:uuid;not null;index:idx_bills_student"`
	Total         decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Status        fees.BillStatus  `gorm:"type:varchar(20);not null;default:'UNPAID'"`
	Subject       fees.BillSubject `gorm:"type:varchar(20);not null"`
	GeneratedOn   time.Time        `gorm:"not null"`
	PaymentMethod string           `gorm:"type:varchar(20)"`
	PaymentDate   *time.Time
	InstallmentID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the persistence model to a domain Bill aggregate.
func (m *BillModel) ToDomain() *fees.Bill {
	return &fees.Bill{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		InvoiceNo:         m.InvoiceNo,
		CenterPrefix:      m.CenterPrefix,
		AccountID:         m.AccountID,
		StudentID:         m.StudentID,
		Total:             m.Total,
		Status:            m.Status,
		Subject:           m.Subject,
		GeneratedOn:       m.GeneratedOn,
		PaymentMethod:     fees.PaymentMethod(m.PaymentMethod),
		PaymentDate:       m.PaymentDate,
		InstallmentID:     m.InstallmentID,
	}
}

// FromDomain populates the persistence model from a domain Bill.
func (m *BillModel) FromDomain(b *fees.Bill) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.InvoiceNo = b.InvoiceNo
	m.CenterPrefix = b.CenterPrefix
	m.AccountID = b.AccountID
	m.StudentID = b.StudentID
	m.Total = b.Total
	m.Status = b.Status
	m.Subject = b.Subject
	m.GeneratedOn = b.GeneratedOn
	m.PaymentMethod = string(b.PaymentMethod)
	m.PaymentDate = b.PaymentDate
	m.InstallmentID = b.InstallmentID
}
