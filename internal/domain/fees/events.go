package fees

import (
	"time"

	"github.com/academy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeeAccountCreatedEvent is raised when a new fee account is opened for an enrollment
type FeeAccountCreatedEvent struct {
	shared.BaseDomainEvent
	AccountID        uuid.UUID       `json:"account_id"`
	StudentID        uuid.UUID       `json:"student_id"`
	CourseID         uuid.UUID       `json:"course_id"`
	AccountType      AccountType     `json:"account_type"`
	TotalFee         decimal.Decimal `json:"total_fee"`
	InstallmentCount int             `json:"installment_count"`
}

// EventType returns the event type name
func (e *FeeAccountCreatedEvent) EventType() string {
	return "FeeAccountCreated"
}

// NewFeeAccountCreatedEvent creates a new FeeAccountCreatedEvent
func NewFeeAccountCreatedEvent(account *FeeAccount) *FeeAccountCreatedEvent {
	return &FeeAccountCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("FeeAccountCreated", "FeeAccount", account.ID),
		AccountID:        account.ID,
		StudentID:        account.StudentID,
		CourseID:         account.CourseID,
		AccountType:      account.AccountType,
		TotalFee:         account.TotalFee,
		InstallmentCount: len(account.Installments),
	}
}

// BillGeneratedEvent is raised when a bill is generated or re-issued
type BillGeneratedEvent struct {
	shared.BaseDomainEvent
	BillID        uuid.UUID       `json:"bill_id"`
	InvoiceNo     string          `json:"invoice_no"`
	AccountID     uuid.UUID       `json:"account_id"`
	StudentID     uuid.UUID       `json:"student_id"`
	Total         decimal.Decimal `json:"total"`
	Subject       BillSubject     `json:"subject"`
	GeneratedOn   time.Time       `json:"generated_on"`
	InstallmentID *uuid.UUID      `json:"installment_id,omitempty"`
}

// EventType returns the event type name
func (e *BillGeneratedEvent) EventType() string {
	return "BillGenerated"
}

// NewBillGeneratedEvent creates a new BillGeneratedEvent
func NewBillGeneratedEvent(bill *Bill) *BillGeneratedEvent {
	return &BillGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BillGenerated", "Bill", bill.ID),
		BillID:          bill.ID,
		InvoiceNo:       bill.InvoiceNo,
		AccountID:       bill.AccountID,
		StudentID:       bill.StudentID,
		Total:           bill.Total,
		Subject:         bill.Subject,
		GeneratedOn:     bill.GeneratedOn,
		InstallmentID:   bill.InstallmentID,
	}
}

// BillPaidEvent is raised when a bill is settled
type BillPaidEvent struct {
	shared.BaseDomainEvent
	BillID        uuid.UUID       `json:"bill_id"`
	InvoiceNo     string          `json:"invoice_no"`
	AccountID     uuid.UUID       `json:"account_id"`
	StudentID     uuid.UUID       `json:"student_id"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	PaymentDate   time.Time       `json:"payment_date"`
}

// EventType returns the event type name
func (e *BillPaidEvent) EventType() string {
	return "BillPaid"
}

// NewBillPaidEvent creates a new BillPaidEvent
func NewBillPaidEvent(bill *Bill) *BillPaidEvent {
	paymentDate := time.Now()
	if bill.PaymentDate != nil {
		paymentDate = *bill.PaymentDate
	}
	return &BillPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BillPaid", "Bill", bill.ID),
		BillID:          bill.ID,
		InvoiceNo:       bill.InvoiceNo,
		AccountID:       bill.AccountID,
		StudentID:       bill.StudentID,
		Total:           bill.Total,
		PaymentMethod:   bill.PaymentMethod,
		PaymentDate:     paymentDate,
	}
}

// PartialPaymentRecordedEvent is raised when a partial account absorbs an underpayment
type PartialPaymentRecordedEvent struct {
	shared.BaseDomainEvent
	AccountID     uuid.UUID       `json:"account_id"`
	StudentID     uuid.UUID       `json:"student_id"`
	InstallmentID uuid.UUID       `json:"installment_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaidAt        time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *PartialPaymentRecordedEvent) EventType() string {
	return "PartialPaymentRecorded"
}

// NewPartialPaymentRecordedEvent creates a new PartialPaymentRecordedEvent
func NewPartialPaymentRecordedEvent(account *FeeAccount, entry *Installment) *PartialPaymentRecordedEvent {
	return &PartialPaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PartialPaymentRecorded", "FeeAccount", account.ID),
		AccountID:       account.ID,
		StudentID:       account.StudentID,
		InstallmentID:   entry.ID,
		Amount:          entry.Amount,
		PaidAt:          entry.DueMonth,
	}
}

// InstallmentMarkedPaidEvent is raised when an installment is settled directly
// without an invoice (waiver / manual reconciliation bypass)
type InstallmentMarkedPaidEvent struct {
	shared.BaseDomainEvent
	AccountID     uuid.UUID       `json:"account_id"`
	StudentID     uuid.UUID       `json:"student_id"`
	InstallmentID uuid.UUID       `json:"installment_id"`
	Amount        decimal.Decimal `json:"amount"`
	DueMonth      time.Time       `json:"due_month"`
}

// EventType returns the event type name
func (e *InstallmentMarkedPaidEvent) EventType() string {
	return "InstallmentMarkedPaid"
}

// NewInstallmentMarkedPaidEvent creates a new InstallmentMarkedPaidEvent
func NewInstallmentMarkedPaidEvent(account *FeeAccount, installment *Installment) *InstallmentMarkedPaidEvent {
	return &InstallmentMarkedPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InstallmentMarkedPaid", "FeeAccount", account.ID),
		AccountID:       account.ID,
		StudentID:       account.StudentID,
		InstallmentID:   installment.ID,
		Amount:          installment.Amount,
		DueMonth:        installment.DueMonth,
	}
}
