package fees

import (
	"time"

	"github.com/academy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillStatus represents the status of a bill
type BillStatus string

const (
	BillStatusDraft  BillStatus = "DRAFT"
	BillStatusUnpaid BillStatus = "UNPAID"
	BillStatusPaid   BillStatus = "PAID"
)

// IsValid checks if the status is a valid BillStatus
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusDraft, BillStatusUnpaid, BillStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of BillStatus
func (s BillStatus) String() string {
	return string(s)
}

// IsOpen returns true while the bill can still be modified or paid
func (s BillStatus) IsOpen() bool {
	return s == BillStatusDraft || s == BillStatusUnpaid
}

// BillSubject categorizes what a bill charges for
type BillSubject string

const (
	BillSubjectCourse    BillSubject = "COURSE"
	BillSubjectMaterials BillSubject = "MATERIALS"
	BillSubjectGallery   BillSubject = "GALLERY"
)

// IsValid checks if the subject is valid
func (s BillSubject) IsValid() bool {
	switch s {
	case BillSubjectCourse, BillSubjectMaterials, BillSubjectGallery:
		return true
	}
	return false
}

// PaymentMethod is a label describing how a bill was settled. It is
// descriptive only; no gateway transaction hangs off it.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodUPI    PaymentMethod = "UPI"
	PaymentMethodBank   PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheque PaymentMethod = "CHEQUE"
	PaymentMethodWallet PaymentMethod = "WALLET"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodUPI,
		PaymentMethodBank, PaymentMethodCheque, PaymentMethodWallet:
		return true
	}
	return false
}

// Bill is an invoice record produced against a FeeAccount. A bill references
// its account but is not owned by it: bills survive account archival for
// audit purposes. Once paid a bill is an immutable financial record; every
// mutator below rejects the paid state.
type Bill struct {
	shared.BaseAggregateRoot
	InvoiceNo     string          `json:"invoice_no"`
	CenterPrefix  string          `json:"center_prefix"`
	AccountID     uuid.UUID       `json:"account_id"`
	StudentID     uuid.UUID       `json:"student_id"`
	Total         decimal.Decimal `json:"total"`
	Status        BillStatus      `json:"status"`
	Subject       BillSubject     `json:"subject"`
	GeneratedOn   time.Time       `json:"generated_on"`
	PaymentMethod PaymentMethod   `json:"payment_method,omitempty"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty"`
	InstallmentID *uuid.UUID      `json:"installment_id,omitempty"`
}

// NewBill creates an unpaid bill against a fee account
func NewBill(
	invoiceNo string,
	centerPrefix string,
	accountID uuid.UUID,
	studentID uuid.UUID,
	total decimal.Decimal,
	subject BillSubject,
	generatedOn time.Time,
) (*Bill, error) {
	if invoiceNo == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NO", "Invoice number cannot be empty")
	}
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Bill total must be positive")
	}
	if !subject.IsValid() {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Bill subject is not valid")
	}

	bill := &Bill{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNo:         invoiceNo,
		CenterPrefix:      centerPrefix,
		AccountID:         accountID,
		StudentID:         studentID,
		Total:             total,
		Status:            BillStatusUnpaid,
		Subject:           subject,
		GeneratedOn:       generatedOn,
	}
	bill.AddDomainEvent(NewBillGeneratedEvent(bill))
	return bill, nil
}

// ForInstallment links the bill to the installment it invoices
func (b *Bill) ForInstallment(installmentID uuid.UUID) *Bill {
	b.InstallmentID = &installmentID
	return b
}

// IsPaid returns true once the bill is settled
func (b *Bill) IsPaid() bool {
	return b.Status == BillStatusPaid
}

// MarkPaid settles the bill. Payment application is deliberately not
// idempotent: a second call fails with ErrBillAlreadyPaid and the caller
// is expected to have checked status first.
func (b *Bill) MarkPaid(method PaymentMethod, paymentDate time.Time) error {
	if b.IsPaid() {
		return ErrBillAlreadyPaid
	}
	if !method.IsValid() {
		return NewValidationError("Payment method is required")
	}
	b.Status = BillStatusPaid
	b.PaymentMethod = method
	b.PaymentDate = &paymentDate
	b.Touch()
	b.AddDomainEvent(NewBillPaidEvent(b))
	return nil
}

// Reissue rewrites an open balance bill to the currently projected
// remaining balance. Partial accounts keep at most one outstanding bill, so
// after an accepted underpayment the open bill is re-issued at the reduced
// amount instead of a second invoice being minted next to it.
func (b *Bill) Reissue(total decimal.Decimal, generatedOn time.Time) error {
	if b.IsPaid() {
		return ErrBillAlreadyPaid
	}
	if total.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Bill total must be positive")
	}
	b.Total = total
	b.GeneratedOn = generatedOn
	b.Status = BillStatusUnpaid
	b.Touch()
	b.AddDomainEvent(NewBillGeneratedEvent(b))
	return nil
}

