package fees

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/academy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType selects which of the three mutually exclusive billing
// strategies governs a fee account. It is a closed set: every switch over it
// handles all three arms, there is no fallthrough "unknown" behavior.
type AccountType string

const (
	// AccountTypeSingle bills the whole fee as one invoice
	AccountTypeSingle AccountType = "SINGLE"
	// AccountTypePartial lets the student pay in arbitrary slices against a running balance
	AccountTypePartial AccountType = "PARTIAL"
	// AccountTypeInstallment bills one fixed invoice per scheduled period
	AccountTypeInstallment AccountType = "INSTALLMENT"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeSingle, AccountTypePartial, AccountTypeInstallment:
		return true
	}
	return false
}

// String returns the string representation of AccountType
func (t AccountType) String() string {
	return string(t)
}

// AllowsUnderpayment returns true if a payment below the bill total is
// accepted and absorbed into the running balance instead of rejected.
func (t AccountType) AllowsUnderpayment() bool {
	return t == AccountTypePartial
}

// Installments is a slice of Installment stored as JSONB alongside the account
type Installments []Installment

// Value implements driver.Valuer for JSONB storage
func (ins Installments) Value() (driver.Value, error) {
	if ins == nil {
		return "[]", nil
	}
	return json.Marshal(ins)
}

// Scan implements sql.Scanner for JSONB storage
func (ins *Installments) Scan(value interface{}) error {
	if value == nil {
		*ins = Installments{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Installments: unsupported type")
	}
	if len(bytes) == 0 {
		*ins = Installments{}
		return nil
	}
	return json.Unmarshal(bytes, ins)
}

// FeeAccount is the billing contract for one enrollment. It owns its
// installments exclusively and is referenced (never owned) by the bills
// generated against it.
//
// PaidAmount is a denormalized cache written at creation time and refreshed
// opportunistically; billing decisions never read it. The projected summary
// (ProjectSummary) is the single source of truth for what is owed.
type FeeAccount struct {
	shared.BaseAggregateRoot
	StudentID       uuid.UUID       `json:"student_id"`
	CourseID        uuid.UUID       `json:"course_id"`
	AccountType     AccountType     `json:"account_type"`
	TotalFee        decimal.Decimal `json:"total_fee"`
	RegistrationFee decimal.Decimal `json:"registration_fee"`
	Tax             decimal.Decimal `json:"tax"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	Installments    Installments    `json:"installments"`
}

// NewFeeAccount creates a fee account for one enrollment. Installment-type
// accounts receive their full schedule up front, one entry per period;
// single and partial accounts start with none.
func NewFeeAccount(
	studentID uuid.UUID,
	courseID uuid.UUID,
	accountType AccountType,
	totalFee decimal.Decimal,
	registrationFee decimal.Decimal,
	tax decimal.Decimal,
	schedule []Installment,
) (*FeeAccount, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if courseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COURSE", "Course ID cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Account type is not valid")
	}
	if totalFee.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total fee must be positive")
	}
	if registrationFee.IsNegative() || tax.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Registration fee and tax cannot be negative")
	}
	if accountType == AccountTypeInstallment && len(schedule) == 0 {
		return nil, shared.NewDomainError("INVALID_SCHEDULE", "Installment accounts require at least one installment")
	}
	if accountType != AccountTypeInstallment && len(schedule) > 0 {
		return nil, shared.NewDomainError("INVALID_SCHEDULE", "Only installment accounts carry a schedule at creation")
	}

	installments := make(Installments, len(schedule))
	copy(installments, schedule)

	account := &FeeAccount{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StudentID:         studentID,
		CourseID:          courseID,
		AccountType:       accountType,
		TotalFee:          totalFee,
		RegistrationFee:   registrationFee,
		Tax:               tax,
		PaidAmount:        decimal.Zero,
		Installments:      installments,
	}
	account.AddDomainEvent(NewFeeAccountCreatedEvent(account))
	return account, nil
}

// Installment returns the installment with the given ID, or ErrInstallmentNotFound
func (a *FeeAccount) Installment(installmentID uuid.UUID) (*Installment, error) {
	for i := range a.Installments {
		if a.Installments[i].ID == installmentID {
			return &a.Installments[i], nil
		}
	}
	return nil, ErrInstallmentNotFound
}

// MarkInstallmentBilled advances the given installment to billed
func (a *FeeAccount) MarkInstallmentBilled(installmentID uuid.UUID) error {
	installment, err := a.Installment(installmentID)
	if err != nil {
		return err
	}
	if err := installment.MarkBilled(); err != nil {
		return err
	}
	a.Touch()
	return nil
}

// MarkInstallmentPaid settles an installment directly, producing no invoice.
// Valid only while the installment is pending: once billed, payment must
// flow through the bill. This is the waiver/manual-reconciliation bypass and
// callers are expected to confirmation-gate it.
func (a *FeeAccount) MarkInstallmentPaid(installmentID uuid.UUID) (*Installment, error) {
	installment, err := a.Installment(installmentID)
	if err != nil {
		return nil, err
	}
	if !installment.IsPending() {
		return nil, shared.NewDomainError("INVALID_STATE",
			"Only pending installments can be marked paid directly; billed installments settle through their bill")
	}
	installment.MarkPaid()
	a.Touch()
	a.AddDomainEvent(NewInstallmentMarkedPaidEvent(a, installment))
	return installment, nil
}

// RecordPartialPayment appends a settled payment-history entry for a partial
// account. The entry is stamped with the payment instant so same-month
// payments remain distinguishable at day granularity.
func (a *FeeAccount) RecordPartialPayment(amount decimal.Decimal, paidAt time.Time) (*Installment, error) {
	if a.AccountType != AccountTypePartial {
		return nil, shared.NewDomainError("INVALID_STATE", "Only partial accounts record payment history entries")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, NewValidationError("Partial payment amount must be positive")
	}
	entry := newPaymentHistoryEntry(paidAt, amount)
	a.Installments = append(a.Installments, *entry)
	a.Touch()
	a.AddDomainEvent(NewPartialPaymentRecordedEvent(a, entry))
	return entry, nil
}

// RefreshPaidAmount rewrites the denormalized cache from a projected summary.
// Purely cosmetic for list screens; nothing in the engine reads it back.
func (a *FeeAccount) RefreshPaidAmount(summary Summary) {
	a.PaidAmount = summary.AmountPaid
	a.Touch()
}

