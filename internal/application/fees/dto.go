package fees

import (
	"time"

	"github.com/academy/backend/internal/domain/fees"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Fee Account DTOs ====================

// ScheduleEntryInput is one installment period in the create-account request
type ScheduleEntryInput struct {
	DueMonth time.Time       `json:"due_month" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
}

// CreateFeeAccountRequest represents a request to open a fee account
type CreateFeeAccountRequest struct {
	StudentID       uuid.UUID            `json:"student_id" binding:"required"`
	CourseID        uuid.UUID            `json:"course_id" binding:"required"`
	AccountType     string               `json:"account_type" binding:"required,oneof=SINGLE PARTIAL INSTALLMENT"`
	TotalFee        decimal.Decimal      `json:"total_fee" binding:"required"`
	RegistrationFee decimal.Decimal      `json:"registration_fee"`
	Tax             decimal.Decimal      `json:"tax"`
	Schedule        []ScheduleEntryInput `json:"schedule"`
}

// InstallmentResponse represents an installment in API responses
type InstallmentResponse struct {
	ID       uuid.UUID       `json:"id"`
	DueMonth time.Time       `json:"due_month"`
	Amount   decimal.Decimal `json:"amount"`
	Status   string          `json:"status"`
}

// FeeAccountResponse represents a fee account in API responses
type FeeAccountResponse struct {
	ID              uuid.UUID             `json:"id"`
	StudentID       uuid.UUID             `json:"student_id"`
	CourseID        uuid.UUID             `json:"course_id"`
	AccountType     string                `json:"account_type"`
	TotalFee        decimal.Decimal       `json:"total_fee"`
	RegistrationFee decimal.Decimal       `json:"registration_fee"`
	Tax             decimal.Decimal       `json:"tax"`
	PaidAmount      decimal.Decimal       `json:"paid_amount"`
	Installments    []InstallmentResponse `json:"installments"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// ==================== Bill DTOs ====================

// BillResponse represents a bill in API responses
type BillResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNo     string          `json:"invoice_no"`
	CenterPrefix  string          `json:"center_prefix"`
	AccountID     uuid.UUID       `json:"account_id"`
	StudentID     uuid.UUID       `json:"student_id"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	Subject       string          `json:"subject"`
	GeneratedOn   time.Time       `json:"generated_on"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty"`
	InstallmentID *uuid.UUID      `json:"installment_id,omitempty"`
}

// SummaryResponse is the projected fee summary in API responses
type SummaryResponse struct {
	AccountID       string          `json:"account_id"`
	TotalFees       decimal.Decimal `json:"total_fees"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	Balance         decimal.Decimal `json:"balance"`
	CourseFee       decimal.Decimal `json:"course_fee"`
	RegistrationFee decimal.Decimal `json:"registration_fee"`
	TotalTax        decimal.Decimal `json:"total_tax"`
}

// FeeDetailsResponse bundles an account with its bills and projected summary
type FeeDetailsResponse struct {
	Account FeeAccountResponse `json:"account"`
	Bills   []BillResponse     `json:"bills"`
	Summary SummaryResponse    `json:"summary"`
}

// ==================== Payment DTOs ====================

// MarkAsPaidRequest represents a request to apply a payment to a bill
type MarkAsPaidRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" binding:"required"`
	PaymentDate   *time.Time      `json:"payment_date"`
	UseWallet     bool            `json:"use_wallet"`
}

// PartialPaymentRequest represents an explicit-amount payment against a
// bill on a partial account
type PartialPaymentRequest struct {
	BillID        uuid.UUID       `json:"bill_id" binding:"required"`
	PaidAmount    decimal.Decimal `json:"paid_amount" binding:"required"`
	PaymentMethod string          `json:"payment_method" binding:"required"`
	PaymentDate   *time.Time      `json:"payment_date"`
	UseWallet     bool            `json:"use_wallet"`
}

// PaymentResponse represents the result of a payment application
type PaymentResponse struct {
	Bill            BillResponse         `json:"bill"`
	Settled         bool                 `json:"settled"`
	WalletDeduction decimal.Decimal      `json:"wallet_deduction"`
	ExcessCredited  decimal.Decimal      `json:"excess_credited"`
	HistoryEntry    *InstallmentResponse `json:"history_entry,omitempty"`
	Summary         SummaryResponse      `json:"summary"`
}

// ==================== Mappers ====================

// ToInstallmentResponse converts a domain installment to its response form
func ToInstallmentResponse(installment *fees.Installment) InstallmentResponse {
	return InstallmentResponse{
		ID:       installment.ID,
		DueMonth: installment.DueMonth,
		Amount:   installment.Amount,
		Status:   string(installment.Status),
	}
}

// ToFeeAccountResponse converts a domain fee account to its response form
func ToFeeAccountResponse(account *fees.FeeAccount) FeeAccountResponse {
	installments := make([]InstallmentResponse, len(account.Installments))
	for i := range account.Installments {
		installments[i] = ToInstallmentResponse(&account.Installments[i])
	}
	return FeeAccountResponse{
		ID:              account.ID,
		StudentID:       account.StudentID,
		CourseID:        account.CourseID,
		AccountType:     string(account.AccountType),
		TotalFee:        account.TotalFee,
		RegistrationFee: account.RegistrationFee,
		Tax:             account.Tax,
		PaidAmount:      account.PaidAmount,
		Installments:    installments,
		CreatedAt:       account.CreatedAt,
		UpdatedAt:       account.UpdatedAt,
	}
}

// ToBillResponse converts a domain bill to its response form
func ToBillResponse(bill *fees.Bill) BillResponse {
	return BillResponse{
		ID:            bill.ID,
		InvoiceNo:     bill.InvoiceNo,
		CenterPrefix:  bill.CenterPrefix,
		AccountID:     bill.AccountID,
		StudentID:     bill.StudentID,
		Total:         bill.Total,
		Status:        string(bill.Status),
		Subject:       string(bill.Subject),
		GeneratedOn:   bill.GeneratedOn,
		PaymentMethod: string(bill.PaymentMethod),
		PaymentDate:   bill.PaymentDate,
		InstallmentID: bill.InstallmentID,
	}
}

// ToBillResponses converts a slice of domain bills
func ToBillResponses(bills []fees.Bill) []BillResponse {
	out := make([]BillResponse, len(bills))
	for i := range bills {
		out[i] = ToBillResponse(&bills[i])
	}
	return out
}

// ToSummaryResponse converts a projected summary to its response form
func ToSummaryResponse(summary fees.Summary) SummaryResponse {
	return SummaryResponse{
		AccountID:       summary.AccountID,
		TotalFees:       summary.TotalFees,
		AmountPaid:      summary.AmountPaid,
		Balance:         summary.Balance,
		CourseFee:       summary.CourseFee,
		RegistrationFee: summary.RegistrationFee,
		TotalTax:        summary.TotalTax,
	}
}
