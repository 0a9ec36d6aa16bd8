package handler

import (
	feesapp "github.com/academy/backend/internal/application/fees"
	"github.com/gin-gonic/gin"
)

// FeesHandler handles fee account and billing API endpoints
type FeesHandler struct {
	BaseHandler
	billingService *feesapp.BillingService
	paymentService *feesapp.PaymentService
}

// NewFeesHandler creates a new FeesHandler
func NewFeesHandler(billingService *feesapp.BillingService, paymentService *feesapp.PaymentService) *FeesHandler {
	return &FeesHandler{
		billingService: billingService,
		paymentService: paymentService,
	}
}

// CreateAccount godoc
// @ID           createFeeAccount
// @Summary      Open a fee account
// @Description  Open a fee account for a student enrollment, optionally with an installment schedule
// @Tags         fees
// @Accept       json
// @Produce      json
// @Param        request body feesapp.CreateFeeAccountRequest true "Fee account creation request"
// @Success      201 {object} APIResponse[feesapp.FeeAccountResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /fees/accounts [post]
func (h *FeesHandler) CreateAccount(c *gin.Context) {
	var req feesapp.CreateFeeAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.billingService.CreateFeeAccount(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, account)
}

// GetFeeDetails godoc
// @ID           getFeeDetails
// @Summary      Get fee details for an account
// @Description  Retrieve a fee account with its bills and the projected fee summary
// @Tags         fees
// @Produce      json
// @Param        id path string true "Fee account ID" format(uuid)
// @Success      200 {object} APIResponse[feesapp.FeeDetailsResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /fees/accounts/{id} [get]
func (h *FeesHandler) GetFeeDetails(c *gin.Context) {
	accountID, err := uuidParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	details, err := h.billingService.GetFeeDetails(c.Request.Context(), accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, details)
}

// ListStudentAccounts godoc
// @ID           listStudentFeeAccounts
// @Summary      List a student's fee accounts
// @Description  Retrieve all fee accounts for a student, oldest first
// @Tags         fees
// @Produce      json
// @Param        student_id path string true "Student ID" format(uuid)
// @Success      200 {object} APIResponse[[]feesapp.FeeAccountResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /fees/students/{student_id}/accounts [get]
func (h *FeesHandler) ListStudentAccounts(c *gin.Context) {
	studentID, err := uuidParam(c, "student_id")
	if err != nil {
		h.BadRequest(c, "Invalid student ID format")
		return
	}

	accounts, err := h.billingService.ListStudentAccounts(c.Request.Context(), studentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, accounts)
}

// ListStudentBills godoc
// @ID           listStudentBills
// @Summary      List a student's bills
// @Description  Retrieve all bills for a student across their fee accounts
// @Tags         fees
// @Produce      json
// @Param        student_id path string true "Student ID" format(uuid)
// @Success      200 {object} APIResponse[[]feesapp.BillResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /fees/students/{student_id}/bills [get]
func (h *FeesHandler) ListStudentBills(c *gin.Context) {
	studentID, err := uuidParam(c, "student_id")
	if err != nil {
		h.BadRequest(c, "Invalid student ID format")
		return
	}

	bills, err := h.billingService.ListStudentBills(c.Request.Context(), studentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bills)
}

// GenerateInstallmentBill godoc
// @ID           generateInstallmentBill
// @Summary      Generate a bill for an installment
// @Description  Generate an invoice for a pending installment and mark the installment as billed
// @Tags         fees
// @Produce      json
// @Param        id path string true "Fee account ID" format(uuid)
// @Param        installment_id path string true "Installment ID" format(uuid)
// @Success      201 {object} APIResponse[feesapp.BillResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /fees/accounts/{id}/installments/{installment_id}/bill [post]
func (h *FeesHandler) GenerateInstallmentBill(c *gin.Context) {
	accountID, err := uuidParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	installmentID, err := uuidParam(c, "installment_id")
	if err != nil {
		h.BadRequest(c, "Invalid installment ID format")
		return
	}

	bill, err := h.billingService.GenerateInstallmentBill(c.Request.Context(), accountID, installmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, bill)
}

// GenerateBalanceBill godoc
// @ID           generateBalanceBill
// @Summary      Generate a balance bill
// @Description  Generate an invoice for the outstanding balance of a partial-payment account
// @Tags         fees
// @Produce      json
// @Param        id path string true "Fee account ID" format(uuid)
// @Success      201 {object} APIResponse[feesapp.BillResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /fees/accounts/{id}/balance-bill [post]
func (h *FeesHandler) GenerateBalanceBill(c *gin.Context) {
	accountID, err := uuidParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	bill, err := h.billingService.GeneratePartialBalanceBill(c.Request.Context(), accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, bill)
}

// MarkInstallmentPaid godoc
// @ID           markInstallmentPaid
// @Summary      Mark an installment as paid
// @Description  Settle an installment directly without routing a payment through its bill
// @Tags         fees
// @Produce      json
// @Param        id path string true "Fee account ID" format(uuid)
// @Param        installment_id path string true "Installment ID" format(uuid)
// @Success      200 {object} APIResponse[feesapp.InstallmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /fees/accounts/{id}/installments/{installment_id}/paid [post]
func (h *FeesHandler) MarkInstallmentPaid(c *gin.Context) {
	accountID, err := uuidParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	installmentID, err := uuidParam(c, "installment_id")
	if err != nil {
		h.BadRequest(c, "Invalid installment ID format")
		return
	}

	installment, err := h.billingService.MarkInstallmentAsPaid(c.Request.Context(), accountID, installmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, installment)
}

// PayBill godoc
// @ID           payBill
// @Summary      Apply a payment to a bill
// @Description  Apply a cash or wallet payment to a bill, crediting any excess to the student wallet
// @Tags         fees
// @Accept       json
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Param        request body feesapp.MarkAsPaidRequest true "Payment request"
// @Success      200 {object} APIResponse[feesapp.PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /fees/bills/{id}/pay [post]
func (h *FeesHandler) PayBill(c *gin.Context) {
	billID, err := uuidParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid bill ID format")
		return
	}

	var req feesapp.MarkAsPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.paymentService.MarkAsPaid(c.Request.Context(), billID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// MarkPartialPayment godoc
// @ID           markPartialPayment
// @Summary      Record a partial payment
// @Description  Apply an explicit-amount payment to a bill on a partial-payment account, absorbing any shortfall into the running balance
// @Tags         fees
// @Accept       json
// @Produce      json
// @Param        id path string true "Fee account ID" format(uuid)
// @Param        request body feesapp.PartialPaymentRequest true "Partial payment request"
// @Success      200 {object} APIResponse[feesapp.PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /fees/accounts/{id}/partial-payment [post]
func (h *FeesHandler) MarkPartialPayment(c *gin.Context) {
	accountID, err := uuidParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	var req feesapp.PartialPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.paymentService.MarkPartialPayment(c.Request.Context(), accountID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
