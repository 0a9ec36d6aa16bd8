package handler

import (
	walletapp "github.com/academy/backend/internal/application/wallet"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WalletHandler handles student wallet API endpoints
type WalletHandler struct {
	BaseHandler
	walletService *walletapp.WalletService
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(walletService *walletapp.WalletService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

// ListTransactionsQuery represents query parameters for the wallet ledger
type ListTransactionsQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}

// GetWallet godoc
// @ID           getStudentWallet
// @Summary      Get a student's wallet
// @Description  Retrieve a student's wallet balance, creating nothing if none exists
// @Tags         wallets
// @Produce      json
// @Param        student_id path string true "Student ID" format(uuid)
// @Success      200 {object} APIResponse[walletapp.WalletResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /wallets/{student_id} [get]
func (h *WalletHandler) GetWallet(c *gin.Context) {
	studentID, err := uuidParam(c, "student_id")
	if err != nil {
		h.BadRequest(c, "Invalid student ID format")
		return
	}

	wallet, err := h.walletService.GetWallet(c.Request.Context(), studentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, wallet)
}

// TopUp godoc
// @ID           topUpWallet
// @Summary      Top up a student's wallet
// @Description  Deposit funds into a student's wallet, creating the wallet on first use
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        student_id path string true "Student ID" format(uuid)
// @Param        request body walletapp.TopUpRequest true "Top-up request"
// @Success      200 {object} APIResponse[walletapp.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /wallets/{student_id}/top-up [post]
func (h *WalletHandler) TopUp(c *gin.Context) {
	studentID, err := uuidParam(c, "student_id")
	if err != nil {
		h.BadRequest(c, "Invalid student ID format")
		return
	}

	var req walletapp.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tx, err := h.walletService.TopUp(c.Request.Context(), studentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tx)
}

// Deduct godoc
// @ID           deductWallet
// @Summary      Deduct from a student's wallet
// @Description  Withdraw funds from a student's wallet, failing when the balance is insufficient
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        student_id path string true "Student ID" format(uuid)
// @Param        request body walletapp.DeductRequest true "Deduction request"
// @Success      200 {object} APIResponse[walletapp.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /wallets/{student_id}/deduct [post]
func (h *WalletHandler) Deduct(c *gin.Context) {
	studentID, err := uuidParam(c, "student_id")
	if err != nil {
		h.BadRequest(c, "Invalid student ID format")
		return
	}

	var req walletapp.DeductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	// Withdrawals are audited against the operator
	if userID, err := getUserID(c); err == nil {
		logger.FromContext(c.Request.Context()).Info("wallet deduction requested",
			zap.String("student_id", studentID.String()),
			zap.String("operator_id", userID.String()),
			zap.String("amount", req.Amount.String()),
		)
	}

	tx, err := h.walletService.Deduct(c.Request.Context(), studentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tx)
}

// Adjust godoc
// @ID           adjustWallet
// @Summary      Adjust a student's wallet
// @Description  Apply a manual correction to a student's wallet in either direction
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        student_id path string true "Student ID" format(uuid)
// @Param        request body walletapp.AdjustRequest true "Adjustment request"
// @Success      200 {object} APIResponse[walletapp.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /wallets/{student_id}/adjust [post]
func (h *WalletHandler) Adjust(c *gin.Context) {
	studentID, err := uuidParam(c, "student_id")
	if err != nil {
		h.BadRequest(c, "Invalid student ID format")
		return
	}

	var req walletapp.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	// Manual corrections are audited against the operator
	if userID, err := getUserID(c); err == nil {
		logger.FromContext(c.Request.Context()).Info("wallet adjustment requested",
			zap.String("student_id", studentID.String()),
			zap.String("operator_id", userID.String()),
			zap.Bool("debit", req.Debit),
		)
	}

	tx, err := h.walletService.Adjust(c.Request.Context(), studentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tx)
}

// ListTransactions godoc
// @ID           listWalletTransactions
// @Summary      List wallet transactions
// @Description  Retrieve a student's wallet ledger, newest first
// @Tags         wallets
// @Produce      json
// @Param        student_id path string true "Student ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]walletapp.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /wallets/{student_id}/transactions [get]
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	studentID, err := uuidParam(c, "student_id")
	if err != nil {
		h.BadRequest(c, "Invalid student ID format")
		return
	}

	var query ListTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.DefaultFilter()
	if query.Page > 0 {
		filter.Page = query.Page
	}
	if query.PageSize > 0 {
		filter.PageSize = query.PageSize
	}

	page, err := h.walletService.ListTransactions(c.Request.Context(), studentID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
