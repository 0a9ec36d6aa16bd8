package dto

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeValidationRequired, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeBusinessRule, http.StatusUnprocessableEntity},
		{ErrCodeInsufficientBalance, http.StatusUnprocessableEntity},
		{ErrCodeInsufficientPayment, http.StatusUnprocessableEntity},
		{ErrCodeNothingToBill, http.StatusUnprocessableEntity},
		{ErrCodeAlreadyBilled, http.StatusConflict},
		{ErrCodeBillAlreadyPaid, http.StatusConflict},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"UNMAPPED_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	// Domain errors carry bare codes; the API layer maps them to the
	// ERR_-prefixed vocabulary. Codes already in that vocabulary, and
	// codes we have never seen, pass through untouched.
	legacy := map[string]string{
		"NOT_FOUND":            ErrCodeNotFound,
		"ALREADY_EXISTS":       ErrCodeAlreadyExists,
		"INVALID_INPUT":        ErrCodeInvalidInput,
		"INVALID_STATE":        ErrCodeInvalidState,
		"UNAUTHORIZED":         ErrCodeUnauthorized,
		"FORBIDDEN":            ErrCodeForbidden,
		"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
		"INSUFFICIENT_BALANCE": ErrCodeInsufficientBalance,
		"INSUFFICIENT_PAYMENT": ErrCodeInsufficientPayment,
		"ALREADY_BILLED":       ErrCodeAlreadyBilled,
		"NOTHING_TO_BILL":      ErrCodeNothingToBill,
		"BILL_ALREADY_PAID":    ErrCodeBillAlreadyPaid,
		"INVALID_AMOUNT":       ErrCodeInvalidInput,
		"VALIDATION":           ErrCodeValidation,
		"VALIDATION_ERROR":     ErrCodeValidation,
		"BAD_REQUEST":          ErrCodeBadRequest,
		"INTERNAL_ERROR":       ErrCodeInternal,
	}
	for input, expected := range legacy {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, expected, NormalizeErrorCode(input))
		})
	}

	t.Run("already normalized", func(t *testing.T) {
		assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode(ErrCodeNotFound))
		assert.Equal(t, ErrCodeValidation, NormalizeErrorCode(ErrCodeValidation))
	})

	t.Run("unknown passes through", func(t *testing.T) {
		assert.Equal(t, "CUSTOM_ERROR", NormalizeErrorCode("CUSTOM_ERROR"))
	})
}

var allErrorCodes = []string{
	ErrCodeUnknown,
	ErrCodeInternal,
	ErrCodeValidation,
	ErrCodeValidationRequired,
	ErrCodeValidationFormat,
	ErrCodeValidationRange,
	ErrCodeValidationLength,
	ErrCodeUnauthorized,
	ErrCodeForbidden,
	ErrCodeTokenExpired,
	ErrCodeTokenInvalid,
	ErrCodeNotFound,
	ErrCodeAlreadyExists,
	ErrCodeConflict,
	ErrCodeConcurrencyConflict,
	ErrCodeInvalidState,
	ErrCodeBusinessRule,
	ErrCodeInsufficientBalance,
	ErrCodeInsufficientPayment,
	ErrCodeAlreadyBilled,
	ErrCodeNothingToBill,
	ErrCodeBillAlreadyPaid,
	ErrCodeBadRequest,
	ErrCodeInvalidInput,
	ErrCodeInvalidJSON,
	ErrCodeRateLimited,
	ErrCodeTooManyRequests,
}

func TestErrorCodeRegistry(t *testing.T) {
	// Every declared code must have an HTTP status mapping and follow
	// the ERR_ naming convention.
	for _, code := range allErrorCodes {
		t.Run(code, func(t *testing.T) {
			status, ok := ErrorCodeHTTPStatus[code]
			assert.True(t, ok, "code %s missing from ErrorCodeHTTPStatus", code)
			assert.Greater(t, status, 0)
			assert.Contains(t, code, "ERR_")
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	t.Run("normalizes legacy code", func(t *testing.T) {
		resp := NewErrorResponse("NOT_FOUND", "Fee account not found")

		assert.False(t, resp.Success)
		assert.Nil(t, resp.Data)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
		assert.Equal(t, "Fee account not found", resp.Error.Message)
		assert.NotZero(t, resp.Error.Timestamp)
	})

	t.Run("timestamp reflects construction time", func(t *testing.T) {
		before := time.Now()
		resp := NewErrorResponse(ErrCodeInternal, "Server error")
		after := time.Now()

		assert.False(t, resp.Error.Timestamp.Before(before))
		assert.False(t, resp.Error.Timestamp.After(after))
	})
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Bill not found", "req-123-456")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Bill not found", resp.Error.Message)
	assert.Equal(t, "req-123-456", resp.Error.RequestID)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "student_id", Message: "Required"},
		{Field: "amount", Message: "Must not be negative"},
	}

	resp := NewValidationErrorResponse("Validation failed", "req-789", details)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "Validation failed", resp.Error.Message)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "student_id", resp.Error.Details[0].Field)
	assert.Equal(t, "Required", resp.Error.Details[0].Message)
}

func TestNewErrorResponseWithHelp(t *testing.T) {
	help := "https://docs.example.com/errors/auth"
	resp := NewErrorResponseWithHelp(ErrCodeUnauthorized, "Not authenticated", "req-001", help)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUnauthorized, resp.Error.Code)
	assert.Equal(t, "Not authenticated", resp.Error.Message)
	assert.Equal(t, help, resp.Error.Help)
}

func TestErrorResponseJSONRoundTrip(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Wallet not found", "req-test-123")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded Response
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.False(t, decoded.Success)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, ErrCodeNotFound, decoded.Error.Code)
	assert.Equal(t, "Wallet not found", decoded.Error.Message)
	assert.Equal(t, "req-test-123", decoded.Error.RequestID)
}

func TestNewSuccessResponse(t *testing.T) {
	resp := NewSuccessResponse(map[string]string{"invoice_no": "MUM/2526/B-1"})

	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
	assert.Nil(t, resp.Meta)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"bill-1", "bill-2"}, 100, 1, 10)

	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(100), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 10, resp.Meta.PageSize)
	assert.Equal(t, 10, resp.Meta.TotalPages)
}

func TestPaginationMeta(t *testing.T) {
	tests := []struct {
		name          string
		total         int64
		page          int
		pageSize      int
		expectedPages int
		expectedSize  int
	}{
		{"exact pages", 100, 1, 10, 10, 10},
		{"partial last page", 101, 1, 10, 11, 10},
		{"no rows", 0, 1, 10, 0, 10},
		{"under one page", 9, 1, 10, 1, 10},
		{"exactly one page", 10, 1, 10, 1, 10},
		{"just over one page", 11, 1, 10, 2, 10},
		{"zero page size defaults to 20", 100, 1, 0, 5, 20},
		{"negative page size defaults to 20", 100, 1, -1, 5, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewSuccessResponseWithMeta(nil, tt.total, tt.page, tt.pageSize)
			require.NotNil(t, resp.Meta)
			assert.Equal(t, tt.expectedPages, resp.Meta.TotalPages)
			assert.Equal(t, tt.expectedSize, resp.Meta.PageSize)
		})
	}
}
