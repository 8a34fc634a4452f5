// Package errors provides the closed set of ledger errors.
// Every service-layer failure is an *AppError so handlers can render a stable
// code without leaking internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target carries the same code, so wrapped copies of a
// sentinel still match it.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// WithDetail appends a detail payload to the sentinel's message.
func WithDetail(sentinel *AppError, detail string) *AppError {
	return WithMessage(sentinel, sentinel.Message+": "+detail)
}

// Authentication, authorization and eligibility errors.
var (
	ErrAnonymousCaller = &AppError{Code: "ANONYMOUS_CALLER", Message: "Anonymous callers are not allowed", StatusCode: http.StatusUnauthorized}
	ErrUnauthorized    = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrAccessDenied    = &AppError{Code: "ACCESS_DENIED", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrKYCNotVerified  = &AppError{Code: "KYC_NOT_VERIFIED", Message: "KYC verification required", StatusCode: http.StatusForbidden}
	ErrKYCExpired      = &AppError{Code: "KYC_EXPIRED", Message: "KYC verification has expired", StatusCode: http.StatusForbidden}
)

// Validation errors.
var (
	ErrInvalidAmount      = &AppError{Code: "INVALID_AMOUNT", Message: "Invalid amount", StatusCode: http.StatusBadRequest}
	ErrInvalidTokenAmount = &AppError{Code: "INVALID_TOKEN_AMOUNT", Message: "Invalid token amount", StatusCode: http.StatusBadRequest}
	ErrInvalidDate        = &AppError{Code: "INVALID_DATE", Message: "Invalid date", StatusCode: http.StatusBadRequest}
	ErrInvalidCUSIP       = &AppError{Code: "INVALID_CUSIP", Message: "Invalid CUSIP", StatusCode: http.StatusBadRequest}
	ErrInvalidUserData    = &AppError{Code: "INVALID_USER_DATA", Message: "Invalid user data", StatusCode: http.StatusBadRequest}
	ErrInvalidHolding     = &AppError{Code: "INVALID_HOLDING_DATA", Message: "Invalid holding data", StatusCode: http.StatusBadRequest}
	ErrInvalidUSTBillData = &AppError{Code: "INVALID_USTBILL_DATA", Message: "Invalid UST bill data", StatusCode: http.StatusBadRequest}
	ErrInvalidYieldRate   = &AppError{Code: "INVALID_YIELD_RATE", Message: "Invalid yield rate", StatusCode: http.StatusBadRequest}
	ErrValidation         = &AppError{Code: "VALIDATION_ERROR", Message: "Validation failed", StatusCode: http.StatusBadRequest}
)

// Business-rule errors.
var (
	ErrMinimumInvestmentNotMet   = &AppError{Code: "MINIMUM_INVESTMENT_NOT_MET", Message: "Purchase is below the minimum investment", StatusCode: http.StatusUnprocessableEntity}
	ErrMaximumInvestmentExceeded = &AppError{Code: "MAXIMUM_INVESTMENT_EXCEEDED", Message: "Purchase exceeds the maximum investment", StatusCode: http.StatusUnprocessableEntity}
	ErrInsufficientFunds         = &AppError{Code: "INSUFFICIENT_FUNDS", Message: "Insufficient wallet balance", StatusCode: http.StatusUnprocessableEntity}
	ErrInsufficientTokens        = &AppError{Code: "INSUFFICIENT_TOKENS", Message: "Not enough tokens available", StatusCode: http.StatusUnprocessableEntity}
	ErrUSTBillSoldOut            = &AppError{Code: "USTBILL_SOLD_OUT", Message: "UST bill is sold out", StatusCode: http.StatusConflict}
	ErrUSTBillMatured            = &AppError{Code: "USTBILL_MATURED", Message: "UST bill has matured", StatusCode: http.StatusConflict}
	ErrUSTBillCancelled          = &AppError{Code: "USTBILL_CANCELLED", Message: "UST bill has been cancelled", StatusCode: http.StatusConflict}
	ErrHoldingAlreadySold        = &AppError{Code: "HOLDING_ALREADY_SOLD", Message: "Holding has already been sold", StatusCode: http.StatusConflict}
	ErrHoldingMatured            = &AppError{Code: "HOLDING_MATURED", Message: "Holding has matured", StatusCode: http.StatusConflict}
	ErrMaturityDatePassed        = &AppError{Code: "MATURITY_DATE_PASSED", Message: "Maturity date has passed", StatusCode: http.StatusConflict}
	ErrTradingNotAllowed         = &AppError{Code: "TRADING_NOT_ALLOWED", Message: "Trading is not allowed for this user", StatusCode: http.StatusForbidden}
)

// Not-found and conflict errors.
var (
	ErrUserNotFound         = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrUSTBillNotFound      = &AppError{Code: "USTBILL_NOT_FOUND", Message: "UST bill not found", StatusCode: http.StatusNotFound}
	ErrHoldingNotFound      = &AppError{Code: "HOLDING_NOT_FOUND", Message: "Holding not found", StatusCode: http.StatusNotFound}
	ErrTransactionNotFound  = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrUserAlreadyExists    = &AppError{Code: "USER_ALREADY_EXISTS", Message: "A profile already exists for this identity", StatusCode: http.StatusConflict}
	ErrUSTBillAlreadyExists = &AppError{Code: "USTBILL_ALREADY_EXISTS", Message: "A UST bill with this CUSIP already exists", StatusCode: http.StatusConflict}
)

// External and infrastructure errors.
var (
	ErrTreasuryDataFetch = &AppError{Code: "TREASURY_DATA_FETCH_ERROR", Message: "Failed to fetch treasury data", StatusCode: http.StatusBadGateway}
	ErrHTTPRequest       = &AppError{Code: "HTTP_REQUEST_ERROR", Message: "HTTP request failed", StatusCode: http.StatusBadGateway}
	ErrExternalAPI       = &AppError{Code: "EXTERNAL_API_ERROR", Message: "External API error", StatusCode: http.StatusBadGateway}
	ErrDatabase          = &AppError{Code: "DATABASE_ERROR", Message: "A storage error occurred", StatusCode: http.StatusInternalServerError}
	ErrSerialization     = &AppError{Code: "SERIALIZATION_ERROR", Message: "Serialization failed", StatusCode: http.StatusInternalServerError}
	ErrInternalServer    = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Unsupported operations.
var (
	ErrNotImplemented = &AppError{Code: "NOT_IMPLEMENTED", Message: "Operation is not supported", StatusCode: http.StatusNotImplemented}
)
