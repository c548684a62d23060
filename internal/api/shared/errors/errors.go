package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/safient/safient-escrow/internal/domain"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	ErrCodeBadRequest        ErrorCode = "bad_request"
	ErrCodeNotFound          ErrorCode = "not_found"
	ErrCodeValidationFailed  ErrorCode = "validation_failed"
	ErrCodeUnauthorized      ErrorCode = "unauthorized"
	ErrCodeForbidden         ErrorCode = "forbidden"
	ErrCodeConflict          ErrorCode = "conflict"
	ErrCodeExpired           ErrorCode = "expired"
	ErrCodeNotYetExpired     ErrorCode = "not_yet_expired"
	ErrCodeInsufficientFunds ErrorCode = "insufficient_funds"
	ErrCodeRateLimited       ErrorCode = "rate_limited"

	// Server errors (5xx)
	ErrCodeInternalError ErrorCode = "internal_error"
	ErrCodeServiceError  ErrorCode = "service_error"
)

// APIError represents a structured API error that carries error code and details
type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	jsonErr, _ := json.Marshal(e)
	return string(jsonErr)
}

// ErrorResponse is the envelope of every error response
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// Envelope wraps the error in the response envelope
func (e *APIError) Envelope() ErrorResponse {
	return ErrorResponse{Success: false, Error: e}
}

func newAPIError(code ErrorCode, message string, details []string) *APIError {
	e := &APIError{Code: code, Message: message}
	if len(details) > 0 {
		e.Details = strings.Join(details, ", ")
	}
	return e
}

// Error constructors for common error types
func NewBadRequestError(message string, details ...string) *APIError {
	return newAPIError(ErrCodeBadRequest, message, details)
}

func NewNotFoundError(message string, details ...string) *APIError {
	return newAPIError(ErrCodeNotFound, message, details)
}

func NewValidationError(details ...string) *APIError {
	return newAPIError(ErrCodeValidationFailed, "Validation failed", details)
}

func NewUnauthorizedError(message string, details ...string) *APIError {
	return newAPIError(ErrCodeUnauthorized, message, details)
}

func NewForbiddenError(message string, details ...string) *APIError {
	return newAPIError(ErrCodeForbidden, message, details)
}

func NewRateLimitedError(message string, details ...string) *APIError {
	return newAPIError(ErrCodeRateLimited, message, details)
}

func NewInternalError(message string, details ...string) *APIError {
	return newAPIError(ErrCodeInternalError, message, details)
}

func NewServiceError(message string, details ...string) *APIError {
	return newAPIError(ErrCodeServiceError, message, details)
}

var kindMapping = map[domain.ErrorKind]struct {
	status int
	code   ErrorCode
}{
	domain.ErrorKindValidation:        {http.StatusBadRequest, ErrCodeValidationFailed},
	domain.ErrorKindAuthorization:     {http.StatusForbidden, ErrCodeForbidden},
	domain.ErrorKindNotFound:          {http.StatusNotFound, ErrCodeNotFound},
	domain.ErrorKindConflict:          {http.StatusBadRequest, ErrCodeConflict},
	domain.ErrorKindExpired:           {http.StatusBadRequest, ErrCodeExpired},
	domain.ErrorKindNotYetExpired:     {http.StatusBadRequest, ErrCodeNotYetExpired},
	domain.ErrorKindInsufficientFunds: {http.StatusBadRequest, ErrCodeInsufficientFunds},
	domain.ErrorKindExternalService:   {http.StatusInternalServerError, ErrCodeServiceError},
}

// EXTERNAL_SERVICE_DETAIL is the only detail returned for ledger or store failures
const EXTERNAL_SERVICE_DETAIL = "upstream service unavailable, retry later"

// FromError maps an engine error to an HTTP status and API error.
// Anything that is not a *domain.Error becomes an opaque 500.
func FromError(err error) (int, *APIError) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return http.StatusBadRequest, apiErr
	}

	var derr *domain.Error
	if !errors.As(err, &derr) {
		return http.StatusInternalServerError, NewInternalError("Internal server error")
	}

	m, ok := kindMapping[derr.Kind]
	if !ok {
		return http.StatusInternalServerError, NewInternalError("Internal server error")
	}

	out := &APIError{Code: m.code, Message: derr.Message}
	switch {
	case derr.Kind == domain.ErrorKindExternalService:
		// the cause is logged by the caller and stays out of the response
		out.Details = EXTERNAL_SERVICE_DETAIL
	case len(derr.Details) > 0:
		out.Details = derr.Details
	}
	return m.status, out
}
