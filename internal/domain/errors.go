package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of escrow operations
type ErrorKind string

const (
	ErrorKindValidation        ErrorKind = "validation"
	ErrorKindAuthorization     ErrorKind = "authorization"
	ErrorKindNotFound          ErrorKind = "not_found"
	ErrorKindConflict          ErrorKind = "conflict"
	ErrorKindExpired           ErrorKind = "expired"
	ErrorKindNotYetExpired     ErrorKind = "not_yet_expired"
	ErrorKindInsufficientFunds ErrorKind = "insufficient_funds"
	ErrorKindExternalService   ErrorKind = "external_service"
)

// Error is the error type returned by the escrow engines.
// Message is safe to show to end users; Details carries structured context.
type Error struct {
	Kind    ErrorKind
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail attaches a detail key and returns the same error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func newError(kind ErrorKind, err error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

func NewValidationError(format string, args ...interface{}) *Error {
	return newError(ErrorKindValidation, nil, format, args...)
}

func NewAuthorizationError(format string, args ...interface{}) *Error {
	return newError(ErrorKindAuthorization, nil, format, args...)
}

func NewNotFoundError(format string, args ...interface{}) *Error {
	return newError(ErrorKindNotFound, nil, format, args...)
}

func NewConflictError(format string, args ...interface{}) *Error {
	return newError(ErrorKindConflict, nil, format, args...)
}

func NewExpiredError(format string, args ...interface{}) *Error {
	return newError(ErrorKindExpired, nil, format, args...)
}

func NewNotYetExpiredError(format string, args ...interface{}) *Error {
	return newError(ErrorKindNotYetExpired, nil, format, args...)
}

func NewInsufficientFundsError(format string, args ...interface{}) *Error {
	return newError(ErrorKindInsufficientFunds, nil, format, args...)
}

// NewExternalServiceError wraps a ledger or store failure
func NewExternalServiceError(err error, format string, args ...interface{}) *Error {
	return newError(ErrorKindExternalService, err, format, args...)
}

// KindOf returns the kind of err, or "" if err is not an *Error
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
