package services

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind is the machine-readable class of a rejected operation.
type ErrorKind string

const (
	KindValidation        ErrorKind = "ValidationError"
	KindNotFound          ErrorKind = "NotFound"
	KindAuth              ErrorKind = "AuthError"
	KindStateConflict     ErrorKind = "StateConflict"
	KindInsufficientFunds ErrorKind = "InsufficientFunds"
	KindTimeout           ErrorKind = "TimeoutError"
	KindInvalidOperation  ErrorKind = "InvalidOperation"
	KindInternal          ErrorKind = "Internal"
)

// LedgerError rejects an operation. Returning one from a handler rolls back
// every write of that operation.
type LedgerError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *LedgerError) Error() string { return e.Message }

func (e *LedgerError) Unwrap() error { return e.Cause }

// Is matches by kind, so errors.Is(err, ErrNotFound) holds for any NotFound.
func (e *LedgerError) Is(target error) bool {
	if t, ok := target.(*LedgerError); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinels for errors.Is.
var (
	ErrValidation        = &LedgerError{Kind: KindValidation}
	ErrNotFound          = &LedgerError{Kind: KindNotFound}
	ErrAuth              = &LedgerError{Kind: KindAuth}
	ErrStateConflict     = &LedgerError{Kind: KindStateConflict}
	ErrInsufficientFunds = &LedgerError{Kind: KindInsufficientFunds}
	ErrTimeout           = &LedgerError{Kind: KindTimeout}
	ErrInvalidOperation  = &LedgerError{Kind: KindInvalidOperation}
	ErrInternal          = &LedgerError{Kind: KindInternal}
)

func newError(kind ErrorKind, format string, args ...any) *LedgerError {
	return &LedgerError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...any) error {
	return newError(KindValidation, format, args...)
}

func notFound(format string, args ...any) error { return newError(KindNotFound, format, args...) }

func authError(format string, args ...any) error { return newError(KindAuth, format, args...) }

func conflict(format string, args ...any) error {
	return newError(KindStateConflict, format, args...)
}

func insufficientFunds(need, have uint64) error {
	return newError(KindInsufficientFunds, "insufficient funds: need %d, have %d", need, have)
}

// internal wraps a store failure.
func internal(op string, err error) error {
	return &LedgerError{Kind: KindInternal, Message: op + " failed", Cause: err}
}

// AsLedgerError normalises any error into a LedgerError.
func AsLedgerError(err error) *LedgerError {
	var le *LedgerError
	if errors.As(err, &le) {
		return le
	}
	return &LedgerError{Kind: KindInternal, Message: "internal error", Cause: err}
}

// HTTPStatus maps an error kind onto the transport status code.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindValidation, KindInvalidOperation:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindAuth:
		return fiber.StatusForbidden
	case KindStateConflict:
		return fiber.StatusConflict
	case KindInsufficientFunds:
		return fiber.StatusPaymentRequired
	case KindTimeout:
		return fiber.StatusRequestTimeout
	}
	return fiber.StatusInternalServerError
}
