// Package domainerrors defines the coded error type shared by services and
// transports. Services return *Error values; handlers translate the Code into
// an HTTP status without inspecting messages.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for callers. Codes are stable wire values.
type Code string

// Generic codes.
const (
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_error"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInternal           Code = "internal_error"
	CodeTimeout            Code = "timeout"
	CodeUnavailable        Code = "unavailable"
	CodeInvariantViolation Code = "invariant_violation"
)

// Wallet and ticket lifecycle codes.
const (
	CodeNoProviderFound        Code = "no_provider_found"
	CodeCancelled              Code = "cancelled"
	CodeNotConnected           Code = "not_connected"
	CodeNotAuthorized          Code = "not_authorized"
	CodeInvalidAddress         Code = "invalid_address"
	CodeOutOfInventory         Code = "out_of_inventory"
	CodeNotTransferable        Code = "not_transferable"
	CodeSelfTransferNotAllowed Code = "self_transfer_not_allowed"
	CodeTransactionFailed      Code = "transaction_failed"
	CodeTransactionTimeout     Code = "transaction_timeout"
)

// Error is a coded domain error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error without a cause.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of the outermost *Error in err's chain, or
// CodeInternal when err carries no code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the outermost *Error in err's chain carries code.
func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	var de *Error
	if !errors.As(err, &de) {
		return false
	}
	return de.Code == code
}

// Is is shorthand for HasCode.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// Message returns the client-facing message of a coded error.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// IsAmbiguous reports whether the outcome behind err is unknown. A timed out
// ledger confirmation may still land later, so callers must re-check state
// instead of resubmitting.
func IsAmbiguous(err error) bool {
	return HasCode(err, CodeTransactionTimeout)
}

// ToHTTPStatus maps a code to the HTTP status used by handlers.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvalidInput, CodeValidation, CodeInvalidAddress:
		return http.StatusBadRequest
	case CodeNotConnected:
		return http.StatusUnauthorized
	case CodeNotAuthorized:
		return http.StatusForbidden
	case CodeNotFound, CodeNoProviderFound:
		return http.StatusNotFound
	case CodeConflict, CodeOutOfInventory, CodeSelfTransferNotAllowed:
		return http.StatusConflict
	case CodeNotTransferable, CodeInvariantViolation:
		return http.StatusUnprocessableEntity
	case CodeCancelled:
		return 499
	case CodeTransactionFailed:
		return http.StatusBadGateway
	case CodeTransactionTimeout, CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
