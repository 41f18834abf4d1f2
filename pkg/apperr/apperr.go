// Package apperr defines the typed error taxonomy shared by services
// and handlers. Services return *Error values; handlers map the code to
// an HTTP status without inspecting messages.
package apperr

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeInvalidInput      Code = "invalid_input"      // malformed request, not retryable as-is
	CodeNotFound          Code = "not_found"          // referenced entity missing in tenant
	CodeInsufficientStock Code = "insufficient_stock" // sale would drive stock negative
	CodeConflict          Code = "conflict"           // concurrent mutation, retry whole operation
	CodeUnavailable       Code = "unavailable"        // store timeout/failure, retry with backoff
)

type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, cause error, message string) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func InvalidInput(format string, args ...any) *Error {
	return New(CodeInvalidInput, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(CodeNotFound, format, args...)
}

func InsufficientStock(format string, args ...any) *Error {
	return New(CodeInsufficientStock, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return New(CodeConflict, format, args...)
}

func Unavailable(format string, args ...any) *Error {
	return New(CodeUnavailable, format, args...)
}

// CodeOf extracts the taxonomy code from an error chain.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// HTTPStatus maps an error to the status handlers should respond with.
// Untyped errors are treated as internal failures.
func HTTPStatus(err error) int {
	code, ok := CodeOf(err)
	if !ok {
		return 500
	}
	switch code {
	case CodeInvalidInput, CodeInsufficientStock:
		return 400
	case CodeNotFound:
		return 404
	case CodeConflict:
		return 409
	case CodeUnavailable:
		return 503
	default:
		return 500
	}
}
