// Package apperr defines the error kinds surfaced to API callers. Lower
// layers raise them; the HTTP layer is the only place they become status
// codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ─────────────────────────────────────────────────────────────────────────────
// Kinds
// ─────────────────────────────────────────────────────────────────────────────

var (
	// ErrInvalidInput covers bad, missing or empty caller data.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized covers missing credentials and failed role checks.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when no row matches a key.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned on uniqueness violations.
	ErrConflict = errors.New("conflict")

	// ErrInternal marks unexpected database or transport failures.
	ErrInternal = errors.New("internal error")
)

// ─────────────────────────────────────────────────────────────────────────────
// Error
// ─────────────────────────────────────────────────────────────────────────────

// Error pairs a kind with a caller-facing message and an optional cause that
// is only ever logged.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Is(target error) bool { return e.Kind == target }
func (e *Error) Unwrap() error        { return e.Err }

// New creates an Error of the given kind.
func New(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func InvalidInput(message string) *Error { return New(ErrInvalidInput, message, nil) }
func Unauthorized(message string) *Error { return New(ErrUnauthorized, message, nil) }
func NotFound(message string) *Error     { return New(ErrNotFound, message, nil) }
func Conflict(message string) *Error     { return New(ErrConflict, message, nil) }

// Internal wraps an unexpected failure. The cause is never shown to callers.
func Internal(err error) *Error {
	return New(ErrInternal, http.StatusText(http.StatusInternalServerError), err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Translation
// ─────────────────────────────────────────────────────────────────────────────

// Status maps err onto an HTTP status code. Anything that is not one of the
// known kinds is a 500.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-facing text for err. Unknown and internal errors
// never leak their detail.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != ErrInternal {
		return ae.Message
	}
	if Status(err) == http.StatusInternalServerError {
		return http.StatusText(http.StatusInternalServerError)
	}
	return err.Error()
}
