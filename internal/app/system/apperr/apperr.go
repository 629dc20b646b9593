// Package apperr defines the service-layer error taxonomy. Services wrap
// failures with a status code and message; the HTTP layer translates them
// into the standard response envelope.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries an HTTP status alongside a client-safe message. Err, when
// set, is the underlying cause and is never shown to clients.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports malformed or missing input (400).
func Validation(format string, args ...any) *Error {
	return &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing entity (404).
func NotFound(format string, args ...any) *Error {
	return &Error{Status: http.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized reports missing or invalid authentication (401).
func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: msg}
}

// Forbidden reports an ownership or permission failure (403).
func Forbidden(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Message: msg}
}

// Conflict reports a duplicate review, an owner already set, and similar
// state collisions (409).
func Conflict(format string, args ...any) *Error {
	return &Error{Status: http.StatusConflict, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure from the store or a third-party
// service (500). The cause is kept for logging; clients see only msg.
func Internal(msg string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: msg, Err: err}
}

// StatusOf extracts the HTTP status from err, defaulting to 500.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// MessageOf extracts the client-safe message from err. Non-taxonomy errors
// collapse to a generic message so internal details never leak.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal server error"
}
