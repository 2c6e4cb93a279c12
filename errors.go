package janus

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies handler and protocol errors by how the caller
// should react to them.
type ErrorCategory string

const (
	// ErrorTransient indicates the error is temporary and resubmitting the
	// task may succeed. Examples: rate limits, upstream overload.
	ErrorTransient ErrorCategory = "transient"

	// ErrorPermanent indicates the error is not recoverable through
	// resubmission. Examples: invalid credentials, model not found.
	ErrorPermanent ErrorCategory = "permanent"

	// ErrorUserInput indicates the request itself must be corrected.
	ErrorUserInput ErrorCategory = "user_input"
)

// CategorizedError is an error carrying handling metadata. Protocol
// adapters use it to decide the wire error code and the advisory
// retryable hint; only the code and message ever cross the boundary.
type CategorizedError interface {
	error
	Category() ErrorCategory
	Retryable() bool // true iff Category == ErrorTransient
}

// Error is a categorized error with an optional underlying cause.
type Error struct {
	Msg   string
	Cat   ErrorCategory
	Cause error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Category returns the error category.
func (e *Error) Category() ErrorCategory {
	return e.Cat
}

// Retryable returns true if the error is transient.
func (e *Error) Retryable() bool {
	return e.Cat == ErrorTransient
}

// NewTransientError creates a transient error that can be retried.
func NewTransientError(msg string, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorTransient, Cause: cause}
}

// NewPermanentError creates a permanent error that should not be retried.
func NewPermanentError(msg string, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorPermanent, Cause: cause}
}

// NewUserInputError creates an error indicating invalid request input.
func NewUserInputError(msg string, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorUserInput, Cause: cause}
}

// IsRetryable reports whether the error, or any error it wraps, is
// categorized as transient. Uncategorized errors are treated as
// retryable: an unexpected internal failure gives no evidence that
// resubmission is pointless.
func IsRetryable(err error) bool {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Retryable()
	}
	return true
}

// CategoryOf returns the category of a categorized error. Plain errors
// are treated as transient, consistent with IsRetryable.
func CategoryOf(err error) ErrorCategory {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Category()
	}
	return ErrorTransient
}
