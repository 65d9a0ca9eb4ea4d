package domain

import (
	"errors"
	"fmt"
)

// ErrorCode discriminates domain failures. Callers dispatch on the code, not
// on message text.
type ErrorCode string

const (
	// CodeValidation indicates malformed caller input.
	CodeValidation ErrorCode = "VALIDATION_ERROR"
	// CodeNotFound indicates the requested entity does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"
	// CodeForbidden indicates a policy denial for a well-formed request.
	CodeForbidden ErrorCode = "FORBIDDEN"
	// CodeConflict indicates a valid request against an entity in the wrong state.
	CodeConflict ErrorCode = "CONFLICT"
	// CodeInvariant indicates an internal contract breach that should be unreachable.
	CodeInvariant ErrorCode = "INVARIANT_VIOLATION"
)

// Error is the single error type crossing the domain boundary.
type Error struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Validation constructs a VALIDATION_ERROR.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// NotFound constructs a NOT_FOUND error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// Forbidden constructs a FORBIDDEN error.
func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

// Conflict constructs a CONFLICT error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Invariant constructs an INVARIANT_VIOLATION error.
func Invariant(msg string) *Error {
	return &Error{Code: CodeInvariant, Message: msg}
}

// CodeOf extracts the domain error code from err, or "" when err is not a
// domain error.
func CodeOf(err error) ErrorCode {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Code
	}
	return ""
}

// IsDomainError reports whether err carries a domain error code.
func IsDomainError(err error) bool {
	var derr *Error
	return errors.As(err, &derr)
}
