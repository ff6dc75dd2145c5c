package order

import (
	"errors"
	"fmt"
)

// Error represents a failure reported by the ordering engine.
//
// Error kinds:
//   - Not found: parent or child does not exist, or was removed mid-operation
//   - Invariant violation: a write would break the permutation invariant
//   - Conflict: the parent's scope could not be locked in time (retryable)
//
// None of these are retried or repaired by the engine.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// ParentID identifies the affected parent, when known.
	ParentID string

	// ChildID identifies the affected child, when known.
	ChildID string

	// Err is the underlying cause (driver error, context error).
	Err error
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a missing parent or child.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeInvariantViolation indicates a write that would break the
	// permutation invariant. Always an integration bug.
	ErrCodeInvariantViolation ErrorCode = "INVARIANT_VIOLATION"

	// ErrCodeConflict indicates the exclusive scope could not be acquired
	// before the store's lock timeout.
	ErrCodeConflict ErrorCode = "CONFLICT"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	switch {
	case e.ParentID != "" && e.ChildID != "":
		msg = fmt.Sprintf("%s (parent=%s, child=%s)", msg, e.ParentID, e.ChildID)
	case e.ParentID != "":
		msg = fmt.Sprintf("%s (parent=%s)", msg, e.ParentID)
	case e.ChildID != "":
		msg = fmt.Sprintf("%s (child=%s)", msg, e.ChildID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a not-found error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsInvariantViolation reports whether err is an invariant violation.
func IsInvariantViolation(err error) bool {
	return hasCode(err, ErrCodeInvariantViolation)
}

// IsConflict reports whether err is a lock conflict.
func IsConflict(err error) bool {
	return hasCode(err, ErrCodeConflict)
}

// CodeOf returns the code of the first *Error in err's chain, or "" when
// there is none.
func CodeOf(err error) ErrorCode {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Code
	}
	return ""
}

func hasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// ParentNotFound creates a not-found error for a parent.
func ParentNotFound(parentID string) *Error {
	return &Error{
		Code:     ErrCodeNotFound,
		Message:  "parent does not exist",
		ParentID: parentID,
	}
}

// ChildNotFound creates a not-found error for a child.
// parentID may be empty when the child's parent is unknown.
func ChildNotFound(parentID, childID string) *Error {
	return &Error{
		Code:     ErrCodeNotFound,
		Message:  "child does not exist",
		ParentID: parentID,
		ChildID:  childID,
	}
}

// NewInvariantViolation creates an invariant violation for a parent.
func NewInvariantViolation(parentID, format string, args ...any) *Error {
	return &Error{
		Code:     ErrCodeInvariantViolation,
		Message:  fmt.Sprintf(format, args...),
		ParentID: parentID,
	}
}

// NewConflict wraps a lock-wait failure for a parent.
func NewConflict(parentID string, cause error) *Error {
	return &Error{
		Code:     ErrCodeConflict,
		Message:  "could not acquire exclusive scope",
		ParentID: parentID,
		Err:      cause,
	}
}
