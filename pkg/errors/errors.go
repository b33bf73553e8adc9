package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeConfiguration    ErrorType = "configuration"
	ErrorTypeStateCorruption  ErrorType = "state_corruption"
	ErrorTypePersistence      ErrorType = "persistence"
	ErrorTypeClassification   ErrorType = "classification"
	ErrorTypeAction           ErrorType = "action"
	ErrorTypeResourceTeardown ErrorType = "resource_teardown"
	ErrorTypeInterrupt        ErrorType = "interrupt"
	ErrorTypeLogin            ErrorType = "login"
	ErrorTypeNavigation       ErrorType = "navigation"
	ErrorTypeUnknown          ErrorType = "unknown"
)

// Error represents a run error with type information
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error without an underlying cause
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Newf creates a typed error with a formatted message
func Newf(t ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches type information to an underlying error
func Wrap(t ErrorType, message string, err error) *Error {
	return &Error{Type: t, Message: message, Err: err}
}

// TypeOf returns the error type of err, or ErrorTypeUnknown if err
// carries no type information
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err carries the given error type
func IsType(err error, t ErrorType) bool {
	return TypeOf(err) == t
}

// IsPersistence reports whether err is a state persistence failure
func IsPersistence(err error) bool {
	return IsType(err, ErrorTypePersistence)
}

// IsAction reports whether err is a failed unfollow action
func IsAction(err error) bool {
	return IsType(err, ErrorTypeAction)
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNavigation:
		return true
	case ErrorTypeLogin, ErrorTypeAction, ErrorTypeClassification, ErrorTypePersistence:
		return false
	default:
		return false
	}
}
