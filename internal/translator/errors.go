package translator

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorType int

const (
	// ErrInvalidInput is a caller error. It is never retried and never
	// replaced by a fallback.
	ErrInvalidInput ErrorType = iota
	// ErrExternalService means the generative service kept failing.
	ErrExternalService
	// ErrMalformedResponse means the service answered with text that does
	// not contain the expected JSON payload.
	ErrMalformedResponse
)

func (t ErrorType) String() string {
	switch t {
	case ErrInvalidInput:
		return "InvalidInput"
	case ErrExternalService:
		return "ExternalService"
	case ErrMalformedResponse:
		return "MalformedResponse"
	default:
		return "Unknown"
	}
}

type Error struct {
	Type     ErrorType
	Message  string
	Attempts int
	Cause    error
}

func newError(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

func wrapError(err error, errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message, Cause: err}
}

func (e *Error) Error() string {
	parts := []string{fmt.Sprintf("[%s] %s", e.Type, e.Message)}
	if e.Attempts > 0 {
		parts = append(parts, fmt.Sprintf("attempts: %d", e.Attempts))
	}
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}
	return strings.Join(parts, " | ")
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsErrorType reports whether any error in err's chain is an *Error of the given type.
func IsErrorType(err error, errorType ErrorType) bool {
	var tErr *Error
	if errors.As(err, &tErr) {
		return tErr.Type == errorType
	}
	return false
}

// AttemptsOf returns the attempt count carried by err, or 0.
func AttemptsOf(err error) int {
	var tErr *Error
	if errors.As(err, &tErr) {
		return tErr.Attempts
	}
	return 0
}
