package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is; the API layer maps them to HTTP status codes.
var (
	// ErrNotOwned indicates a resource is owned by a different user than the one making the request.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")
)

// TwitServiceError is a custom error type for twit service errors.
type TwitServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TwitServiceError.
func (e *TwitServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("twit service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("twit service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TwitServiceError) Unwrap() error {
	return e.Err
}

// NewTwitServiceError creates a new TwitServiceError.
func NewTwitServiceError(operation, message string, err error) *TwitServiceError {
	return &TwitServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
