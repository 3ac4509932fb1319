// Package apperrors defines structured application error types and the
// process exit codes they map to.
//
// All error types implement Unwrap so that errors.Is and errors.As see the
// cause, such as device.ErrBusy or a bignum overflow.
package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Application exit codes define the standard exit statuses for the application.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates the operation timed out.
	ExitErrorMismatch = 3   // Indicates a result mismatch between engines.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorBusy     = 5   // Indicates the device was held by another session.
	ExitErrorOverflow = 6   // Indicates a result exceeded the digit capacity.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ConfigError represents a user configuration error, such as invalid flags or
// values.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// CalculationError records which engine failed at which offset.
type CalculationError struct {
	Algorithm string
	Offset    uint64
	// Cause is the underlying error that triggered this calculation error.
	Cause error
}

// Error returns the algorithm, the offset and the cause.
func (e CalculationError) Error() string {
	return fmt.Sprintf("%s at offset %d: %v", e.Algorithm, e.Offset, e.Cause)
}

// Unwrap returns the original wrapped error.
func (e CalculationError) Unwrap() error { return e.Cause }

// ServerError represents errors that occur in the HTTP server component.
type ServerError struct {
	// Message is a descriptive message about the server error.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// Error combines the descriptive message and the underlying cause if present.
func (e ServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e ServerError) Unwrap() error { return e.Cause }

// NewServerError creates a new ServerError with a message and optional cause.
func NewServerError(message string, cause error) error {
	return ServerError{Message: message, Cause: cause}
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// It returns nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ValidationError represents an error due to invalid input validation.
// It is used for API request validation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message describes why validation failed.
	Message string
	// Value is the invalid value (optional, may be nil).
	Value any
}

// Error returns the error message for a ValidationError.
func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string, value any) error {
	return ValidationError{Field: field, Message: message, Value: value}
}
