// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrUnsupportedOperator is returned when a filter names a comparison
	// operator that the evaluator does not know. It is a caller input error,
	// never a "no match".
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrUnsupportedLogic is returned when a filter's logic is neither AND nor OR.
	ErrUnsupportedLogic = errors.New("unsupported logic")

	// ErrEmptyFieldName is returned for a record carrying a field named "".
	ErrEmptyFieldName = errors.New("field name cannot be empty")
)

// UnsupportedOperatorError carries the offending operator and field.
// It matches ErrUnsupportedOperator with errors.Is.
type UnsupportedOperatorError struct {
	Operator Operator
	Key      string
}

// Error implements the error interface.
func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("%s %q for field %q", ErrUnsupportedOperator, string(e.Operator), e.Key)
}

// Unwrap returns ErrUnsupportedOperator.
func (e *UnsupportedOperatorError) Unwrap() error {
	return ErrUnsupportedOperator
}

// ValidationError describes an invalid field. It matches the wrapped error
// with errors.Is, usually ErrValidation or a more specific sentinel.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError returns a ValidationError for field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
