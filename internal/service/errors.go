// Package service provides the application-level façade over record stores.
package service

import (
	"errors"
	"fmt"

	"github.com/petcare/catalog-api/internal/domain"
	"github.com/petcare/catalog-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is.
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Caller input errors (validation, unsupported operators) pass through unchanged
// 3. Unexpected errors are wrapped in RecordServiceError
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrRecordNotFound indicates no record has the requested id.
	// API layer should map this to HTTP 404 Not Found.
	ErrRecordNotFound = errors.New("record not found")

	// ErrOfferingNotFound indicates no service record has the requested id.
	// It matches ErrRecordNotFound with errors.Is.
	ErrOfferingNotFound = fmt.Errorf("service %w", ErrRecordNotFound)

	// ErrReservedField indicates an update payload named id or created_at.
	// API layer should map this to HTTP 422 Unprocessable Entity.
	ErrReservedField = errors.New("field is managed by the store")
)

// RecordServiceError wraps errors from the record service with context.
type RecordServiceError struct {
	// Collection is the record collection the service manages
	Collection string
	// Operation is the operation that failed (e.g., "create", "search")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for RecordServiceError.
func (e *RecordServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Collection, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Collection, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *RecordServiceError) Unwrap() error {
	return e.Err
}

// NewRecordServiceError creates a new RecordServiceError.
// Known sentinel errors and caller input errors are returned without wrapping.
func NewRecordServiceError(collection, operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrRecordNotFound) {
		return err
	}

	// Store-level not found maps to the service-level sentinel
	if errors.Is(err, store.ErrNotFound) {
		return ErrRecordNotFound
	}

	if errors.Is(err, domain.ErrUnsupportedOperator) ||
		errors.Is(err, domain.ErrUnsupportedLogic) ||
		errors.Is(err, domain.ErrValidation) {
		return err
	}

	return &RecordServiceError{
		Collection: collection,
		Operation:  operation,
		Message:    message,
		Err:        err,
	}
}
