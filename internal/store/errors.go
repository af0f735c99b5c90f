package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored or violates a database constraint.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrRequestNotFound indicates that the requested market request does not exist.
	ErrRequestNotFound = fmt.Errorf("%w: request", ErrNotFound)

	// ErrEventNotFound indicates that the requested event does not exist.
	ErrEventNotFound = fmt.Errorf("%w: event", ErrNotFound)

	// ErrMarketNotFound indicates that the requested market does not exist.
	ErrMarketNotFound = fmt.Errorf("%w: market", ErrNotFound)

	// ErrProcessedRequestNotFound indicates that MOS has no outcome recorded
	// for a request yet.
	ErrProcessedRequestNotFound = fmt.Errorf("%w: processed request", ErrNotFound)

	// ErrMarketExists indicates that a market with the same ID is already stored.
	ErrMarketExists = fmt.Errorf("%w: market", ErrDuplicate)

	// ErrRequestExists indicates that a request with the same ID is already stored.
	ErrRequestExists = fmt.Errorf("%w: request", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "market", "event")
	Operation string // The operation that failed (e.g., "create", "delete")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
