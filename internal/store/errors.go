package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// Entity-specific variants (e.g., ErrProviderNotFound) wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a second provider profile for one owner).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation or references
	// rows that do not exist. Check the wrapped error for details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrConflict is returned when a statement lost a race for a row lock:
	// lock timeout, deadlock or serialization failure. Retrying the whole
	// transaction may succeed.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrTransactionFailed is returned when a database transaction fails
	// to begin or commit.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	ErrUserNotFound        = fmt.Errorf("%w: user", ErrNotFound)
	ErrCategoryNotFound    = fmt.Errorf("%w: service category", ErrNotFound)
	ErrProviderNotFound    = fmt.Errorf("%w: provider", ErrNotFound)
	ErrApplicationNotFound = fmt.Errorf("%w: provider application", ErrNotFound)
	ErrRequestNotFound     = fmt.Errorf("%w: service request", ErrNotFound)
	ErrRatingNotFound      = fmt.Errorf("%w: rating", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrCategoryExists indicates a category with the same name exists.
	ErrCategoryExists = fmt.Errorf("%w: category name", ErrDuplicate)

	// ErrProviderExists indicates the owner already has a provider profile.
	ErrProviderExists = fmt.Errorf("%w: provider owner", ErrDuplicate)

	// ErrTaxIDExists indicates another provider is registered with the tax id.
	ErrTaxIDExists = fmt.Errorf("%w: provider tax id", ErrDuplicate)

	// ErrApplicationExists indicates the applicant already applied with the tax id.
	ErrApplicationExists = fmt.Errorf("%w: provider application", ErrDuplicate)

	// ErrRatingExists indicates the request has already been rated.
	ErrRatingExists = fmt.Errorf("%w: rating", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsConflictError reports whether err is a retryable lock conflict.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "provider", "service_request")
	Operation string // The operation that failed (e.g., "create", "lock")
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
