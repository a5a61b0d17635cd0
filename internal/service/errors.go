package service

import (
	"fmt"

	"github.com/phrazzld/servicehub-api/internal/domain"
)

// ServiceError records which service operation failed. It wraps the
// underlying domain or store error, so errors.Is keeps matching the sentinels
// the API layer maps to status codes.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// invalidInput wraps a domain construction failure so that it matches
// domain.ErrValidation as well as the specific field error.
func invalidInput(operation, message string, err error) *ServiceError {
	return NewServiceError(operation, message, fmt.Errorf("%w: %w", domain.ErrValidation, err))
}
