// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrForbidden is returned when the actor may not perform an operation
	// on a resource it does not own or administer.
	ErrForbidden = errors.New("operation not permitted for this actor")
)

// Onboarding failures.
var (
	// ErrDuplicateApplication is returned when the applicant already submitted
	// an application with the same tax id.
	ErrDuplicateApplication = errors.New("application already exists for this tax id")

	// ErrAlreadyReviewed is returned when an application is no longer pending.
	ErrAlreadyReviewed = errors.New("application has already been reviewed")

	// ErrDuplicateProvider is returned when the identity already owns a provider
	// profile, or the tax id is already registered to one.
	ErrDuplicateProvider = errors.New("provider profile already exists")
)

// Request lifecycle failures.
var (
	// ErrNotAProvider is returned when the actor has no provider profile.
	ErrNotAProvider = errors.New("actor is not a provider")

	// ErrSelfAcceptance is returned when a provider tries to accept its own request.
	ErrSelfAcceptance = errors.New("cannot accept your own request")

	// ErrInvalidState is returned when the request status does not allow the transition.
	ErrInvalidState = errors.New("request is not in a valid state for this operation")

	// ErrAlreadyAssigned is returned when another provider holds the request.
	ErrAlreadyAssigned = errors.New("request is already assigned to another provider")

	// ErrCategoryMismatch is returned when the provider does not offer the request category.
	ErrCategoryMismatch = errors.New("provider does not offer this service category")

	// ErrTerminalState is returned when a completed request would be reopened.
	ErrTerminalState = errors.New("request is in a terminal state")

	// ErrNotAssigned is returned when unassigning a request without a provider.
	ErrNotAssigned = errors.New("request has no assigned provider")

	// ErrNotAssignedProvider is returned when the actor is not the assigned provider.
	ErrNotAssignedProvider = errors.New("actor is not the assigned provider")
)

// Rating failures.
var (
	// ErrNotRequester is returned when someone other than the client rates a request.
	ErrNotRequester = errors.New("only the requester can rate this request")

	// ErrNotCompleted is returned when rating a request that is not completed.
	ErrNotCompleted = errors.New("request is not completed")

	// ErrNoProvider is returned when rating a completed request without a provider.
	ErrNoProvider = errors.New("request has no provider to rate")

	// ErrAlreadyRated is returned when the request already carries a rating.
	ErrAlreadyRated = errors.New("request has already been rated")

	// ErrOutOfRange is returned when a score is outside [0.00, 5.00].
	ErrOutOfRange = errors.New("score must be between 0.00 and 5.00")
)

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}
