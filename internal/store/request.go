package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/domain"
)

// RequestScope describes which requests a caller may see.
// All overrides the other fields. Otherwise a request is visible when the
// caller is its client, or, given ProviderID, when it is assigned to that
// provider or pending in one of the provider's categories.
type RequestScope struct {
	All        bool
	ClientID   uuid.UUID
	ProviderID *uuid.UUID
}

// ScopeFor derives the visibility scope of an actor.
func ScopeFor(actor domain.Actor) RequestScope {
	scope := RequestScope{All: actor.IsStaff, ClientID: actor.ID}
	if actor.IsProvider() {
		id := actor.Provider.ID
		scope.ProviderID = &id
	}
	return scope
}

// RequestFilter narrows RequestStore.ListVisible.
type RequestFilter struct {
	Status *domain.RequestStatus
	Limit  int
	Offset int
}

// RequestStore persists service requests.
type RequestStore interface {
	// Create saves a new request.
	// Returns ErrInvalidEntity when the client or category does not exist.
	Create(ctx context.Context, request *domain.ServiceRequest) error

	// GetByID returns ErrRequestNotFound if the request does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceRequest, error)

	// GetForUpdate reads the request and locks its row until the surrounding
	// transaction ends. Lock waits are bounded by the transaction's lock
	// timeout; losing the wait returns ErrConflict.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.ServiceRequest, error)

	// Update writes every mutable field of the request in one statement.
	// Returns ErrRequestNotFound if the request does not exist.
	Update(ctx context.Context, request *domain.ServiceRequest) error

	// ListVisible returns the requests inside scope, newest first.
	ListVisible(ctx context.Context, scope RequestScope, filter RequestFilter) ([]*domain.ServiceRequest, error)

	// WithTx returns a new RequestStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) RequestStore
}
