package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/domain"
)

// ApplicationFilter narrows ApplicationStore.List.
type ApplicationFilter struct {
	// ApplicantID restricts results to one applicant when set.
	ApplicantID *uuid.UUID
	Status      *domain.ApplicationStatus
	Limit       int
	Offset      int
}

// ApplicationStore persists provider applications. Applications are never deleted.
type ApplicationStore interface {
	// Create saves a pending application and its categories.
	// IMPORTANT: Create writes several rows and MUST run within a transaction.
	// Returns ErrApplicationExists for a repeated (applicant, tax id) pair and
	// ErrInvalidEntity when a category does not exist.
	Create(ctx context.Context, app *domain.ProviderApplication) error

	// GetByID returns ErrApplicationNotFound if the application does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ProviderApplication, error)

	// GetForUpdate reads the application and locks its row until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.ProviderApplication, error)

	// UpdateReview persists status, reviewer and review time.
	UpdateReview(ctx context.Context, app *domain.ProviderApplication) error

	// List returns applications newest first.
	List(ctx context.Context, filter ApplicationFilter) ([]*domain.ProviderApplication, error)

	// WithTx returns a new ApplicationStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ApplicationStore
}
