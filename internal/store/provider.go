package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/domain"
)

// ProviderFilter narrows ProviderStore.List.
type ProviderFilter struct {
	// CategoryID keeps providers offering the category when set.
	CategoryID *uuid.UUID
	// ActiveOnly drops deactivated providers.
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ProviderStore persists provider profiles together with their category set.
type ProviderStore interface {
	// Create saves the provider and its categories.
	// IMPORTANT: Create writes several rows and MUST run within a transaction.
	// Returns ErrProviderExists when the owner already has a profile,
	// ErrTaxIDExists when the tax id is taken, and ErrInvalidEntity when a
	// category does not exist.
	Create(ctx context.Context, provider *domain.Provider) error

	// GetByID returns ErrProviderNotFound if the provider does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Provider, error)

	// GetForUpdate reads the provider and locks its row until the surrounding
	// transaction ends. Must be called on a transaction-bound store.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Provider, error)

	// GetByOwner returns the profile owned by the identity, or ErrProviderNotFound.
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Provider, error)

	// List returns providers ordered by stars (best first), then creation time.
	List(ctx context.Context, filter ProviderFilter) ([]*domain.Provider, error)

	// UpdateStars persists a recomputed reputation.
	UpdateStars(ctx context.Context, id uuid.UUID, stars domain.Stars) error

	// SetActive toggles whether the provider is listed as active.
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// WithTx returns a new ProviderStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ProviderStore
}
