package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/domain"
)

// CategoryStore persists service categories. Categories are never updated.
type CategoryStore interface {
	// Create saves a new category.
	// Returns ErrCategoryExists if the name is taken.
	Create(ctx context.Context, category *domain.ServiceCategory) error

	// GetByID returns ErrCategoryNotFound if the category does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceCategory, error)

	// GetByName returns ErrCategoryNotFound if no category has the name.
	GetByName(ctx context.Context, name string) (*domain.ServiceCategory, error)

	// List returns all categories ordered by name.
	List(ctx context.Context) ([]*domain.ServiceCategory, error)

	// WithTx returns a new CategoryStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CategoryStore
}
