package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/domain"
)

// RatingStore persists ratings. Ratings are append-only.
type RatingStore interface {
	// Create saves the rating.
	// Returns ErrRatingExists when the request already has a rating.
	Create(ctx context.Context, rating *domain.Rating) error

	// GetByRequest returns ErrRatingNotFound if the request is unrated.
	GetByRequest(ctx context.Context, requestID uuid.UUID) (*domain.Rating, error)

	// ListScoresByProvider returns every score the provider received.
	ListScoresByProvider(ctx context.Context, providerID uuid.UUID) ([]domain.Stars, error)

	// ListByProvider returns the provider's ratings newest first.
	ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*domain.Rating, error)

	// WithTx returns a new RatingStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) RatingStore
}
