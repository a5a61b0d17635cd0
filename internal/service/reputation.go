package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/domain"
	"github.com/phrazzld/servicehub-api/internal/platform/logger"
	"github.com/phrazzld/servicehub-api/internal/store"
)

// ReputationAggregator keeps Provider.Stars equal to the rounded mean of the
// provider's rating scores.
type ReputationAggregator struct {
	ratings   store.RatingStore
	providers store.ProviderStore
	tx        *Transactor
	logger    *slog.Logger
}

// NewReputationAggregator creates a ReputationAggregator.
func NewReputationAggregator(
	ratings store.RatingStore,
	providers store.ProviderStore,
	tx *Transactor,
	logger *slog.Logger,
) (*ReputationAggregator, error) {
	if ratings == nil {
		return nil, domain.NewValidationError("ratings", "cannot be nil", domain.ErrValidation)
	}
	if providers == nil {
		return nil, domain.NewValidationError("providers", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReputationAggregator{
		ratings:   ratings,
		providers: providers,
		tx:        tx,
		logger:    logger.With(slog.String("component", "reputation_aggregator")),
	}, nil
}

// Recompute recalculates and stores the provider's stars in its own
// transaction, holding the provider row lock while it reads the scores.
func (a *ReputationAggregator) Recompute(ctx context.Context, providerID uuid.UUID) (domain.Stars, error) {
	if a.tx == nil {
		return 0, NewServiceError("recompute_stars", "no transactor configured", domain.ErrValidation)
	}
	var stars domain.Stars
	err := a.tx.Run(ctx, "recompute_stars", func(ctx context.Context, tx *sql.Tx) error {
		if _, err := a.providers.WithTx(tx).GetForUpdate(ctx, providerID); err != nil {
			return err
		}
		var err error
		stars, err = a.RecomputeTx(ctx, tx, providerID)
		return err
	})
	if err != nil {
		return 0, NewServiceError("recompute_stars", "failed to recompute provider stars", err)
	}
	return stars, nil
}

// RecomputeTx recalculates the provider's stars inside tx. Callers inserting
// a rating must already hold the provider row lock.
func (a *ReputationAggregator) RecomputeTx(ctx context.Context, tx *sql.Tx, providerID uuid.UUID) (domain.Stars, error) {
	scores, err := a.ratings.WithTx(tx).ListScoresByProvider(ctx, providerID)
	if err != nil {
		return 0, err
	}
	stars := domain.MeanStars(scores)
	if err := a.providers.WithTx(tx).UpdateStars(ctx, providerID, stars); err != nil {
		return 0, err
	}

	logger.FromContextOrDefault(ctx, a.logger).Debug("provider stars recomputed",
		slog.String("provider_id", providerID.String()),
		slog.Int("ratings", len(scores)),
		slog.String("stars", stars.String()))
	return stars, nil
}
