package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/domain"
	"github.com/phrazzld/servicehub-api/internal/events"
	"github.com/phrazzld/servicehub-api/internal/platform/logger"
	"github.com/phrazzld/servicehub-api/internal/store"
)

// RatingSubmission records client ratings of completed requests and keeps the
// rated provider's stars current in the same transaction.
type RatingSubmission struct {
	requests   store.RequestStore
	ratings    store.RatingStore
	providers  store.ProviderStore
	reputation *ReputationAggregator
	tx         *Transactor
	emitter    events.EventEmitter
	logger     *slog.Logger
}

// NewRatingSubmission creates a RatingSubmission service.
func NewRatingSubmission(
	requests store.RequestStore,
	ratings store.RatingStore,
	providers store.ProviderStore,
	reputation *ReputationAggregator,
	tx *Transactor,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*RatingSubmission, error) {
	if requests == nil {
		return nil, domain.NewValidationError("requests", "cannot be nil", domain.ErrValidation)
	}
	if ratings == nil {
		return nil, domain.NewValidationError("ratings", "cannot be nil", domain.ErrValidation)
	}
	if providers == nil {
		return nil, domain.NewValidationError("providers", "cannot be nil", domain.ErrValidation)
	}
	if reputation == nil {
		return nil, domain.NewValidationError("reputation", "cannot be nil", domain.ErrValidation)
	}
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RatingSubmission{
		requests:   requests,
		ratings:    ratings,
		providers:  providers,
		reputation: reputation,
		tx:         tx,
		emitter:    emitter,
		logger:     logger.With(slog.String("component", "rating_submission")),
	}, nil
}

// Rate stores the actor's rating of a completed request and recomputes the
// provider's stars. score is a decimal with at most two fractional digits.
// Failures are checked in order: requester, completion, provider, existing
// rating, score range.
func (s *RatingSubmission) Rate(
	ctx context.Context,
	requestID uuid.UUID,
	actor domain.Actor,
	score string,
	comment string,
) (*domain.Rating, error) {
	var (
		rating *domain.Rating
		stars  domain.Stars
	)
	err := s.tx.Run(ctx, "rate_request", func(ctx context.Context, tx *sql.Tx) error {
		requests := s.requests.WithTx(tx)
		ratings := s.ratings.WithTx(tx)

		request, err := requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if err := request.CheckRatable(actor.ID); err != nil {
			return err
		}
		if _, err := ratings.GetByRequest(ctx, requestID); err == nil {
			return domain.ErrAlreadyRated
		} else if !errors.Is(err, store.ErrRatingNotFound) {
			return err
		}

		parsed, err := domain.ParseStars(score)
		if err != nil {
			return err
		}
		rating, err = domain.NewRating(request, actor.ID, parsed, comment)
		if err != nil {
			return err
		}

		// Concurrent ratings of one provider queue here, so each
		// recomputation sees every committed score.
		if _, err := s.providers.WithTx(tx).GetForUpdate(ctx, rating.ProviderID); err != nil {
			return err
		}
		if err := ratings.Create(ctx, rating); err != nil {
			if errors.Is(err, store.ErrRatingExists) {
				return domain.ErrAlreadyRated
			}
			return err
		}

		stars, err = s.reputation.RecomputeTx(ctx, tx, rating.ProviderID)
		return err
	})
	if err != nil {
		return nil, NewServiceError("rate_request", "failed to rate request", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("request rated",
		slog.String("request_id", requestID.String()),
		slog.String("provider_id", rating.ProviderID.String()),
		slog.String("score", rating.Score.String()),
		slog.String("stars", stars.String()))
	publish(ctx, s.emitter, s.logger, events.RatingCreated, rating)
	return rating, nil
}

// GetRequestRating returns the rating of a request the actor may see.
func (s *RatingSubmission) GetRequestRating(
	ctx context.Context,
	requestID uuid.UUID,
	actor domain.Actor,
) (*domain.Rating, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, NewServiceError("get_rating", "failed to load request", err)
	}
	if !request.VisibleTo(actor) {
		return nil, NewServiceError("get_rating", "request not visible", store.ErrRequestNotFound)
	}
	rating, err := s.ratings.GetByRequest(ctx, requestID)
	if err != nil {
		return nil, NewServiceError("get_rating", "failed to load rating", err)
	}
	return rating, nil
}

// ListProviderRatings returns the provider's ratings, newest first.
func (s *RatingSubmission) ListProviderRatings(
	ctx context.Context,
	providerID uuid.UUID,
	limit, offset int,
) ([]*domain.Rating, error) {
	if _, err := s.providers.GetByID(ctx, providerID); err != nil {
		return nil, NewServiceError("list_ratings", "failed to load provider", err)
	}
	ratings, err := s.ratings.ListByProvider(ctx, providerID, limit, offset)
	if err != nil {
		return nil, NewServiceError("list_ratings", "failed to list ratings", err)
	}
	return ratings, nil
}
