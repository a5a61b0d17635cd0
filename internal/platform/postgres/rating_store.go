package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/domain"
	"github.com/phrazzld/servicehub-api/internal/platform/logger"
	"github.com/phrazzld/servicehub-api/internal/store"
)

// PostgresRatingStore implements store.RatingStore.
type PostgresRatingStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRatingStore creates a rating store. If logger is nil,
// slog.Default() is used.
func NewPostgresRatingStore(db store.DBTX, logger *slog.Logger) *PostgresRatingStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRatingStore{
		db:     db,
		logger: logger.With(slog.String("component", "rating_store")),
	}
}

var _ store.RatingStore = (*PostgresRatingStore)(nil)

// WithTx implements store.RatingStore.WithTx
func (s *PostgresRatingStore) WithTx(tx *sql.Tx) store.RatingStore {
	return &PostgresRatingStore{db: tx, logger: s.logger}
}

const ratingSelect = `
	SELECT id, request_id, provider_id, reviewer_id, score::text, comment, created_at
	FROM ratings`

// Create implements store.RatingStore.Create
func (s *PostgresRatingStore) Create(ctx context.Context, rating *domain.Rating) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := rating.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ratings (id, request_id, provider_id, reviewer_id, score, comment, created_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)`,
		rating.ID,
		rating.RequestID,
		rating.ProviderID,
		rating.ReviewerID,
		rating.Score.String(),
		rating.Comment,
		rating.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("request already rated", slog.String("request_id", rating.RequestID.String()))
		} else {
			log.Error("failed to create rating",
				slog.String("error", err.Error()),
				slog.String("request_id", rating.RequestID.String()))
		}
		return MapError(err)
	}

	log.Info("rating created",
		slog.String("rating_id", rating.ID.String()),
		slog.String("provider_id", rating.ProviderID.String()),
		slog.String("score", rating.Score.String()))
	return nil
}

// GetByRequest implements store.RatingStore.GetByRequest
func (s *PostgresRatingStore) GetByRequest(ctx context.Context, requestID uuid.UUID) (*domain.Rating, error) {
	rating, err := scanRating(s.db.QueryRowContext(ctx, ratingSelect+` WHERE request_id = $1`, requestID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRatingNotFound
		}
		return nil, MapError(err)
	}
	return rating, nil
}

func scanRating(row rowScanner) (*domain.Rating, error) {
	var (
		r     domain.Rating
		score string
	)
	if err := row.Scan(
		&r.ID,
		&r.RequestID,
		&r.ProviderID,
		&r.ReviewerID,
		&score,
		&r.Comment,
		&r.CreatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if r.Score, err = parseStars(score); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListScoresByProvider implements store.RatingStore.ListScoresByProvider
func (s *PostgresRatingStore) ListScoresByProvider(ctx context.Context, providerID uuid.UUID) ([]domain.Stars, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT score::text FROM ratings WHERE provider_id = $1`, providerID)
	if err != nil {
		log.Error("failed to list provider scores",
			slog.String("error", err.Error()),
			slog.String("provider_id", providerID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	scores := []domain.Stars{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		score, err := parseStars(raw)
		if err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}

// ListByProvider implements store.RatingStore.ListByProvider
func (s *PostgresRatingStore) ListByProvider(
	ctx context.Context,
	providerID uuid.UUID,
	limit, offset int,
) ([]*domain.Rating, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	limit, offset = normalizePage(limit, offset)
	rows, err := s.db.QueryContext(ctx,
		ratingSelect+` WHERE provider_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		providerID, limit, offset)
	if err != nil {
		log.Error("failed to list provider ratings", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	ratings := []*domain.Rating{}
	for rows.Next() {
		r, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ratings, nil
}
