package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/domain"
	"github.com/phrazzld/servicehub-api/internal/platform/logger"
	"github.com/phrazzld/servicehub-api/internal/store"
)

// PostgresProviderStore implements store.ProviderStore. Provider category
// sets live in provider_categories.
type PostgresProviderStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProviderStore creates a provider store. If logger is nil,
// slog.Default() is used.
func NewPostgresProviderStore(db store.DBTX, logger *slog.Logger) *PostgresProviderStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProviderStore{
		db:     db,
		logger: logger.With(slog.String("component", "provider_store")),
	}
}

var _ store.ProviderStore = (*PostgresProviderStore)(nil)

// WithTx implements store.ProviderStore.WithTx
func (s *PostgresProviderStore) WithTx(tx *sql.Tx) store.ProviderStore {
	return &PostgresProviderStore{db: tx, logger: s.logger}
}

var providerSelect = `
	SELECT p.id, p.owner_id, p.description, p.tax_id, p.stars::text, p.active,
		p.created_at, p.updated_at, ` + categoryIDsSelect("provider_categories", "provider_id", "p") + `
	FROM providers p`

// Create implements store.ProviderStore.Create
func (s *PostgresProviderStore) Create(ctx context.Context, provider *domain.Provider) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := provider.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO providers (id, owner_id, description, tax_id, stars, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8)`,
		provider.ID,
		provider.OwnerID,
		provider.Description,
		provider.TaxID,
		provider.Stars.String(),
		provider.Active,
		provider.CreatedAt,
		provider.UpdatedAt,
	)
	if err != nil {
		log.Warn("failed to create provider",
			slog.String("error", err.Error()),
			slog.String("owner_id", provider.OwnerID.String()))
		return MapError(err)
	}

	for _, categoryID := range provider.CategoryIDs {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO provider_categories (provider_id, category_id) VALUES ($1, $2)`,
			provider.ID, categoryID,
		)
		if err != nil {
			log.Warn("failed to attach provider category",
				slog.String("error", err.Error()),
				slog.String("category_id", categoryID.String()))
			return MapError(err)
		}
	}

	log.Info("provider created",
		slog.String("provider_id", provider.ID.String()),
		slog.String("owner_id", provider.OwnerID.String()),
		slog.Int("categories", len(provider.CategoryIDs)))
	return nil
}

// GetByID implements store.ProviderStore.GetByID
func (s *PostgresProviderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Provider, error) {
	return s.getOne(ctx, providerSelect+` WHERE p.id = $1`, id)
}

// GetForUpdate implements store.ProviderStore.GetForUpdate
func (s *PostgresProviderStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Provider, error) {
	return s.getOne(ctx, providerSelect+` WHERE p.id = $1 FOR UPDATE OF p`, id)
}

// GetByOwner implements store.ProviderStore.GetByOwner
func (s *PostgresProviderStore) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Provider, error) {
	return s.getOne(ctx, providerSelect+` WHERE p.owner_id = $1`, ownerID)
}

func (s *PostgresProviderStore) getOne(ctx context.Context, query string, arg any) (*domain.Provider, error) {
	p, err := scanProvider(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProviderNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get provider",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProvider(row rowScanner) (*domain.Provider, error) {
	var (
		p          domain.Provider
		stars      string
		categories string
	)
	if err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Description,
		&p.TaxID,
		&stars,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
		&categories,
	); err != nil {
		return nil, err
	}
	var err error
	if p.Stars, err = parseStars(stars); err != nil {
		return nil, err
	}
	if p.CategoryIDs, err = parseIDList(categories); err != nil {
		return nil, err
	}
	return &p, nil
}

// List implements store.ProviderStore.List
func (s *PostgresProviderStore) List(ctx context.Context, filter store.ProviderFilter) ([]*domain.Provider, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		where []string
		args  []any
	)
	if filter.ActiveOnly {
		where = append(where, "p.active")
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM provider_categories pc WHERE pc.provider_id = p.id AND pc.category_id = $%d)",
			len(args)))
	}
	query := providerSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit, offset := normalizePage(filter.Limit, filter.Offset)
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY p.stars DESC, p.created_at ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list providers", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	providers := []*domain.Provider{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			log.Error("failed to scan provider row", slog.String("error", err.Error()))
			return nil, err
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return providers, nil
}

// UpdateStars implements store.ProviderStore.UpdateStars
func (s *PostgresProviderStore) UpdateStars(ctx context.Context, id uuid.UUID, stars domain.Stars) error {
	if !stars.Valid() {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrInvalidStars)
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE providers SET stars = $1::numeric, updated_at = $2 WHERE id = $3`,
		stars.String(), time.Now().UTC(), id,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update provider stars",
			slog.String("error", err.Error()),
			slog.String("provider_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrProviderNotFound)
}

// SetActive implements store.ProviderStore.SetActive
func (s *PostgresProviderStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE providers SET active = $1, updated_at = $2 WHERE id = $3`,
		active, time.Now().UTC(), id,
	)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrProviderNotFound)
}
