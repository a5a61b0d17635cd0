package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/domain"
	"github.com/phrazzld/servicehub-api/internal/platform/logger"
	"github.com/phrazzld/servicehub-api/internal/store"
)

// PostgresApplicationStore implements store.ApplicationStore.
type PostgresApplicationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresApplicationStore creates an application store. If logger is
// nil, slog.Default() is used.
func NewPostgresApplicationStore(db store.DBTX, logger *slog.Logger) *PostgresApplicationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresApplicationStore{
		db:     db,
		logger: logger.With(slog.String("component", "application_store")),
	}
}

var _ store.ApplicationStore = (*PostgresApplicationStore)(nil)

// WithTx implements store.ApplicationStore.WithTx
func (s *PostgresApplicationStore) WithTx(tx *sql.Tx) store.ApplicationStore {
	return &PostgresApplicationStore{db: tx, logger: s.logger}
}

var applicationSelect = `
	SELECT a.id, a.applicant_id, a.tax_id, a.description, a.status, a.reviewer_id,
		a.reviewed_at, a.created_at, ` + categoryIDsSelect("application_categories", "application_id", "a") + `
	FROM provider_applications a`

// Create implements store.ApplicationStore.Create
func (s *PostgresApplicationStore) Create(ctx context.Context, app *domain.ProviderApplication) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := app.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO provider_applications (id, applicant_id, tax_id, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		app.ID, app.ApplicantID, app.TaxID, app.Description, app.Status, app.CreatedAt,
	)
	if err != nil {
		log.Warn("failed to create application",
			slog.String("error", err.Error()),
			slog.String("applicant_id", app.ApplicantID.String()))
		return MapError(err)
	}

	for _, categoryID := range app.CategoryIDs {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO application_categories (application_id, category_id) VALUES ($1, $2)`,
			app.ID, categoryID,
		)
		if err != nil {
			return MapError(err)
		}
	}

	log.Info("provider application created",
		slog.String("application_id", app.ID.String()),
		slog.String("applicant_id", app.ApplicantID.String()))
	return nil
}

// GetByID implements store.ApplicationStore.GetByID
func (s *PostgresApplicationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProviderApplication, error) {
	return s.getOne(ctx, applicationSelect+` WHERE a.id = $1`, id)
}

// GetForUpdate implements store.ApplicationStore.GetForUpdate
func (s *PostgresApplicationStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.ProviderApplication, error) {
	return s.getOne(ctx, applicationSelect+` WHERE a.id = $1 FOR UPDATE OF a`, id)
}

func (s *PostgresApplicationStore) getOne(ctx context.Context, query string, id uuid.UUID) (*domain.ProviderApplication, error) {
	app, err := scanApplication(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrApplicationNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get application",
			slog.String("error", err.Error()),
			slog.String("application_id", id.String()))
		return nil, MapError(err)
	}
	return app, nil
}

func scanApplication(row rowScanner) (*domain.ProviderApplication, error) {
	var (
		a          domain.ProviderApplication
		status     string
		reviewerID uuid.NullUUID
		reviewedAt sql.NullTime
		categories string
	)
	if err := row.Scan(
		&a.ID,
		&a.ApplicantID,
		&a.TaxID,
		&a.Description,
		&status,
		&reviewerID,
		&reviewedAt,
		&a.CreatedAt,
		&categories,
	); err != nil {
		return nil, err
	}
	a.Status = domain.ApplicationStatus(status)
	if reviewerID.Valid {
		id := reviewerID.UUID
		a.ReviewerID = &id
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		a.ReviewedAt = &t
	}
	var err error
	if a.CategoryIDs, err = parseIDList(categories); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateReview implements store.ApplicationStore.UpdateReview
func (s *PostgresApplicationStore) UpdateReview(ctx context.Context, app *domain.ProviderApplication) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE provider_applications
		SET status = $1, reviewer_id = $2, reviewed_at = $3
		WHERE id = $4`,
		app.Status, app.ReviewerID, app.ReviewedAt, app.ID,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update application review",
			slog.String("error", err.Error()),
			slog.String("application_id", app.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrApplicationNotFound)
}

// List implements store.ApplicationStore.List
func (s *PostgresApplicationStore) List(
	ctx context.Context,
	filter store.ApplicationFilter,
) ([]*domain.ProviderApplication, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		where []string
		args  []any
	)
	if filter.ApplicantID != nil {
		args = append(args, *filter.ApplicantID)
		where = append(where, fmt.Sprintf("a.applicant_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("a.status = $%d", len(args)))
	}
	query := applicationSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit, offset := normalizePage(filter.Limit, filter.Offset)
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY a.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list applications", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	apps := []*domain.ProviderApplication{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return apps, nil
}
