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

// PostgresRequestStore implements store.RequestStore.
type PostgresRequestStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRequestStore creates a request store. If logger is nil,
// slog.Default() is used.
func NewPostgresRequestStore(db store.DBTX, logger *slog.Logger) *PostgresRequestStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRequestStore{
		db:     db,
		logger: logger.With(slog.String("component", "request_store")),
	}
}

var _ store.RequestStore = (*PostgresRequestStore)(nil)

// WithTx implements store.RequestStore.WithTx
func (s *PostgresRequestStore) WithTx(tx *sql.Tx) store.RequestStore {
	return &PostgresRequestStore{db: tx, logger: s.logger}
}

const requestSelect = `
	SELECT r.id, r.client_id, r.category_id, r.title, r.description, r.address,
		r.provider_id, r.status, r.completion_date, r.requested_at, r.updated_at
	FROM service_requests r`

// visibleWhere admits a row when the scope is unrestricted ($1), the caller
// is the client ($2), or the caller's provider ($3) holds the request or
// offers the category of a pending one.
const visibleWhere = `
	WHERE ($1
		OR r.client_id = $2
		OR ($3::uuid IS NOT NULL AND (
			r.provider_id = $3
			OR (r.status = 'pending' AND EXISTS (
				SELECT 1 FROM provider_categories pc
				WHERE pc.provider_id = $3 AND pc.category_id = r.category_id)))))`

// Create implements store.RequestStore.Create
func (s *PostgresRequestStore) Create(ctx context.Context, request *domain.ServiceRequest) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := request.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO service_requests (id, client_id, category_id, title, description, address,
			provider_id, status, completion_date, requested_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		request.ID,
		request.ClientID,
		request.CategoryID,
		request.Title,
		request.Description,
		request.Address,
		request.ProviderID,
		request.Status,
		request.CompletionDate,
		request.RequestedAt,
		request.UpdatedAt,
	)
	if err != nil {
		log.Warn("failed to create service request",
			slog.String("error", err.Error()),
			slog.String("request_id", request.ID.String()))
		return MapError(err)
	}

	log.Info("service request created",
		slog.String("request_id", request.ID.String()),
		slog.String("category_id", request.CategoryID.String()))
	return nil
}

// GetByID implements store.RequestStore.GetByID
func (s *PostgresRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceRequest, error) {
	return s.getOne(ctx, requestSelect+` WHERE r.id = $1`, id)
}

// GetForUpdate implements store.RequestStore.GetForUpdate
func (s *PostgresRequestStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.ServiceRequest, error) {
	return s.getOne(ctx, requestSelect+` WHERE r.id = $1 FOR UPDATE`, id)
}

func (s *PostgresRequestStore) getOne(ctx context.Context, query string, id uuid.UUID) (*domain.ServiceRequest, error) {
	request, err := scanRequest(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRequestNotFound
		}
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrConflict) {
			logger.FromContextOrDefault(ctx, s.logger).Debug("lost row lock on service request",
				slog.String("request_id", id.String()))
		} else {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to get service request",
				slog.String("error", err.Error()),
				slog.String("request_id", id.String()))
		}
		return nil, mapped
	}
	return request, nil
}

func scanRequest(row rowScanner) (*domain.ServiceRequest, error) {
	var (
		r              domain.ServiceRequest
		providerID     uuid.NullUUID
		status         string
		completionDate sql.NullTime
	)
	if err := row.Scan(
		&r.ID,
		&r.ClientID,
		&r.CategoryID,
		&r.Title,
		&r.Description,
		&r.Address,
		&providerID,
		&status,
		&completionDate,
		&r.RequestedAt,
		&r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	r.Status = domain.RequestStatus(status)
	if providerID.Valid {
		id := providerID.UUID
		r.ProviderID = &id
	}
	if completionDate.Valid {
		t := completionDate.Time
		r.CompletionDate = &t
	}
	return &r, nil
}

// Update implements store.RequestStore.Update
// Status, provider and completion date are always written together.
func (s *PostgresRequestStore) Update(ctx context.Context, request *domain.ServiceRequest) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := request.Validate(); err != nil {
		log.Error("refusing to persist inconsistent service request",
			slog.String("error", err.Error()),
			slog.String("request_id", request.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE service_requests
		SET title = $1, description = $2, address = $3,
			provider_id = $4, status = $5, completion_date = $6, updated_at = $7
		WHERE id = $8`,
		request.Title,
		request.Description,
		request.Address,
		request.ProviderID,
		request.Status,
		request.CompletionDate,
		request.UpdatedAt,
		request.ID,
	)
	if err != nil {
		log.Error("failed to update service request",
			slog.String("error", err.Error()),
			slog.String("request_id", request.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrRequestNotFound)
}

// ListVisible implements store.RequestStore.ListVisible
func (s *PostgresRequestStore) ListVisible(
	ctx context.Context,
	scope store.RequestScope,
	filter store.RequestFilter,
) ([]*domain.ServiceRequest, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	args := []any{scope.All, scope.ClientID, scope.ProviderID}
	query := requestSelect + visibleWhere
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += fmt.Sprintf(" AND r.status = $%d", len(args))
	}
	limit, offset := normalizePage(filter.Limit, filter.Offset)
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY r.requested_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list service requests", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	requests := []*domain.ServiceRequest{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			log.Error("failed to scan service request row", slog.String("error", err.Error()))
			return nil, err
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}
