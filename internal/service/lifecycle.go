package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/domain"
	"github.com/phrazzld/servicehub-api/internal/events"
	"github.com/phrazzld/servicehub-api/internal/platform/logger"
	"github.com/phrazzld/servicehub-api/internal/store"
)

// RequestLifecycle drives service requests through
// PENDING, IN_PROGRESS, COMPLETED and CANCELLED. Every transition locks the
// request row for the duration of its transaction.
type RequestLifecycle struct {
	requests store.RequestStore
	tx       *Transactor
	emitter  events.EventEmitter
	logger   *slog.Logger
	now      func() time.Time
}

// NewRequestLifecycle creates a RequestLifecycle service.
func NewRequestLifecycle(
	requests store.RequestStore,
	tx *Transactor,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*RequestLifecycle, error) {
	if requests == nil {
		return nil, domain.NewValidationError("requests", "cannot be nil", domain.ErrValidation)
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
	return &RequestLifecycle{
		requests: requests,
		tx:       tx,
		emitter:  emitter,
		logger:   logger.With(slog.String("component", "request_lifecycle")),
		now:      time.Now,
	}, nil
}

// transition loads the request under a row lock, applies fn and writes the
// result back when fn reports a change. The returned request reflects the
// committed state.
func (s *RequestLifecycle) transition(
	ctx context.Context,
	operation string,
	requestID uuid.UUID,
	fn func(r *domain.ServiceRequest, now time.Time) (bool, error),
) (*domain.ServiceRequest, bool, error) {
	var (
		request *domain.ServiceRequest
		changed bool
	)
	err := s.tx.Run(ctx, operation, func(ctx context.Context, tx *sql.Tx) error {
		requests := s.requests.WithTx(tx)

		r, err := requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		changed, err = fn(r, s.now())
		if err != nil {
			return err
		}
		if changed {
			if err := requests.Update(ctx, r); err != nil {
				return err
			}
		}
		request = r
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if changed {
		logger.FromContextOrDefault(ctx, s.logger).Info("service request transitioned",
			slog.String("operation", operation),
			slog.String("request_id", request.ID.String()),
			slog.String("status", string(request.Status)))
	}
	return request, changed, nil
}

func changedBy(fn func() error) (bool, error) {
	if err := fn(); err != nil {
		return false, err
	}
	return true, nil
}

// Create posts a new pending request on behalf of the actor.
func (s *RequestLifecycle) Create(
	ctx context.Context,
	actor domain.Actor,
	categoryID uuid.UUID,
	title, description, address string,
) (*domain.ServiceRequest, error) {
	request, err := domain.NewServiceRequest(actor.ID, categoryID, title, description, address)
	if err != nil {
		return nil, invalidInput("create_request", "invalid request", err)
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, NewServiceError("create_request", "failed to save request", err)
	}

	publish(ctx, s.emitter, s.logger, events.RequestCreated, request)
	return request, nil
}

// Accept assigns the request to the actor's provider. Accepting a request
// the provider already holds succeeds without changing it. When every
// attempt loses the row-lock race the request is reported as already
// assigned.
func (s *RequestLifecycle) Accept(
	ctx context.Context,
	requestID uuid.UUID,
	actor domain.Actor,
) (*domain.ServiceRequest, error) {
	request, changed, err := s.transition(ctx, "accept_request", requestID,
		func(r *domain.ServiceRequest, now time.Time) (bool, error) {
			return r.Accept(actor, now)
		})
	if err != nil {
		if store.IsConflictError(err) {
			err = domain.ErrAlreadyAssigned
		}
		return nil, NewServiceError("accept_request", "failed to accept request", err)
	}
	if changed {
		publish(ctx, s.emitter, s.logger, events.RequestAccepted, request)
	}
	return request, nil
}

// Reject releases the request from the actor's provider and reopens it.
func (s *RequestLifecycle) Reject(
	ctx context.Context,
	requestID uuid.UUID,
	actor domain.Actor,
) (*domain.ServiceRequest, error) {
	request, _, err := s.transition(ctx, "reject_request", requestID,
		func(r *domain.ServiceRequest, now time.Time) (bool, error) {
			return changedBy(func() error { return r.Unassign(actor, now) })
		})
	if err != nil {
		return nil, NewServiceError("reject_request", "failed to reject request", err)
	}
	publish(ctx, s.emitter, s.logger, events.RequestRejected, request)
	return request, nil
}

// Complete marks the request completed.
func (s *RequestLifecycle) Complete(
	ctx context.Context,
	requestID uuid.UUID,
	actor domain.Actor,
) (*domain.ServiceRequest, error) {
	var wasCompleted bool
	request, _, err := s.transition(ctx, "complete_request", requestID,
		func(r *domain.ServiceRequest, now time.Time) (bool, error) {
			wasCompleted = r.Status == domain.RequestStatusCompleted
			return changedBy(func() error { return r.Complete(actor, now) })
		})
	if err != nil {
		return nil, NewServiceError("complete_request", "failed to complete request", err)
	}
	if !wasCompleted {
		publish(ctx, s.emitter, s.logger, events.RequestCompleted, request)
	}
	return request, nil
}

// Cancel withdraws the request.
func (s *RequestLifecycle) Cancel(
	ctx context.Context,
	requestID uuid.UUID,
	actor domain.Actor,
) (*domain.ServiceRequest, error) {
	request, _, err := s.transition(ctx, "cancel_request", requestID,
		func(r *domain.ServiceRequest, now time.Time) (bool, error) {
			return changedBy(func() error { return r.Cancel(actor, now) })
		})
	if err != nil {
		return nil, NewServiceError("cancel_request", "failed to cancel request", err)
	}
	publish(ctx, s.emitter, s.logger, events.RequestCancelled, request)
	return request, nil
}

// SetStatus forces the request into status. Staff only. The provider and
// completion date follow the status derivation rules.
func (s *RequestLifecycle) SetStatus(
	ctx context.Context,
	requestID uuid.UUID,
	actor domain.Actor,
	status domain.RequestStatus,
) (*domain.ServiceRequest, error) {
	if !actor.IsStaff {
		return nil, NewServiceError("set_request_status", "actor is not staff", domain.ErrForbidden)
	}
	request, _, err := s.transition(ctx, "set_request_status", requestID,
		func(r *domain.ServiceRequest, now time.Time) (bool, error) {
			return changedBy(func() error { return r.SetStatus(status, now) })
		})
	if err != nil {
		return nil, NewServiceError("set_request_status", "failed to set request status", err)
	}
	publish(ctx, s.emitter, s.logger, events.RequestStatusChanged, request)
	return request, nil
}

// UpdateDetails edits the title, description and address of a pending request.
func (s *RequestLifecycle) UpdateDetails(
	ctx context.Context,
	requestID uuid.UUID,
	actor domain.Actor,
	title, description, address string,
) (*domain.ServiceRequest, error) {
	request, _, err := s.transition(ctx, "update_request", requestID,
		func(r *domain.ServiceRequest, now time.Time) (bool, error) {
			return changedBy(func() error { return r.UpdateDetails(actor, title, description, address, now) })
		})
	if err != nil {
		return nil, NewServiceError("update_request", "failed to update request", err)
	}
	return request, nil
}

// Get returns a request the actor may see. Invisible requests are reported
// as not found.
func (s *RequestLifecycle) Get(
	ctx context.Context,
	requestID uuid.UUID,
	actor domain.Actor,
) (*domain.ServiceRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, NewServiceError("get_request", "failed to load request", err)
	}
	if !request.VisibleTo(actor) {
		return nil, NewServiceError("get_request", "request not visible", store.ErrRequestNotFound)
	}
	return request, nil
}

// ListVisible lists the requests the actor may see, newest first.
func (s *RequestLifecycle) ListVisible(
	ctx context.Context,
	actor domain.Actor,
	filter store.RequestFilter,
) ([]*domain.ServiceRequest, error) {
	requests, err := s.requests.ListVisible(ctx, store.ScopeFor(actor), filter)
	if err != nil {
		return nil, NewServiceError("list_requests", "failed to list requests", err)
	}
	return requests, nil
}
