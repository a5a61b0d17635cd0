package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/config"
	"github.com/phrazzld/servicehub-api/internal/domain"
	"github.com/phrazzld/servicehub-api/internal/events"
	"github.com/phrazzld/servicehub-api/internal/service"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const retryAttempts = 3

func newTransactor(t *testing.T) (*service.Transactor, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	cfg := config.LifecycleConfig{
		RetryAttempts:   retryAttempts,
		RetryInitial:    time.Millisecond,
		RetryMaxBackoff: 2 * time.Millisecond,
	}
	return service.NewTransactor(db, cfg, testLogger), mock
}

func expectCommit(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

func expectRollback(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectRollback()
}

// recorder captures the types of emitted events.
type recorder struct {
	mu    sync.Mutex
	types []string
}

func (r *recorder) HandleEvent(_ context.Context, event *events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, event.Type)
	return nil
}

func (r *recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.types...)
}

func newEmitter() (*events.InMemoryEventEmitter, *recorder) {
	emitter := events.NewInMemoryEventEmitter(testLogger)
	rec := &recorder{}
	emitter.RegisterHandler(rec)
	return emitter, rec
}

var (
	plumbing   = uuid.New()
	electrical = uuid.New()
)

func staffActor() domain.Actor {
	return domain.Actor{ID: uuid.New(), IsStaff: true}
}

func clientActor() domain.Actor {
	return domain.Actor{ID: uuid.New()}
}

func providerActor(t *testing.T, categories ...uuid.UUID) domain.Actor {
	t.Helper()
	owner := uuid.New()
	p, err := domain.NewProvider(owner, categories, owner.String()[:14], "")
	require.NoError(t, err)
	return domain.Actor{ID: owner, Provider: p}
}

func pendingRequest(t *testing.T, client uuid.UUID) *domain.ServiceRequest {
	t.Helper()
	r, err := domain.NewServiceRequest(client, plumbing, "Fix sink", "", "Rua A, 1")
	require.NoError(t, err)
	return r
}

func assignedRequest(t *testing.T, client uuid.UUID, p domain.Actor) *domain.ServiceRequest {
	t.Helper()
	r := pendingRequest(t, client)
	_, err := r.Accept(p, time.Now())
	require.NoError(t, err)
	return r
}

func completedRequest(t *testing.T, client uuid.UUID, p domain.Actor) *domain.ServiceRequest {
	t.Helper()
	r := assignedRequest(t, client, p)
	require.NoError(t, r.Complete(p, time.Now()))
	return r
}
