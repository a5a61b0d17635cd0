package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/phrazzld/servicehub-api/internal/config"
	"github.com/phrazzld/servicehub-api/internal/platform/logger"
	"github.com/phrazzld/servicehub-api/internal/store"
)

// Transactor runs service operations in database transactions. An attempt
// that fails with store.ErrConflict (lock timeout, deadlock, serialization
// failure) is rolled back and retried with exponential backoff; any other
// error ends the operation.
type Transactor struct {
	db     *sql.DB
	setup  []store.TxFn
	retry  config.LifecycleConfig
	logger *slog.Logger
}

// NewTransactor creates a Transactor. Setup steps run at the start of every
// transaction.
func NewTransactor(db *sql.DB, retry config.LifecycleConfig, logger *slog.Logger, setup ...store.TxFn) *Transactor {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if retry.RetryAttempts == 0 {
		retry.RetryAttempts = 1
	}
	return &Transactor{
		db:     db,
		setup:  setup,
		retry:  retry,
		logger: logger.With(slog.String("component", "transactor")),
	}
}

// Run executes fn in a transaction, retrying on lock conflicts. fn may run
// more than once, so it must not leak state from a failed attempt.
func (t *Transactor) Run(ctx context.Context, operation string, fn store.TxFn) error {
	log := logger.FromContextOrDefault(ctx, t.logger)
	attempt := 0

	_, err := backoff.Retry(ctx,
		func() (struct{}, error) {
			attempt++
			err := store.RunInTransaction(ctx, t.db, fn, t.setup...)
			if err != nil && !store.IsConflictError(err) {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		},
		backoff.WithBackOff(t.backOff()),
		backoff.WithMaxTries(t.retry.RetryAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Debug("retrying after lock conflict",
				slog.String("operation", operation),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", next))
		}),
	)
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Err
	}
	if err != nil && store.IsConflictError(err) {
		log.Warn("lock conflict retries exhausted",
			slog.String("operation", operation),
			slog.Int("attempts", attempt))
	}
	return err
}

func (t *Transactor) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if t.retry.RetryInitial > 0 {
		b.InitialInterval = t.retry.RetryInitial
	}
	if t.retry.RetryMaxBackoff > 0 {
		b.MaxInterval = t.retry.RetryMaxBackoff
	}
	return b
}
