package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/phrazzld/servicehub-api/internal/store"
)

// LockTimeout returns a transaction setup step that bounds how long any
// statement in the transaction waits for a row lock. A lost wait fails with
// SQLSTATE 55P03, which MapError turns into store.ErrConflict.
// A non-positive d leaves the server default in place.
func LockTimeout(d time.Duration) store.TxFn {
	return func(ctx context.Context, tx *sql.Tx) error {
		if d <= 0 {
			return nil
		}
		// SET does not accept bind parameters.
		_, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", d.Milliseconds()))
		if err != nil {
			return fmt.Errorf("failed to set lock timeout: %w", MapError(err))
		}
		return nil
	}
}
