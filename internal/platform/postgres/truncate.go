package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/phrazzld/servicehub-api/internal/store"
)

// appTables lists every table owned by the migrations, children first.
var appTables = []string{
	"ratings",
	"service_requests",
	"application_categories",
	"provider_applications",
	"provider_categories",
	"providers",
	"service_categories",
	"users",
}

// TruncateAll removes every row from the application tables. The goose
// version table is left alone.
func TruncateAll(ctx context.Context, db store.DBTX) error {
	if _, err := db.ExecContext(ctx, "TRUNCATE "+strings.Join(appTables, ", ")+" CASCADE"); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", MapError(err))
	}
	return nil
}
