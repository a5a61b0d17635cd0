package testdb

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/servicehub-api/internal/config"
	"github.com/phrazzld/servicehub-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds setup work against the test database.
const TestTimeout = 30 * time.Second

// urlEnvVars are checked in order by URL.
var urlEnvVars = []string{"DATABASE_URL", "SERVICEHUB_TEST_DB_URL"}

// ciEnvVars mark a continuous integration run.
var ciEnvVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "BUILDKITE"}

// URL returns the first configured test database URL, or "".
func URL() string {
	for _, name := range urlEnvVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// IsCI reports whether tests run under a CI system.
func IsCI() bool {
	for _, name := range ciEnvVars {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// MaskURL hides the password of a database URL for log output.
func MaskURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}
	if parsed.User != nil {
		if _, ok := parsed.User.Password(); ok {
			parsed.User = url.UserPassword(parsed.User.Username(), "xxxxx")
		}
	}
	return parsed.String()
}

// Config returns the pool settings used for test connections.
func Config(dbURL string) config.DatabaseConfig {
	return config.DatabaseConfig{
		URL:             dbURL,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Minute,
		LockTimeout:     2 * time.Second,
	}
}

// Open connects to the test database, applies migrations and empties every
// table. The connection is closed when the test ends.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	dbURL := URL()
	if dbURL == "" {
		if IsCI() {
			t.Fatalf("no test database configured; set one of %v", urlEnvVars)
		}
		t.Skip("DATABASE_URL not set - skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := postgres.Open(ctx, Config(dbURL), logger)
	require.NoError(t, err, "failed to connect to %s", MaskURL(dbURL))
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	require.NoError(t, postgres.Migrate(ctx, db, "up", logger), "failed to apply migrations")
	Reset(t, db)
	return db
}

// Reset removes all rows from the application tables.
func Reset(t *testing.T, db *sql.DB) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, postgres.TruncateAll(ctx, db))
}
