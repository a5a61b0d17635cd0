package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/servicehub-api/internal/config"
	"github.com/phrazzld/servicehub-api/internal/platform/logger"
	"github.com/phrazzld/servicehub-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

// cli carries state shared by every subcommand once the root pre-run has
// loaded configuration.
type cli struct {
	logLevel string
	cfg      *config.Config
	logger   *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "servicehub",
		Short:         "Service marketplace API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
	}
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "",
		"override server.log_level (debug, info, warn, error)")

	root.AddCommand(newServeCmd(c), newMigrateCmd(c), newSeedCmd(c))
	return root
}

func (c *cli) init() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if c.logLevel != "" {
		if _, ok := logger.ParseLevel(c.logLevel); !ok {
			return fmt.Errorf("invalid log level %q", c.logLevel)
		}
		cfg.Server.LogLevel = c.logLevel
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Debug("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("database_url_present", cfg.Database.URL != ""))

	c.cfg = cfg
	c.logger = log
	return nil
}

// openDB connects to the configured database. The caller closes it.
func (c *cli) openDB(ctx context.Context) (*sql.DB, error) {
	db, err := postgres.Open(ctx, c.cfg.Database, c.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func (c *cli) closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		c.logger.Error("error closing database connection", slog.String("error", err.Error()))
	}
}
