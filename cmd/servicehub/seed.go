package main

import (
	"context"
	"fmt"

	"github.com/phrazzld/servicehub-api/internal/platform/postgres"
	"github.com/phrazzld/servicehub-api/internal/seed"
	"github.com/spf13/cobra"
)

func newSeedCmd(c *cli) *cobra.Command {
	opts := seed.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo categories, users, providers and requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer c.closeDB(db)

			app, err := newApplication(c.cfg, c.logger, db)
			if err != nil {
				return err
			}
			seeder, err := seed.New(seed.Deps{
				Accounts:   app.users,
				Users:      app.userStore,
				Categories: app.categoryStore,
				Onboarding: app.onboarding,
				Lifecycle:  app.lifecycle,
				Clear: func(ctx context.Context) error {
					return postgres.TruncateAll(ctx, db)
				},
				Logger: c.logger,
			})
			if err != nil {
				return err
			}

			summary, err := seeder.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"seeded %d categories, %d users, %d providers, %d requests\nadmin login: %s\n",
				summary.Categories, summary.Users, summary.Providers, summary.Requests, opts.AdminEmail)
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.Clear, "clear", false, "delete all existing data first")
	f.IntVar(&opts.Users, "users", opts.Users, "number of client users to create")
	f.IntVar(&opts.Providers, "providers", opts.Providers, "number of approved providers to create")
	f.IntVar(&opts.RequestsPerCategory, "requests", opts.RequestsPerCategory, "pending requests per category")
	f.StringVar(&opts.AdminEmail, "admin-email", opts.AdminEmail, "email of the staff account")
	f.StringVar(&opts.AdminPassword, "admin-password", opts.AdminPassword, "password of the staff account")
	f.Uint64Var(&opts.RandomSeed, "random-seed", 0, "seed for reproducible data (0 = random)")
	return cmd
}
