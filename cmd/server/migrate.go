package main

import (
	"context"
	"fmt"

	"github.com/Dhoini/course-marketplace/internal/repository/postgres"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending PostgreSQL migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			if cfg.Database.Driver != "postgres" {
				return fmt.Errorf("migrate requires DB_DRIVER=postgres, got %q", cfg.Database.Driver)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			pool, err := postgres.NewConnection(ctx, cfg.Database.GetDSN(), postgres.ConnectOptions{
				MaxConns:   cfg.Database.MaxConns,
				MaxRetries: 5,
			}, log)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := postgres.Migrate(ctx, pool, log)
			if err != nil {
				return err
			}

			log.Infow("Migrations complete", "applied", applied)
			return nil
		},
	}
}
