package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/workspace-booking/internal/config"
	"github.com/example/workspace-booking/internal/persistence/postgres"
	"github.com/example/workspace-booking/internal/persistence/sqlite"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			switch cfg.Storage {
			case config.StorageSQLite:
				s, err := sqlite.Open(cfg.SQLiteDSN)
				if err != nil {
					return err
				}
				defer s.Close()

				if !statusOnly {
					if err := s.Migrate(ctx, logger); err != nil {
						return err
					}
				}
				status, err := s.MigrationStatus(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "schema version %s (%d applied, %d pending)\n", status.CurrentVersion, len(status.Applied), len(status.Pending))
				for _, m := range status.Pending {
					fmt.Fprintf(out, "  pending %s %s\n", m.Version, m.Description)
				}
				return nil
			case config.StoragePostgres:
				if statusOnly {
					return fmt.Errorf("--status is only supported for sqlite")
				}
				s, err := postgres.Open(ctx, cfg.PostgresURL)
				if err != nil {
					return err
				}
				defer s.Close()

				if err := s.Migrate(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, "postgres schema is up to date")
				return nil
			}
			fmt.Fprintln(out, "memory storage has no schema")
			return nil
		},
	}

	cmd.Flags().BoolVar(&statusOnly, "status", false, "report the schema state without applying migrations")
	return cmd
}
