package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/job-portal/internal/config"
	"github.com/spec-kit/job-portal/internal/observability"
	"github.com/spec-kit/job-portal/internal/persistence"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply SQL migrations to the configured database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = cfg.Postgres.MigrationsDir
		}
		logger, err := observability.NewLogger(cfg.Logger, cfg.App)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		pg, err := persistence.NewPostgres(cmd.Context(), cfg.Postgres, logger)
		if err != nil {
			return err
		}
		defer pg.Close()
		if !pg.Enabled() {
			return fmt.Errorf("POSTGRES_DSN is required")
		}
		if err := persistence.RunMigrations(cmd.Context(), pg.PoolHandle(), dir, logger); err != nil {
			return err
		}
		cmd.Println("migrations applied")
		return nil
	},
}

func init() {
	migrateCmd.Flags().String("dir", "", "migrations directory (default POSTGRES_MIGRATIONS_DIR)")
	rootCmd.AddCommand(migrateCmd)
}
