package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/job-portal/internal/config"
	"github.com/spec-kit/job-portal/internal/events"
	"github.com/spec-kit/job-portal/internal/observability"
	"github.com/spec-kit/job-portal/internal/persistence"
	"github.com/spec-kit/job-portal/internal/repository"
	"github.com/spec-kit/job-portal/internal/service"
	"github.com/spec-kit/job-portal/internal/worker"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Archive pending or live jobs whose deadline has passed",
	Long: `Runs the archival sweep against the database. Reads already archive expired
jobs lazily; this command archives the ones nobody has read. With --interval it
keeps running until interrupted.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		interval, _ := cmd.Flags().GetDuration("interval")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		logger, err := observability.NewLogger(cfg.Logger, cfg.App)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return err
		}
		defer pg.Close()
		if !pg.Enabled() {
			return fmt.Errorf("POSTGRES_DSN is required")
		}

		dispatcher := events.NewInMemoryDispatcher()
		worker.StartAuditWorker(service.NewAuditService(dispatcher, repository.NewJobHistoryRepository(pg.PoolHandle()), nil, logger))
		lifecycle := service.NewLifecycleService(service.LifecycleDependencies{
			JobRepo:          repository.NewJobRepository(pg.PoolHandle()),
			Dispatcher:       dispatcher,
			Logger:           logger,
			SweepMaxAttempts: cfg.Lifecycle.SweepMaxAttempts,
			SweepBatchSize:   cfg.Lifecycle.SweepBatchSize,
		})

		archived, err := worker.SweepOnce(ctx, lifecycle, timeout, logger)
		cmd.Printf("archived %d job(s)\n", archived)
		if err != nil {
			return err
		}
		worker.RunPeriodicSweep(ctx, lifecycle, interval, logger)
		return nil
	},
}

func init() {
	sweepCmd.Flags().Duration("interval", 0, "repeat the sweep at this interval until interrupted")
	sweepCmd.Flags().Duration("timeout", time.Minute, "upper bound for a single sweep")
	rootCmd.AddCommand(sweepCmd)
}
