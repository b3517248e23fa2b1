package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/job-portal/internal/api/http"
	"github.com/spec-kit/job-portal/internal/api/http/handlers"
	"github.com/spec-kit/job-portal/internal/auth"
	"github.com/spec-kit/job-portal/internal/config"
	"github.com/spec-kit/job-portal/internal/events"
	"github.com/spec-kit/job-portal/internal/observability"
	"github.com/spec-kit/job-portal/internal/persistence"
	"github.com/spec-kit/job-portal/internal/repository"
	"github.com/spec-kit/job-portal/internal/service"
	"github.com/spec-kit/job-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Auth.Validate(); err != nil {
		log.Fatalf("invalid auth config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		jobRepo     repository.JobRepository
		appRepo     repository.ApplicationRepository
		historyRepo repository.JobHistoryRepository
		directory   repository.HiringManagerDirectory
	)
	if pg.Enabled() {
		pool := pg.PoolHandle()
		jobRepo = repository.NewJobRepository(pool)
		appRepo = repository.NewApplicationRepository(pool)
		historyRepo = repository.NewJobHistoryRepository(pool)
	} else {
		logger.Warn("POSTGRES_DSN not set, using in-memory store")
		store := repository.NewMemoryStore()
		jobRepo = store.Jobs()
		appRepo = store.Applications()
		historyRepo = store.History()
	}
	if redis.Enabled() {
		directory = repository.NewRedisHiringManagerDirectory(redis.Client, cfg.Redis.KeyPrefix)
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, historyRepo, metrics, logger))

	lifecycle := service.NewLifecycleService(service.LifecycleDependencies{
		JobRepo:          jobRepo,
		Dispatcher:       dispatcher,
		Logger:           logger,
		SweepMaxAttempts: cfg.Lifecycle.SweepMaxAttempts,
		SweepBatchSize:   cfg.Lifecycle.SweepBatchSize,
	})
	admission := service.NewAdmissionService(service.AdmissionDependencies{
		JobRepo:    jobRepo,
		Directory:  directory,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	applications := service.NewApplicationService(service.ApplicationDependencies{
		Lifecycle:       lifecycle,
		ApplicationRepo: appRepo,
		Dispatcher:      dispatcher,
		Metrics:         metrics,
		Logger:          logger,
	})
	moderation := service.NewModerationService(lifecycle, historyRepo)

	go worker.RunPeriodicSweep(ctx, lifecycle, cfg.Lifecycle.SweepInterval(), logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Jobs:           handlers.NewJobsHandler(admission, lifecycle, applications),
		Admin:          handlers.NewAdminHandler(moderation),
		AuthMiddleware: auth.NewAuthMiddleware(auth.NewTokenManager(cfg.Auth)),
		ApplyLimiter:   httptransport.NewRateLimiter(cfg.RateLimit.ApplyPerSecond, cfg.RateLimit.ApplyBurst),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
