package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/job-portal/internal/api/http/handlers"
	"github.com/spec-kit/job-portal/internal/auth"
	"github.com/spec-kit/job-portal/internal/domain"
	"github.com/spec-kit/job-portal/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Jobs           *handlers.JobsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	ApplyLimiter   *RateLimiter
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Admin routes are registered before the
// parameterised job routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	jobs := app.Group("/job", cfg.AuthMiddleware.Handle)

	admin := jobs.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Get("/all", cfg.Admin.ListAll)
	admin.Put("/:id/status", cfg.Admin.SetStatus)
	admin.Get("/:id/history", cfg.Admin.History)

	jobs.Post("", auth.RequireRole(domain.RoleHiringManager), cfg.Jobs.Create)
	jobs.Get("/:id", cfg.Jobs.Get)
	jobs.Get("/:id/applications", auth.RequireRole(domain.RoleHiringManager, domain.RoleAdmin), cfg.Jobs.ListApplications)
	jobs.Post("/:id/apply", auth.RequireRole(domain.RoleStudent), cfg.ApplyLimiter.Handle, cfg.Jobs.Apply)
}
