package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vardast/ops-dashboard/internal/api/http/handlers"
	"github.com/vardast/ops-dashboard/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health            *handlers.HealthHandler
	Metrics           *handlers.MetricsHandler
	Auth              *handlers.AuthHandler
	Dashboard         *handlers.DashboardHandler
	Records           *handlers.RecordsHandler
	Modal             *handlers.ModalHandler
	SessionMiddleware *auth.SessionMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.SessionMiddleware.Handle, cfg.Auth.Logout)

	api := app.Group("/api", cfg.SessionMiddleware.Handle)
	api.Get("/status", cfg.Records.Status)
	api.Get("/dashboard", cfg.Dashboard.Dashboard)
	api.Get("/churn", cfg.Dashboard.Churn)
	api.Post("/churn/:username/explain", cfg.Dashboard.ExplainChurn)

	records := api.Group("/records")
	records.Post("/reload", cfg.Records.Reload)
	records.Get("/:kind", cfg.Records.List)
	records.Get("/:kind/export", cfg.Records.Export)

	profile := api.Group("/profile")
	profile.Get("/suggest", cfg.Records.Suggest)
	profile.Get("/:username", cfg.Records.Profile)

	modal := api.Group("/modal")
	modal.Get("", cfg.Modal.Get)
	modal.Post("/open", cfg.Modal.Open)
	modal.Post("/fields", cfg.Modal.SetFields)
	modal.Post("/submit", cfg.Modal.Submit)
	modal.Post("/cancel", cfg.Modal.Cancel)
	modal.Post("/ai/classify", cfg.Modal.Classify)
	modal.Post("/ai/refund", cfg.Modal.Refund)
	modal.Post("/ai/title", cfg.Modal.Title)
}
