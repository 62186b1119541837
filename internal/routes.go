// Package internal contains core application functionality
package internal

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	apphttp "farelytics/internal/http"
	"farelytics/internal/http/middleware"
	"farelytics/internal/timeframe"
)

// MountRoutes wires all HTTP endpoints onto the Fiber app. The metrics API
// sits behind the dashboard auth gate; health stays open for probes.
func MountRoutes(app *fiber.App, db *gorm.DB, logger *slog.Logger, topLimit int) {
	resolver := timeframe.NewResolver()

	health := apphttp.NewHealthHandler(db)
	app.Get("/health", health.GetHealth)

	api := app.Group("/api/v1", middleware.DashboardAuth(db, logger))

	metricsHandler := apphttp.NewMetricsHandler(db, logger, resolver, topLimit)
	api.Get("/metrics", metricsHandler.GetMetrics)

	sessionsHandler := apphttp.NewSessionsHandler(db, logger, resolver)
	api.Get("/sessions", sessionsHandler.ListSessions)
}
