// Package http contains the Fiber handlers for the metrics API.
package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"farelytics/internal/metrics"
	"farelytics/internal/timeframe"
)

const errFailedToFetchMetrics = "Failed to fetch metrics"

// MetricsHandler serves the aggregated dashboard metrics.
type MetricsHandler struct {
	db       *gorm.DB
	logger   *slog.Logger
	resolver *timeframe.Resolver
	topLimit int
}

// NewMetricsHandler creates a metrics handler. Pass a pinned-clock resolver
// in tests; a nil resolver uses the system clock.
func NewMetricsHandler(db *gorm.DB, logger *slog.Logger, resolver *timeframe.Resolver, topLimit int) *MetricsHandler {
	if resolver == nil {
		resolver = timeframe.NewResolver()
	}
	if topLimit <= 0 {
		topLimit = metrics.DefaultTopLimit
	}
	return &MetricsHandler{db: db, logger: logger, resolver: resolver, topLimit: topLimit}
}

// GetMetrics handles GET /api/v1/metrics.
//
// Query parameters: timeRange (today|yesterday|week|lastWeek|month|lastMonth|
// custom, default today), startDate/endDate (YYYY-MM-DD, custom only),
// provider (default "all"). Any store fault aborts the request with a generic
// 500; the underlying error is logged, never exposed.
func (h *MetricsHandler) GetMetrics(c *fiber.Ctx) error {
	timeRange := c.Query("timeRange", string(timeframe.RangeLabelToday))
	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	provider := c.Query("provider", metrics.ProviderAll)

	window := h.resolver.Resolve(timeframe.RangeLabel(timeRange), startDate, endDate)

	params := metrics.NewQueryParams(window, provider)
	params.Limit = h.topLimit

	h.logger.Debug("Fetching metrics",
		slog.String("timeRange", timeRange),
		slog.String("provider", provider),
		slog.Bool("unbounded", window.Unbounded))

	response, err := metrics.Fetch(c.UserContext(), h.db, h.logger, params)
	if err != nil {
		h.logger.Error("Error fetching metrics", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": errFailedToFetchMetrics,
		})
	}

	return c.JSON(response)
}
