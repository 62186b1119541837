package metrics

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"farelytics/internal/pkg/async"
)

// Response is the full metrics payload the dashboard renders.
type Response struct {
	ViewPricesClicks Series          `json:"viewPricesClicks"`
	LeadsGenerated   Series          `json:"leadsGenerated"`
	TotalViews       Series          `json:"totalViews"`
	PopularSearches  []RouteCount    `json:"popularSearches"`
	TopProviders     []ProviderCount `json:"topProviders"`
}

// Fetch runs all five aggregation pipelines for one request scope on the
// worker pool and assembles the response. Any pipeline error aborts the
// whole fetch; no partial results are returned.
func Fetch(ctx context.Context, db *gorm.DB, logger *slog.Logger, p QueryParams) (*Response, error) {
	tasks := []async.Task{
		{
			Name: "totalViews",
			Execute: func() (interface{}, error) {
				return TotalViews(db, p)
			},
		},
		{
			Name: "viewPricesClicks",
			Execute: func() (interface{}, error) {
				return ViewPricesClicks(db, p)
			},
		},
		{
			Name: "leadsGenerated",
			Execute: func() (interface{}, error) {
				return LeadsGenerated(db, p)
			},
		},
		{
			Name: "popularSearches",
			Execute: func() (interface{}, error) {
				return PopularSearches(db, p)
			},
		},
		{
			Name: "topProviders",
			Execute: func() (interface{}, error) {
				return TopProviders(db, p)
			},
		},
	}

	pool := async.NewPool(len(tasks))
	results := pool.Execute(ctx, tasks)

	// Check for errors first
	for name, result := range results {
		if result.Err != nil {
			logger.Error("Metrics pipeline failed",
				slog.String("pipeline", name),
				slog.Any("error", result.Err))
			return nil, fmt.Errorf("error fetching %s: %w", name, result.Err)
		}
	}
	if len(results) != len(tasks) {
		return nil, fmt.Errorf("metrics fetch cancelled: %w", ctx.Err())
	}

	return &Response{
		ViewPricesClicks: results["viewPricesClicks"].Data.(Series),
		LeadsGenerated:   results["leadsGenerated"].Data.(Series),
		TotalViews:       results["totalViews"].Data.(Series),
		PopularSearches:  results["popularSearches"].Data.([]RouteCount),
		TopProviders:     results["topProviders"].Data.([]ProviderCount),
	}, nil
}
