// Package metrics implements the dashboard's aggregation pipelines over the
// search-session log: three day-bucketed time series (total views, view-prices
// clicks, leads) and two top-N rankings (popular routes, top providers).
//
// All five pipelines are read-only and independent; they share one resolved
// window + provider filter and can run concurrently. Day bucketing uses the
// UTC calendar day of the relevant timestamp: the session's own creation time
// for views, the event time for clicks, the provider click time for leads.
package metrics

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"farelytics/internal/sessions"
)

// BucketCount is one day of a time series.
type BucketCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// Series is a day-bucketed time series with its grand total. Total is always
// the sum of Data counts, computed from the same rows the bucketing query
// returned.
type Series struct {
	Total int64         `json:"total"`
	Data  []BucketCount `json:"data"`
}

// RouteCount is one ranked search route, rendered as "From → To".
type RouteCount struct {
	Route string `json:"route"`
	Count int64  `json:"count"`
}

// ProviderCount is one ranked referral provider.
type ProviderCount struct {
	Provider string `json:"provider"`
	Count    int64  `json:"count"`
}

// newSeries sums the bucket rows into a Series. Data is never nil so the
// JSON shape stays stable for empty windows.
func newSeries(rows []BucketCount) Series {
	if rows == nil {
		rows = []BucketCount{}
	}
	var total int64
	for _, row := range rows {
		total += row.Count
	}
	return Series{Total: total, Data: rows}
}

// providerExists is the cross-level provider filter: a session qualifies when
// any of its events carries a click on the given provider. The placeholder
// consumes one provider arg.
func providerExists(sessionIDColumn string) string {
	return fmt.Sprintf(`EXISTS (
        SELECT 1 FROM provider_clicks pcf
        JOIN session_events sef ON sef.id = pcf.event_id
        WHERE sef.session_id = %s AND pcf.provider = ?
    )`, sessionIDColumn)
}

// scopeConditions renders the shared window + provider scope for a pipeline.
// tsColumn is the pipeline's relevant timestamp; sessionIDColumn anchors the
// provider filter to the enclosing session.
func scopeConditions(p QueryParams, tsColumn, sessionIDColumn string) (string, []any) {
	var conds []string
	var args []any

	if cond, condArgs := p.Window.Condition(tsColumn); cond != "" {
		conds = append(conds, cond)
		args = append(args, condArgs...)
	}
	if p.filtersProvider() {
		conds = append(conds, providerExists(sessionIDColumn))
		args = append(args, p.Provider)
	}

	if len(conds) == 0 {
		return "1=1", nil
	}
	return strings.Join(conds, " AND "), args
}

// TotalViews counts search sessions per day, bucketed by the session's own
// creation time.
func TotalViews(db *gorm.DB, p QueryParams) (Series, error) {
	scope, args := scopeConditions(p, "created_at", "search_sessions.id")

	query := fmt.Sprintf(`
    SELECT
        strftime('%%Y-%%m-%%d', created_at) AS date,
        COUNT(*) AS count
    FROM search_sessions
    WHERE %s
    GROUP BY date
    ORDER BY date ASC
    `, scope)

	var rows []BucketCount
	if err := db.Raw(query, args...).Scan(&rows).Error; err != nil {
		return Series{}, fmt.Errorf("error fetching total views: %w", err)
	}

	return newSeries(rows), nil
}

// ViewPricesClicks counts view-prices click events per day, bucketed by the
// event's timestamp.
func ViewPricesClicks(db *gorm.DB, p QueryParams) (Series, error) {
	scope, args := scopeConditions(p, "se.timestamp", "se.session_id")

	query := fmt.Sprintf(`
    SELECT
        strftime('%%Y-%%m-%%d', se.timestamp) AS date,
        COUNT(*) AS count
    FROM session_events se
    WHERE se.event_type = ? AND %s
    GROUP BY date
    ORDER BY date ASC
    `, scope)

	queryArgs := append([]any{sessions.EventTypeViewPricesClick}, args...)

	var rows []BucketCount
	if err := db.Raw(query, queryArgs...).Scan(&rows).Error; err != nil {
		return Series{}, fmt.Errorf("error fetching view prices clicks: %w", err)
	}

	return newSeries(rows), nil
}

// LeadsGenerated counts provider referral clicks per day, bucketed by the
// click's own timestamp rather than the enclosing event's.
func LeadsGenerated(db *gorm.DB, p QueryParams) (Series, error) {
	scope, args := scopeConditions(p, "pc.timestamp", "se.session_id")

	query := fmt.Sprintf(`
    SELECT
        strftime('%%Y-%%m-%%d', pc.timestamp) AS date,
        COUNT(*) AS count
    FROM provider_clicks pc
    JOIN session_events se ON se.id = pc.event_id
    WHERE %s
    GROUP BY date
    ORDER BY date ASC
    `, scope)

	var rows []BucketCount
	if err := db.Raw(query, args...).Scan(&rows).Error; err != nil {
		return Series{}, fmt.Errorf("error fetching leads generated: %w", err)
	}

	return newSeries(rows), nil
}

// PopularSearches ranks the most searched routes among matching sessions.
// Routes are direction-sensitive: "A → B" and "B → A" are distinct keys.
// Ties are broken by route name so repeated queries return identical order.
func PopularSearches(db *gorm.DB, p QueryParams) ([]RouteCount, error) {
	scope, args := scopeConditions(p, "created_at", "search_sessions.id")

	query := fmt.Sprintf(`
    SELECT
        from_city || ' → ' || to_city AS route,
        COUNT(*) AS count
    FROM search_sessions
    WHERE %s
    GROUP BY from_city, to_city
    ORDER BY count DESC, route ASC
    LIMIT ?
    `, scope)

	queryArgs := append(args, p.Limit)

	var rows []RouteCount
	if err := db.Raw(query, queryArgs...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("error fetching popular searches: %w", err)
	}

	if rows == nil {
		rows = []RouteCount{}
	}
	return rows, nil
}

// TopProviders ranks providers by referral click volume among matching
// clicks. Ties are broken by provider name for deterministic output.
func TopProviders(db *gorm.DB, p QueryParams) ([]ProviderCount, error) {
	scope, args := scopeConditions(p, "pc.timestamp", "se.session_id")

	query := fmt.Sprintf(`
    SELECT
        pc.provider AS provider,
        COUNT(*) AS count
    FROM provider_clicks pc
    JOIN session_events se ON se.id = pc.event_id
    WHERE %s
    GROUP BY pc.provider
    ORDER BY count DESC, provider ASC
    LIMIT ?
    `, scope)

	queryArgs := append(args, p.Limit)

	var rows []ProviderCount
	if err := db.Raw(query, queryArgs...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("error fetching top providers: %w", err)
	}

	if rows == nil {
		rows = []ProviderCount{}
	}
	return rows, nil
}
