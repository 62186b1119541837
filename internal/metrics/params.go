package metrics

import "farelytics/internal/timeframe"

// ProviderAll disables provider narrowing.
const ProviderAll = "all"

// DefaultTopLimit is the ranking size for popular searches and top providers.
const DefaultTopLimit = 5

// QueryParams carries the scope shared by all aggregation pipelines of one
// request: the resolved time window, the optional provider filter and the
// top-N limit. It is computed once per request and applied to every
// pipeline independently.
type QueryParams struct {
	Window   timeframe.Window
	Provider string
	Limit    int
}

// NewQueryParams creates query params with the default top-N limit.
func NewQueryParams(window timeframe.Window, provider string) QueryParams {
	return QueryParams{
		Window:   window,
		Provider: provider,
		Limit:    DefaultTopLimit,
	}
}

// filtersProvider reports whether a provider filter is active.
func (p QueryParams) filtersProvider() bool {
	return p.Provider != "" && p.Provider != ProviderAll
}
