package sessions

// Event types recorded in the session log.
const (
	EventTypeSearchResultsView = "search_results_view"
	EventTypeViewPricesClick   = "view_prices_click"
	EventTypeFilterChange      = "filter_change"
)
