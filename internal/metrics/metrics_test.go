package metrics_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"farelytics/internal/metrics"
	"farelytics/internal/sessions"
	"farelytics/internal/testsupport"
	"farelytics/internal/timeframe"
)

// seedTwoDays inserts a small session log spanning 2024-03-12..2024-03-15:
//
//	s1 Mumbai→Goa  created 03-15 09:00, view-prices 09:05, clicks Aertrip + Cleartrip
//	s2 Mumbai→Goa  created 03-15 10:00, view-prices 10:05, click Cleartrip
//	s3 Delhi→Goa   created 03-14 22:00, view-prices 03-14 23:59:59, click Aertrip at 03-15 00:00:01
//	s4 Goa→Mumbai  created 03-12 08:00, no events
func seedTwoDays(t *testing.T, db *gorm.DB) {
	t.Helper()

	s1 := testsupport.CreateSession(t, db, "Mumbai", "Goa", time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))
	testsupport.AddEvent(t, db, s1.ID, sessions.EventTypeFilterChange, time.Date(2024, 3, 15, 9, 4, 0, 0, time.UTC))
	testsupport.AddEvent(t, db, s1.ID, sessions.EventTypeViewPricesClick, time.Date(2024, 3, 15, 9, 5, 0, 0, time.UTC),
		testsupport.ClickSpec{Provider: "Aertrip", Timestamp: time.Date(2024, 3, 15, 9, 6, 0, 0, time.UTC)},
		testsupport.ClickSpec{Provider: "Cleartrip", Timestamp: time.Date(2024, 3, 15, 9, 7, 0, 0, time.UTC)})

	s2 := testsupport.CreateSession(t, db, "Mumbai", "Goa", time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))
	testsupport.AddEvent(t, db, s2.ID, sessions.EventTypeViewPricesClick, time.Date(2024, 3, 15, 10, 5, 0, 0, time.UTC),
		testsupport.ClickSpec{Provider: "Cleartrip", Timestamp: time.Date(2024, 3, 15, 10, 6, 0, 0, time.UTC)})

	s3 := testsupport.CreateSession(t, db, "Delhi", "Goa", time.Date(2024, 3, 14, 22, 0, 0, 0, time.UTC))
	// The click lands on the day after its event; leads bucket by click time.
	testsupport.AddEvent(t, db, s3.ID, sessions.EventTypeViewPricesClick, time.Date(2024, 3, 14, 23, 59, 59, 0, time.UTC),
		testsupport.ClickSpec{Provider: "Aertrip", Timestamp: time.Date(2024, 3, 15, 0, 0, 1, 0, time.UTC)})

	testsupport.CreateSession(t, db, "Goa", "Mumbai", time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC))
}

func twoDayWindow() timeframe.Window {
	return timeframe.Window{
		From: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC),
	}
}

func TestPipelines(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	seedTwoDays(t, db)

	p := metrics.NewQueryParams(twoDayWindow(), metrics.ProviderAll)

	t.Run("total views bucket by session creation time", func(t *testing.T) {
		series, err := metrics.TotalViews(db, p)
		require.NoError(t, err)

		assert.Equal(t, int64(3), series.Total)
		assert.Equal(t, []metrics.BucketCount{
			{Date: "2024-03-14", Count: 1},
			{Date: "2024-03-15", Count: 2},
		}, series.Data)
	})

	t.Run("view prices clicks count only that event type", func(t *testing.T) {
		series, err := metrics.ViewPricesClicks(db, p)
		require.NoError(t, err)

		assert.Equal(t, int64(3), series.Total)
		assert.Equal(t, []metrics.BucketCount{
			{Date: "2024-03-14", Count: 1},
			{Date: "2024-03-15", Count: 2},
		}, series.Data)
	})

	t.Run("leads bucket by the click timestamp", func(t *testing.T) {
		series, err := metrics.LeadsGenerated(db, p)
		require.NoError(t, err)

		// s3's click falls on 03-15 even though its event is on 03-14.
		assert.Equal(t, int64(4), series.Total)
		assert.Equal(t, []metrics.BucketCount{
			{Date: "2024-03-15", Count: 4},
		}, series.Data)
	})

	t.Run("popular searches are direction-sensitive", func(t *testing.T) {
		routes, err := metrics.PopularSearches(db, p)
		require.NoError(t, err)

		assert.Equal(t, []metrics.RouteCount{
			{Route: "Mumbai → Goa", Count: 2},
			{Route: "Delhi → Goa", Count: 1},
		}, routes)
	})

	t.Run("top providers break count ties by name", func(t *testing.T) {
		providers, err := metrics.TopProviders(db, p)
		require.NoError(t, err)

		assert.Equal(t, []metrics.ProviderCount{
			{Provider: "Aertrip", Count: 2},
			{Provider: "Cleartrip", Count: 2},
		}, providers)
	})
}

func TestPipelinesSingleDayWindow(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	seedTwoDays(t, db)

	window := timeframe.Window{
		From: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC),
	}
	p := metrics.NewQueryParams(window, metrics.ProviderAll)

	views, err := metrics.TotalViews(db, p)
	require.NoError(t, err)
	assert.Equal(t, int64(2), views.Total)

	// s3's event sits a second before midnight, outside this window, but its
	// click a second after midnight is inside.
	clicks, err := metrics.ViewPricesClicks(db, p)
	require.NoError(t, err)
	assert.Equal(t, int64(2), clicks.Total)

	leads, err := metrics.LeadsGenerated(db, p)
	require.NoError(t, err)
	assert.Equal(t, int64(4), leads.Total)
}

func TestPipelinesProviderFilter(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	seedTwoDays(t, db)

	p := metrics.NewQueryParams(twoDayWindow(), "Aertrip")

	t.Run("filter reaches sessions through their clicks", func(t *testing.T) {
		series, err := metrics.TotalViews(db, p)
		require.NoError(t, err)

		// s2 only ever clicked Cleartrip, so it drops out entirely.
		assert.Equal(t, int64(2), series.Total)
		assert.Equal(t, []metrics.BucketCount{
			{Date: "2024-03-14", Count: 1},
			{Date: "2024-03-15", Count: 1},
		}, series.Data)
	})

	t.Run("qualifying sessions contribute all their clicks", func(t *testing.T) {
		series, err := metrics.LeadsGenerated(db, p)
		require.NoError(t, err)
		assert.Equal(t, int64(3), series.Total)

		providers, err := metrics.TopProviders(db, p)
		require.NoError(t, err)
		assert.Equal(t, []metrics.ProviderCount{
			{Provider: "Aertrip", Count: 2},
			{Provider: "Cleartrip", Count: 1},
		}, providers)
	})

	t.Run("route ranking is narrowed too", func(t *testing.T) {
		routes, err := metrics.PopularSearches(db, p)
		require.NoError(t, err)
		assert.Equal(t, []metrics.RouteCount{
			{Route: "Delhi → Goa", Count: 1},
			{Route: "Mumbai → Goa", Count: 1},
		}, routes)
	})

	t.Run("exact string match only", func(t *testing.T) {
		series, err := metrics.TotalViews(db, metrics.NewQueryParams(twoDayWindow(), "aertrip"))
		require.NoError(t, err)
		assert.Equal(t, int64(0), series.Total)
	})
}

func TestRankingsCapAtLimit(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	day := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cities := []string{"Delhi", "Mumbai", "Goa", "Pune", "Jaipur", "Kochi", "Indore"}
	providersPool := []string{"Aertrip", "Cleartrip", "Easemytrip", "Goibibo", "Ixigo", "Yatra"}

	// Route i appears len(cities)-i times; provider i gets len(pool)-i clicks.
	for i, city := range cities {
		for n := 0; n < len(cities)-i; n++ {
			testsupport.CreateSession(t, db, city, "Chennai", day)
		}
	}
	for i, provider := range providersPool {
		for n := 0; n < len(providersPool)-i; n++ {
			testsupport.CreateSessionWithClicks(t, db, "Chennai", "Delhi", day, day, provider)
		}
	}

	p := metrics.NewQueryParams(timeframe.Window{Unbounded: true}, metrics.ProviderAll)

	routes, err := metrics.PopularSearches(db, p)
	require.NoError(t, err)
	require.Len(t, routes, metrics.DefaultTopLimit)
	for i := 1; i < len(routes); i++ {
		assert.GreaterOrEqual(t, routes[i-1].Count, routes[i].Count)
	}
	// The click fixtures above all share one route, which dominates.
	assert.Equal(t, "Chennai → Delhi", routes[0].Route)

	providers, err := metrics.TopProviders(db, p)
	require.NoError(t, err)
	require.Len(t, providers, metrics.DefaultTopLimit)
	assert.Equal(t, metrics.ProviderCount{Provider: "Aertrip", Count: 6}, providers[0])
	for i := 1; i < len(providers); i++ {
		assert.GreaterOrEqual(t, providers[i-1].Count, providers[i].Count)
	}
}

func TestFetchAssemblesAllPipelines(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	seedTwoDays(t, db)

	p := metrics.NewQueryParams(twoDayWindow(), metrics.ProviderAll)

	resp, err := metrics.Fetch(context.Background(), db, testsupport.GetLogger(), p)
	require.NoError(t, err)

	assert.Equal(t, int64(3), resp.TotalViews.Total)
	assert.Equal(t, int64(3), resp.ViewPricesClicks.Total)
	assert.Equal(t, int64(4), resp.LeadsGenerated.Total)
	assert.Len(t, resp.PopularSearches, 3)
	assert.Len(t, resp.TopProviders, 2)

	// Totals always equal the sum of their buckets.
	for _, series := range []metrics.Series{resp.TotalViews, resp.ViewPricesClicks, resp.LeadsGenerated} {
		var sum int64
		for _, bucket := range series.Data {
			sum += bucket.Count
		}
		assert.Equal(t, series.Total, sum)
	}

	// Identical scope yields byte-identical payloads.
	again, err := metrics.Fetch(context.Background(), db, testsupport.GetLogger(), p)
	require.NoError(t, err)
	first, err := json.Marshal(resp)
	require.NoError(t, err)
	second, err := json.Marshal(again)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFetchEmptyWindow(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	seedTwoDays(t, db)

	window := timeframe.Window{
		From: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	resp, err := metrics.Fetch(context.Background(), db, testsupport.GetLogger(), metrics.NewQueryParams(window, metrics.ProviderAll))
	require.NoError(t, err)

	assert.Equal(t, int64(0), resp.TotalViews.Total)
	assert.NotNil(t, resp.TotalViews.Data)
	assert.Empty(t, resp.TotalViews.Data)
	assert.NotNil(t, resp.PopularSearches)
	assert.Empty(t, resp.PopularSearches)
	assert.NotNil(t, resp.TopProviders)
	assert.Empty(t, resp.TopProviders)

	payload, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"data":[]`)
	assert.Contains(t, string(payload), `"popularSearches":[]`)
}

func TestFetchFailsWholesale(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	seedTwoDays(t, db)

	require.NoError(t, db.Exec("DROP TABLE provider_clicks").Error)

	resp, err := metrics.Fetch(context.Background(), db, testsupport.GetLogger(), metrics.NewQueryParams(twoDayWindow(), metrics.ProviderAll))
	assert.Error(t, err)
	assert.Nil(t, resp)
}
