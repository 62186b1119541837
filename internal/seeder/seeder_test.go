package seeder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farelytics/internal/seeder"
	"farelytics/internal/sessions"
	"farelytics/internal/testsupport"
	"farelytics/internal/timeframe"
)

func TestSeedProducesQueryableLog(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	s := seeder.NewSeeder(db, testsupport.GetLogger(), 50)
	require.NoError(t, s.Seed(14))

	count, err := sessions.GetSessionCountInWindow(db, timeframe.Window{Unbounded: true})
	require.NoError(t, err)
	assert.Equal(t, int64(50), count)

	result, err := sessions.GetFilteredSessions(db, sessions.SessionFilters{
		Window: timeframe.Window{Unbounded: true},
		Limit:  50,
	})
	require.NoError(t, err)
	require.Len(t, result.Sessions, 50)

	for _, session := range result.Sessions {
		assert.NotEmpty(t, session.ID)
		assert.NotEmpty(t, session.FromCity)
		assert.NotEqual(t, session.FromCity, session.ToCity)
		require.NotEmpty(t, session.Events)
		assert.Equal(t, sessions.EventTypeSearchResultsView, session.Events[0].EventType)

		for _, event := range session.Events {
			for _, click := range event.ProvidersClicked {
				assert.NotEmpty(t, click.Provider)
				// Clicks only hang off view-prices events.
				assert.Equal(t, sessions.EventTypeViewPricesClick, event.EventType)
			}
		}
	}
}
