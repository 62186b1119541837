// Package testsupport provides shared fixtures for package tests: an
// in-memory SQLite database with the full schema, a quiet logger, a fixed
// clock and builders for synthetic session-log records.
package testsupport

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"farelytics/internal/database"
	"farelytics/internal/sessions"
	"farelytics/internal/settings"
)

// testDBCache caches test databases by root test name so multiple setup
// calls within one test share the same database.
var (
	testDBCache   = make(map[string]*gorm.DB)
	testDBCacheMu sync.Mutex
)

// SetupTestDB creates a migrated in-memory test database. Uses a named
// database with cache=shared so multiple connections inside one test see
// the same data.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	rootName := t.Name()
	if idx := strings.Index(rootName, "/"); idx > 0 {
		rootName = rootName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")

	if err := db.AutoMigrate(database.AllModels()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// GetLogger returns a test logger that only prints errors.
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// FixedClock pins "now" for deterministic window resolution in tests.
type FixedClock struct {
	Time time.Time
}

// Now returns the pinned time.
func (c FixedClock) Now() time.Time {
	return c.Time
}

// ClickSpec describes one provider click to attach to an event.
type ClickSpec struct {
	Provider  string
	Timestamp time.Time
}

// CreateSession inserts a search session with no events.
func CreateSession(t *testing.T, db *gorm.DB, fromCity, toCity string, createdAt time.Time) sessions.SearchSession {
	t.Helper()

	session := sessions.SearchSession{
		ID:        uuid.NewString(),
		FromCity:  fromCity,
		ToCity:    toCity,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&session).Error)
	return session
}

// AddEvent attaches an event, with optional provider clicks, to a session.
func AddEvent(t *testing.T, db *gorm.DB, sessionID, eventType string, timestamp time.Time, clicks ...ClickSpec) sessions.SessionEvent {
	t.Helper()

	event := sessions.SessionEvent{
		SessionID: sessionID,
		EventType: eventType,
		Timestamp: timestamp,
	}
	for _, click := range clicks {
		event.ProvidersClicked = append(event.ProvidersClicked, sessions.ProviderClick{
			Provider:  click.Provider,
			Timestamp: click.Timestamp,
		})
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

// CreateSessionWithClicks inserts a session holding one view-prices event
// and one provider click per given provider, all stamped at eventAt.
func CreateSessionWithClicks(t *testing.T, db *gorm.DB, fromCity, toCity string, createdAt, eventAt time.Time, providers ...string) sessions.SearchSession {
	t.Helper()

	session := CreateSession(t, db, fromCity, toCity, createdAt)
	clicks := make([]ClickSpec, len(providers))
	for i, provider := range providers {
		clicks[i] = ClickSpec{Provider: provider, Timestamp: eventAt}
	}
	AddEvent(t, db, session.ID, sessions.EventTypeViewPricesClick, eventAt, clicks...)
	return session
}

// SetupAPIKey generates and stores the dashboard API key, returning the
// plaintext for use in request headers.
func SetupAPIKey(t *testing.T, db *gorm.DB) string {
	t.Helper()

	key, err := settings.EnsureDashboardAPIKey(db)
	require.NoError(t, err)
	require.NotEmpty(t, key)
	return key
}
