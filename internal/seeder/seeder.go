// Package seeder generates a synthetic search-session log for development
// and demos. It stands in for the external ingestion path that writes
// sessions in production.
package seeder

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"farelytics/internal/sessions"
)

var citySlugs = []string{
	"mumbai", "delhi", "bengaluru", "goa", "kochi",
	"london", "dubai", "singapore", "new york", "bangkok",
}

var providerSlugs = []string{
	"aertrip", "cleartrip", "easemytrip", "yatra", "ixigo", "makemytrip",
}

// Seeder writes synthetic search sessions into the store.
type Seeder struct {
	db           *gorm.DB
	logger       *slog.Logger
	sessionCount int
	caser        cases.Caser
}

// NewSeeder creates a seeder that will generate sessionCount sessions.
func NewSeeder(db *gorm.DB, logger *slog.Logger, sessionCount int) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		db:           db,
		logger:       logger,
		sessionCount: sessionCount,
		caser:        cases.Title(language.AmericanEnglish),
	}
}

// Seed generates sessions spread over the past daysBack days. Roughly 60%
// of sessions click through to prices and around half of those click one or
// more provider referrals.
func (s *Seeder) Seed(daysBack int) error {
	start := time.Now()
	s.logger.Info("Seeding search sessions...",
		slog.Int("sessionCount", s.sessionCount),
		slog.Int("daysBack", daysBack))

	now := time.Now().UTC()

	for i := 0; i < s.sessionCount; i++ {
		createdAt := now.
			AddDate(0, 0, -rand.Intn(daysBack)).
			Add(-time.Duration(rand.Intn(24*3600)) * time.Second)

		session := s.buildSession(createdAt)
		if err := s.db.Create(session).Error; err != nil {
			return fmt.Errorf("failed to create session %d: %w", i, err)
		}
	}

	s.logger.Info("Seeding completed",
		slog.Int("sessionCount", s.sessionCount),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

func (s *Seeder) buildSession(createdAt time.Time) *sessions.SearchSession {
	fromCity := s.caser.String(citySlugs[rand.Intn(len(citySlugs))])
	toCity := fromCity
	for toCity == fromCity {
		toCity = s.caser.String(citySlugs[rand.Intn(len(citySlugs))])
	}

	session := &sessions.SearchSession{
		ID:        uuid.NewString(),
		FromCity:  fromCity,
		ToCity:    toCity,
		CreatedAt: createdAt,
		Events: []sessions.SessionEvent{
			{
				EventType: sessions.EventTypeSearchResultsView,
				Timestamp: createdAt.Add(time.Duration(rand.Intn(5)) * time.Second),
			},
		},
	}

	if rand.Intn(100) < 60 {
		clickAt := createdAt.Add(time.Duration(10+rand.Intn(120)) * time.Second)
		event := sessions.SessionEvent{
			EventType: sessions.EventTypeViewPricesClick,
			Timestamp: clickAt,
		}

		if rand.Intn(100) < 50 {
			clicks := 1 + rand.Intn(3)
			for j := 0; j < clicks; j++ {
				event.ProvidersClicked = append(event.ProvidersClicked, sessions.ProviderClick{
					Provider:  s.caser.String(providerSlugs[rand.Intn(len(providerSlugs))]),
					Timestamp: clickAt.Add(time.Duration(5+rand.Intn(60)) * time.Second),
				})
			}
		}

		session.Events = append(session.Events, event)
	}

	return session
}
