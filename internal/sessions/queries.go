package sessions

import (
	"gorm.io/gorm"

	"farelytics/internal/timeframe"
)

// SessionFilters represents filtering options for the raw session log
type SessionFilters struct {
	Window   timeframe.Window
	Provider string // exact provider string; empty or "all" disables the filter
	FromCity string // substring match
	ToCity   string // substring match
	Limit    int
	Offset   int
}

// SessionsResult represents a paginated session log page
type SessionsResult struct {
	Sessions []SearchSession
	Total    int64
}

// GetFilteredSessions retrieves filtered and paginated sessions with their
// nested events and provider clicks preloaded, newest first.
func GetFilteredSessions(db *gorm.DB, filters SessionFilters) (SessionsResult, error) {
	query := db.Model(&SearchSession{})

	if cond, args := filters.Window.Condition("search_sessions.created_at"); cond != "" {
		query = query.Where(cond, args...)
	}

	if filters.Provider != "" && filters.Provider != "all" {
		query = query.Where(
			`EXISTS (
				SELECT 1 FROM provider_clicks pc
				JOIN session_events se ON se.id = pc.event_id
				WHERE se.session_id = search_sessions.id AND pc.provider = ?
			)`, filters.Provider)
	}

	if filters.FromCity != "" {
		query = query.Where("from_city LIKE ?", "%"+filters.FromCity+"%")
	}
	if filters.ToCity != "" {
		query = query.Where("to_city LIKE ?", "%"+filters.ToCity+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return SessionsResult{}, err
	}

	var result []SearchSession
	if err := query.
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("session_events.timestamp ASC")
		}).
		Preload("Events.ProvidersClicked", func(db *gorm.DB) *gorm.DB {
			return db.Order("provider_clicks.timestamp ASC")
		}).
		Order("created_at DESC").
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&result).Error; err != nil {
		return SessionsResult{}, err
	}

	return SessionsResult{
		Sessions: result,
		Total:    total,
	}, nil
}

// GetSessionCountInWindow counts sessions created inside a window.
func GetSessionCountInWindow(db *gorm.DB, window timeframe.Window) (int64, error) {
	query := db.Model(&SearchSession{})
	if cond, args := window.Condition("created_at"); cond != "" {
		query = query.Where(cond, args...)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}
