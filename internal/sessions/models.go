package sessions

import "time"

// SearchSession represents one user flight search in the event log.
// Sessions are append-only: the aggregation layer never mutates them.
type SearchSession struct {
	ID        string         `gorm:"primaryKey;size:36"`
	FromCity  string         `gorm:"index:idx_route;not null"`
	ToCity    string         `gorm:"index:idx_route;not null"`
	CreatedAt time.Time      `gorm:"index;not null"`
	Events    []SessionEvent `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

// SessionEvent is a timestamped interaction inside a search session,
// e.g. the user clicking "view prices" on a result.
type SessionEvent struct {
	ID               uint            `gorm:"primaryKey;autoIncrement"`
	SessionID        string          `gorm:"index;size:36;not null"`
	EventType        string          `gorm:"index;not null"`
	Timestamp        time.Time       `gorm:"index;not null"`
	ProvidersClicked []ProviderClick `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
}

// ProviderClick is a referral click on a partner provider, nested under a
// session event. Each click counts as one generated lead.
type ProviderClick struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	EventID   uint      `gorm:"index;not null"`
	Provider  string    `gorm:"index;not null"`
	Timestamp time.Time `gorm:"index;not null"`
}

func (SearchSession) TableName() string { return "search_sessions" }
func (SessionEvent) TableName() string  { return "session_events" }
func (ProviderClick) TableName() string { return "provider_clicks" }
