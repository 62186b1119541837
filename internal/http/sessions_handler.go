package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"farelytics/internal/sessions"
	"farelytics/internal/timeframe"
)

const (
	defaultSessionsPageSize = 50
	maxSessionsPageSize     = 200
)

// SessionsHandler serves the raw session log for debugging and auditing.
type SessionsHandler struct {
	db       *gorm.DB
	logger   *slog.Logger
	resolver *timeframe.Resolver
}

// NewSessionsHandler creates a sessions listing handler.
func NewSessionsHandler(db *gorm.DB, logger *slog.Logger, resolver *timeframe.Resolver) *SessionsHandler {
	if resolver == nil {
		resolver = timeframe.NewResolver()
	}
	return &SessionsHandler{db: db, logger: logger, resolver: resolver}
}

type providerClickJSON struct {
	Provider  string    `json:"provider"`
	Timestamp time.Time `json:"timestamp"`
}

type sessionEventJSON struct {
	EventType        string              `json:"eventType"`
	Timestamp        time.Time           `json:"timestamp"`
	ProvidersClicked []providerClickJSON `json:"providersClicked"`
}

type sessionJSON struct {
	ID        string             `json:"id"`
	FromCity  string             `json:"fromCity"`
	ToCity    string             `json:"toCity"`
	CreatedAt time.Time          `json:"createdAt"`
	Events    []sessionEventJSON `json:"events"`
}

type sessionsResponse struct {
	Sessions []sessionJSON `json:"sessions"`
	Total    int64         `json:"total"`
	Limit    int           `json:"limit"`
	Offset   int           `json:"offset"`
}

// ListSessions handles GET /api/v1/sessions. It accepts the same
// timeRange/startDate/endDate/provider parameters as the metrics endpoint,
// plus fromCity/toCity substring filters and limit/offset pagination.
func (h *SessionsHandler) ListSessions(c *fiber.Ctx) error {
	timeRange := c.Query("timeRange", string(timeframe.RangeLabelToday))
	window := h.resolver.Resolve(timeframe.RangeLabel(timeRange), c.Query("startDate"), c.Query("endDate"))

	limit := c.QueryInt("limit", defaultSessionsPageSize)
	if limit <= 0 || limit > maxSessionsPageSize {
		limit = defaultSessionsPageSize
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	filters := sessions.SessionFilters{
		Window:   window,
		Provider: c.Query("provider"),
		FromCity: c.Query("fromCity"),
		ToCity:   c.Query("toCity"),
		Limit:    limit,
		Offset:   offset,
	}

	result, err := sessions.GetFilteredSessions(h.db, filters)
	if err != nil {
		h.logger.Error("Error fetching sessions", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch sessions",
		})
	}

	payload := sessionsResponse{
		Sessions: make([]sessionJSON, len(result.Sessions)),
		Total:    result.Total,
		Limit:    limit,
		Offset:   offset,
	}
	for i, s := range result.Sessions {
		payload.Sessions[i] = toSessionJSON(s)
	}

	return c.JSON(payload)
}

func toSessionJSON(s sessions.SearchSession) sessionJSON {
	events := make([]sessionEventJSON, len(s.Events))
	for i, e := range s.Events {
		clicks := make([]providerClickJSON, len(e.ProvidersClicked))
		for j, pc := range e.ProvidersClicked {
			clicks[j] = providerClickJSON{Provider: pc.Provider, Timestamp: pc.Timestamp}
		}
		events[i] = sessionEventJSON{
			EventType:        e.EventType,
			Timestamp:        e.Timestamp,
			ProvidersClicked: clicks,
		}
	}
	return sessionJSON{
		ID:        s.ID,
		FromCity:  s.FromCity,
		ToCity:    s.ToCity,
		CreatedAt: s.CreatedAt,
		Events:    events,
	}
}
