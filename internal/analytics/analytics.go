// Package analytics records usage events as a fire-and-forget side
// effect. Event writes run on detached goroutines; no request ever
// waits on, or fails because of, an analytics insert.
package analytics

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/evermore-app/evermore/internal/gormw"
	"github.com/evermore-app/evermore/internal/models"
	"github.com/evermore-app/evermore/internal/storage"
)

var (
	logger = log.With().Str("component", "analytics").Logger()
)

type Logger struct {
	db *gormw.DB
}

func NewLogger(db *gormw.DB) *Logger {
	return &Logger{db: db}
}

// Log enriches props with the caller's IP and user agent and persists
// the event asynchronously. invitationID may be empty for events that
// precede creation.
func (l *Logger) Log(c *gin.Context, eventType string, invitationID string, props models.Properties) {
	if props == nil {
		props = models.Properties{}
	}
	if c != nil {
		props["ip"] = c.ClientIP()
		props["user_agent"] = c.Request.UserAgent()
	}

	event := &models.AnalyticsEvent{
		EventType:  eventType,
		Properties: props,
	}
	if invitationID != "" {
		event.InvitationID = &invitationID
	}

	go func() {
		if err := storage.AddAnalyticsEvent(l.db, event); err != nil {
			logger.Error().Err(err).Str("event_type", eventType).Msg("Failed to record analytics event")
		}
	}()
}
