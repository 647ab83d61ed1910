package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Analytics event types.
const (
	EventMessageGenerated  = "message_generated"
	EventImageGenerated    = "image_generated"
	EventInvitationCreated = "invitation_created"
	EventInvitationOpened  = "invitation_opened"
	EventRsvpSubmitted     = "rsvp_submitted"
)

// Properties is a free-form JSON bag attached to an analytics event.
type Properties map[string]any

func (p Properties) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *Properties) Scan(value any) error {
	switch v := value.(type) {
	case string:
		return json.Unmarshal([]byte(v), p)
	case []byte:
		return json.Unmarshal(v, p)
	case nil:
		*p = nil
		return nil
	default:
		return fmt.Errorf("unsupported properties column type %T", value)
	}
}

// AnalyticsEvent is a fire-and-forget usage record. Nothing in the
// request path depends on these rows existing.
type AnalyticsEvent struct {
	ID           uint `gorm:"primarykey"`
	EventType    string
	InvitationID *string
	Properties   Properties `gorm:"type:text"`
	CreatedAt    time.Time
}
