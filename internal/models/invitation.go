package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// RSVP statuses for an invitation. Every invitation starts pending; the
// recipient moves it to accepted or declined.
const (
	RsvpPending  = "pending"
	RsvpAccepted = "accepted"
	RsvpDeclined = "declined"
)

// Memory is one shared moment supplied by the sender, used as creative
// input for message and image generation.
type Memory struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Memories is stored as a JSON text column.
type Memories []Memory

func (m Memories) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *Memories) Scan(value any) error {
	switch v := value.(type) {
	case string:
		return json.Unmarshal([]byte(v), m)
	case []byte:
		return json.Unmarshal(v, m)
	case nil:
		*m = nil
		return nil
	default:
		return fmt.Errorf("unsupported memories column type %T", value)
	}
}

// StyleConfig captures the sender's visual customization choices.
type StyleConfig struct {
	ColorTheme string `json:"colorTheme"`
	Font       string `json:"font"`
	Layout     string `json:"layout"` // centered, split or fullscreen
}

func (s StyleConfig) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StyleConfig) Scan(value any) error {
	switch v := value.(type) {
	case string:
		return json.Unmarshal([]byte(v), s)
	case []byte:
		return json.Unmarshal(v, s)
	case nil:
		*s = StyleConfig{}
		return nil
	default:
		return fmt.Errorf("unsupported style config column type %T", value)
	}
}

// Invitation is the single persistent entity of the system: one
// personalized card, keyed by id and by its access token. All creative
// fields are immutable after creation; only the opened-at stamp and the
// RSVP pair are ever updated.
type Invitation struct {
	ID          string `gorm:"primarykey"`
	AccessToken string `gorm:"uniqueIndex"`

	SenderName    string
	RecipientName string
	TemplateID    string
	Memories      Memories `gorm:"type:text"`
	Hints         string
	StyleConfig   StyleConfig `gorm:"type:text"`

	// Results of pre-creation content generation, stored verbatim.
	GeneratedMessage  *string
	GeneratedImageURL *string

	RsvpStatus  string
	RsvpMessage *string

	// OpenedAt is set once, on the first successful fetch by token.
	OpenedAt  *time.Time
	CreatedAt time.Time
}

// Opened reports whether the recipient has viewed the invitation.
func (i *Invitation) Opened() bool {
	return i.OpenedAt != nil
}

func (i *Invitation) Validate() error {
	if len(i.Memories) < 1 || len(i.Memories) > 3 {
		return errors.New("invitation must carry between 1 and 3 memories")
	}
	return nil
}
