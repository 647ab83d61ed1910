package storage

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/evermore-app/evermore/internal/gormw"
	"github.com/evermore-app/evermore/internal/models"
)

var (
	logger = log.With().Str("component", "storage").Logger()
)

// CreateInvitation persists a new invitation in a single insert. A
// duplicate access token surfaces as gorm.ErrDuplicatedKey; the caller
// regenerates the token and retries.
func CreateInvitation(db *gormw.DB, invitation *models.Invitation) error {
	if err := invitation.Validate(); err != nil {
		return err
	}
	return db.Create(invitation).Error
}

// GetInvitationByToken returns the unique invitation holding the given
// access token, or gorm.ErrRecordNotFound.
func GetInvitationByToken(db *gormw.DB, accessToken string) (*models.Invitation, error) {
	res := &models.Invitation{}
	if err := db.Where("access_token = ?", accessToken).First(res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

// MarkInvitationOpened stamps the first-view time. The opened_at IS NULL
// guard makes the write a no-op once any stamp has landed, so racing
// first fetches cannot overwrite each other.
func MarkInvitationOpened(db *gormw.DB, id string, openedAt time.Time) error {
	return db.Model(&models.Invitation{}).
		Where("id = ? AND opened_at IS NULL", id).
		Update("opened_at", openedAt).Error
}

// UpdateInvitationRSVP overwrites the RSVP pair. No pending-state guard:
// a repeated submission replaces the prior answer (last write wins).
func UpdateInvitationRSVP(db *gormw.DB, id string, status string, message *string) error {
	return db.Model(&models.Invitation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"rsvp_status":  status,
			"rsvp_message": message,
		}).Error
}
