// Package invitations owns the invitation lifecycle: creation, token
// fetch with the first-view stamp, and RSVP.
package invitations

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/evermore-app/evermore/internal/analytics"
	"github.com/evermore-app/evermore/internal/gormw"
	"github.com/evermore-app/evermore/internal/models"
	"github.com/evermore-app/evermore/internal/storage"
	"github.com/evermore-app/evermore/internal/token"
)

var (
	logger = log.With().Str("component", "invitations").Logger()
)

// tokenInsertAttempts bounds regeneration on the (practically
// impossible) access token collision.
const tokenInsertAttempts = 3

type Handler struct {
	db        *gormw.DB
	analytics *analytics.Logger

	// generateToken is swapped out in tests to force collisions.
	generateToken func() (string, error)
}

func NewHandler(db *gormw.DB, analytics *analytics.Logger) *Handler {
	return &Handler{
		db:            db,
		analytics:     analytics,
		generateToken: token.Generate,
	}
}

func (h *Handler) RegisterHandlers(rg *gin.RouterGroup) {
	invitationRoutes := rg.Group("/invitations")
	{
		invitationRoutes.POST("", h.handleCreate)
		invitationRoutes.GET("/:token", h.handleFetch)
		invitationRoutes.POST("/:token/rsvp", h.handleRSVP)
	}
}

type memoryParams struct {
	Title       string `json:"title" binding:"required,max=100"`
	Description string `json:"description" binding:"required,max=1000"`
}

type styleConfigParams struct {
	ColorTheme string `json:"colorTheme" binding:"required"`
	Font       string `json:"font" binding:"required"`
	Layout     string `json:"layout" binding:"required,oneof=centered split fullscreen"`
}

type createParams struct {
	SenderName        string            `json:"senderName" binding:"required,max=100"`
	RecipientName     string            `json:"recipientName" binding:"required,max=100"`
	TemplateID        string            `json:"templateId" binding:"required,oneof=classic bold playful minimal"`
	Memories          []memoryParams    `json:"memories" binding:"required,min=1,max=3,dive"`
	Hints             string            `json:"hints" binding:"omitempty,max=1000"`
	StyleConfig       styleConfigParams `json:"styleConfig" binding:"required"`
	GeneratedMessage  string            `json:"generatedMessage" binding:"omitempty,max=2000"`
	GeneratedImageURL string            `json:"generatedImageUrl"`
}

// invitationView is the full projection returned to token holders.
type invitationView struct {
	ID                string             `json:"id"`
	AccessToken       string             `json:"accessToken"`
	SenderName        string             `json:"senderName"`
	RecipientName     string             `json:"recipientName"`
	TemplateID        string             `json:"templateId"`
	Memories          models.Memories    `json:"memories"`
	Hints             string             `json:"hints,omitempty"`
	StyleConfig       models.StyleConfig `json:"styleConfig"`
	GeneratedMessage  *string            `json:"generatedMessage"`
	GeneratedImageURL *string            `json:"generatedImageUrl"`
	RsvpStatus        string             `json:"rsvpStatus"`
	RsvpMessage       *string            `json:"rsvpMessage"`
	OpenedAt          *time.Time         `json:"openedAt"`
	CreatedAt         time.Time          `json:"createdAt"`
}

func viewOf(inv *models.Invitation) *invitationView {
	return &invitationView{
		ID:                inv.ID,
		AccessToken:       inv.AccessToken,
		SenderName:        inv.SenderName,
		RecipientName:     inv.RecipientName,
		TemplateID:        inv.TemplateID,
		Memories:          inv.Memories,
		Hints:             inv.Hints,
		StyleConfig:       inv.StyleConfig,
		GeneratedMessage:  inv.GeneratedMessage,
		GeneratedImageURL: inv.GeneratedImageURL,
		RsvpStatus:        inv.RsvpStatus,
		RsvpMessage:       inv.RsvpMessage,
		OpenedAt:          inv.OpenedAt,
		CreatedAt:         inv.CreatedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (h *Handler) handleCreate(c *gin.Context) {
	params := &createParams{}
	if err := c.ShouldBindJSON(params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	memories := make(models.Memories, 0, len(params.Memories))
	for _, m := range params.Memories {
		memories = append(memories, models.Memory{Title: m.Title, Description: m.Description})
	}

	var inv *models.Invitation
	for attempt := 0; ; attempt++ {
		accessToken, err := h.generateToken()
		if err != nil {
			logger.Error().Err(err).Msg("Failed to generate access token")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save invitation"})
			return
		}

		inv = &models.Invitation{
			ID:            uuid.New().String(),
			AccessToken:   accessToken,
			SenderName:    params.SenderName,
			RecipientName: params.RecipientName,
			TemplateID:    params.TemplateID,
			Memories:      memories,
			Hints:         params.Hints,
			StyleConfig: models.StyleConfig{
				ColorTheme: params.StyleConfig.ColorTheme,
				Font:       params.StyleConfig.Font,
				Layout:     params.StyleConfig.Layout,
			},
			GeneratedMessage:  optional(params.GeneratedMessage),
			GeneratedImageURL: optional(params.GeneratedImageURL),
			RsvpStatus:        models.RsvpPending,
		}

		err = storage.CreateInvitation(h.db, inv)
		if err == nil {
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt+1 < tokenInsertAttempts {
			logger.Warn().Msg("Access token collision, regenerating")
			continue
		}
		logger.Error().Err(err).Msg("Failed to save invitation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save invitation"})
		return
	}

	h.analytics.Log(c, models.EventInvitationCreated, inv.ID, models.Properties{
		"template_id":           inv.TemplateID,
		"memories_count":        len(inv.Memories),
		"has_generated_message": inv.GeneratedMessage != nil,
		"has_generated_image":   inv.GeneratedImageURL != nil,
	})

	c.JSON(http.StatusOK, gin.H{
		"id":          inv.ID,
		"accessToken": inv.AccessToken,
	})
}

func (h *Handler) handleFetch(c *gin.Context) {
	accessToken := c.Param("token")

	inv, err := storage.GetInvitationByToken(h.db, accessToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
			return
		}
		logger.Error().Err(err).Msg("Failed to fetch invitation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invitation"})
		return
	}

	// First view: stamp opened_at without making the read wait on the
	// write. The store-level null guard keeps racing first fetches from
	// moving an already recorded stamp.
	if !inv.Opened() {
		id := inv.ID
		openedAt := time.Now().UTC()
		go func() {
			if err := storage.MarkInvitationOpened(h.db, id, openedAt); err != nil {
				logger.Error().Err(err).Str("invitation_id", id).Msg("Failed to record opened_at")
			}
		}()

		h.analytics.Log(c, models.EventInvitationOpened, inv.ID, models.Properties{
			"template_id": inv.TemplateID,
		})
	}

	c.JSON(http.StatusOK, viewOf(inv))
}

type rsvpParams struct {
	Status  string `json:"status" binding:"required,oneof=accepted declined"`
	Message string `json:"message" binding:"omitempty,max=500"`
}

func (h *Handler) handleRSVP(c *gin.Context) {
	accessToken := c.Param("token")

	params := &rsvpParams{}
	if err := c.ShouldBindJSON(params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := storage.GetInvitationByToken(h.db, accessToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
			return
		}
		logger.Error().Err(err).Msg("Failed to fetch invitation for RSVP")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record RSVP"})
		return
	}

	// Repeated submissions overwrite: the recipient may change their
	// answer before the date.
	if err := storage.UpdateInvitationRSVP(h.db, inv.ID, params.Status, optional(params.Message)); err != nil {
		logger.Error().Err(err).Str("invitation_id", inv.ID).Msg("Failed to record RSVP")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record RSVP"})
		return
	}

	h.analytics.Log(c, models.EventRsvpSubmitted, inv.ID, models.Properties{
		"rsvp_status":     params.Status,
		"has_message":     params.Message != "",
		"previous_status": inv.RsvpStatus,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  params.Status,
	})
}
