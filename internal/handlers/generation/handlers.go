// Package generation fronts the content generation gateway: AI message
// and artwork endpoints the creation wizard calls before an invitation
// is ever persisted.
package generation

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/evermore-app/evermore/internal/analytics"
	"github.com/evermore-app/evermore/internal/genai"
	"github.com/evermore-app/evermore/internal/imagestore"
	"github.com/evermore-app/evermore/internal/models"
)

var (
	logger = log.With().Str("component", "generation").Logger()
)

type Handler struct {
	messages  *genai.MessageGenerator
	images    *genai.ImageGenerator
	store     *imagestore.Store // nil: inline generated images as data URLs
	analytics *analytics.Logger
}

func NewHandler(messages *genai.MessageGenerator, images *genai.ImageGenerator, store *imagestore.Store, analytics *analytics.Logger) *Handler {
	return &Handler{
		messages:  messages,
		images:    images,
		store:     store,
		analytics: analytics,
	}
}

func (h *Handler) RegisterHandlers(rg *gin.RouterGroup) {
	rg.POST("/generate-message", h.handleGenerateMessage)
	rg.POST("/generate-image", h.handleGenerateImage)
}

type memoryParams struct {
	Title       string `json:"title" binding:"required,max=100"`
	Description string `json:"description" binding:"required,max=1000"`
}

type generateMessageParams struct {
	SenderName    string         `json:"senderName" binding:"required,max=100"`
	RecipientName string         `json:"recipientName" binding:"required,max=100"`
	TemplateID    string         `json:"templateId" binding:"required,oneof=classic bold playful minimal"`
	Memories      []memoryParams `json:"memories" binding:"required,min=1,max=3,dive"`
	Hints         string         `json:"hints" binding:"omitempty,max=1000"`
}

func (h *Handler) handleGenerateMessage(c *gin.Context) {
	params := &generateMessageParams{}
	if err := c.ShouldBindJSON(params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.messages.GenerateMessage(c.Request.Context(), &genai.MessageRequest{
		SenderName:    params.SenderName,
		RecipientName: params.RecipientName,
		TemplateID:    params.TemplateID,
		Memories:      toMemories(params.Memories),
		Hints:         params.Hints,
	})
	if err != nil {
		logger.Error().Err(err).Str("template_id", params.TemplateID).Msg("Message generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate message"})
		return
	}

	h.analytics.Log(c, models.EventMessageGenerated, "", models.Properties{
		"template_id":    params.TemplateID,
		"memories_count": len(params.Memories),
		"has_hints":      params.Hints != "",
	})

	c.JSON(http.StatusOK, result)
}

type generateImageParams struct {
	TemplateID       string         `json:"templateId" binding:"required,oneof=classic bold playful minimal"`
	SenderName       string         `json:"senderName" binding:"required,max=100"`
	RecipientName    string         `json:"recipientName" binding:"required,max=100"`
	Tagline          string         `json:"tagline" binding:"omitempty,max=200"`
	Memories         []memoryParams `json:"memories" binding:"omitempty,max=3,dive"`
	ImageDescription string         `json:"imageDescription" binding:"omitempty,max=1000"`
	Hints            string         `json:"hints" binding:"omitempty,max=1000"`
}

// handleGenerateImage never fails the flow: any gateway problem
// degrades to {imageUrl: null, fallback: true} and the wizard renders a
// placeholder.
func (h *Handler) handleGenerateImage(c *gin.Context) {
	params := &generateImageParams{}
	if err := c.ShouldBindJSON(params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	img, err := h.images.GenerateImage(c.Request.Context(), &genai.ImageRequest{
		TemplateID:       params.TemplateID,
		SenderName:       params.SenderName,
		RecipientName:    params.RecipientName,
		Tagline:          params.Tagline,
		Memories:         toMemories(params.Memories),
		ImageDescription: params.ImageDescription,
		Hints:            params.Hints,
	})
	if err != nil {
		logger.Error().Err(err).Str("template_id", params.TemplateID).Msg("Image generation failed")
	}
	if err != nil || img == nil {
		h.logImageEvent(c, params.TemplateID, true)
		c.JSON(http.StatusOK, gin.H{
			"imageUrl": nil,
			"fallback": true,
		})
		return
	}

	imageURL := h.imageURL(img)

	h.logImageEvent(c, params.TemplateID, false)
	c.JSON(http.StatusOK, gin.H{"imageUrl": imageURL})
}

// imageURL uploads the blob when a store is configured, otherwise
// inlines it as a data URL.
func (h *Handler) imageURL(img *genai.GeneratedImage) string {
	if h.store != nil {
		url, err := h.store.Save(img.Data, img.MIMEType)
		if err == nil {
			return url
		}
		logger.Error().Err(err).Msg("Failed to store generated image, inlining instead")
	}
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

func (h *Handler) logImageEvent(c *gin.Context, templateID string, fallback bool) {
	h.analytics.Log(c, models.EventImageGenerated, "", models.Properties{
		"template_id":   templateID,
		"fallback_used": fallback,
	})
}

func toMemories(params []memoryParams) models.Memories {
	memories := make(models.Memories, 0, len(params))
	for _, m := range params {
		memories = append(memories, models.Memory{Title: m.Title, Description: m.Description})
	}
	return memories
}
