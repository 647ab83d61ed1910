// Package genai talks to the external text and image generation
// providers. Both clients parse provider responses into explicit
// contract types at the boundary; nothing downstream sees raw provider
// payloads.
package genai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/evermore-app/evermore/internal/models"
)

var (
	logger = log.With().Str("component", "genai").Logger()
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-5-nano"

	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.5-flash-preview-05-20"

	defaultTimeoutSeconds = 30

	retryAttempts = 3
	retryDelay    = 500 * time.Millisecond
)

type Config struct {
	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	OpenAIModel   string `yaml:"openai_model"`

	GeminiAPIKey  string `yaml:"gemini_api_key"`
	GeminiBaseURL string `yaml:"gemini_base_url"`
	GeminiModel   string `yaml:"gemini_model"`

	TimeoutSeconds int `yaml:"timeout_seconds"`
}

func (c *Config) applyDefaults() {
	if c.OpenAIBaseURL == "" {
		c.OpenAIBaseURL = defaultOpenAIBaseURL
	}
	if c.OpenAIModel == "" {
		c.OpenAIModel = defaultOpenAIModel
	}
	if c.GeminiBaseURL == "" {
		c.GeminiBaseURL = defaultGeminiBaseURL
	}
	if c.GeminiModel == "" {
		c.GeminiModel = defaultGeminiModel
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func (c *Config) Validate() {
	if c.OpenAIAPIKey == "" {
		logger.Fatal().Msg("OpenAIAPIKey is missing")
	}
	if c.GeminiAPIKey == "" {
		logger.Fatal().Msg("GeminiAPIKey is missing")
	}
	c.applyDefaults()
}

func (c *Config) httpClient() *http.Client {
	c.applyDefaults()
	return &http.Client{Timeout: time.Duration(c.TimeoutSeconds) * time.Second}
}

// MessageRequest carries the creative inputs for text generation.
type MessageRequest struct {
	SenderName    string
	RecipientName string
	TemplateID    string
	Memories      models.Memories
	Hints         string
}

// GeneratedMessage is the text generation contract: the invitation body
// plus a tagline reused by image generation and the recipient view.
type GeneratedMessage struct {
	Message  string `json:"message"`
	Tagline  string `json:"tagline"`
	StoryArc string `json:"storyArc"`
}

// ImageRequest carries the creative inputs for artwork generation.
type ImageRequest struct {
	TemplateID       string
	SenderName       string
	RecipientName    string
	Tagline          string
	Memories         models.Memories
	ImageDescription string
	Hints            string
}

// GeneratedImage holds decoded artwork bytes. A nil result with nil
// error means the provider produced no usable image and the caller
// should fall back to a placeholder.
type GeneratedImage struct {
	Data     []byte
	MIMEType string
}

// doWithRetry issues the request built by build, retrying transport
// errors, 429s and 5xx responses with backoff. build must return a
// fresh request each attempt so the body can be re-read.
func doWithRetry(ctx context.Context, httpc *http.Client, build func() (*http.Request, error)) (*http.Response, error) {
	var resp *http.Response
	err := retry.Do(
		func() error {
			req, err := build()
			if err != nil {
				return retry.Unrecoverable(err)
			}
			r, err := httpc.Do(req)
			if err != nil {
				return err
			}
			if r.StatusCode == http.StatusTooManyRequests || r.StatusCode >= 500 {
				r.Body.Close()
				return fmt.Errorf("provider returned status %d", r.StatusCode)
			}
			resp = r
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
