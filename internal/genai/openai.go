package genai

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

const (
	messageCacheTTL = time.Hour
	maxCachedMsgs   = 10000
)

// messageSchema is the strict JSON schema the model must emit.
const messageSchema = `{
	"type": "object",
	"properties": {
		"message": {
			"type": "string",
			"description": "The poetic invitation text, 2-3 short paragraphs, max 120 words. Warm, personal, romantic."
		},
		"tagline": {
			"type": "string",
			"description": "A short romantic tagline (one line, under 10 words)."
		},
		"storyArc": {
			"type": "string",
			"description": "A brief narrative summary of their love story (1-2 sentences)."
		}
	},
	"required": ["message", "tagline", "storyArc"],
	"additionalProperties": false
}`

// MessageGenerator produces invitation text via the OpenAI chat
// completions API. Identical requests within the cache TTL are served
// from memory instead of re-billing the provider.
type MessageGenerator struct {
	apiKey  string
	baseURL string
	model   string
	httpc   *http.Client
	cache   *ristretto.Cache[string, *GeneratedMessage]
}

func NewMessageGenerator(cfg *Config) *MessageGenerator {
	cfg.applyDefaults()

	cache, err := ristretto.NewCache(&ristretto.Config[string, *GeneratedMessage]{
		NumCounters: maxCachedMsgs,
		MaxCost:     maxCachedMsgs,
		BufferItems: 64,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create message cache")
	}

	return &MessageGenerator{
		apiKey:  cfg.OpenAIAPIKey,
		baseURL: strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		model:   cfg.OpenAIModel,
		httpc:   cfg.httpClient(),
		cache:   cache,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type jsonSchemaFormat struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

type responseFormat struct {
	Type       string           `json:"type"`
	JSONSchema jsonSchemaFormat `json:"json_schema"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// GenerateMessage asks the model for an invitation message, tagline and
// story arc in the template's tone.
func (g *MessageGenerator) GenerateMessage(ctx context.Context, req *MessageRequest) (*GeneratedMessage, error) {
	system, user := buildMessagePrompts(req)

	key := g.cacheKey(system, user)
	if cached, ok := g.cache.Get(key); ok {
		return cached, nil
	}

	body := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: responseFormat{
			Type: "json_schema",
			JSONSchema: jsonSchemaFormat{
				Name:   "invitation_message",
				Strict: true,
				Schema: json.RawMessage(messageSchema),
			},
		},
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	endpoint := g.baseURL + "/chat/completions"
	resp, err := doWithRetry(ctx, g.httpc, func() (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set("Authorization", "Bearer "+g.apiKey)
		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("chat completion API error %d: %s", resp.StatusCode, string(raw))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("chat completion API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("chat completion returned no content")
	}

	result := &GeneratedMessage{}
	if err := json.Unmarshal([]byte(parsed.Choices[0].Message.Content), result); err != nil {
		return nil, fmt.Errorf("parse generated message: %w", err)
	}
	if result.Message == "" {
		return nil, fmt.Errorf("generated message is empty")
	}

	g.cache.SetWithTTL(key, result, 1, messageCacheTTL)
	g.cache.Wait()

	return result, nil
}

func (g *MessageGenerator) cacheKey(system, user string) string {
	h := sha256.New()
	io.WriteString(h, g.model)
	io.WriteString(h, "\x00")
	io.WriteString(h, system)
	io.WriteString(h, "\x00")
	io.WriteString(h, user)
	return hex.EncodeToString(h.Sum(nil))
}
