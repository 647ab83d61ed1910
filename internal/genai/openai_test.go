package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evermore-app/evermore/internal/models"
)

func testMessageRequest() *MessageRequest {
	return &MessageRequest{
		SenderName:    "Alex",
		RecipientName: "Sam",
		TemplateID:    "classic",
		Memories: models.Memories{
			{Title: "First date", Description: "Coffee at the park"},
		},
		Hints: "they both love autumn",
	}
}

func chatServerResponse(t *testing.T, msg GeneratedMessage) string {
	t.Helper()
	content, err := json.Marshal(msg)
	require.NoError(t, err)
	resp := map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{"content": string(content)},
			},
		},
	}
	b, err := json.Marshal(resp)
	require.NoError(t, err)
	return string(b)
}

func newMessageGenerator(t *testing.T, serverURL string) *MessageGenerator {
	t.Helper()
	return NewMessageGenerator(&Config{
		OpenAIAPIKey:  "test-key",
		OpenAIBaseURL: serverURL,
		GeminiAPIKey:  "unused",
	})
}

func TestGenerateMessage_Success(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatServerResponse(t, GeneratedMessage{
			Message:  "Sam, meet me where it all began.",
			Tagline:  "Every day, still you",
			StoryArc: "From a park bench to forever.",
		})))
	}))
	defer server.Close()

	g := newMessageGenerator(t, server.URL)
	result, err := g.GenerateMessage(context.Background(), testMessageRequest())
	require.NoError(t, err)

	assert.Equal(t, "Sam, meet me where it all began.", result.Message)
	assert.Equal(t, "Every day, still you", result.Tagline)
	assert.Equal(t, "From a park bench to forever.", result.StoryArc)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "json_schema", gotBody.ResponseFormat.Type)
	assert.True(t, gotBody.ResponseFormat.JSONSchema.Strict)
	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
	assert.Contains(t, gotBody.Messages[0].Content, "elegant, timeless romantic tone")
	assert.Contains(t, gotBody.Messages[1].Content, "from Alex to Sam")
	assert.Contains(t, gotBody.Messages[1].Content, "Coffee at the park")
	assert.Contains(t, gotBody.Messages[1].Content, "they both love autumn")
}

func TestGenerateMessage_CacheHit(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(chatServerResponse(t, GeneratedMessage{
			Message: "m", Tagline: "t", StoryArc: "s",
		})))
	}))
	defer server.Close()

	g := newMessageGenerator(t, server.URL)

	first, err := g.GenerateMessage(context.Background(), testMessageRequest())
	require.NoError(t, err)
	second, err := g.GenerateMessage(context.Background(), testMessageRequest())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load(), "identical request must be served from cache")
}

func TestGenerateMessage_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(chatServerResponse(t, GeneratedMessage{
			Message: "m", Tagline: "t", StoryArc: "s",
		})))
	}))
	defer server.Close()

	g := newMessageGenerator(t, server.URL)
	result, err := g.GenerateMessage(context.Background(), testMessageRequest())
	require.NoError(t, err)

	assert.Equal(t, "m", result.Message)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGenerateMessage_Errors(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		contains string
	}{
		{
			name: "api error payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error": {"message": "invalid model", "type": "invalid_request_error"}}`))
			},
			contains: "API error 400",
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"choices": []}`))
			},
			contains: "no content",
		},
		{
			name: "content is not the expected shape",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"choices": [{"message": {"content": "plain prose, not json"}}]}`))
			},
			contains: "parse generated message",
		},
		{
			name: "empty message field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"choices": [{"message": {"content": "{\"message\":\"\",\"tagline\":\"t\",\"storyArc\":\"s\"}"}}]}`))
			},
			contains: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			g := newMessageGenerator(t, server.URL)
			_, err := g.GenerateMessage(context.Background(), testMessageRequest())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}
