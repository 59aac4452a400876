package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/knowyourrights/internal/config"
	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

func TestStatic_AlwaysUnavailable(t *testing.T) {
	text, err := Static{}.Complete(context.Background(), Request{Prompt: "x"})

	assert.Empty(t, text)
	var perr *models.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "static", perr.Provider)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNew_SelectsProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Generation
		wantName string
		wantErr  bool
	}{
		{name: "empty is static", cfg: config.Generation{}, wantName: "static"},
		{name: "openai", cfg: config.Generation{Provider: "openai", OpenAIKey: "sk-test", OpenAIModel: "gpt-3.5-turbo"}, wantName: "openai"},
		{name: "gemini", cfg: config.Generation{Provider: "gemini", GeminiKey: "key", GeminiModel: "gemini-2.0-flash"}, wantName: "gemini"},
		{name: "unknown", cfg: config.Generation{Provider: "bard"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(context.Background(), tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}

func chatServer(t *testing.T, status int, content string, got *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if got != nil {
			_ = json.NewDecoder(r.Body).Decode(got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-3.5-turbo",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAI_Complete(t *testing.T) {
	var body map[string]any
	srv := chatServer(t, http.StatusOK, `"I do not consent to searches."`, &body)

	p, err := NewOpenAI(config.Generation{
		OpenAIKey:         "sk-test",
		OpenAIModel:       "gpt-3.5-turbo",
		OpenAIBaseURL:     srv.URL,
		GenerationTimeout: 5 * time.Second,
	})
	require.NoError(t, err)

	text, err := p.Complete(context.Background(), Request{
		System:      "system prompt",
		Prompt:      "user prompt",
		MaxTokens:   300,
		Temperature: 0.3,
	})
	require.NoError(t, err)
	assert.Equal(t, `"I do not consent to searches."`, text)
	assert.Equal(t, "gpt-3.5-turbo", body["model"])
	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, messages, 2)
}

func TestOpenAI_CompleteFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		content string
	}{
		{name: "server error", status: http.StatusInternalServerError},
		{name: "empty answer", status: http.StatusOK, content: "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := chatServer(t, tt.status, tt.content, nil)
			p, err := NewOpenAI(config.Generation{
				OpenAIKey:     "sk-test",
				OpenAIModel:   "gpt-3.5-turbo",
				OpenAIBaseURL: srv.URL,
			})
			require.NoError(t, err)

			text, err := p.Complete(context.Background(), Request{System: "s", Prompt: "p", MaxTokens: 10})
			assert.Empty(t, text)
			var perr *models.ProviderError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, "openai", perr.Provider)
		})
	}
}
