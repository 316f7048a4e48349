package narrative

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss-activity/apperr"
)

func TestNewOpenAICompleter_EmptyKey(t *testing.T) {
	_, err := NewOpenAICompleter("")
	assert.ErrorIs(t, err, apperr.ErrMissingAPIKey)
	assert.Equal(t, 2, apperr.ExitCode(err))
}

func TestOpenAICompleter_Complete(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id": "x", "object": "chat.completion", "model": "gpt-4",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "report body"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15}}`)
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = srv.URL + "/v1"
	c := newOpenAICompleterWithConfig(cfg)

	text, usage, err := c.Complete(context.Background(), "hello", "gpt-4", 256, 0.7)
	require.NoError(t, err)
	assert.Equal(t, "report body", text)
	assert.Equal(t, Usage{PromptTokens: 12, CompletionTokens: 3, TotalTokens: 15, Model: "gpt-4"}, usage)

	assert.Equal(t, "gpt-4", got.Model)
	assert.Equal(t, 256, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, openai.ChatMessageRoleUser, got.Messages[0].Role)
	assert.Equal(t, "hello", got.Messages[0].Content)
}

func TestOpenAICompleter_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error": {"message": "bad key", "type": "invalid_request_error"}}`)
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("sk-bad")
	cfg.BaseURL = srv.URL + "/v1"
	_, _, err := newOpenAICompleterWithConfig(cfg).Complete(context.Background(), "p", "gpt-4", 0, 0.7)
	assert.ErrorIs(t, err, apperr.ErrFetch)
}
