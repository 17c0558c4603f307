package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/openai/openai-go/option"
)

func TestOpenAIComplete(t *testing.T) {
	var gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-4o-mini",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]interface{}{"role": "assistant", "content": "```json\n{}\n```"},
				},
			},
		})
	}))
	defer srv.Close()

	client := NewOpenAIClient("test-key", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))

	got, err := client.Complete(context.Background(), "summarize this")

	assert.Equal(t, nil, err)
	assert.Equal(t, true, strings.HasSuffix(gotPath, "/chat/completions"))
	assert.Equal(t, "```json\n{}\n```", got.Text)
	assert.Equal(t, "gpt-4o-mini", got.ModelVersion)
}

func TestOpenAICompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient("test-key", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))

	_, err := client.Complete(context.Background(), "summarize this")

	assert.NotEqual(t, nil, err)
}
