package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/souldream/backend/internal/config"
)

func TestClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))

		var req completionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "qwen/qwq-32b:online", req.Model)
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, "user", req.Messages[1].Role)
			assert.Equal(t, "hola", req.Messages[1].Content)
		}

		json.NewEncoder(w).Encode(completionResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{
				{Message: chatMessage{Role: "assistant", Content: "TASK: estudiar"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(config.ChatConfig{
		BaseURL: srv.URL,
		APIKey:  "key-1",
		Model:   "qwen/qwq-32b:online",
	}, slog.Default())

	reply, err := c.Complete(context.Background(), "hola", "")
	assert.NoError(t, err)
	assert.Equal(t, "TASK: estudiar", reply)
}

func TestClient_Complete_errors(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		c := NewClient(config.ChatConfig{BaseURL: "http://localhost"}, slog.Default())
		_, err := c.Complete(context.Background(), "hola", "")
		assert.Error(t, err)
	})

	t.Run("upstream error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model overloaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		c := NewClient(config.ChatConfig{BaseURL: srv.URL, APIKey: "key-1"}, slog.Default())
		_, err := c.Complete(context.Background(), "hola", "")
		assert.Error(t, err)
	})

	t.Run("empty choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		c := NewClient(config.ChatConfig{BaseURL: srv.URL, APIKey: "key-1"}, slog.Default())
		_, err := c.Complete(context.Background(), "hola", "")
		assert.Error(t, err)
	})
}
