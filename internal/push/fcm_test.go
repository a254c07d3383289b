package push

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

func TestFCMChannel_Send(t *testing.T) {
	var gotReq fcmRequest
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(fcmResponse{
			Success: 1,
			Failure: 2,
			Results: []struct {
				MessageID string `json:"message_id"`
				Error     string `json:"error"`
			}{
				{MessageID: "m1"},
				{Error: "NotRegistered"},
				{Error: "Unavailable"},
			},
		})
	}))
	defer srv.Close()

	ch := NewFCMChannel(config.FCMConfig{ServerKey: "k1", Endpoint: srv.URL}, slog.Default())

	res, err := ch.Send(context.Background(), Message{
		Title:  "t",
		Body:   "b",
		Tokens: []string{"tok-ok", "tok-dead", "tok-flaky"},
		Data:   map[string]string{"type": "goals"},
	})
	assert.NoError(t, err)

	// One multicast call carrying every token.
	assert.Equal(t, []string{"tok-ok", "tok-dead", "tok-flaky"}, gotReq.RegistrationIDs)
	assert.Equal(t, "t", gotReq.Notification.Title)
	assert.Equal(t, "key=k1", gotAuth)

	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, 2, res.FailureCount)

	if assert.Len(t, res.TokenResults, 3) {
		assert.True(t, res.TokenResults[0].OK)
		// NotRegistered is permanent, Unavailable is transient.
		assert.True(t, res.TokenResults[1].Permanent)
		assert.False(t, res.TokenResults[2].Permanent)
	}
}

func TestFCMChannel_Send_errors(t *testing.T) {
	t.Run("missing server key", func(t *testing.T) {
		ch := NewFCMChannel(config.FCMConfig{Endpoint: "http://localhost"}, slog.Default())
		_, err := ch.Send(context.Background(), Message{Tokens: []string{"tok"}})
		assert.Error(t, err)
	})

	t.Run("no tokens", func(t *testing.T) {
		ch := NewFCMChannel(config.FCMConfig{ServerKey: "k1", Endpoint: "http://localhost"}, slog.Default())
		_, err := ch.Send(context.Background(), Message{})
		assert.Error(t, err)
	})

	t.Run("upstream error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "server key mismatch", http.StatusUnauthorized)
		}))
		defer srv.Close()

		ch := NewFCMChannel(config.FCMConfig{ServerKey: "k1", Endpoint: srv.URL}, slog.Default())
		_, err := ch.Send(context.Background(), Message{Tokens: []string{"tok"}})
		assert.Error(t, err)
	})
}
