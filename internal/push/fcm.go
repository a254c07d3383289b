package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/souldream/backend/internal/config"
)

// Error strings FCM reports for tokens that will never work again.
// Everything else is treated as transient.
var permanentFCMErrors = map[string]bool{
	"NotRegistered":       true,
	"InvalidRegistration": true,
	"MismatchSenderId":    true,
}

type fcmRequest struct {
	RegistrationIDs []string          `json:"registration_ids"`
	Notification    fcmNotification   `json:"notification"`
	Data            map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

// FCMChannel sends a multicast push through Firebase Cloud Messaging.
type FCMChannel struct {
	endpoint  string
	serverKey string
	client    *http.Client
	logger    *slog.Logger
}

func NewFCMChannel(cfg config.FCMConfig, logger *slog.Logger) *FCMChannel {
	return &FCMChannel{
		endpoint:  cfg.Endpoint,
		serverKey: cfg.ServerKey,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger.With("component", "fcmChannel"),
	}
}

func (c *FCMChannel) Name() string { return "firebase" }

// Send delivers the message to every token in one multicast call and maps
// the per-token results, flagging permanently invalid tokens for pruning.
func (c *FCMChannel) Send(ctx context.Context, msg Message) (Result, error) {
	if c.serverKey == "" {
		return Result{}, fmt.Errorf("fcm server key is not set")
	}
	if len(msg.Tokens) == 0 {
		return Result{}, fmt.Errorf("no tokens to send to")
	}

	body, err := json.Marshal(fcmRequest{
		RegistrationIDs: msg.Tokens,
		Notification:    fcmNotification{Title: msg.Title, Body: msg.Body},
		Data:            msg.Data,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal fcm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create fcm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fcm request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read fcm response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("fcm returned status %d: %s", resp.StatusCode, respBody)
	}

	var parsed fcmResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Result{}, fmt.Errorf("failed to unmarshal fcm response: %w", err)
	}

	result := Result{SuccessCount: parsed.Success, FailureCount: parsed.Failure}
	for i, r := range parsed.Results {
		if i >= len(msg.Tokens) {
			break
		}
		tr := TokenResult{Token: msg.Tokens[i], OK: r.Error == ""}
		if r.Error != "" {
			tr.Err = r.Error
			tr.Permanent = permanentFCMErrors[r.Error]
			c.logger.Warn("fcm token delivery failed",
				slog.String("error", r.Error),
				slog.Bool("permanent", tr.Permanent))
		}
		result.TokenResults = append(result.TokenResults, tr)
	}
	return result, nil
}
