package chat

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

// systemPrompt steers the assistant towards goal coaching and a parseable
// task suggestion format the dashboard understands.
const systemPrompt = "Eres un asistente de productividad que ayuda a las personas a alcanzar sus metas. " +
	"Cuando sugieras tareas, formátealas así: 'TASK: [título de la tarea]\nDESCRIPTION: [descripción detallada]'"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client talks to an OpenAI-compatible chat completions upstream.
type Client struct {
	baseURL      string
	apiKey       string
	defaultModel string
	httpClient   *http.Client
	logger       *slog.Logger
}

func NewClient(cfg config.ChatConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		defaultModel: cfg.Model,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		logger:       logger.With("component", "chatClient"),
	}
}

// Complete sends a single user message prefixed by the coaching system prompt
// and returns the assistant's reply. An empty model selects the configured
// default.
func (c *Client) Complete(ctx context.Context, message, model string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("chat api key is not set")
	}
	if model == "" {
		model = c.defaultModel
	}

	body, err := json.Marshal(completionRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: message},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("chat upstream returned an error",
			slog.Int("status", resp.StatusCode),
			slog.String("model", model))
		return "", fmt.Errorf("chat upstream returned status %d: %s", resp.StatusCode, respBody)
	}

	var parsed completionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to unmarshal chat response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("chat upstream error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat upstream returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
