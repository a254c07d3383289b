package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/souldream/backend/internal/config"
)

// TwilioChannel sends the notification body as an SMS through the Twilio
// Messages API. The target phone number comes from the notification data;
// without one the channel reports failure and the push channel carries the
// message alone.
type TwilioChannel struct {
	endpoint   string
	accountSID string
	authToken  string
	from       string
	client     *http.Client
	logger     *slog.Logger
}

func NewTwilioChannel(cfg config.TwilioConfig, logger *slog.Logger) *TwilioChannel {
	return &TwilioChannel{
		endpoint:   cfg.Endpoint,
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.FromNumber,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger.With("component", "twilioChannel"),
	}
}

func (c *TwilioChannel) Name() string { return "twilio" }

func (c *TwilioChannel) Send(ctx context.Context, msg Message) (Result, error) {
	if c.accountSID == "" || c.authToken == "" {
		return Result{}, fmt.Errorf("twilio credentials are not set")
	}
	if msg.Phone == "" {
		return Result{}, fmt.Errorf("no phone number in notification data")
	}

	form := url.Values{}
	form.Set("To", msg.Phone)
	form.Set("From", c.from)
	form.Set("Body", msg.Title+": "+msg.Body)

	apiURL := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.endpoint, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create twilio request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read twilio response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("twilio returned status %d: %s", resp.StatusCode, respBody)
	}

	var parsed struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Result{}, fmt.Errorf("failed to unmarshal twilio response: %w", err)
	}

	c.logger.Info("twilio message sent", slog.String("sid", parsed.SID))
	return Result{SuccessCount: 1, SID: parsed.SID}, nil
}
