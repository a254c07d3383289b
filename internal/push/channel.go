// Package push contains the transport channels a notification can be
// fanned out through. Channels are independent: a failure in one must not
// prevent the others from being attempted.
package push

import "context"

// Message is one logical notification addressed to all of a user's devices.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
	// Tokens are the registered device tokens, used by push channels.
	Tokens []string
	// Phone is the optional SMS target, used by the Twilio channel.
	Phone string
}

// TokenResult is the per-device outcome of a push multicast.
type TokenResult struct {
	Token string
	OK    bool
	// Permanent marks tokens the provider reported as permanently invalid.
	// Those must be pruned; transient failures leave the token in place.
	Permanent bool
	Err       string
}

// Result aggregates one channel's outcome.
type Result struct {
	SuccessCount int
	FailureCount int
	SID          string
	TokenResults []TokenResult
}

// Channel delivers a message through one transport.
type Channel interface {
	Name() string
	Send(ctx context.Context, msg Message) (Result, error)
}
