package model

import "time"

// Notification kinds, matching the preference flags a user can toggle.
const (
	KindTasks     = "tasks"
	KindGoals     = "goals"
	KindReminders = "reminders"
	KindSystem    = "system"
	KindMarketing = "marketing"
)

// Notification is the audit record of one send attempt. It is created
// before delivery so the intent to notify survives delivery failures.
type Notification struct {
	ID        string            `json:"id"`
	UserEmail string            `json:"user_email"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}

// Kind resolves the notification kind from the payload, defaulting to system.
func (n *Notification) Kind() string {
	if k, ok := n.Data["type"]; ok {
		switch k {
		case KindTasks, KindGoals, KindReminders, KindSystem, KindMarketing:
			return k
		}
	}
	return KindSystem
}

// Preferences holds a user's per-kind notification toggles.
type Preferences struct {
	UserEmail string `json:"user_email"`
	Tasks     bool   `json:"tasks"`
	Goals     bool   `json:"goals"`
	Reminders bool   `json:"reminders"`
	System    bool   `json:"system"`
	Marketing bool   `json:"marketing"`
}

// DefaultPreferences are returned for users who never saved any.
func DefaultPreferences(email string) Preferences {
	return Preferences{
		UserEmail: email,
		Tasks:     true,
		Goals:     true,
		Reminders: true,
		System:    true,
		Marketing: false,
	}
}

// Allows reports whether the given notification kind is enabled.
func (p Preferences) Allows(kind string) bool {
	switch kind {
	case KindTasks:
		return p.Tasks
	case KindGoals:
		return p.Goals
	case KindReminders:
		return p.Reminders
	case KindMarketing:
		return p.Marketing
	default:
		return p.System
	}
}

// DeviceToken identifies one installed app/browser instance's push endpoint.
// A user may hold several (multi-device); re-registering the same token only
// refreshes LastUpdated.
type DeviceToken struct {
	Token       string    `json:"token"`
	UserEmail   string    `json:"user_email"`
	LastUpdated time.Time `json:"last_updated"`
}

// NotificationEvent is the message produced to and consumed from kafka by
// internal components that want a notification delivered on their behalf.
type NotificationEvent struct {
	UserEmail string            `json:"user_email"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// ChannelResult aggregates one transport channel's outcome for a send.
type ChannelResult struct {
	Attempted    bool   `json:"attempted"`
	Success      bool   `json:"success"`
	SuccessCount int    `json:"successCount"`
	FailureCount int    `json:"failureCount"`
	SID          string `json:"sid,omitempty"`
}

// SendResult is the aggregate outcome of one fan-out.
type SendResult struct {
	Success      bool          `json:"success"`
	Skipped      bool          `json:"skipped,omitempty"`
	Notification *Notification `json:"notification"`
	Firebase     ChannelResult `json:"firebase"`
	Twilio       ChannelResult `json:"twilio"`
}
