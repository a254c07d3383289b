package storage

import (
	"context"

	"github.com/souldream/backend/internal/model"
)

// NotificationStorage defines DB operations for notification records,
// device tokens and per-user preferences. It is the single source of truth
// for tokens; no in-process map may shadow it.
type NotificationStorage interface {
	SaveNotification(ctx context.Context, n *model.Notification) error
	FindNotificationByID(ctx context.Context, id string) (*model.Notification, error)
	FindNotificationsByUser(ctx context.Context, email string, limit int) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) (*model.Notification, error)

	UpsertToken(ctx context.Context, token *model.DeviceToken) error
	FindTokensByUser(ctx context.Context, email string) ([]model.DeviceToken, error)
	DeleteTokens(ctx context.Context, tokens []string) error

	GetPreferences(ctx context.Context, email string) (*model.Preferences, error)
	UpsertPreferences(ctx context.Context, prefs *model.Preferences) error

	Ping(ctx context.Context) error
}

// GoalStorage defines DB operations for goals.
type GoalStorage interface {
	SaveGoal(ctx context.Context, g *model.Goal) error
	FindGoalByID(ctx context.Context, id string) (*model.Goal, error)
	FindGoalsByUser(ctx context.Context, email string) ([]model.Goal, error)
	UpdateGoalStatus(ctx context.Context, id, status string) error
	Ping(ctx context.Context) error
}

// UserStorage defines DB operations for user accounts.
type UserStorage interface {
	CreateUser(ctx context.Context, email, hashedPass string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	Ping(ctx context.Context) error
}
