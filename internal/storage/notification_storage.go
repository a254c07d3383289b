package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	appErr "github.com/souldream/backend/internal/errors"
	"github.com/souldream/backend/internal/model"
)

type notificationStorage struct {
	db *pgxpool.Pool
}

func NewNotificationStorage(pool *pgxpool.Pool) NotificationStorage {
	return &notificationStorage{db: pool}
}

func (s *notificationStorage) SaveNotification(ctx context.Context, n *model.Notification) error {
	const query = `
		INSERT INTO notifications (id, user_email, title, body, data, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.Exec(ctx, query, n.ID, n.UserEmail, n.Title, n.Body, n.Data, n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("save notification failed: %w", err)
	}
	return nil
}

func (s *notificationStorage) FindNotificationByID(ctx context.Context, id string) (*model.Notification, error) {
	const query = `
		SELECT id, user_email, title, body, data, read, created_at
		FROM notifications
		WHERE id = $1
	`
	var n model.Notification
	err := s.db.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.UserEmail, &n.Title, &n.Body, &n.Data, &n.Read, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, appErr.NewNotFound("notification %s not found", id)
		}
		return nil, fmt.Errorf("find notification failed: %w", err)
	}
	return &n, nil
}

func (s *notificationStorage) FindNotificationsByUser(ctx context.Context, email string, limit int) ([]model.Notification, error) {
	const query = `
		SELECT id, user_email, title, body, data, read, created_at
		FROM notifications
		WHERE user_email = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.Query(ctx, query, email, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications failed: %w", err)
	}
	defer rows.Close()

	var notifs []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserEmail, &n.Title, &n.Body, &n.Data, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification failed: %w", err)
		}
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

func (s *notificationStorage) MarkNotificationRead(ctx context.Context, id string) (*model.Notification, error) {
	const query = `
		UPDATE notifications SET read = TRUE
		WHERE id = $1
		RETURNING id, user_email, title, body, data, read, created_at
	`
	var n model.Notification
	err := s.db.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.UserEmail, &n.Title, &n.Body, &n.Data, &n.Read, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, appErr.NewNotFound("notification %s not found", id)
		}
		return nil, fmt.Errorf("mark read failed: %w", err)
	}
	return &n, nil
}

func (s *notificationStorage) UpsertToken(ctx context.Context, token *model.DeviceToken) error {
	const query = `
		INSERT INTO notification_tokens (token, user_email, last_updated)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE SET last_updated = EXCLUDED.last_updated
	`
	if token.LastUpdated.IsZero() {
		token.LastUpdated = time.Now()
	}
	_, err := s.db.Exec(ctx, query, token.Token, token.UserEmail, token.LastUpdated)
	if err != nil {
		return fmt.Errorf("upsert token failed: %w", err)
	}
	return nil
}

func (s *notificationStorage) FindTokensByUser(ctx context.Context, email string) ([]model.DeviceToken, error) {
	const query = `
		SELECT token, user_email, last_updated
		FROM notification_tokens
		WHERE user_email = $1
	`
	rows, err := s.db.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("list tokens failed: %w", err)
	}
	defer rows.Close()

	var tokens []model.DeviceToken
	for rows.Next() {
		var t model.DeviceToken
		if err := rows.Scan(&t.Token, &t.UserEmail, &t.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan token failed: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// DeleteTokens removes the given tokens in one batched statement. Deleting
// an already-absent token is a no-op, so the prune step stays idempotent.
func (s *notificationStorage) DeleteTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	const query = `DELETE FROM notification_tokens WHERE token = ANY($1)`
	if _, err := s.db.Exec(ctx, query, tokens); err != nil {
		return fmt.Errorf("delete tokens failed: %w", err)
	}
	return nil
}

func (s *notificationStorage) GetPreferences(ctx context.Context, email string) (*model.Preferences, error) {
	const query = `
		SELECT user_email, tasks, goals, reminders, system, marketing
		FROM notification_preferences
		WHERE user_email = $1
	`
	var p model.Preferences
	err := s.db.QueryRow(ctx, query, email).Scan(
		&p.UserEmail, &p.Tasks, &p.Goals, &p.Reminders, &p.System, &p.Marketing,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, appErr.NewNotFound("preferences for %s not found", email)
		}
		return nil, fmt.Errorf("get preferences failed: %w", err)
	}
	return &p, nil
}

func (s *notificationStorage) UpsertPreferences(ctx context.Context, prefs *model.Preferences) error {
	const query = `
		INSERT INTO notification_preferences (user_email, tasks, goals, reminders, system, marketing)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_email) DO UPDATE SET
			tasks = EXCLUDED.tasks,
			goals = EXCLUDED.goals,
			reminders = EXCLUDED.reminders,
			system = EXCLUDED.system,
			marketing = EXCLUDED.marketing
	`
	_, err := s.db.Exec(ctx, query,
		prefs.UserEmail, prefs.Tasks, prefs.Goals, prefs.Reminders, prefs.System, prefs.Marketing,
	)
	if err != nil {
		return fmt.Errorf("upsert preferences failed: %w", err)
	}
	return nil
}

func (s *notificationStorage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
