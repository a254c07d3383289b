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

type goalStorage struct {
	db *pgxpool.Pool
}

func NewGoalStorage(pool *pgxpool.Pool) GoalStorage {
	return &goalStorage{db: pool}
}

func (s *goalStorage) SaveGoal(ctx context.Context, g *model.Goal) error {
	const query = `
		INSERT INTO goals (id, user_email, title, description, category, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.Exec(ctx, query,
		g.ID, g.UserEmail, g.Title, g.Description, g.Category, g.Status, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save goal failed: %w", err)
	}
	return nil
}

func (s *goalStorage) FindGoalByID(ctx context.Context, id string) (*model.Goal, error) {
	const query = `
		SELECT id, user_email, title, description, category, status, created_at, updated_at
		FROM goals
		WHERE id = $1
	`
	var g model.Goal
	err := s.db.QueryRow(ctx, query, id).Scan(
		&g.ID, &g.UserEmail, &g.Title, &g.Description, &g.Category, &g.Status, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, appErr.NewNotFound("goal %s not found", id)
		}
		return nil, fmt.Errorf("find goal failed: %w", err)
	}
	return &g, nil
}

func (s *goalStorage) FindGoalsByUser(ctx context.Context, email string) ([]model.Goal, error) {
	const query = `
		SELECT id, user_email, title, description, category, status, created_at, updated_at
		FROM goals
		WHERE user_email = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("list goals failed: %w", err)
	}
	defer rows.Close()

	var goals []model.Goal
	for rows.Next() {
		var g model.Goal
		if err := rows.Scan(&g.ID, &g.UserEmail, &g.Title, &g.Description, &g.Category, &g.Status, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan goal failed: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *goalStorage) UpdateGoalStatus(ctx context.Context, id, status string) error {
	const query = `UPDATE goals SET status = $1, updated_at = $2 WHERE id = $3`
	res, err := s.db.Exec(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update goal status failed: %w", err)
	}
	if res.RowsAffected() == 0 {
		return appErr.NewNotFound("goal %s not found", id)
	}
	return nil
}

func (s *goalStorage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
