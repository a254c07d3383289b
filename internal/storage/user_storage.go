package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	appErr "github.com/souldream/backend/internal/errors"
	"github.com/souldream/backend/internal/model"
)

type userStorage struct {
	db *pgxpool.Pool
}

func NewUserStorage(pool *pgxpool.Pool) UserStorage {
	return &userStorage{db: pool}
}

func (s *userStorage) CreateUser(ctx context.Context, email, hashedPass string) (*model.User, error) {
	id := uuid.New().String()
	now := time.Now()
	const query = `
		INSERT INTO users (id, email, password, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.Exec(ctx, query, id, email, hashedPass, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, appErr.NewConflict("user %s already exists", email)
		}
		return nil, fmt.Errorf("create user failed: %w", err)
	}

	return &model.User{
		ID:        id,
		Email:     email,
		Password:  hashedPass,
		CreatedAt: now,
	}, nil
}

func (s *userStorage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	const query = `
		SELECT id, email, password, created_at
		FROM users
		WHERE email = $1
	`
	var user model.User
	err := s.db.QueryRow(ctx, query, email).Scan(&user.ID, &user.Email, &user.Password, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, appErr.NewNotFound("user %s not found", email)
		}
		return nil, fmt.Errorf("get user failed: %w", err)
	}
	return &user, nil
}

func (s *userStorage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
