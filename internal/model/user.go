package model

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// contextKey is private so no other package can collide with our keys.
type contextKey string

const (
	// ContextUserIDKey carries the authenticated user's id through the request.
	ContextUserIDKey contextKey = "user_id"
	// ContextEmailKey carries the authenticated user's email through the request.
	ContextEmailKey contextKey = "email"
)
