package service

import (
	"context"

	appErr "github.com/souldream/backend/internal/errors"
	"github.com/souldream/backend/internal/model"
)

// emailFromContext extracts the authenticated user's email placed in the
// context by the auth middleware (or by a trusted internal caller).
func emailFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(model.ContextEmailKey)
	if val == nil {
		return "", appErr.NewUnauthorized("missing session identity")
	}
	email, ok := val.(string)
	if !ok || email == "" {
		return "", appErr.NewUnauthorized("invalid session identity")
	}
	return email, nil
}

// WithIdentity returns a context carrying the given email as the session
// identity. Used by trusted internal callers such as the kafka consumer.
func WithIdentity(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, model.ContextEmailKey, email)
}
