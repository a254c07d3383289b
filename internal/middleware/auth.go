package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/souldream/backend/internal/model"
	"github.com/souldream/backend/internal/service"
)

// EmailFromContext returns the authenticated user's email, if any.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(model.ContextEmailKey).(string)
	return email, ok
}

// AuthMiddleware validates the bearer token and stores the session identity
// (user id and email) in the request context. Every ownership check
// downstream compares against this identity; no endpoint may rely on
// session presence alone.
func AuthMiddleware(authSvc service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, "missing or malformed token", http.StatusUnauthorized)
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			userID, email, err := authSvc.ValidateToken(tokenStr)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), model.ContextUserIDKey, userID)
			ctx = context.WithValue(ctx, model.ContextEmailKey, email)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
