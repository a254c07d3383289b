package service

import (
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appErr "github.com/souldream/backend/internal/errors"
	"github.com/souldream/backend/internal/model"
)

// TokenService issues and validates session tokens.
type TokenService interface {
	GenerateToken(user *model.User) (string, error)
	ValidateToken(tokenStr string) (userID, email string, err error)
}

type jwtService struct {
	secret     string
	expiryTime time.Duration
	logger     *slog.Logger
}

func NewJWTService(secret string, expiry time.Duration, logger *slog.Logger) TokenService {
	return &jwtService{
		secret:     secret,
		expiryTime: expiry,
		logger:     logger.With("layer", "service", "component", "jwtService"),
	}
}

func (s *jwtService) GenerateToken(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"exp":   time.Now().Add(s.expiryTime).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func (s *jwtService) ValidateToken(tokenStr string) (string, string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErr.NewUnauthorized("unexpected signing method")
		}
		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid {
		return "", "", appErr.NewUnauthorized("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", appErr.NewUnauthorized("malformed token claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return "", "", appErr.NewUnauthorized("missing subject claim")
	}
	email, ok := claims["email"].(string)
	if !ok {
		return "", "", appErr.NewUnauthorized("missing email claim")
	}
	return sub, email, nil
}
