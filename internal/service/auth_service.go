package service

import (
	"context"
	"log/slog"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	appErr "github.com/souldream/backend/internal/errors"
	"github.com/souldream/backend/internal/model"
	"github.com/souldream/backend/internal/storage"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type AuthService interface {
	Register(ctx context.Context, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	ValidateToken(token string) (userID, email string, err error)
}

type authService struct {
	store    storage.UserStorage
	logger   *slog.Logger
	tokenSvc TokenService
}

func NewAuthService(store storage.UserStorage, logger *slog.Logger, tokenSvc TokenService) AuthService {
	l := logger.With("layer", "service", "component", "authService")
	return &authService{store: store, logger: l, tokenSvc: tokenSvc}
}

func (s *authService) Register(ctx context.Context, email, password string) (*model.User, error) {
	s.logger.Info("Register called", slog.String("email", email))

	if !emailRe.MatchString(email) {
		return nil, appErr.NewBadRequest("invalid email")
	}
	if len(password) == 0 {
		return nil, appErr.NewBadRequest("password is required")
	}

	hashedPass, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Password hashing failed", slog.Any("error", err))
		return nil, appErr.NewInternal("password hashing failed")
	}

	createdUser, err := s.store.CreateUser(ctx, email, string(hashedPass))
	if err != nil {
		if appErr.IsConflict(err) {
			s.logger.Warn("User already exists", slog.String("email", email))
			return nil, err
		}
		s.logger.Error("User creation failed", slog.Any("error", err))
		return nil, appErr.NewInternal("user creation failed")
	}

	s.logger.Info("Register succeeded", slog.String("email", email))
	return createdUser, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	s.logger.Info("Login called", slog.String("email", email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			s.logger.Warn("User not found", slog.String("email", email))
			return nil, "", appErr.NewUnauthorized("invalid credentials")
		}
		s.logger.Error("Failed to fetch user", slog.String("email", email), slog.Any("error", err))
		return nil, "", appErr.NewInternal("login failed")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Warn("Invalid password", slog.String("email", email))
		return nil, "", appErr.NewUnauthorized("invalid credentials")
	}

	token, err := s.tokenSvc.GenerateToken(user)
	if err != nil {
		s.logger.Error("Token generation failed", slog.String("email", email))
		return nil, "", appErr.NewInternal("token generation failed")
	}

	s.logger.Info("Login succeeded", slog.String("email", email))
	return user, token, nil
}

func (s *authService) ValidateToken(token string) (string, string, error) {
	userID, email, err := s.tokenSvc.ValidateToken(token)
	if err != nil {
		s.logger.Info("Token validation failed", slog.String("error", err.Error()))
		return "", "", err
	}
	return userID, email, nil
}
