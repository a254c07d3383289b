package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	appErr "github.com/souldream/backend/internal/errors"
	"github.com/souldream/backend/internal/service"
)

type AuthHandler struct {
	authSvc service.AuthService
	logger  *slog.Logger
}

func NewAuthHandler(authSvc service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, logger: logger}
}

// Register handles user registration/signup.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid register payload", slog.String("error", err.Error()))
		respondError(w, appErr.NewBadRequest("invalid payload"))
		return
	}

	user, err := h.authSvc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, appErr.NewBadRequest("invalid payload"))
		return
	}

	user, token, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

// Validate checks a bearer token and echoes the identity it carries.
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		respondError(w, appErr.NewUnauthorized("missing bearer token"))
		return
	}

	userID, email, err := h.authSvc.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"user_id": userID,
		"email":   email,
	})
}
