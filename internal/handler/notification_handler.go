package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	appErr "github.com/souldream/backend/internal/errors"
	"github.com/souldream/backend/internal/middleware"
	"github.com/souldream/backend/internal/model"
	"github.com/souldream/backend/internal/service"
)

type NotificationHandler struct {
	notifSvc service.NotificationService
	prefSvc  service.PreferenceService
	logger   *slog.Logger
}

func NewNotificationHandler(
	notifSvc service.NotificationService,
	prefSvc service.PreferenceService,
	logger *slog.Logger,
) *NotificationHandler {
	return &NotificationHandler{notifSvc: notifSvc, prefSvc: prefSvc, logger: logger}
}

// Send triggers a fan-out to the target user's registered devices.
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserEmail string            `json:"userEmail"`
		Title     string            `json:"title"`
		Body      string            `json:"body"`
		Data      map[string]string `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid send payload", slog.String("error", err.Error()))
		respondError(w, appErr.NewBadRequest("invalid payload"))
		return
	}

	result, err := h.notifSvc.Send(r.Context(), &model.Notification{
		UserEmail: req.UserEmail,
		Title:     req.Title,
		Body:      req.Body,
		Data:      req.Data,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// List returns the caller's most recent notification records.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")

	notifs, err := h.notifSvc.List(r.Context(), email)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"notifications": notifs})
}

// MarkRead flips one record's read flag, owner-only.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	n, err := h.notifSvc.MarkRead(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, n)
}

// RegisterToken binds a device token to the session identity.
func (h *NotificationHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, appErr.NewBadRequest("invalid payload"))
		return
	}

	dt, err := h.notifSvc.RegisterToken(r.Context(), req.Token)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dt)
}

// GetPreferences returns the caller's saved preferences, or the defaults if
// none were ever saved.
func (h *NotificationHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		email, _ = middleware.EmailFromContext(r.Context())
	}

	prefs, err := h.prefSvc.Get(r.Context(), email)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, prefs)
}

// SavePreferences upserts the caller's full preference set.
func (h *NotificationHandler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string            `json:"email"`
		Preferences model.Preferences `json:"preferences"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, appErr.NewBadRequest("invalid payload"))
		return
	}

	prefs := req.Preferences
	prefs.UserEmail = req.Email
	if prefs.UserEmail == "" {
		prefs.UserEmail, _ = middleware.EmailFromContext(r.Context())
	}

	saved, err := h.prefSvc.Save(r.Context(), &prefs)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}
