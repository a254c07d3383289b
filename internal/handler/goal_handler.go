package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	appErr "github.com/souldream/backend/internal/errors"
	"github.com/souldream/backend/internal/model"
	"github.com/souldream/backend/internal/service"
)

type GoalHandler struct {
	goalSvc service.GoalService
	logger  *slog.Logger
}

func NewGoalHandler(goalSvc service.GoalService, logger *slog.Logger) *GoalHandler {
	return &GoalHandler{goalSvc: goalSvc, logger: logger}
}

// Create stores a new goal for the caller, auto-classifying its life area
// when no valid category is supplied.
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid goal payload", slog.String("error", err.Error()))
		respondError(w, appErr.NewBadRequest("invalid payload"))
		return
	}

	goal, err := h.goalSvc.Create(r.Context(), model.Goal{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, goal)
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	goals, err := h.goalSvc.ListByUser(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

func (h *GoalHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	goal, err := h.goalSvc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, goal)
}

// UpdateStatus moves a goal between active, completed and archived.
func (h *GoalHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, appErr.NewBadRequest("invalid payload"))
		return
	}

	if err := h.goalSvc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}
