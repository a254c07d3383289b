package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	appErr "github.com/souldream/backend/internal/errors"
	"github.com/souldream/backend/internal/service"
)

type PlanHandler struct {
	planSvc service.PlanService
	logger  *slog.Logger
}

func NewPlanHandler(planSvc service.PlanService, logger *slog.Logger) *PlanHandler {
	return &PlanHandler{planSvc: planSvc, logger: logger}
}

// GeneratePlan classifies the goal text and returns the matching step plan.
func (h *PlanHandler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid plan payload", slog.String("error", err.Error()))
		respondError(w, appErr.NewBadRequest("invalid payload"))
		return
	}

	plan, err := h.planSvc.GeneratePlan(r.Context(), req.Message)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}
