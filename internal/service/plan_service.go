package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/souldream/backend/internal/classifier"
	appErr "github.com/souldream/backend/internal/errors"
	"github.com/souldream/backend/internal/planner"
)

// PlanResponse is the (category, plan) pair the generate-plan endpoint
// returns. GoalType and AreaID carry the same category value; the split
// exists for client compatibility.
type PlanResponse struct {
	Plan     string `json:"plan"`
	GoalType string `json:"goalType"`
	AreaID   string `json:"areaId"`
}

// PlanService classifies free text and returns the matching canned plan.
type PlanService interface {
	GeneratePlan(ctx context.Context, message string) (*PlanResponse, error)
}

type planService struct {
	logger *slog.Logger
	tracer trace.Tracer
}

func NewPlanService(logger *slog.Logger) PlanService {
	l := logger.With("layer", "service", "component", "planService")
	return &planService{logger: l, tracer: otel.Tracer("plan-service")}
}

func (s *planService) GeneratePlan(ctx context.Context, message string) (*PlanResponse, error) {
	_, span := s.tracer.Start(ctx, "GeneratePlan")
	defer span.End()

	if message == "" {
		return nil, appErr.NewBadRequest("message is required")
	}

	result := classifier.Classify(message)
	span.SetAttributes(
		attribute.String("plan.category", string(result.Category)),
		attribute.Int("plan.matches", result.Matches),
	)
	s.logger.Info("plan generated",
		slog.String("category", string(result.Category)),
		slog.Int("matches", result.Matches))

	return &PlanResponse{
		Plan:     planner.Render(result.Category),
		GoalType: string(result.Category),
		AreaID:   string(result.Category),
	}, nil
}
