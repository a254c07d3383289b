package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/souldream/backend/internal/classifier"
	appErr "github.com/souldream/backend/internal/errors"
	"github.com/souldream/backend/internal/model"
	"github.com/souldream/backend/internal/storage"
)

// EventPublisher publishes notification events for async delivery.
type EventPublisher interface {
	Publish(ctx context.Context, event model.NotificationEvent) error
}

// GoalService manages a user's goals. New goals without an explicit
// category are bucketed by the classifier, and creation publishes a
// goals-kind notification event.
type GoalService interface {
	Create(ctx context.Context, g model.Goal) (*model.Goal, error)
	ListByUser(ctx context.Context) ([]model.Goal, error)
	GetByID(ctx context.Context, id string) (*model.Goal, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type goalService struct {
	store     storage.GoalStorage
	publisher EventPublisher
	logger    *slog.Logger
	tracer    trace.Tracer
}

func NewGoalService(store storage.GoalStorage, publisher EventPublisher, logger *slog.Logger) GoalService {
	l := logger.With("layer", "service", "component", "goalService")
	return &goalService{
		store:     store,
		publisher: publisher,
		logger:    l,
		tracer:    otel.Tracer("goal-service"),
	}
}

func (s *goalService) Create(ctx context.Context, g model.Goal) (*model.Goal, error) {
	ctx, span := s.tracer.Start(ctx, "Create")
	defer span.End()

	caller, err := emailFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if g.Title == "" {
		return nil, appErr.NewBadRequest("goal title is required")
	}

	g.ID = uuid.New().String()
	g.UserEmail = caller
	g.Status = model.GoalStatusActive
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now

	if !classifier.Valid(classifier.Category(g.Category)) {
		result := classifier.Classify(g.Title + " " + g.Description)
		g.Category = string(result.Category)
	}
	span.SetAttributes(attribute.String("goal.category", g.Category))

	if err := s.store.SaveGoal(ctx, &g); err != nil {
		s.logger.Error("failed to save goal", slog.Any("error", err))
		return nil, appErr.NewInternal("failed to save goal: %v", err)
	}

	if s.publisher != nil {
		event := model.NotificationEvent{
			UserEmail: caller,
			Title:     "Nueva meta creada",
			Body:      g.Title,
			Data:      map[string]string{"type": model.KindGoals, "goal_id": g.ID},
			Timestamp: now,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			// Delivery is best-effort; the goal itself is already saved.
			s.logger.Warn("failed to publish goal event", slog.Any("error", err))
		}
	}

	s.logger.Info("goal created",
		slog.String("id", g.ID),
		slog.String("category", g.Category),
		slog.String("user", caller))
	return &g, nil
}

func (s *goalService) ListByUser(ctx context.Context) ([]model.Goal, error) {
	ctx, span := s.tracer.Start(ctx, "ListByUser")
	defer span.End()

	caller, err := emailFromContext(ctx)
	if err != nil {
		return nil, err
	}

	goals, err := s.store.FindGoalsByUser(ctx, caller)
	if err != nil {
		s.logger.Error("failed to list goals", slog.Any("error", err))
		return nil, appErr.NewInternal("failed to list goals: %v", err)
	}
	return goals, nil
}

func (s *goalService) GetByID(ctx context.Context, id string) (*model.Goal, error) {
	ctx, span := s.tracer.Start(ctx, "GetByID")
	defer span.End()

	caller, err := emailFromContext(ctx)
	if err != nil {
		return nil, err
	}

	g, err := s.store.FindGoalByID(ctx, id)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, err
		}
		s.logger.Error("failed to fetch goal", slog.String("id", id), slog.Any("error", err))
		return nil, appErr.NewInternal("failed to fetch goal: %v", err)
	}
	if g.UserEmail != caller {
		// Hide the existence of other users' goals.
		return nil, appErr.NewNotFound("goal %s not found", id)
	}
	return g, nil
}

func (s *goalService) UpdateStatus(ctx context.Context, id, status string) error {
	ctx, span := s.tracer.Start(ctx, "UpdateStatus")
	defer span.End()

	if !model.ValidGoalStatus(status) {
		return appErr.NewBadRequest("invalid goal status %q", status)
	}
	// Ownership check happens in GetByID.
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.store.UpdateGoalStatus(ctx, id, status); err != nil {
		if appErr.IsNotFound(err) {
			return err
		}
		s.logger.Error("failed to update goal status", slog.String("id", id), slog.Any("error", err))
		return appErr.NewInternal("failed to update goal status: %v", err)
	}
	return nil
}
