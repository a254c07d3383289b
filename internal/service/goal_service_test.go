package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.opentelemetry.io/otel"

	appErr "github.com/souldream/backend/internal/errors"
	"github.com/souldream/backend/internal/model"
	"github.com/souldream/backend/internal/storage"
)

// stubPublisher records the events it was asked to publish.
type stubPublisher struct {
	events []model.NotificationEvent
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, event model.NotificationEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func newTestGoalService(store storage.GoalStorage, publisher EventPublisher) *goalService {
	return &goalService{
		store:     store,
		publisher: publisher,
		logger:    slog.Default(),
		tracer:    otel.Tracer("test"),
	}
}

func Test_goalService_Create(t *testing.T) {
	t.Run("auto-classifies missing category and publishes an event", func(t *testing.T) {
		store := storage.NewMockGoalStorage(t)
		store.On("SaveGoal", mock.Anything, mock.Anything).Return(nil)
		pub := &stubPublisher{}
		s := newTestGoalService(store, pub)

		got, err := s.Create(identityCtx("a@example.com"), model.Goal{
			Title:       "Quiero aprender programación y crear una app",
			Description: "plan de carrera",
		})
		assert.NoError(t, err)
		assert.Equal(t, "desarrollo", got.Category)
		assert.Equal(t, "a@example.com", got.UserEmail)
		assert.Equal(t, model.GoalStatusActive, got.Status)
		assert.NotEmpty(t, got.ID)

		if assert.Len(t, pub.events, 1) {
			assert.Equal(t, "a@example.com", pub.events[0].UserEmail)
			assert.Equal(t, model.KindGoals, pub.events[0].Data["type"])
			assert.Equal(t, got.ID, pub.events[0].Data["goal_id"])
		}
	})

	t.Run("explicit valid category is kept", func(t *testing.T) {
		store := storage.NewMockGoalStorage(t)
		store.On("SaveGoal", mock.Anything, mock.Anything).Return(nil)
		s := newTestGoalService(store, &stubPublisher{})

		got, err := s.Create(identityCtx("a@example.com"), model.Goal{
			Title:    "ahorrar para un viaje",
			Category: "finanzas",
		})
		assert.NoError(t, err)
		assert.Equal(t, "finanzas", got.Category)
	})

	t.Run("publish failure does not fail the create", func(t *testing.T) {
		store := storage.NewMockGoalStorage(t)
		store.On("SaveGoal", mock.Anything, mock.Anything).Return(nil)
		s := newTestGoalService(store, &stubPublisher{err: errors.New("broker down")})

		_, err := s.Create(identityCtx("a@example.com"), model.Goal{Title: "meta"})
		assert.NoError(t, err)
	})

	t.Run("title required", func(t *testing.T) {
		store := storage.NewMockGoalStorage(t)
		s := newTestGoalService(store, &stubPublisher{})

		_, err := s.Create(identityCtx("a@example.com"), model.Goal{})
		assert.True(t, appErr.IsBadRequest(err))
	})

	t.Run("no session identity", func(t *testing.T) {
		store := storage.NewMockGoalStorage(t)
		s := newTestGoalService(store, &stubPublisher{})

		_, err := s.Create(context.Background(), model.Goal{Title: "meta"})
		assert.True(t, appErr.IsUnauthorized(err))
	})
}

func Test_goalService_GetByID(t *testing.T) {
	stored := &model.Goal{ID: "g1", UserEmail: "a@example.com", Title: "meta"}

	t.Run("owner fetches", func(t *testing.T) {
		store := storage.NewMockGoalStorage(t)
		store.On("FindGoalByID", mock.Anything, "g1").Return(stored, nil)
		s := newTestGoalService(store, nil)

		got, err := s.GetByID(identityCtx("a@example.com"), "g1")
		assert.NoError(t, err)
		assert.Equal(t, stored, got)
	})

	t.Run("another user's goal reads as not found", func(t *testing.T) {
		store := storage.NewMockGoalStorage(t)
		store.On("FindGoalByID", mock.Anything, "g1").Return(stored, nil)
		s := newTestGoalService(store, nil)

		_, err := s.GetByID(identityCtx("mallory@example.com"), "g1")
		assert.True(t, appErr.IsNotFound(err))
	})
}

func Test_goalService_UpdateStatus(t *testing.T) {
	stored := &model.Goal{ID: "g1", UserEmail: "a@example.com", Status: model.GoalStatusActive}

	t.Run("valid transition", func(t *testing.T) {
		store := storage.NewMockGoalStorage(t)
		store.On("FindGoalByID", mock.Anything, "g1").Return(stored, nil)
		store.On("UpdateGoalStatus", mock.Anything, "g1", model.GoalStatusCompleted).Return(nil)
		s := newTestGoalService(store, nil)

		err := s.UpdateStatus(identityCtx("a@example.com"), "g1", model.GoalStatusCompleted)
		assert.NoError(t, err)
	})

	t.Run("invalid status rejected before any lookup", func(t *testing.T) {
		store := storage.NewMockGoalStorage(t)
		s := newTestGoalService(store, nil)

		err := s.UpdateStatus(identityCtx("a@example.com"), "g1", "paused")
		assert.True(t, appErr.IsBadRequest(err))
		store.AssertNotCalled(t, "FindGoalByID", mock.Anything, mock.Anything)
	})

	t.Run("ownership enforced", func(t *testing.T) {
		store := storage.NewMockGoalStorage(t)
		store.On("FindGoalByID", mock.Anything, "g1").Return(stored, nil)
		s := newTestGoalService(store, nil)

		err := s.UpdateStatus(identityCtx("mallory@example.com"), "g1", model.GoalStatusArchived)
		assert.True(t, appErr.IsNotFound(err))
		store.AssertNotCalled(t, "UpdateGoalStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}
