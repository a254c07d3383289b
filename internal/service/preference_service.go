package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	appErr "github.com/souldream/backend/internal/errors"
	"github.com/souldream/backend/internal/model"
	"github.com/souldream/backend/internal/storage"
)

// PreferenceService reads and writes per-user notification preferences.
// Reads for a user who never saved any return the documented defaults
// without creating a record.
type PreferenceService interface {
	Get(ctx context.Context, email string) (*model.Preferences, error)
	Save(ctx context.Context, prefs *model.Preferences) (*model.Preferences, error)
}

type preferenceService struct {
	store  storage.NotificationStorage
	logger *slog.Logger
	tracer trace.Tracer
}

func NewPreferenceService(store storage.NotificationStorage, logger *slog.Logger) PreferenceService {
	l := logger.With("layer", "service", "component", "preferenceService")
	return &preferenceService{
		store:  store,
		logger: l,
		tracer: otel.Tracer("preference-service"),
	}
}

func (s *preferenceService) Get(ctx context.Context, email string) (*model.Preferences, error) {
	ctx, span := s.tracer.Start(ctx, "Get")
	defer span.End()

	caller, err := emailFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if email == "" {
		return nil, appErr.NewBadRequest("email is required")
	}
	if caller != email {
		s.logger.Warn("preference read denied",
			slog.String("caller", caller),
			slog.String("target", email))
		return nil, appErr.NewForbidden("cannot read another user's preferences")
	}

	prefs, err := s.store.GetPreferences(ctx, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			defaults := model.DefaultPreferences(email)
			return &defaults, nil
		}
		s.logger.Error("failed to load preferences", slog.Any("error", err))
		return nil, appErr.NewInternal("failed to load preferences: %v", err)
	}
	return prefs, nil
}

func (s *preferenceService) Save(ctx context.Context, prefs *model.Preferences) (*model.Preferences, error) {
	ctx, span := s.tracer.Start(ctx, "Save")
	defer span.End()

	caller, err := emailFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if prefs == nil || prefs.UserEmail == "" {
		return nil, appErr.NewBadRequest("email and preferences are required")
	}
	if caller != prefs.UserEmail {
		s.logger.Warn("preference write denied",
			slog.String("caller", caller),
			slog.String("target", prefs.UserEmail))
		return nil, appErr.NewForbidden("cannot modify another user's preferences")
	}

	if err := s.store.UpsertPreferences(ctx, prefs); err != nil {
		s.logger.Error("failed to save preferences", slog.Any("error", err))
		return nil, appErr.NewInternal("failed to save preferences: %v", err)
	}
	s.logger.Info("preferences saved", slog.String("user", prefs.UserEmail))
	return prefs, nil
}
