package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/souldream/backend/internal/storage"
)

type HealthService interface {
	Liveness(ctx context.Context) error
	Readiness(ctx context.Context) error
}

type healthService struct {
	store  storage.NotificationStorage
	logger *slog.Logger
}

func NewHealthService(store storage.NotificationStorage, logger *slog.Logger) HealthService {
	l := logger.With("layer", "service", "component", "healthService")
	return &healthService{store: store, logger: l}
}

func (s *healthService) Liveness(ctx context.Context) error {
	s.logger.Debug("Liveness check passed")
	return nil
}

func (s *healthService) Readiness(ctx context.Context) error {
	// we wait up to 2 seconds
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Error("Readiness check failed", slog.String("error", err.Error()))
		return err
	}
	s.logger.Debug("Readiness check passed")
	return nil
}
