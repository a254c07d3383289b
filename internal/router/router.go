package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/souldream/backend/internal/handler"
	customMiddleware "github.com/souldream/backend/internal/middleware"
	"github.com/souldream/backend/internal/service"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Plan         *handler.PlanHandler
	Chat         *handler.ChatHandler
	Notification *handler.NotificationHandler
	Goal         *handler.GoalHandler
	Health       *handler.HealthHandler
}

func NewRouter(h Handlers, authSvc service.AuthService) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(customMiddleware.MetricsMiddleware)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.Get("/validate", h.Auth.Validate)
	})

	r.Post("/api/generate-plan", h.Plan.GeneratePlan)
	r.Post("/api/chat", h.Chat.Chat)

	// Everything below requires a session; handlers still enforce ownership
	// against the identity the middleware stored.
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.AuthMiddleware(authSvc))

		r.Route("/api/notifications", func(r chi.Router) {
			r.Post("/send", h.Notification.Send)
			r.Get("/", h.Notification.List)
			r.Post("/register", h.Notification.RegisterToken)
			r.Get("/preferences", h.Notification.GetPreferences)
			r.Post("/preferences", h.Notification.SavePreferences)
			r.Post("/{id}/read", h.Notification.MarkRead)
		})

		r.Route("/api/goals", func(r chi.Router) {
			r.Post("/", h.Goal.Create)
			r.Get("/", h.Goal.List)
			r.Get("/{id}", h.Goal.GetByID)
			r.Put("/{id}/status", h.Goal.UpdateStatus)
		})
	})

	// Health & Readiness Routes
	r.Get("/healthz", h.Health.Liveness)
	r.Get("/readyz", h.Health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
