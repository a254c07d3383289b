package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	appErr "github.com/souldream/backend/internal/errors"
	"github.com/souldream/backend/internal/metrics"
	"github.com/souldream/backend/internal/model"
	"github.com/souldream/backend/internal/push"
	"github.com/souldream/backend/internal/storage"
	"github.com/souldream/backend/pkg/tracing"
)

// recentNotificationLimit caps how many records a listing returns.
const recentNotificationLimit = 50

// NotificationService sends notifications to all of a user's registered
// devices, respecting saved preferences, and keeps the token set consistent
// with what the transports report.
type NotificationService interface {
	Send(ctx context.Context, n *model.Notification) (*model.SendResult, error)
	List(ctx context.Context, email string) ([]model.Notification, error)
	MarkRead(ctx context.Context, id string) (*model.Notification, error)
	RegisterToken(ctx context.Context, token string) (*model.DeviceToken, error)
}

type notificationService struct {
	store  storage.NotificationStorage
	fcm    push.Channel
	twilio push.Channel
	logger *slog.Logger
	tracer trace.Tracer
}

func NewNotificationService(
	store storage.NotificationStorage,
	fcm push.Channel,
	twilio push.Channel,
	logger *slog.Logger,
) NotificationService {
	l := logger.With("layer", "service", "component", "notificationService")
	return &notificationService{
		store:  store,
		fcm:    fcm,
		twilio: twilio,
		logger: l,
		tracer: otel.Tracer("notification-service"),
	}
}

// Send runs the full fan-out: ownership check, validation, audit record,
// preference gate, token load, parallel channel dispatch, token prune.
// Channel failures are isolated; the send succeeds if any channel delivered.
func (s *notificationService) Send(ctx context.Context, n *model.Notification) (*model.SendResult, error) {
	ctx, span := s.tracer.Start(ctx, "Send")
	defer span.End()

	caller, err := emailFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if n == nil || n.UserEmail == "" || n.Title == "" || n.Body == "" {
		return nil, appErr.NewBadRequest("title, body and user email are required")
	}
	if caller != n.UserEmail {
		s.logger.Warn("send denied",
			slog.String("caller", caller),
			slog.String("target", n.UserEmail))
		return nil, appErr.NewForbidden("cannot send notifications for another user")
	}

	span.SetAttributes(attribute.String(tracing.AttrNotificationKind, n.Kind()))

	// The record of intent to notify is persisted before any delivery is
	// attempted, so it survives delivery failures.
	n.ID = uuid.New().String()
	n.Read = false
	n.CreatedAt = time.Now()
	if err := s.store.SaveNotification(ctx, n); err != nil {
		s.logger.Error("failed to persist notification", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, appErr.NewInternal("failed to persist notification: %v", err)
	}

	prefs, err := s.store.GetPreferences(ctx, n.UserEmail)
	if err != nil {
		if !appErr.IsNotFound(err) {
			s.logger.Error("failed to load preferences", slog.Any("error", err))
			return nil, appErr.NewInternal("failed to load preferences: %v", err)
		}
		defaults := model.DefaultPreferences(n.UserEmail)
		prefs = &defaults
	}
	if !prefs.Allows(n.Kind()) {
		s.logger.Info("notification kind disabled by preferences",
			slog.String("kind", n.Kind()),
			slog.String("user", n.UserEmail))
		return &model.SendResult{Success: true, Skipped: true, Notification: n}, nil
	}

	tokens, err := s.store.FindTokensByUser(ctx, n.UserEmail)
	if err != nil {
		s.logger.Error("failed to load tokens", slog.Any("error", err))
		return nil, appErr.NewInternal("failed to load device tokens: %v", err)
	}
	if len(tokens) == 0 {
		return nil, appErr.NewNotFound("no device tokens registered for %s", n.UserEmail)
	}

	msg := push.Message{
		Title:  n.Title,
		Body:   n.Body,
		Data:   n.Data,
		Tokens: make([]string, 0, len(tokens)),
		Phone:  n.Data["phone"],
	}
	for _, t := range tokens {
		msg.Tokens = append(msg.Tokens, t.Token)
	}

	result := &model.SendResult{Notification: n}
	var fcmRes push.Result

	// Channels are independent; dispatch them in parallel and never let one
	// channel's failure abort the other.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		fcmRes = s.dispatch(ctx, s.fcm, msg, &result.Firebase)
	}()
	go func() {
		defer wg.Done()
		s.dispatch(ctx, s.twilio, msg, &result.Twilio)
	}()
	wg.Wait()

	s.pruneInvalidTokens(ctx, fcmRes.TokenResults)

	result.Success = result.Firebase.Success || result.Twilio.Success
	s.logger.Info("fan-out complete",
		slog.String("notification_id", n.ID),
		slog.Bool("success", result.Success),
		slog.Int("fcm_success", result.Firebase.SuccessCount),
		slog.Int("fcm_failure", result.Firebase.FailureCount),
		slog.Bool("twilio_success", result.Twilio.Success))
	return result, nil
}

// dispatch runs one channel and folds its outcome into the aggregate. Errors
// are recorded, counted and swallowed: isolation is the invariant here.
func (s *notificationService) dispatch(ctx context.Context, ch push.Channel, msg push.Message, out *model.ChannelResult) push.Result {
	ctx, span := s.tracer.Start(ctx, "Dispatch",
		trace.WithAttributes(attribute.String(tracing.AttrNotificationChannel, ch.Name())))
	defer span.End()

	out.Attempted = true
	res, err := ch.Send(ctx, msg)
	if err != nil {
		s.logger.Warn("channel delivery failed",
			slog.String("channel", ch.Name()),
			slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.NotificationsSent.WithLabelValues(ch.Name(), "failure").Inc()
		out.FailureCount++
		return push.Result{}
	}
	out.SuccessCount = res.SuccessCount
	out.FailureCount = res.FailureCount
	out.SID = res.SID
	out.Success = res.SuccessCount > 0
	status := "failure"
	if out.Success {
		status = "success"
	}
	metrics.NotificationsSent.WithLabelValues(ch.Name(), status).Inc()
	return res
}

// pruneInvalidTokens deletes tokens the push service reported as permanently
// invalid. Transient failures leave the token in place for the next send.
func (s *notificationService) pruneInvalidTokens(ctx context.Context, results []push.TokenResult) {
	var stale []string
	for _, r := range results {
		if r.Permanent {
			stale = append(stale, r.Token)
		}
	}
	if len(stale) == 0 {
		return
	}
	if err := s.store.DeleteTokens(ctx, stale); err != nil {
		s.logger.Error("failed to prune invalid tokens",
			slog.Int("count", len(stale)),
			slog.Any("error", err))
		return
	}
	metrics.TokensPruned.Add(float64(len(stale)))
	s.logger.Info("pruned invalid tokens", slog.Int("count", len(stale)))
}

func (s *notificationService) List(ctx context.Context, email string) ([]model.Notification, error) {
	ctx, span := s.tracer.Start(ctx, "List")
	defer span.End()

	caller, err := emailFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if email == "" {
		return nil, appErr.NewBadRequest("email is required")
	}
	if caller != email {
		return nil, appErr.NewForbidden("cannot read another user's notifications")
	}

	notifs, err := s.store.FindNotificationsByUser(ctx, email, recentNotificationLimit)
	if err != nil {
		s.logger.Error("failed to list notifications", slog.Any("error", err))
		return nil, appErr.NewInternal("failed to list notifications: %v", err)
	}
	return notifs, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id string) (*model.Notification, error) {
	ctx, span := s.tracer.Start(ctx, "MarkRead")
	defer span.End()

	caller, err := emailFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, appErr.NewBadRequest("notification id is required")
	}

	n, err := s.store.FindNotificationByID(ctx, id)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, err
		}
		s.logger.Error("failed to fetch notification", slog.String("id", id), slog.Any("error", err))
		return nil, appErr.NewInternal("failed to fetch notification: %v", err)
	}
	if n.UserEmail != caller {
		s.logger.Warn("mark-read denied",
			slog.String("id", id),
			slog.String("caller", caller),
			slog.String("owner", n.UserEmail))
		return nil, appErr.NewForbidden("cannot modify another user's notification")
	}

	updated, err := s.store.MarkNotificationRead(ctx, id)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, err
		}
		return nil, appErr.NewInternal("failed to mark notification read: %v", err)
	}
	return updated, nil
}

// RegisterToken upserts a device token bound to the session identity.
// Re-registering an existing token only refreshes its timestamp.
func (s *notificationService) RegisterToken(ctx context.Context, token string) (*model.DeviceToken, error) {
	ctx, span := s.tracer.Start(ctx, "RegisterToken")
	defer span.End()

	caller, err := emailFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, appErr.NewBadRequest("token is required")
	}

	dt := &model.DeviceToken{
		Token:       token,
		UserEmail:   caller,
		LastUpdated: time.Now(),
	}
	if err := s.store.UpsertToken(ctx, dt); err != nil {
		s.logger.Error("failed to register token", slog.Any("error", err))
		return nil, appErr.NewInternal("failed to register token: %v", err)
	}
	s.logger.Info("device token registered", slog.String("user", caller))
	return dt, nil
}
