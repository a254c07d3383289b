package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.opentelemetry.io/otel"

	appErr "github.com/souldream/backend/internal/errors"
	"github.com/souldream/backend/internal/metrics"
	"github.com/souldream/backend/internal/model"
	"github.com/souldream/backend/internal/push"
	"github.com/souldream/backend/internal/storage"
)

// stubChannel is a push.Channel returning a fixed result.
type stubChannel struct {
	name string
	res  push.Result
	err  error
}

func (c *stubChannel) Name() string { return c.name }

func (c *stubChannel) Send(_ context.Context, _ push.Message) (push.Result, error) {
	return c.res, c.err
}

func newTestNotificationService(store storage.NotificationStorage, fcm, twilio push.Channel) *notificationService {
	return &notificationService{
		store:  store,
		fcm:    fcm,
		twilio: twilio,
		logger: slog.Default(),
		tracer: otel.Tracer("test"),
	}
}

func identityCtx(email string) context.Context {
	return WithIdentity(context.Background(), email)
}

func Test_notificationService_Send_authorization(t *testing.T) {
	okChannel := &stubChannel{name: "firebase"}

	tests := []struct {
		name     string
		ctx      context.Context
		n        *model.Notification
		wantKind func(error) bool
	}{
		{
			name:     "no session identity",
			ctx:      context.Background(),
			n:        &model.Notification{UserEmail: "a@example.com", Title: "t", Body: "b"},
			wantKind: appErr.IsUnauthorized,
		},
		{
			name:     "identity mismatch",
			ctx:      identityCtx("mallory@example.com"),
			n:        &model.Notification{UserEmail: "a@example.com", Title: "t", Body: "b"},
			wantKind: appErr.IsForbidden,
		},
		{
			name:     "missing title",
			ctx:      identityCtx("a@example.com"),
			n:        &model.Notification{UserEmail: "a@example.com", Body: "b"},
			wantKind: appErr.IsBadRequest,
		},
		{
			name:     "missing target email",
			ctx:      identityCtx("a@example.com"),
			n:        &model.Notification{Title: "t", Body: "b"},
			wantKind: appErr.IsBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMockNotificationStorage(t)
			s := newTestNotificationService(store, okChannel, okChannel)

			got, err := s.Send(tt.ctx, tt.n)
			assert.Nil(t, got)
			assert.Error(t, err)
			assert.True(t, tt.wantKind(err), "unexpected error kind: %v", err)
		})
	}
}

// The audit record must exist before tokens are even looked at: a user with
// no devices still yields a stored record and a 404.
func Test_notificationService_Send_noTokensAfterAudit(t *testing.T) {
	store := storage.NewMockNotificationStorage(t)
	store.On("SaveNotification", mock.Anything, mock.Anything).Return(nil)
	store.On("GetPreferences", mock.Anything, "a@example.com").
		Return(nil, appErr.NewNotFound("no preferences"))
	store.On("FindTokensByUser", mock.Anything, "a@example.com").
		Return([]model.DeviceToken{}, nil)

	s := newTestNotificationService(store, &stubChannel{name: "firebase"}, &stubChannel{name: "twilio"})

	got, err := s.Send(identityCtx("a@example.com"), &model.Notification{
		UserEmail: "a@example.com", Title: "t", Body: "b",
	})
	assert.Nil(t, got)
	assert.True(t, appErr.IsNotFound(err), "want not-found, got %v", err)
	store.AssertCalled(t, "SaveNotification", mock.Anything, mock.Anything)
}

func Test_notificationService_Send_preferenceGate(t *testing.T) {
	store := storage.NewMockNotificationStorage(t)
	store.On("SaveNotification", mock.Anything, mock.Anything).Return(nil)
	prefs := model.DefaultPreferences("a@example.com")
	prefs.Goals = false
	store.On("GetPreferences", mock.Anything, "a@example.com").Return(&prefs, nil)

	s := newTestNotificationService(store, &stubChannel{name: "firebase"}, &stubChannel{name: "twilio"})

	got, err := s.Send(identityCtx("a@example.com"), &model.Notification{
		UserEmail: "a@example.com",
		Title:     "t",
		Body:      "b",
		Data:      map[string]string{"type": model.KindGoals},
	})
	assert.NoError(t, err)
	assert.True(t, got.Success)
	assert.True(t, got.Skipped)
	assert.False(t, got.Firebase.Attempted)
	assert.False(t, got.Twilio.Attempted)
	// The record is still persisted even though dispatch was skipped.
	store.AssertCalled(t, "SaveNotification", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "FindTokensByUser", mock.Anything, mock.Anything)
}

// Unknown-kind payloads gate on the system flag, enabled by default.
func Test_notificationService_Send_defaultPreferencesAllowSystem(t *testing.T) {
	store := storage.NewMockNotificationStorage(t)
	store.On("SaveNotification", mock.Anything, mock.Anything).Return(nil)
	store.On("GetPreferences", mock.Anything, "a@example.com").
		Return(nil, appErr.NewNotFound("no preferences"))
	store.On("FindTokensByUser", mock.Anything, "a@example.com").
		Return([]model.DeviceToken{{Token: "tok-1", UserEmail: "a@example.com"}}, nil)

	fcm := &stubChannel{name: "firebase", res: push.Result{
		SuccessCount: 1,
		TokenResults: []push.TokenResult{{Token: "tok-1", OK: true}},
	}}
	twilio := &stubChannel{name: "twilio", err: errors.New("no phone number provided")}
	s := newTestNotificationService(store, fcm, twilio)

	got, err := s.Send(identityCtx("a@example.com"), &model.Notification{
		UserEmail: "a@example.com", Title: "t", Body: "b",
	})
	assert.NoError(t, err)
	assert.True(t, got.Success)
	assert.False(t, got.Skipped)
	assert.Equal(t, 1, got.Firebase.SuccessCount)
}

// One channel failing must not block the other, and a single successful
// channel makes the whole send a success.
func Test_notificationService_Send_channelIsolation(t *testing.T) {
	tests := []struct {
		name        string
		fcmErr      error
		twilioErr   error
		wantSuccess bool
	}{
		{"fcm down twilio up", errors.New("fcm unreachable"), nil, true},
		{"fcm up twilio down", nil, errors.New("twilio unreachable"), true},
		{"both down", errors.New("fcm unreachable"), errors.New("twilio unreachable"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMockNotificationStorage(t)
			store.On("SaveNotification", mock.Anything, mock.Anything).Return(nil)
			store.On("GetPreferences", mock.Anything, "a@example.com").
				Return(nil, appErr.NewNotFound("no preferences"))
			store.On("FindTokensByUser", mock.Anything, "a@example.com").
				Return([]model.DeviceToken{{Token: "tok-1"}}, nil)

			fcm := &stubChannel{name: "firebase", err: tt.fcmErr}
			if tt.fcmErr == nil {
				fcm.res = push.Result{SuccessCount: 1, TokenResults: []push.TokenResult{{Token: "tok-1", OK: true}}}
			}
			twilio := &stubChannel{name: "twilio", err: tt.twilioErr}
			if tt.twilioErr == nil {
				twilio.res = push.Result{SuccessCount: 1, SID: "SM123"}
			}

			s := newTestNotificationService(store, fcm, twilio)
			got, err := s.Send(identityCtx("a@example.com"), &model.Notification{
				UserEmail: "a@example.com", Title: "t", Body: "b",
			})
			assert.NoError(t, err)
			assert.Equal(t, tt.wantSuccess, got.Success)
			assert.True(t, got.Firebase.Attempted)
			assert.True(t, got.Twilio.Attempted)
		})
	}
}

// Tokens flagged permanently invalid are removed; transiently failing and
// healthy tokens survive the send.
// A channel that answers 200 but delivers to zero tokens is a failure, and
// the dispatch counter must say so.
func Test_notificationService_Send_allTokensRejectedCountsAsFailure(t *testing.T) {
	store := storage.NewMockNotificationStorage(t)
	store.On("SaveNotification", mock.Anything, mock.Anything).Return(nil)
	store.On("GetPreferences", mock.Anything, "a@example.com").
		Return(nil, appErr.NewNotFound("no preferences"))
	store.On("FindTokensByUser", mock.Anything, "a@example.com").
		Return([]model.DeviceToken{{Token: "tok-1"}, {Token: "tok-2"}}, nil)

	fcm := &stubChannel{name: "firebase", res: push.Result{
		SuccessCount: 0,
		FailureCount: 2,
		TokenResults: []push.TokenResult{
			{Token: "tok-1", OK: false},
			{Token: "tok-2", OK: false},
		},
	}}
	twilio := &stubChannel{name: "twilio", err: errors.New("twilio unreachable")}

	failBefore := testutil.ToFloat64(metrics.NotificationsSent.WithLabelValues("firebase", "failure"))
	okBefore := testutil.ToFloat64(metrics.NotificationsSent.WithLabelValues("firebase", "success"))

	s := newTestNotificationService(store, fcm, twilio)
	got, err := s.Send(identityCtx("a@example.com"), &model.Notification{
		UserEmail: "a@example.com", Title: "t", Body: "b",
	})
	assert.NoError(t, err)
	assert.False(t, got.Success)
	assert.False(t, got.Firebase.Success)
	assert.Equal(t, 2, got.Firebase.FailureCount)

	assert.Equal(t, failBefore+1, testutil.ToFloat64(metrics.NotificationsSent.WithLabelValues("firebase", "failure")))
	assert.Equal(t, okBefore, testutil.ToFloat64(metrics.NotificationsSent.WithLabelValues("firebase", "success")))
}

func Test_notificationService_Send_prunesInvalidTokens(t *testing.T) {
	store := storage.NewMockNotificationStorage(t)
	store.On("SaveNotification", mock.Anything, mock.Anything).Return(nil)
	store.On("GetPreferences", mock.Anything, "a@example.com").
		Return(nil, appErr.NewNotFound("no preferences"))
	store.On("FindTokensByUser", mock.Anything, "a@example.com").
		Return([]model.DeviceToken{{Token: "tok-dead"}, {Token: "tok-flaky"}, {Token: "tok-ok"}}, nil)
	store.On("DeleteTokens", mock.Anything, []string{"tok-dead"}).Return(nil)

	fcm := &stubChannel{name: "firebase", res: push.Result{
		SuccessCount: 1,
		FailureCount: 2,
		TokenResults: []push.TokenResult{
			{Token: "tok-dead", Permanent: true, Err: "NotRegistered"},
			{Token: "tok-flaky", Permanent: false, Err: "Unavailable"},
			{Token: "tok-ok", OK: true},
		},
	}}
	twilio := &stubChannel{name: "twilio", err: errors.New("no phone number provided")}

	s := newTestNotificationService(store, fcm, twilio)
	got, err := s.Send(identityCtx("a@example.com"), &model.Notification{
		UserEmail: "a@example.com", Title: "t", Body: "b",
	})
	assert.NoError(t, err)
	assert.True(t, got.Success)
	store.AssertCalled(t, "DeleteTokens", mock.Anything, []string{"tok-dead"})
}

func Test_notificationService_List(t *testing.T) {
	stored := []model.Notification{{ID: "n1", UserEmail: "a@example.com", Title: "t"}}

	tests := []struct {
		name     string
		ctx      context.Context
		email    string
		setup    func(*storage.MockNotificationStorage)
		want     []model.Notification
		wantKind func(error) bool
	}{
		{
			name:  "owner lists own records",
			ctx:   identityCtx("a@example.com"),
			email: "a@example.com",
			setup: func(m *storage.MockNotificationStorage) {
				m.On("FindNotificationsByUser", mock.Anything, "a@example.com", recentNotificationLimit).
					Return(stored, nil)
			},
			want: stored,
		},
		{
			name:     "cannot list another user's records",
			ctx:      identityCtx("mallory@example.com"),
			email:    "a@example.com",
			setup:    func(m *storage.MockNotificationStorage) {},
			wantKind: appErr.IsForbidden,
		},
		{
			name:     "email required",
			ctx:      identityCtx("a@example.com"),
			email:    "",
			setup:    func(m *storage.MockNotificationStorage) {},
			wantKind: appErr.IsBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMockNotificationStorage(t)
			tt.setup(store)
			s := newTestNotificationService(store, &stubChannel{name: "firebase"}, &stubChannel{name: "twilio"})

			got, err := s.List(tt.ctx, tt.email)
			if tt.wantKind != nil {
				assert.Error(t, err)
				assert.True(t, tt.wantKind(err), "unexpected error kind: %v", err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_notificationService_MarkRead(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		id       string
		setup    func(*storage.MockNotificationStorage)
		wantKind func(error) bool
	}{
		{
			name: "owner marks read",
			ctx:  identityCtx("a@example.com"),
			id:   "n1",
			setup: func(m *storage.MockNotificationStorage) {
				m.On("FindNotificationByID", mock.Anything, "n1").
					Return(&model.Notification{ID: "n1", UserEmail: "a@example.com"}, nil)
				m.On("MarkNotificationRead", mock.Anything, "n1").
					Return(&model.Notification{ID: "n1", UserEmail: "a@example.com", Read: true}, nil)
			},
		},
		{
			name: "absent record yields not found",
			ctx:  identityCtx("a@example.com"),
			id:   "missing",
			setup: func(m *storage.MockNotificationStorage) {
				m.On("FindNotificationByID", mock.Anything, "missing").
					Return(nil, appErr.NewNotFound("notification not found"))
			},
			wantKind: appErr.IsNotFound,
		},
		{
			name: "wrong owner yields forbidden",
			ctx:  identityCtx("mallory@example.com"),
			id:   "n1",
			setup: func(m *storage.MockNotificationStorage) {
				m.On("FindNotificationByID", mock.Anything, "n1").
					Return(&model.Notification{ID: "n1", UserEmail: "a@example.com"}, nil)
			},
			wantKind: appErr.IsForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMockNotificationStorage(t)
			tt.setup(store)
			s := newTestNotificationService(store, &stubChannel{name: "firebase"}, &stubChannel{name: "twilio"})

			got, err := s.MarkRead(tt.ctx, tt.id)
			if tt.wantKind != nil {
				assert.Error(t, err)
				assert.True(t, tt.wantKind(err), "unexpected error kind: %v", err)
				return
			}
			assert.NoError(t, err)
			assert.True(t, got.Read)
		})
	}
}

func Test_notificationService_RegisterToken(t *testing.T) {
	store := storage.NewMockNotificationStorage(t)
	store.On("UpsertToken", mock.Anything, mock.MatchedBy(func(dt *model.DeviceToken) bool {
		return dt.Token == "tok-1" && dt.UserEmail == "a@example.com" && !dt.LastUpdated.IsZero()
	})).Return(nil)

	s := newTestNotificationService(store, &stubChannel{name: "firebase"}, &stubChannel{name: "twilio"})

	dt, err := s.RegisterToken(identityCtx("a@example.com"), "tok-1")
	assert.NoError(t, err)
	assert.Equal(t, "a@example.com", dt.UserEmail)

	_, err = s.RegisterToken(identityCtx("a@example.com"), "")
	assert.True(t, appErr.IsBadRequest(err))

	_, err = s.RegisterToken(context.Background(), "tok-1")
	assert.True(t, appErr.IsUnauthorized(err))
}
