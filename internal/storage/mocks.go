package storage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/souldream/backend/internal/model"
)

// MockNotificationStorage is a mock implementation of NotificationStorage.
type MockNotificationStorage struct {
	mock.Mock
}

func NewMockNotificationStorage(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockNotificationStorage {
	m := &MockNotificationStorage{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockNotificationStorage) SaveNotification(ctx context.Context, n *model.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationStorage) FindNotificationByID(ctx context.Context, id string) (*model.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

func (m *MockNotificationStorage) FindNotificationsByUser(ctx context.Context, email string, limit int) ([]model.Notification, error) {
	args := m.Called(ctx, email, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockNotificationStorage) MarkNotificationRead(ctx context.Context, id string) (*model.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

func (m *MockNotificationStorage) UpsertToken(ctx context.Context, token *model.DeviceToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockNotificationStorage) FindTokensByUser(ctx context.Context, email string) ([]model.DeviceToken, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DeviceToken), args.Error(1)
}

func (m *MockNotificationStorage) DeleteTokens(ctx context.Context, tokens []string) error {
	args := m.Called(ctx, tokens)
	return args.Error(0)
}

func (m *MockNotificationStorage) GetPreferences(ctx context.Context, email string) (*model.Preferences, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Preferences), args.Error(1)
}

func (m *MockNotificationStorage) UpsertPreferences(ctx context.Context, prefs *model.Preferences) error {
	args := m.Called(ctx, prefs)
	return args.Error(0)
}

func (m *MockNotificationStorage) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockGoalStorage is a mock implementation of GoalStorage.
type MockGoalStorage struct {
	mock.Mock
}

func NewMockGoalStorage(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGoalStorage {
	m := &MockGoalStorage{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockGoalStorage) SaveGoal(ctx context.Context, g *model.Goal) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockGoalStorage) FindGoalByID(ctx context.Context, id string) (*model.Goal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Goal), args.Error(1)
}

func (m *MockGoalStorage) FindGoalsByUser(ctx context.Context, email string) ([]model.Goal, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Goal), args.Error(1)
}

func (m *MockGoalStorage) UpdateGoalStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockGoalStorage) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockUserStorage is a mock implementation of UserStorage.
type MockUserStorage struct {
	mock.Mock
}

func NewMockUserStorage(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUserStorage {
	m := &MockUserStorage{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUserStorage) CreateUser(ctx context.Context, email, hashedPass string) (*model.User, error) {
	args := m.Called(ctx, email, hashedPass)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserStorage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserStorage) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
