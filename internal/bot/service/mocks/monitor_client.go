package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type MonitorClient struct {
	mock.Mock
}

func (m *MonitorClient) RegisterChat(ctx context.Context, chatID int64) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

func (m *MonitorClient) DeleteChat(ctx context.Context, chatID int64) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

func (m *MonitorClient) GetChat(ctx context.Context, chatID int64) (*models.Chat, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MonitorClient) GetWebsites(ctx context.Context) ([]*models.Website, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Website), args.Error(1)
}

func (m *MonitorClient) CreateMonitor(ctx context.Context, monitor *models.Monitor) (*models.Monitor, error) {
	args := m.Called(ctx, monitor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Monitor), args.Error(1)
}

func (m *MonitorClient) GetMonitors(ctx context.Context) ([]*models.Monitor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Monitor), args.Error(1)
}

func (m *MonitorClient) Subscribe(ctx context.Context, chatID, monitorID int64) error {
	args := m.Called(ctx, chatID, monitorID)
	return args.Error(0)
}

func (m *MonitorClient) Unsubscribe(ctx context.Context, chatID, monitorID int64) error {
	args := m.Called(ctx, chatID, monitorID)
	return args.Error(0)
}

func (m *MonitorClient) GetJobs(ctx context.Context, monitorID int64) ([]*models.JobRecord, error) {
	args := m.Called(ctx, monitorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.JobRecord), args.Error(1)
}

func (m *MonitorClient) CheckNow(ctx context.Context, monitorID int64) error {
	args := m.Called(ctx, monitorID)
	return args.Error(0)
}

func (m *MonitorClient) UpdateNotificationSettings(ctx context.Context, chatID int64, mode models.NotificationMode,
	digestTime time.Time) error {
	args := m.Called(ctx, chatID, mode, digestTime)
	return args.Error(0)
}
