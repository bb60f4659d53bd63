package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type ChatRepository struct {
	mock.Mock
}

func (m *ChatRepository) Save(ctx context.Context, chat *models.Chat) error {
	args := m.Called(ctx, chat)
	return args.Error(0)
}

func (m *ChatRepository) FindByID(ctx context.Context, id int64) (*models.Chat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *ChatRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ChatRepository) AddMonitor(ctx context.Context, chatID, monitorID int64) error {
	args := m.Called(ctx, chatID, monitorID)
	return args.Error(0)
}

func (m *ChatRepository) RemoveMonitor(ctx context.Context, chatID, monitorID int64) error {
	args := m.Called(ctx, chatID, monitorID)
	return args.Error(0)
}

func (m *ChatRepository) FindByMonitorID(ctx context.Context, monitorID int64) ([]*models.Chat, error) {
	args := m.Called(ctx, monitorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Chat), args.Error(1)
}

func (m *ChatRepository) UpdateNotificationSettings(ctx context.Context, chatID int64,
	mode models.NotificationMode, digestTime time.Time) error {
	args := m.Called(ctx, chatID, mode, digestTime)
	return args.Error(0)
}

func (m *ChatRepository) FindByDigestTime(ctx context.Context, hour, minute int) ([]*models.Chat, error) {
	args := m.Called(ctx, hour, minute)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Chat), args.Error(1)
}
