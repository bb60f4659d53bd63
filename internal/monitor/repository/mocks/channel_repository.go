package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type ChannelRepository struct {
	mock.Mock
}

func (m *ChannelRepository) Save(ctx context.Context, channel *models.NotificationChannel) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *ChannelRepository) FindByID(ctx context.Context, id int64) (*models.NotificationChannel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.NotificationChannel), args.Error(1)
}

func (m *ChannelRepository) FindActiveByMonitorID(ctx context.Context, monitorID int64) ([]*models.NotificationChannel, error) {
	args := m.Called(ctx, monitorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.NotificationChannel), args.Error(1)
}

func (m *ChannelRepository) GetAll(ctx context.Context) ([]*models.NotificationChannel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.NotificationChannel), args.Error(1)
}

func (m *ChannelRepository) AttachToMonitor(ctx context.Context, monitorID, channelID int64) error {
	args := m.Called(ctx, monitorID, channelID)
	return args.Error(0)
}
