package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type MonitorCache struct {
	mock.Mock
}

func (m *MonitorCache) GetMonitors(ctx context.Context, chatID int64) ([]*models.Monitor, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Monitor), args.Error(1)
}

func (m *MonitorCache) SetMonitors(ctx context.Context, chatID int64, monitors []*models.Monitor) error {
	args := m.Called(ctx, chatID, monitors)
	return args.Error(0)
}

func (m *MonitorCache) DeleteMonitors(ctx context.Context, chatID int64) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}
