package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type MonitorService struct {
	mock.Mock
}

func (m *MonitorService) AddMonitor(ctx context.Context, monitor *models.Monitor) error {
	args := m.Called(ctx, monitor)
	return args.Error(0)
}

func (m *MonitorService) UpdateMonitor(ctx context.Context, id int64, patch *models.MonitorPatch) (*models.Monitor, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Monitor), args.Error(1)
}

func (m *MonitorService) DeleteMonitor(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MonitorService) CheckMonitorNow(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
