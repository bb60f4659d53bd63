package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type MonitorRepository struct {
	mock.Mock
}

func (m *MonitorRepository) Save(ctx context.Context, monitor *models.Monitor) error {
	args := m.Called(ctx, monitor)
	return args.Error(0)
}

func (m *MonitorRepository) FindByID(ctx context.Context, id int64) (*models.Monitor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Monitor), args.Error(1)
}

func (m *MonitorRepository) GetAll(ctx context.Context) ([]*models.Monitor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Monitor), args.Error(1)
}

func (m *MonitorRepository) GetAllActive(ctx context.Context) ([]*models.Monitor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Monitor), args.Error(1)
}

func (m *MonitorRepository) Update(ctx context.Context, monitor *models.Monitor) error {
	args := m.Called(ctx, monitor)
	return args.Error(0)
}

func (m *MonitorRepository) UpdateLastCheck(ctx context.Context, id int64, lastCheckAt time.Time) error {
	args := m.Called(ctx, id, lastCheckAt)
	return args.Error(0)
}

func (m *MonitorRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MonitorRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
