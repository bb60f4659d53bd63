package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type ChangeLogRepository struct {
	mock.Mock
}

func (m *ChangeLogRepository) Append(ctx context.Context, entry *models.ChangeLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ChangeLogRepository) MarkNotified(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ChangeLogRepository) FindByMonitorID(ctx context.Context, monitorID int64, limit int) ([]*models.ChangeLogEntry, error) {
	args := m.Called(ctx, monitorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.ChangeLogEntry), args.Error(1)
}
