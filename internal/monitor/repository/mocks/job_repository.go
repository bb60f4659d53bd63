package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type JobRepository struct {
	mock.Mock
}

func (m *JobRepository) Save(ctx context.Context, job *models.JobRecord) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *JobRepository) FindByMonitorID(ctx context.Context, monitorID int64) ([]*models.JobRecord, error) {
	args := m.Called(ctx, monitorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.JobRecord), args.Error(1)
}

func (m *JobRepository) FindByURL(ctx context.Context, monitorID int64, url string) (*models.JobRecord, error) {
	args := m.Called(ctx, monitorID, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.JobRecord), args.Error(1)
}

func (m *JobRepository) MarkRemoved(ctx context.Context, monitorID int64, url string) error {
	args := m.Called(ctx, monitorID, url)
	return args.Error(0)
}

func (m *JobRepository) CountActive(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
