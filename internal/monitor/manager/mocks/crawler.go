package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type Crawler struct {
	mock.Mock
}

func (m *Crawler) GetJobsFromWebsite(ctx context.Context, website *models.Website,
	keywords, excludeKeywords []string) ([]*models.JobRecord, error) {
	args := m.Called(ctx, website, keywords, excludeKeywords)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.JobRecord), args.Error(1)
}

func (m *Crawler) GetJobDetails(ctx context.Context, website *models.Website, job *models.JobRecord) error {
	args := m.Called(ctx, website, job)
	return args.Error(0)
}
