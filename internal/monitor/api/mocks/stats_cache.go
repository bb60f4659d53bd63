package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type StatsCache struct {
	mock.Mock
}

func (m *StatsCache) GetStats(ctx context.Context) (*models.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Stats), args.Error(1)
}

func (m *StatsCache) SetStats(ctx context.Context, stats *models.Stats) error {
	args := m.Called(ctx, stats)
	return args.Error(0)
}
