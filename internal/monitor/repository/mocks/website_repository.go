package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type WebsiteRepository struct {
	mock.Mock
}

func (m *WebsiteRepository) Save(ctx context.Context, website *models.Website) error {
	args := m.Called(ctx, website)
	return args.Error(0)
}

func (m *WebsiteRepository) FindByID(ctx context.Context, id int64) (*models.Website, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Website), args.Error(1)
}

func (m *WebsiteRepository) GetAll(ctx context.Context) ([]*models.Website, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Website), args.Error(1)
}

func (m *WebsiteRepository) Update(ctx context.Context, website *models.Website) error {
	args := m.Called(ctx, website)
	return args.Error(0)
}
