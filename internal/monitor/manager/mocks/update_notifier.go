package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type UpdateNotifier struct {
	mock.Mock
}

func (m *UpdateNotifier) SendUpdate(ctx context.Context, update *models.JobUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}
