package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type DigestSink struct {
	mock.Mock
}

func (m *DigestSink) AddUpdate(ctx context.Context, chatID int64, update *models.JobUpdate) error {
	args := m.Called(ctx, chatID, update)
	return args.Error(0)
}
