package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type ChannelNotifier struct {
	mock.Mock
}

func (m *ChannelNotifier) Send(ctx context.Context, channel *models.NotificationChannel, update *models.JobUpdate) error {
	args := m.Called(ctx, channel, update)
	return args.Error(0)
}

func NewChannelNotifier(t interface {
	mock.TestingT
	Cleanup(func())
}) *ChannelNotifier {
	m := &ChannelNotifier{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
