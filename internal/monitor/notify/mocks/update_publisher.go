package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type UpdatePublisher struct {
	mock.Mock
}

func (m *UpdatePublisher) SendUpdate(ctx context.Context, update *models.JobUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

func NewUpdatePublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *UpdatePublisher {
	m := &UpdatePublisher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
