package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type ChatStateRepository struct {
	mock.Mock
}

func (m *ChatStateRepository) GetState(ctx context.Context, chatID int64) (models.ChatState, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).(models.ChatState), args.Error(1)
}

func (m *ChatStateRepository) SetState(ctx context.Context, chatID int64, state models.ChatState) error {
	args := m.Called(ctx, chatID, state)
	return args.Error(0)
}

func (m *ChatStateRepository) GetData(ctx context.Context, chatID int64, key string) (interface{}, error) {
	args := m.Called(ctx, chatID, key)
	return args.Get(0), args.Error(1)
}

func (m *ChatStateRepository) SetData(ctx context.Context, chatID int64, key string, value interface{}) error {
	args := m.Called(ctx, chatID, key, value)
	return args.Error(0)
}

func (m *ChatStateRepository) ClearData(ctx context.Context, chatID int64) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}
