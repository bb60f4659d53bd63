package mocks

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/mock"

	"github.com/remote-radar-dev/go-job-radar/internal/bot/domain"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type TelegramClientAPI struct {
	mock.Mock
}

func (m *TelegramClientAPI) SendMessage(ctx context.Context, chatID int64, text string) error {
	args := m.Called(ctx, chatID, text)
	return args.Error(0)
}

func (m *TelegramClientAPI) GetUpdates(ctx context.Context, offset int) ([]domain.Update, error) {
	args := m.Called(ctx, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Update), args.Error(1)
}

func (m *TelegramClientAPI) SendUpdate(ctx context.Context, update *models.JobUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

func (m *TelegramClientAPI) SetMyCommands(ctx context.Context, commands []domain.BotCommand) error {
	args := m.Called(ctx, commands)
	return args.Error(0)
}

func (m *TelegramClientAPI) GetBot() *tgbotapi.BotAPI {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(*tgbotapi.BotAPI)
}
