package service

import (
	"context"
	"log/slog"

	"github.com/remote-radar-dev/go-job-radar/internal/bot/cache"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

// CachedBotService кэширует список подписок чата и инвалидирует его
// при командах, меняющих подписки.
type CachedBotService struct {
	botService   *BotService
	monitorCache cache.MonitorCache
	logger       *slog.Logger
}

func NewCachedBotService(botService *BotService, monitorCache cache.MonitorCache, logger *slog.Logger) *CachedBotService {
	return &CachedBotService{
		botService:   botService,
		monitorCache: monitorCache,
		logger:       logger,
	}
}

func (s *CachedBotService) ProcessCommand(ctx context.Context, command *models.Command) (string, error) {
	if command.Type == models.CommandSubscribe || command.Type == models.CommandUnsubscribe {
		if err := s.monitorCache.DeleteMonitors(ctx, command.ChatID); err != nil {
			s.logger.Error("Ошибка при инвалидации кэша",
				"error", err,
				"chatID", command.ChatID,
			)
		}
	}

	if command.Type == models.CommandList {
		return s.handleCachedListCommand(ctx, command)
	}

	return s.botService.ProcessCommand(ctx, command)
}

func (s *CachedBotService) ProcessMessage(ctx context.Context, chatID, userID int64, text, username string) (string, error) {
	state, err := s.botService.chatStateRepo.GetState(ctx, chatID)
	if err != nil {
		return "", err
	}

	isSubscriptionStep := state == models.StateAwaitingInterval || state == models.StateAwaitingUnsubscribeMonitor

	response, err := s.botService.ProcessMessage(ctx, chatID, userID, text, username)
	if err != nil {
		return "", err
	}

	if isSubscriptionStep {
		newState, stateErr := s.botService.chatStateRepo.GetState(ctx, chatID)
		if stateErr == nil && newState == models.StateIdle {
			if err := s.monitorCache.DeleteMonitors(ctx, chatID); err != nil {
				s.logger.Error("Ошибка при инвалидации кэша после изменения подписок",
					"error", err,
					"chatID", chatID,
				)
			}
		}
	}

	return response, nil
}

func (s *CachedBotService) SendJobUpdate(ctx context.Context, update *models.JobUpdate) error {
	return s.botService.SendJobUpdate(ctx, update)
}

func (s *CachedBotService) HandleUpdate(ctx context.Context, update *models.JobUpdate) error {
	return s.SendJobUpdate(ctx, update)
}

func (s *CachedBotService) handleCachedListCommand(ctx context.Context, command *models.Command) (string, error) {
	monitors, err := s.monitorCache.GetMonitors(ctx, command.ChatID)
	if err == nil && monitors != nil {
		s.logger.Debug("Подписки получены из кэша",
			"chatID", command.ChatID,
			"count", len(monitors),
		)

		return formatMonitorsList(monitors), nil
	}

	response, err := s.botService.handleListCommand(ctx, command)
	if err != nil {
		return "", err
	}

	monitors, err = s.botService.subscribedMonitors(ctx, command.ChatID)
	if err != nil {
		s.logger.Error("Ошибка при получении подписок для кэширования",
			"error", err,
			"chatID", command.ChatID,
		)

		return response, nil
	}

	if err := s.monitorCache.SetMonitors(ctx, command.ChatID, monitors); err != nil {
		s.logger.Error("Ошибка при кэшировании подписок",
			"error", err,
			"chatID", command.ChatID,
		)
	}

	return response, nil
}
