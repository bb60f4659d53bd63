package notify

import (
	"context"
	"log/slog"
	"strings"

	"go.uber.org/multierr"

	"github.com/remote-radar-dev/go-job-radar/internal/common/metrics"
	"github.com/remote-radar-dev/go-job-radar/internal/config"
	customerrors "github.com/remote-radar-dev/go-job-radar/internal/domain/errors"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
	"github.com/remote-radar-dev/go-job-radar/internal/monitor/repository"
)

// UpdatePublisher — транспорт, через который событие уходит боту.
type UpdatePublisher interface {
	SendUpdate(ctx context.Context, update *models.JobUpdate) error
}

// Manager раздаёт событие по всем активным каналам монитора и в Kafka.
// Доставка по принципу "хотя бы один": ошибка отдельного канала не
// останавливает остальные, ошибки складываются через multierr.
type Manager struct {
	channelRepo repository.ChannelRepository
	notifiers   map[models.ChannelType]ChannelNotifier
	pipeline    UpdatePublisher
	logger      *slog.Logger
}

func NewManager(
	channelRepo repository.ChannelRepository,
	notifiers map[models.ChannelType]ChannelNotifier,
	pipeline UpdatePublisher,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		channelRepo: channelRepo,
		notifiers:   notifiers,
		pipeline:    pipeline,
		logger:      logger,
	}
}

// NewDefaultNotifiers собирает таблицу нотификаторов по типу канала.
func NewDefaultNotifiers(cfg *config.Config, logger *slog.Logger) map[models.ChannelType]ChannelNotifier {
	return map[models.ChannelType]ChannelNotifier{
		models.ChannelEmail:    NewEmailNotifier(cfg, logger),
		models.ChannelTelegram: NewTelegramNotifier(cfg.TelegramBotToken, logger),
		models.ChannelWebhook:  NewWebhookNotifier(cfg, logger),
	}
}

// NewPipeline создаёт Kafka-продюсер для доставки событий боту.
func NewPipeline(cfg *config.Config, logger *slog.Logger) *KafkaUpdateNotifier {
	brokers := strings.Split(cfg.KafkaBrokers, ",")

	return NewKafkaUpdateNotifier(brokers, cfg.TopicJobUpdates, cfg.TopicDeadLetterQueue, logger)
}

func (m *Manager) SendUpdate(ctx context.Context, update *models.JobUpdate) error {
	var errs error

	delivered := 0

	if m.pipeline != nil {
		if err := m.pipeline.SendUpdate(ctx, update); err != nil {
			errs = multierr.Append(errs, err)
			metrics.RecordNotification("kafka", "error")
		} else {
			delivered++
			metrics.RecordNotification("kafka", "success")
		}
	}

	channels, err := m.channelRepo.FindActiveByMonitorID(ctx, update.MonitorID)
	if err != nil {
		errs = multierr.Append(errs, err)
	}

	for _, channel := range channels {
		notifier, ok := m.notifiers[channel.Type]
		if !ok {
			errs = multierr.Append(errs, &customerrors.ErrUnknownChannelType{Type: string(channel.Type)})
			continue
		}

		if err := notifier.Send(ctx, channel, update); err != nil {
			m.logger.Error("Канал не смог доставить уведомление",
				"channelID", channel.ID,
				"type", channel.Type,
				"error", err,
			)

			errs = multierr.Append(errs, err)
			metrics.RecordNotification(string(channel.Type), "error")

			continue
		}

		delivered++

		metrics.RecordNotification(string(channel.Type), "success")
	}

	if delivered > 0 {
		return nil
	}

	return errs
}
