package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
	"github.com/remote-radar-dev/go-job-radar/internal/monitor/repository"
)

type DigestCache interface {
	AddUpdate(ctx context.Context, chatID int64, update *models.JobUpdate) error
	GetUpdates(ctx context.Context, chatID int64) ([]*models.JobUpdate, error)
	ClearUpdates(ctx context.Context, chatID int64) error
	Close() error
}

type UpdatePublisher interface {
	SendUpdate(ctx context.Context, update *models.JobUpdate) error
}

// DigestService раз в минуту ищет чаты, у которых наступило время
// дайджеста, и отправляет им накопленные события одним сообщением.
type DigestService struct {
	publisher   UpdatePublisher
	digestCache DigestCache
	chatRepo    repository.ChatRepository
	logger      *slog.Logger
	scheduler   *gocron.Scheduler
}

func NewDigestService(
	publisher UpdatePublisher,
	digestCache DigestCache,
	chatRepo repository.ChatRepository,
	logger *slog.Logger,
) *DigestService {
	return &DigestService{
		publisher:   publisher,
		digestCache: digestCache,
		chatRepo:    chatRepo,
		logger:      logger,
		scheduler:   gocron.NewScheduler(time.UTC),
	}
}

func (s *DigestService) Start(ctx context.Context) {
	s.logger.Info("Запуск планировщика дайджестов")

	_, err := s.scheduler.Every(1).Minute().Do(func() {
		now := time.Now()
		hour, minute := now.Hour(), now.Minute()

		if err := s.sendDigests(ctx, hour, minute); err != nil {
			s.logger.Error("Ошибка при отправке дайджестов",
				"error", err,
				"time", fmt.Sprintf("%02d:%02d", hour, minute),
			)
		}
	})

	if err != nil {
		s.logger.Error("Ошибка при настройке планировщика дайджестов",
			"error", err,
		)

		return
	}

	s.scheduler.StartAsync()
}

func (s *DigestService) Stop() {
	s.logger.Info("Остановка планировщика дайджестов")
	s.scheduler.Stop()
}

// AddUpdate откладывает событие в дайджест-кэш чата до времени отправки.
func (s *DigestService) AddUpdate(ctx context.Context, chatID int64, update *models.JobUpdate) error {
	chatUpdate := &models.JobUpdate{
		MonitorID:   update.MonitorID,
		MonitorName: update.MonitorName,
		ChangeType:  update.ChangeType,
		Job:         update.Job,
		TgChatIDs:   []int64{chatID},
	}

	return s.digestCache.AddUpdate(ctx, chatID, chatUpdate)
}

func (s *DigestService) sendDigests(ctx context.Context, hour, minute int) error {
	chats, err := s.chatRepo.FindByDigestTime(ctx, hour, minute)
	if err != nil {
		return fmt.Errorf("ошибка при поиске чатов с временем дайджеста %02d:%02d: %w", hour, minute, err)
	}

	if len(chats) == 0 {
		return nil
	}

	s.logger.Info("Отправка дайджестов",
		"time", fmt.Sprintf("%02d:%02d", hour, minute),
		"totalChats", len(chats),
	)

	for _, chat := range chats {
		updates, err := s.digestCache.GetUpdates(ctx, chat.ID)
		if err != nil {
			s.logger.Error("Ошибка при получении обновлений для дайджеста",
				"error", err,
				"chatID", chat.ID,
			)

			continue
		}

		if len(updates) == 0 {
			continue
		}

		digestUpdate := &models.JobUpdate{
			Description: s.createDigestMessage(updates),
			TgChatIDs:   []int64{chat.ID},
		}

		if err := s.publisher.SendUpdate(ctx, digestUpdate); err != nil {
			s.logger.Error("Ошибка при отправке дайджеста",
				"error", err,
				"chatID", chat.ID,
			)

			continue
		}

		if err := s.digestCache.ClearUpdates(ctx, chat.ID); err != nil {
			s.logger.Error("Ошибка при очистке обновлений после отправки дайджеста",
				"error", err,
				"chatID", chat.ID,
			)
		}

		s.logger.Info("Дайджест успешно отправлен",
			"chatID", chat.ID,
			"updates", len(updates),
		)
	}

	return nil
}

func (s *DigestService) createDigestMessage(updates []*models.JobUpdate) string {
	var message strings.Builder

	message.WriteString(fmt.Sprintf("📋 Дайджест вакансий за %s\n\n", time.Now().Format("02.01.2006")))

	const maxUpdates = 10

	for i, update := range updates {
		if i >= maxUpdates {
			message.WriteString(fmt.Sprintf("\n...и ещё %d изменений", len(updates)-maxUpdates))
			break
		}

		if update.Job == nil {
			continue
		}

		switch update.ChangeType {
		case models.ChangeRemoved:
			message.WriteString("❌ ")
		default:
			message.WriteString("🆕 ")
		}

		message.WriteString(update.Job.Title)

		if update.Job.Company != "" {
			message.WriteString(fmt.Sprintf(" — %s", update.Job.Company))
		}

		message.WriteString(fmt.Sprintf("\n🔗 %s\n📡 %s\n\n", update.Job.URL, update.MonitorName))
	}

	return message.String()
}
