package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/remote-radar-dev/go-job-radar/internal/bot/domain"
	domainerrors "github.com/remote-radar-dev/go-job-radar/internal/domain/errors"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type ChatStateRepository interface {
	GetState(ctx context.Context, chatID int64) (models.ChatState, error)

	SetState(ctx context.Context, chatID int64, state models.ChatState) error

	GetData(ctx context.Context, chatID int64, key string) (interface{}, error)

	SetData(ctx context.Context, chatID int64, key string, value interface{}) error

	ClearData(ctx context.Context, chatID int64) error
}

type MonitorClient interface {
	RegisterChat(ctx context.Context, chatID int64) error

	DeleteChat(ctx context.Context, chatID int64) error

	GetChat(ctx context.Context, chatID int64) (*models.Chat, error)

	GetWebsites(ctx context.Context) ([]*models.Website, error)

	CreateMonitor(ctx context.Context, monitor *models.Monitor) (*models.Monitor, error)

	GetMonitors(ctx context.Context) ([]*models.Monitor, error)

	Subscribe(ctx context.Context, chatID, monitorID int64) error

	Unsubscribe(ctx context.Context, chatID, monitorID int64) error

	GetJobs(ctx context.Context, monitorID int64) ([]*models.JobRecord, error)

	CheckNow(ctx context.Context, monitorID int64) error

	UpdateNotificationSettings(ctx context.Context, chatID int64, mode models.NotificationMode, digestTime time.Time) error
}

type BotService struct {
	chatStateRepo  ChatStateRepository
	monitorClient  MonitorClient
	telegramClient domain.TelegramClientAPI
}

func NewBotService(
	chatStateRepo ChatStateRepository,
	monitorClient MonitorClient,
	telegramClient domain.TelegramClientAPI,
) *BotService {
	return &BotService{
		chatStateRepo:  chatStateRepo,
		monitorClient:  monitorClient,
		telegramClient: telegramClient,
	}
}

func (s *BotService) ProcessCommand(ctx context.Context, command *models.Command) (string, error) {
	switch command.Type {
	case models.CommandStart:
		return s.handleStartCommand(ctx, command)
	case models.CommandHelp:
		return s.handleHelpCommand(ctx, command)
	case models.CommandSubscribe:
		return s.handleSubscribeCommand(ctx, command)
	case models.CommandUnsubscribe:
		return s.handleUnsubscribeCommand(ctx, command)
	case models.CommandList:
		return s.handleListCommand(ctx, command)
	case models.CommandJobs:
		return s.handleJobsCommand(ctx, command)
	case models.CommandCheck:
		return s.handleCheckCommand(ctx, command)
	case models.CommandMode:
		return s.handleModeCommand(ctx, command)
	case models.CommandTime:
		return s.handleTimeCommand(ctx, command)
	default:
		return "Неизвестная команда. Введите /help для просмотра доступных команд.",
			&domainerrors.ErrUnknownCommand{Command: string(command.Type)}
	}
}

func (s *BotService) ProcessMessage(ctx context.Context, chatID, _ int64, text, _ string) (string, error) {
	state, err := s.chatStateRepo.GetState(ctx, chatID)
	if err != nil {
		return "", err
	}

	switch state {
	case models.StateIdle:
		return "Введите команду или /help для просмотра доступных команд.", nil
	case models.StateAwaitingMonitorName:
		return s.handleMonitorNameInput(ctx, chatID, text)
	case models.StateAwaitingWebsite:
		return s.handleWebsiteInput(ctx, chatID, text)
	case models.StateAwaitingKeywords:
		return s.handleKeywordsInput(ctx, chatID, text)
	case models.StateAwaitingExcludeKeywords:
		return s.handleExcludeKeywordsInput(ctx, chatID, text)
	case models.StateAwaitingInterval:
		return s.handleIntervalInput(ctx, chatID, text)
	case models.StateAwaitingUnsubscribeMonitor:
		return s.handleUnsubscribeInput(ctx, chatID, text)
	case models.StateAwaitingDigestTime:
		return s.handleDigestTimeInput(ctx, chatID, text)
	default:
		return "", fmt.Errorf("неизвестное состояние чата: %d", state)
	}
}

func (s *BotService) SendJobUpdate(ctx context.Context, update *models.JobUpdate) error {
	return s.telegramClient.SendUpdate(ctx, update)
}

// HandleUpdate доставляет событие, прочитанное из Kafka.
func (s *BotService) HandleUpdate(ctx context.Context, update *models.JobUpdate) error {
	return s.SendJobUpdate(ctx, update)
}

func (s *BotService) handleStartCommand(ctx context.Context, command *models.Command) (string, error) {
	if err := s.monitorClient.RegisterChat(ctx, command.ChatID); err != nil {
		var existsErr *domainerrors.ErrChatAlreadyExists
		if !errors.As(err, &existsErr) {
			return "", err
		}
	}

	if err := s.chatStateRepo.SetState(ctx, command.ChatID, models.StateIdle); err != nil {
		return "", err
	}

	return "Привет! Я бот для отслеживания удалённых вакансий. Введите /help для просмотра доступных команд.", nil
}

func (s *BotService) handleHelpCommand(ctx context.Context, command *models.Command) (string, error) {
	if err := s.chatStateRepo.SetState(ctx, command.ChatID, models.StateIdle); err != nil {
		return "", err
	}

	return `Доступные команды:
/start - регистрация
/help - список команд
/subscribe - создать монитор вакансий и подписаться на него
/unsubscribe - отписаться от монитора
/list - показать список подписок
/jobs <ID> - показать вакансии монитора
/check <ID> - запустить проверку монитора
/mode <instant|digest> - режим уведомлений
/time - время доставки дайджеста`, nil
}

func (s *BotService) handleSubscribeCommand(ctx context.Context, command *models.Command) (string, error) {
	if err := s.chatStateRepo.SetState(ctx, command.ChatID, models.StateAwaitingMonitorName); err != nil {
		return "", err
	}

	if err := s.chatStateRepo.ClearData(ctx, command.ChatID); err != nil {
		return "", err
	}

	return "Введите название монитора:", nil
}

func (s *BotService) handleUnsubscribeCommand(ctx context.Context, command *models.Command) (string, error) {
	if err := s.chatStateRepo.SetState(ctx, command.ChatID, models.StateAwaitingUnsubscribeMonitor); err != nil {
		return "", err
	}

	return "Введите ID монитора для отписки (список подписок — /list):", nil
}

func (s *BotService) handleListCommand(ctx context.Context, command *models.Command) (string, error) {
	monitors, err := s.subscribedMonitors(ctx, command.ChatID)
	if err != nil {
		var notFoundErr *domainerrors.ErrChatNotFound
		if errors.As(err, &notFoundErr) {
			return "Вы не зарегистрированы. Введите /start.", nil
		}

		return "", err
	}

	return formatMonitorsList(monitors), nil
}

func (s *BotService) handleJobsCommand(ctx context.Context, command *models.Command) (string, error) {
	monitorID, ok := commandArg(command.Text)
	if !ok {
		return "Укажите ID монитора: /jobs <ID>", nil
	}

	jobs, err := s.monitorClient.GetJobs(ctx, monitorID)
	if err != nil {
		var notFoundErr *domainerrors.ErrMonitorNotFound
		if errors.As(err, &notFoundErr) {
			return "Монитор не найден. Список подписок — /list.", nil
		}

		return "", err
	}

	if len(jobs) == 0 {
		return "По этому монитору пока нет вакансий.", nil
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Вакансии монитора %d:\n\n", monitorID))

	const maxJobs = 10

	for i, job := range jobs {
		if i == maxJobs {
			sb.WriteString(fmt.Sprintf("...и ещё %d вакансий\n", len(jobs)-maxJobs))
			break
		}

		sb.WriteString(fmt.Sprintf("%d. %s", i+1, job.Title))

		if job.Company != "" {
			sb.WriteString(" — " + job.Company)
		}

		sb.WriteString("\n   🔗 " + job.URL + "\n")
	}

	return sb.String(), nil
}

func (s *BotService) handleCheckCommand(ctx context.Context, command *models.Command) (string, error) {
	monitorID, ok := commandArg(command.Text)
	if !ok {
		return "Укажите ID монитора: /check <ID>", nil
	}

	if err := s.monitorClient.CheckNow(ctx, monitorID); err != nil {
		var notFoundErr *domainerrors.ErrMonitorNotFound
		if errors.As(err, &notFoundErr) {
			return "Монитор не найден. Список подписок — /list.", nil
		}

		return "", err
	}

	return "Проверка запущена. Об изменениях придёт уведомление.", nil
}

func (s *BotService) handleModeCommand(ctx context.Context, command *models.Command) (string, error) {
	fields := strings.Fields(command.Text)
	if len(fields) < 2 {
		return "Укажите режим уведомлений: /mode instant или /mode digest", nil
	}

	switch models.NotificationMode(fields[1]) {
	case models.NotificationModeInstant:
		if err := s.monitorClient.UpdateNotificationSettings(ctx, command.ChatID,
			models.NotificationModeInstant, time.Time{}); err != nil {
			return "", err
		}

		return "Уведомления будут приходить сразу.", nil
	case models.NotificationModeDigest:
		if err := s.chatStateRepo.SetState(ctx, command.ChatID, models.StateAwaitingDigestTime); err != nil {
			return "", err
		}

		return "Введите время доставки дайджеста в формате ЧЧ:ММ:", nil
	default:
		return "Неизвестный режим. Доступны instant и digest.", nil
	}
}

func (s *BotService) handleTimeCommand(ctx context.Context, command *models.Command) (string, error) {
	if err := s.chatStateRepo.SetState(ctx, command.ChatID, models.StateAwaitingDigestTime); err != nil {
		return "", err
	}

	return "Введите время доставки дайджеста в формате ЧЧ:ММ:", nil
}

func (s *BotService) handleMonitorNameInput(ctx context.Context, chatID int64, text string) (string, error) {
	name := strings.TrimSpace(text)
	if name == "" {
		return "Название не может быть пустым. Введите название монитора:", nil
	}

	if err := s.chatStateRepo.SetData(ctx, chatID, "name", name); err != nil {
		return "", err
	}

	websites, err := s.monitorClient.GetWebsites(ctx)
	if err != nil {
		return "", err
	}

	if len(websites) == 0 {
		if err := s.chatStateRepo.SetState(ctx, chatID, models.StateIdle); err != nil {
			return "", err
		}

		return "Нет доступных площадок для мониторинга. Попробуйте позже.", nil
	}

	if err := s.chatStateRepo.SetState(ctx, chatID, models.StateAwaitingWebsite); err != nil {
		return "", err
	}

	var sb strings.Builder

	sb.WriteString("Выберите площадку (введите её ID):\n\n")

	for _, website := range websites {
		sb.WriteString(fmt.Sprintf("%d. %s (%s)\n", website.ID, website.Name, website.Type))
	}

	return sb.String(), nil
}

func (s *BotService) handleWebsiteInput(ctx context.Context, chatID int64, text string) (string, error) {
	websiteID, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return "Введите числовой ID площадки:", nil
	}

	if err := s.chatStateRepo.SetData(ctx, chatID, "websiteId", websiteID); err != nil {
		return "", err
	}

	if err := s.chatStateRepo.SetState(ctx, chatID, models.StateAwaitingKeywords); err != nil {
		return "", err
	}

	return "Введите ключевые слова (разделите пробелами) или напишите 'нет' для пропуска:", nil
}

func (s *BotService) handleKeywordsInput(ctx context.Context, chatID int64, text string) (string, error) {
	var keywords []string

	if !strings.EqualFold(strings.TrimSpace(text), "нет") {
		keywords = strings.Fields(text)
	}

	if err := s.chatStateRepo.SetData(ctx, chatID, "keywords", keywords); err != nil {
		return "", err
	}

	if err := s.chatStateRepo.SetState(ctx, chatID, models.StateAwaitingExcludeKeywords); err != nil {
		return "", err
	}

	return "Введите минус-слова для исключения вакансий или напишите 'нет' для пропуска:", nil
}

func (s *BotService) handleExcludeKeywordsInput(ctx context.Context, chatID int64, text string) (string, error) {
	var excludeKeywords []string

	if !strings.EqualFold(strings.TrimSpace(text), "нет") {
		excludeKeywords = strings.Fields(text)
	}

	if err := s.chatStateRepo.SetData(ctx, chatID, "excludeKeywords", excludeKeywords); err != nil {
		return "", err
	}

	if err := s.chatStateRepo.SetState(ctx, chatID, models.StateAwaitingInterval); err != nil {
		return "", err
	}

	return "Введите интервал проверки в минутах:", nil
}

func (s *BotService) handleIntervalInput(ctx context.Context, chatID int64, text string) (string, error) {
	minutes, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || minutes <= 0 {
		return "Интервал должен быть положительным числом минут. Введите интервал:", nil
	}

	monitor, err := s.collectMonitorDraft(ctx, chatID)
	if err != nil {
		return "", err
	}

	monitor.CheckInterval = time.Duration(minutes) * time.Minute

	created, err := s.monitorClient.CreateMonitor(ctx, monitor)
	if err != nil {
		var websiteErr *domainerrors.ErrWebsiteNotFound
		if errors.As(err, &websiteErr) {
			if stateErr := s.chatStateRepo.SetState(ctx, chatID, models.StateIdle); stateErr != nil {
				return "", stateErr
			}

			return "Площадка не найдена. Начните заново: /subscribe", nil
		}

		return "", err
	}

	if err := s.monitorClient.Subscribe(ctx, chatID, created.ID); err != nil {
		return "", err
	}

	if err := s.chatStateRepo.SetState(ctx, chatID, models.StateIdle); err != nil {
		return "", err
	}

	if err := s.chatStateRepo.ClearData(ctx, chatID); err != nil {
		return "", err
	}

	return fmt.Sprintf("Монитор «%s» создан (ID %d), вы подписаны на его обновления!", created.Name, created.ID), nil
}

func (s *BotService) handleUnsubscribeInput(ctx context.Context, chatID int64, text string) (string, error) {
	monitorID, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return "Введите числовой ID монитора:", nil
	}

	if err := s.monitorClient.Unsubscribe(ctx, chatID, monitorID); err != nil {
		var notFoundErr *domainerrors.ErrMonitorNotFound
		if errors.As(err, &notFoundErr) {
			return "Монитор не найден или вы на него не подписаны.", nil
		}

		return "", err
	}

	if err := s.chatStateRepo.SetState(ctx, chatID, models.StateIdle); err != nil {
		return "", err
	}

	return fmt.Sprintf("Подписка на монитор %d отменена.", monitorID), nil
}

func (s *BotService) handleDigestTimeInput(ctx context.Context, chatID int64, text string) (string, error) {
	digestTime, err := time.Parse("15:04", strings.TrimSpace(text))
	if err != nil {
		return "Неверный формат. Введите время в формате ЧЧ:ММ, например 10:30:", nil
	}

	if err := s.monitorClient.UpdateNotificationSettings(ctx, chatID,
		models.NotificationModeDigest, digestTime); err != nil {
		return "", err
	}

	if err := s.chatStateRepo.SetState(ctx, chatID, models.StateIdle); err != nil {
		return "", err
	}

	return fmt.Sprintf("Дайджест будет приходить ежедневно в %s.", digestTime.Format("15:04")), nil
}

func (s *BotService) collectMonitorDraft(ctx context.Context, chatID int64) (*models.Monitor, error) {
	nameValue, err := s.chatStateRepo.GetData(ctx, chatID, "name")
	if err != nil {
		return nil, err
	}

	name, ok := nameValue.(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("некорректные данные диалога: отсутствует название монитора")
	}

	websiteValue, err := s.chatStateRepo.GetData(ctx, chatID, "websiteId")
	if err != nil {
		return nil, err
	}

	websiteID, ok := toInt64(websiteValue)
	if !ok {
		return nil, fmt.Errorf("некорректные данные диалога: отсутствует площадка")
	}

	keywordsValue, err := s.chatStateRepo.GetData(ctx, chatID, "keywords")
	if err != nil {
		return nil, err
	}

	excludeValue, err := s.chatStateRepo.GetData(ctx, chatID, "excludeKeywords")
	if err != nil {
		return nil, err
	}

	return &models.Monitor{
		Name:            name,
		WebsiteID:       websiteID,
		Keywords:        toStringSlice(keywordsValue),
		ExcludeKeywords: toStringSlice(excludeValue),
		IsActive:        true,
		NotifyOnChange:  true,
	}, nil
}

func (s *BotService) subscribedMonitors(ctx context.Context, chatID int64) ([]*models.Monitor, error) {
	chat, err := s.monitorClient.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if len(chat.Monitors) == 0 {
		return nil, nil
	}

	all, err := s.monitorClient.GetMonitors(ctx)
	if err != nil {
		return nil, err
	}

	subscribed := make(map[int64]bool, len(chat.Monitors))
	for _, id := range chat.Monitors {
		subscribed[id] = true
	}

	monitors := make([]*models.Monitor, 0, len(chat.Monitors))

	for _, monitor := range all {
		if subscribed[monitor.ID] {
			monitors = append(monitors, monitor)
		}
	}

	return monitors, nil
}

func formatMonitorsList(monitors []*models.Monitor) string {
	if len(monitors) == 0 {
		return "У вас нет подписок. Создайте монитор командой /subscribe."
	}

	var sb strings.Builder

	sb.WriteString("Ваши подписки:\n\n")

	for i, monitor := range monitors {
		sb.WriteString(fmt.Sprintf("%d. %s (ID %d, каждые %d мин.)\n",
			i+1, monitor.Name, monitor.ID, int(monitor.CheckInterval.Minutes())))

		if len(monitor.Keywords) > 0 {
			sb.WriteString(fmt.Sprintf("   Ключевые слова: %s\n", strings.Join(monitor.Keywords, ", ")))
		}
	}

	return sb.String()
}

func commandArg(text string) (int64, bool) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return 0, false
	}

	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, false
	}

	return id, true
}

// Данные диалога проходят через JSON, поэтому числа возвращаются как
// float64, а срезы — как []interface{}.
func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

func toStringSlice(value interface{}) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []interface{}:
		result := make([]string, 0, len(v))

		for _, item := range v {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}

		return result
	default:
		return nil
	}
}
