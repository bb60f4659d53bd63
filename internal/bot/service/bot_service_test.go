package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domainmocks "github.com/remote-radar-dev/go-job-radar/internal/bot/domain/mocks"
	repomocks "github.com/remote-radar-dev/go-job-radar/internal/bot/repository/mocks"
	"github.com/remote-radar-dev/go-job-radar/internal/bot/service"
	clientmocks "github.com/remote-radar-dev/go-job-radar/internal/bot/service/mocks"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/errors"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

const (
	testChatID   = int64(123456)
	testUserID   = int64(654321)
	testUsername = "testuser"
)

func newBotService() (*service.BotService, *repomocks.ChatStateRepository, *clientmocks.MonitorClient, *domainmocks.TelegramClientAPI) {
	mockChatStateRepo := new(repomocks.ChatStateRepository)
	mockMonitorClient := new(clientmocks.MonitorClient)
	mockTelegramClient := new(domainmocks.TelegramClientAPI)

	botService := service.NewBotService(mockChatStateRepo, mockMonitorClient, mockTelegramClient)

	return botService, mockChatStateRepo, mockMonitorClient, mockTelegramClient
}

func testCommand(cmdType models.CommandType, text string) *models.Command {
	return &models.Command{
		ChatID:   testChatID,
		UserID:   testUserID,
		Text:     text,
		Username: testUsername,
		Type:     cmdType,
	}
}

func TestBotService_ProcessCommand_UnknownCommand(t *testing.T) {
	botService, _, _, _ := newBotService()

	ctx := context.Background()

	response, err := botService.ProcessCommand(ctx, testCommand(models.CommandUnknown, "/unknown"))

	assert.Error(t, err)
	assert.IsType(t, &errors.ErrUnknownCommand{}, err)
	assert.Contains(t, response, "Неизвестная команда")
}

func TestBotService_ProcessCommand_StartCommand(t *testing.T) {
	botService, mockChatStateRepo, mockMonitorClient, _ := newBotService()

	ctx := context.Background()

	mockMonitorClient.On("RegisterChat", ctx, testChatID).Return(nil)
	mockChatStateRepo.On("SetState", ctx, testChatID, models.StateIdle).Return(nil).Once()

	response, err := botService.ProcessCommand(ctx, testCommand(models.CommandStart, "/start"))

	require.NoError(t, err)
	assert.Contains(t, response, "Привет")
	mockChatStateRepo.AssertExpectations(t)
	mockMonitorClient.AssertExpectations(t)
}

func TestBotService_ProcessCommand_StartCommand_AlreadyRegistered(t *testing.T) {
	botService, mockChatStateRepo, mockMonitorClient, _ := newBotService()

	ctx := context.Background()

	mockMonitorClient.On("RegisterChat", ctx, testChatID).
		Return(&errors.ErrChatAlreadyExists{ChatID: testChatID})
	mockChatStateRepo.On("SetState", ctx, testChatID, models.StateIdle).Return(nil)

	response, err := botService.ProcessCommand(ctx, testCommand(models.CommandStart, "/start"))

	require.NoError(t, err, "повторный /start не должен быть ошибкой")
	assert.Contains(t, response, "Привет")
}

func TestBotService_ProcessCommand_HelpCommand(t *testing.T) {
	botService, mockChatStateRepo, _, _ := newBotService()

	ctx := context.Background()

	mockChatStateRepo.On("SetState", ctx, testChatID, models.StateIdle).Return(nil)

	response, err := botService.ProcessCommand(ctx, testCommand(models.CommandHelp, "/help"))

	require.NoError(t, err)
	assert.Contains(t, response, "/start")
	assert.Contains(t, response, "/subscribe")
	assert.Contains(t, response, "/unsubscribe")
	assert.Contains(t, response, "/list")
	assert.Contains(t, response, "/jobs")
	assert.Contains(t, response, "/mode")
}

func TestBotService_ProcessCommand_SubscribeCommand(t *testing.T) {
	botService, mockChatStateRepo, _, _ := newBotService()

	ctx := context.Background()

	mockChatStateRepo.On("SetState", ctx, testChatID, models.StateAwaitingMonitorName).Return(nil)
	mockChatStateRepo.On("ClearData", ctx, testChatID).Return(nil)

	response, err := botService.ProcessCommand(ctx, testCommand(models.CommandSubscribe, "/subscribe"))

	require.NoError(t, err)
	assert.Contains(t, response, "название монитора")
	mockChatStateRepo.AssertExpectations(t)
}

func TestBotService_SubscribeDialog_FullFlow(t *testing.T) {
	botService, mockChatStateRepo, mockMonitorClient, _ := newBotService()

	ctx := context.Background()

	// Шаг 1: название монитора.
	mockChatStateRepo.On("GetState", ctx, testChatID).Return(models.StateAwaitingMonitorName, nil).Once()
	mockChatStateRepo.On("SetData", ctx, testChatID, "name", "Go remote").Return(nil)
	mockMonitorClient.On("GetWebsites", ctx).Return([]*models.Website{
		{ID: 2, Name: "We Work Remotely", Type: models.SiteHTML},
	}, nil)
	mockChatStateRepo.On("SetState", ctx, testChatID, models.StateAwaitingWebsite).Return(nil)

	response, err := botService.ProcessMessage(ctx, testChatID, testUserID, "Go remote", testUsername)
	require.NoError(t, err)
	assert.Contains(t, response, "We Work Remotely")

	// Шаг 2: площадка.
	mockChatStateRepo.On("GetState", ctx, testChatID).Return(models.StateAwaitingWebsite, nil).Once()
	mockChatStateRepo.On("SetData", ctx, testChatID, "websiteId", int64(2)).Return(nil)
	mockChatStateRepo.On("SetState", ctx, testChatID, models.StateAwaitingKeywords).Return(nil)

	response, err = botService.ProcessMessage(ctx, testChatID, testUserID, "2", testUsername)
	require.NoError(t, err)
	assert.Contains(t, response, "ключевые слова")

	// Шаг 3: ключевые слова.
	mockChatStateRepo.On("GetState", ctx, testChatID).Return(models.StateAwaitingKeywords, nil).Once()
	mockChatStateRepo.On("SetData", ctx, testChatID, "keywords", []string{"go", "golang"}).Return(nil)
	mockChatStateRepo.On("SetState", ctx, testChatID, models.StateAwaitingExcludeKeywords).Return(nil)

	response, err = botService.ProcessMessage(ctx, testChatID, testUserID, "go golang", testUsername)
	require.NoError(t, err)
	assert.Contains(t, response, "минус-слова")

	// Шаг 4: минус-слова пропущены.
	mockChatStateRepo.On("GetState", ctx, testChatID).Return(models.StateAwaitingExcludeKeywords, nil).Once()
	mockChatStateRepo.On("SetData", ctx, testChatID, "excludeKeywords", []string(nil)).Return(nil)
	mockChatStateRepo.On("SetState", ctx, testChatID, models.StateAwaitingInterval).Return(nil)

	response, err = botService.ProcessMessage(ctx, testChatID, testUserID, "нет", testUsername)
	require.NoError(t, err)
	assert.Contains(t, response, "интервал")

	// Шаг 5: интервал — монитор создаётся, чат подписывается.
	mockChatStateRepo.On("GetState", ctx, testChatID).Return(models.StateAwaitingInterval, nil).Once()
	mockChatStateRepo.On("GetData", ctx, testChatID, "name").Return("Go remote", nil)
	mockChatStateRepo.On("GetData", ctx, testChatID, "websiteId").Return(float64(2), nil)
	mockChatStateRepo.On("GetData", ctx, testChatID, "keywords").Return([]interface{}{"go", "golang"}, nil)
	mockChatStateRepo.On("GetData", ctx, testChatID, "excludeKeywords").Return(nil, nil)
	mockMonitorClient.On("CreateMonitor", ctx, mock.MatchedBy(func(monitor *models.Monitor) bool {
		return monitor.Name == "Go remote" &&
			monitor.WebsiteID == 2 &&
			monitor.CheckInterval == 30*time.Minute &&
			assert.ObjectsAreEqual([]string{"go", "golang"}, monitor.Keywords)
	})).Return(&models.Monitor{ID: 11, Name: "Go remote", WebsiteID: 2, CheckInterval: 30 * time.Minute}, nil)
	mockMonitorClient.On("Subscribe", ctx, testChatID, int64(11)).Return(nil)
	mockChatStateRepo.On("SetState", ctx, testChatID, models.StateIdle).Return(nil)
	mockChatStateRepo.On("ClearData", ctx, testChatID).Return(nil)

	response, err = botService.ProcessMessage(ctx, testChatID, testUserID, "30", testUsername)
	require.NoError(t, err)
	assert.Contains(t, response, "Go remote")
	assert.Contains(t, response, "подписаны")

	mockChatStateRepo.AssertExpectations(t)
	mockMonitorClient.AssertExpectations(t)
}

func TestBotService_ProcessMessage_InvalidInterval(t *testing.T) {
	botService, mockChatStateRepo, mockMonitorClient, _ := newBotService()

	ctx := context.Background()

	mockChatStateRepo.On("GetState", ctx, testChatID).Return(models.StateAwaitingInterval, nil)

	response, err := botService.ProcessMessage(ctx, testChatID, testUserID, "ноль", testUsername)

	require.NoError(t, err)
	assert.Contains(t, response, "положительным числом")
	mockMonitorClient.AssertNotCalled(t, "CreateMonitor", mock.Anything, mock.Anything)
}

func TestBotService_ProcessCommand_ListCommand(t *testing.T) {
	botService, _, mockMonitorClient, _ := newBotService()

	ctx := context.Background()

	mockMonitorClient.On("GetChat", ctx, testChatID).
		Return(&models.Chat{ID: testChatID, Monitors: []int64{1}}, nil)
	mockMonitorClient.On("GetMonitors", ctx).Return([]*models.Monitor{
		{ID: 1, Name: "Go remote", CheckInterval: 30 * time.Minute, Keywords: []string{"go"}},
		{ID: 2, Name: "Чужой монитор", CheckInterval: time.Hour},
	}, nil)

	response, err := botService.ProcessCommand(ctx, testCommand(models.CommandList, "/list"))

	require.NoError(t, err)
	assert.Contains(t, response, "Go remote")
	assert.NotContains(t, response, "Чужой монитор")
}

func TestBotService_ProcessCommand_ListCommand_Empty(t *testing.T) {
	botService, _, mockMonitorClient, _ := newBotService()

	ctx := context.Background()

	mockMonitorClient.On("GetChat", ctx, testChatID).
		Return(&models.Chat{ID: testChatID}, nil)

	response, err := botService.ProcessCommand(ctx, testCommand(models.CommandList, "/list"))

	require.NoError(t, err)
	assert.Contains(t, response, "нет подписок")
	mockMonitorClient.AssertNotCalled(t, "GetMonitors", mock.Anything)
}

func TestBotService_ProcessCommand_JobsCommand(t *testing.T) {
	botService, _, mockMonitorClient, _ := newBotService()

	ctx := context.Background()

	mockMonitorClient.On("GetJobs", ctx, int64(3)).Return([]*models.JobRecord{
		{ID: 1, Title: "Go Developer", Company: "Acme", URL: "https://a.com/1"},
	}, nil)

	response, err := botService.ProcessCommand(ctx, testCommand(models.CommandJobs, "/jobs 3"))

	require.NoError(t, err)
	assert.Contains(t, response, "Go Developer")
	assert.Contains(t, response, "Acme")
}

func TestBotService_ProcessCommand_JobsCommand_NoArgument(t *testing.T) {
	botService, _, mockMonitorClient, _ := newBotService()

	ctx := context.Background()

	response, err := botService.ProcessCommand(ctx, testCommand(models.CommandJobs, "/jobs"))

	require.NoError(t, err)
	assert.Contains(t, response, "Укажите ID")
	mockMonitorClient.AssertNotCalled(t, "GetJobs", mock.Anything, mock.Anything)
}

func TestBotService_ProcessCommand_CheckCommand_NotFound(t *testing.T) {
	botService, _, mockMonitorClient, _ := newBotService()

	ctx := context.Background()

	mockMonitorClient.On("CheckNow", ctx, int64(42)).
		Return(&errors.ErrMonitorNotFound{ID: 42})

	response, err := botService.ProcessCommand(ctx, testCommand(models.CommandCheck, "/check 42"))

	require.NoError(t, err)
	assert.Contains(t, response, "не найден")
}

func TestBotService_ProcessCommand_ModeInstant(t *testing.T) {
	botService, _, mockMonitorClient, _ := newBotService()

	ctx := context.Background()

	mockMonitorClient.On("UpdateNotificationSettings", ctx, testChatID,
		models.NotificationModeInstant, time.Time{}).Return(nil)

	response, err := botService.ProcessCommand(ctx, testCommand(models.CommandMode, "/mode instant"))

	require.NoError(t, err)
	assert.Contains(t, response, "сразу")
	mockMonitorClient.AssertExpectations(t)
}

func TestBotService_ProcessCommand_ModeDigest_AsksForTime(t *testing.T) {
	botService, mockChatStateRepo, mockMonitorClient, _ := newBotService()

	ctx := context.Background()

	mockChatStateRepo.On("SetState", ctx, testChatID, models.StateAwaitingDigestTime).Return(nil)

	response, err := botService.ProcessCommand(ctx, testCommand(models.CommandMode, "/mode digest"))

	require.NoError(t, err)
	assert.Contains(t, response, "ЧЧ:ММ")
	mockMonitorClient.AssertNotCalled(t, "UpdateNotificationSettings",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBotService_ProcessMessage_DigestTime(t *testing.T) {
	botService, mockChatStateRepo, mockMonitorClient, _ := newBotService()

	ctx := context.Background()

	mockChatStateRepo.On("GetState", ctx, testChatID).Return(models.StateAwaitingDigestTime, nil)
	mockMonitorClient.On("UpdateNotificationSettings", ctx, testChatID,
		models.NotificationModeDigest, mock.MatchedBy(func(tm time.Time) bool {
			return tm.Hour() == 9 && tm.Minute() == 30
		})).Return(nil)
	mockChatStateRepo.On("SetState", ctx, testChatID, models.StateIdle).Return(nil)

	response, err := botService.ProcessMessage(ctx, testChatID, testUserID, "09:30", testUsername)

	require.NoError(t, err)
	assert.Contains(t, response, "09:30")
	mockMonitorClient.AssertExpectations(t)
}

func TestBotService_ProcessMessage_DigestTime_InvalidFormat(t *testing.T) {
	botService, mockChatStateRepo, mockMonitorClient, _ := newBotService()

	ctx := context.Background()

	mockChatStateRepo.On("GetState", ctx, testChatID).Return(models.StateAwaitingDigestTime, nil)

	response, err := botService.ProcessMessage(ctx, testChatID, testUserID, "вечером", testUsername)

	require.NoError(t, err)
	assert.Contains(t, response, "Неверный формат")
	mockMonitorClient.AssertNotCalled(t, "UpdateNotificationSettings",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBotService_ProcessMessage_Unsubscribe(t *testing.T) {
	botService, mockChatStateRepo, mockMonitorClient, _ := newBotService()

	ctx := context.Background()

	mockChatStateRepo.On("GetState", ctx, testChatID).Return(models.StateAwaitingUnsubscribeMonitor, nil)
	mockMonitorClient.On("Unsubscribe", ctx, testChatID, int64(7)).Return(nil)
	mockChatStateRepo.On("SetState", ctx, testChatID, models.StateIdle).Return(nil)

	response, err := botService.ProcessMessage(ctx, testChatID, testUserID, "7", testUsername)

	require.NoError(t, err)
	assert.Contains(t, response, "отменена")
}

func TestBotService_SendJobUpdate(t *testing.T) {
	botService, _, _, mockTelegramClient := newBotService()

	ctx := context.Background()

	update := &models.JobUpdate{
		MonitorID:   1,
		MonitorName: "Go remote",
		ChangeType:  models.ChangeNew,
		Description: "Новая вакансия",
		TgChatIDs:   []int64{testChatID},
	}

	mockTelegramClient.On("SendUpdate", ctx, update).Return(nil)

	err := botService.SendJobUpdate(ctx, update)

	require.NoError(t, err)
	mockTelegramClient.AssertExpectations(t)
}
