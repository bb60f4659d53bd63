package service_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cachemocks "github.com/remote-radar-dev/go-job-radar/internal/bot/cache/mocks"
	domainmocks "github.com/remote-radar-dev/go-job-radar/internal/bot/domain/mocks"
	repomocks "github.com/remote-radar-dev/go-job-radar/internal/bot/repository/mocks"
	"github.com/remote-radar-dev/go-job-radar/internal/bot/service"
	clientmocks "github.com/remote-radar-dev/go-job-radar/internal/bot/service/mocks"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

func newCachedBotService() (*service.CachedBotService, *repomocks.ChatStateRepository,
	*clientmocks.MonitorClient, *cachemocks.MonitorCache) {
	mockChatStateRepo := new(repomocks.ChatStateRepository)
	mockMonitorClient := new(clientmocks.MonitorClient)
	mockTelegramClient := new(domainmocks.TelegramClientAPI)
	mockCache := new(cachemocks.MonitorCache)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	botService := service.NewBotService(mockChatStateRepo, mockMonitorClient, mockTelegramClient)
	cached := service.NewCachedBotService(botService, mockCache, logger)

	return cached, mockChatStateRepo, mockMonitorClient, mockCache
}

func TestCachedBotService_ListCommand_CacheHit(t *testing.T) {
	cached, _, mockMonitorClient, mockCache := newCachedBotService()

	ctx := context.Background()

	mockCache.On("GetMonitors", ctx, testChatID).Return([]*models.Monitor{
		{ID: 1, Name: "Go remote", CheckInterval: 30 * time.Minute},
	}, nil)

	response, err := cached.ProcessCommand(ctx, testCommand(models.CommandList, "/list"))

	require.NoError(t, err)
	assert.Contains(t, response, "Go remote")
	mockMonitorClient.AssertNotCalled(t, "GetChat", mock.Anything, mock.Anything)
	mockMonitorClient.AssertNotCalled(t, "GetMonitors", mock.Anything)
}

func TestCachedBotService_ListCommand_CacheMissPopulatesCache(t *testing.T) {
	cached, _, mockMonitorClient, mockCache := newCachedBotService()

	ctx := context.Background()

	monitors := []*models.Monitor{
		{ID: 1, Name: "Go remote", CheckInterval: 30 * time.Minute},
	}

	mockCache.On("GetMonitors", ctx, testChatID).Return(nil, nil)
	mockMonitorClient.On("GetChat", ctx, testChatID).
		Return(&models.Chat{ID: testChatID, Monitors: []int64{1}}, nil).Twice()
	mockMonitorClient.On("GetMonitors", ctx).Return(monitors, nil).Twice()
	mockCache.On("SetMonitors", ctx, testChatID, monitors).Return(nil)

	response, err := cached.ProcessCommand(ctx, testCommand(models.CommandList, "/list"))

	require.NoError(t, err)
	assert.Contains(t, response, "Go remote")
	mockCache.AssertExpectations(t)
}

func TestCachedBotService_SubscribeCommand_InvalidatesCache(t *testing.T) {
	cached, mockChatStateRepo, _, mockCache := newCachedBotService()

	ctx := context.Background()

	mockCache.On("DeleteMonitors", ctx, testChatID).Return(nil)
	mockChatStateRepo.On("SetState", ctx, testChatID, models.StateAwaitingMonitorName).Return(nil)
	mockChatStateRepo.On("ClearData", ctx, testChatID).Return(nil)

	_, err := cached.ProcessCommand(ctx, testCommand(models.CommandSubscribe, "/subscribe"))

	require.NoError(t, err)
	mockCache.AssertExpectations(t)
}

func TestCachedBotService_UnsubscribeMessage_InvalidatesCacheAfterSuccess(t *testing.T) {
	cached, mockChatStateRepo, mockMonitorClient, mockCache := newCachedBotService()

	ctx := context.Background()

	mockChatStateRepo.On("GetState", ctx, testChatID).
		Return(models.StateAwaitingUnsubscribeMonitor, nil).Once()
	mockMonitorClient.On("Unsubscribe", ctx, testChatID, int64(7)).Return(nil)
	mockChatStateRepo.On("SetState", ctx, testChatID, models.StateIdle).Return(nil)
	mockChatStateRepo.On("GetState", ctx, testChatID).Return(models.StateIdle, nil).Once()
	mockCache.On("DeleteMonitors", ctx, testChatID).Return(nil)

	response, err := cached.ProcessMessage(ctx, testChatID, testUserID, "7", testUsername)

	require.NoError(t, err)
	assert.Contains(t, response, "отменена")
	mockCache.AssertExpectations(t)
}

func TestCachedBotService_ListCommand_CacheError_FallsBack(t *testing.T) {
	cached, _, mockMonitorClient, mockCache := newCachedBotService()

	ctx := context.Background()

	mockCache.On("GetMonitors", ctx, testChatID).Return(nil, fmt.Errorf("redis недоступен"))
	mockMonitorClient.On("GetChat", ctx, testChatID).
		Return(&models.Chat{ID: testChatID, Monitors: []int64{1}}, nil).Twice()
	mockMonitorClient.On("GetMonitors", ctx).Return([]*models.Monitor{
		{ID: 1, Name: "Go remote", CheckInterval: 30 * time.Minute},
	}, nil).Twice()
	mockCache.On("SetMonitors", ctx, testChatID, mock.Anything).Return(nil)

	response, err := cached.ProcessCommand(ctx, testCommand(models.CommandList, "/list"))

	require.NoError(t, err)
	assert.Contains(t, response, "Go remote")
}
