package notify_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	domainErrors "github.com/remote-radar-dev/go-job-radar/internal/domain/errors"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
	"github.com/remote-radar-dev/go-job-radar/internal/monitor/notify"
	notifymocks "github.com/remote-radar-dev/go-job-radar/internal/monitor/notify/mocks"
	repomocks "github.com/remote-radar-dev/go-job-radar/internal/monitor/repository/mocks"
)

func testUpdate() *models.JobUpdate {
	return &models.JobUpdate{
		MonitorID:   1,
		MonitorName: "Go вакансии",
		ChangeType:  models.ChangeNew,
		Job: &models.JobRecord{
			Title:   "Backend разработчик",
			Company: "Example",
			URL:     "https://jobs.example.com/1",
		},
		TgChatIDs: []int64{123},
	}
}

func emailChannel(id int64) *models.NotificationChannel {
	return &models.NotificationChannel{
		ID:       id,
		Type:     models.ChannelEmail,
		IsActive: true,
		Config:   models.ChannelConfig{Recipients: []string{"dev@example.com"}},
	}
}

func TestManager_SendUpdate_AllDelivered(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	channelRepo := new(repomocks.ChannelRepository)
	emailMock := notifymocks.NewChannelNotifier(t)
	pipeline := notifymocks.NewUpdatePublisher(t)

	update := testUpdate()
	channel := emailChannel(10)

	pipeline.On("SendUpdate", mock.Anything, update).Return(nil)
	channelRepo.On("FindActiveByMonitorID", mock.Anything, int64(1)).
		Return([]*models.NotificationChannel{channel}, nil)
	emailMock.On("Send", mock.Anything, channel, update).Return(nil)

	manager := notify.NewManager(channelRepo,
		map[models.ChannelType]notify.ChannelNotifier{models.ChannelEmail: emailMock},
		pipeline, logger)

	err := manager.SendUpdate(context.Background(), update)

	require.NoError(t, err)
	channelRepo.AssertExpectations(t)
}

func TestManager_SendUpdate_PartialFailureStillSucceeds(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	channelRepo := new(repomocks.ChannelRepository)
	emailMock := notifymocks.NewChannelNotifier(t)
	pipeline := notifymocks.NewUpdatePublisher(t)

	update := testUpdate()
	channel := emailChannel(10)

	pipeline.On("SendUpdate", mock.Anything, update).Return(errors.New("kafka недоступна"))
	channelRepo.On("FindActiveByMonitorID", mock.Anything, int64(1)).
		Return([]*models.NotificationChannel{channel}, nil)
	emailMock.On("Send", mock.Anything, channel, update).Return(nil)

	manager := notify.NewManager(channelRepo,
		map[models.ChannelType]notify.ChannelNotifier{models.ChannelEmail: emailMock},
		pipeline, logger)

	err := manager.SendUpdate(context.Background(), update)

	require.NoError(t, err, "достаточно одной успешной доставки")
}

func TestManager_SendUpdate_AllFailed(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	channelRepo := new(repomocks.ChannelRepository)
	emailMock := notifymocks.NewChannelNotifier(t)
	pipeline := notifymocks.NewUpdatePublisher(t)

	update := testUpdate()
	channel := emailChannel(10)

	kafkaErr := errors.New("kafka недоступна")
	smtpErr := errors.New("smtp недоступен")

	pipeline.On("SendUpdate", mock.Anything, update).Return(kafkaErr)
	channelRepo.On("FindActiveByMonitorID", mock.Anything, int64(1)).
		Return([]*models.NotificationChannel{channel}, nil)
	emailMock.On("Send", mock.Anything, channel, update).Return(smtpErr)

	manager := notify.NewManager(channelRepo,
		map[models.ChannelType]notify.ChannelNotifier{models.ChannelEmail: emailMock},
		pipeline, logger)

	err := manager.SendUpdate(context.Background(), update)

	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.ErrorIs(t, err, kafkaErr)
	assert.ErrorIs(t, err, smtpErr)
}

func TestManager_SendUpdate_UnknownChannelType(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	channelRepo := new(repomocks.ChannelRepository)

	update := testUpdate()
	channel := &models.NotificationChannel{ID: 11, Type: "pigeon", IsActive: true}

	channelRepo.On("FindActiveByMonitorID", mock.Anything, int64(1)).
		Return([]*models.NotificationChannel{channel}, nil)

	manager := notify.NewManager(channelRepo,
		map[models.ChannelType]notify.ChannelNotifier{}, nil, logger)

	err := manager.SendUpdate(context.Background(), update)

	require.Error(t, err)
	assert.ErrorIs(t, err, &domainErrors.ErrUnknownChannelType{})
}

func TestManager_SendUpdate_NoChannelsNoPipeline(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	channelRepo := new(repomocks.ChannelRepository)

	channelRepo.On("FindActiveByMonitorID", mock.Anything, int64(1)).
		Return([]*models.NotificationChannel{}, nil)

	manager := notify.NewManager(channelRepo,
		map[models.ChannelType]notify.ChannelNotifier{}, nil, logger)

	err := manager.SendUpdate(context.Background(), testUpdate())

	require.NoError(t, err, "отсутствие каналов не считается ошибкой доставки")
}
