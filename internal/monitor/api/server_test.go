package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	customerrors "github.com/remote-radar-dev/go-job-radar/internal/domain/errors"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
	"github.com/remote-radar-dev/go-job-radar/internal/monitor/api"
	apimocks "github.com/remote-radar-dev/go-job-radar/internal/monitor/api/mocks"
	repomocks "github.com/remote-radar-dev/go-job-radar/internal/monitor/repository/mocks"
)

type serverMocks struct {
	service       *apimocks.MonitorService
	websiteRepo   *repomocks.WebsiteRepository
	monitorRepo   *repomocks.MonitorRepository
	jobRepo       *repomocks.JobRepository
	changeLogRepo *repomocks.ChangeLogRepository
	channelRepo   *repomocks.ChannelRepository
	chatRepo      *repomocks.ChatRepository
	statsCache    *apimocks.StatsCache
}

func newServer(t *testing.T) (*api.Server, *serverMocks) {
	t.Helper()

	m := &serverMocks{
		service:       new(apimocks.MonitorService),
		websiteRepo:   new(repomocks.WebsiteRepository),
		monitorRepo:   new(repomocks.MonitorRepository),
		jobRepo:       new(repomocks.JobRepository),
		changeLogRepo: new(repomocks.ChangeLogRepository),
		channelRepo:   new(repomocks.ChannelRepository),
		chatRepo:      new(repomocks.ChatRepository),
		statsCache:    new(apimocks.StatsCache),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := api.NewServer(
		m.service,
		m.websiteRepo,
		m.monitorRepo,
		m.jobRepo,
		m.changeLogRepo,
		m.channelRepo,
		m.chatRepo,
		m.statsCache,
		logger,
	)

	return srv, m
}

func doJSON(t *testing.T, srv *api.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	return rec
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_AddWebsite(t *testing.T) {
	t.Parallel()

	srv, m := newServer(t)

	m.websiteRepo.On("Save", mock.Anything, mock.MatchedBy(func(w *models.Website) bool {
		return w.Name == "We Work Remotely" && w.Type == models.SiteHTML && w.IsActive
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Website).ID = 7
	}).Return(nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/websites", map[string]any{
		"name": "We Work Remotely",
		"url":  "https://weworkremotely.com/categories/remote-programming-jobs",
		"type": "html",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.ID, "в ответе должен быть ID созданной площадки")

	m.websiteRepo.AssertExpectations(t)
}

func TestServer_AddWebsite_InvalidURL(t *testing.T) {
	t.Parallel()

	srv, m := newServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/websites", map[string]any{
		"name": "Broken",
		"url":  "not-a-url",
		"type": "html",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	m.websiteRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestServer_AddWebsite_UnsupportedType(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/websites", map[string]any{
		"name": "Unknown",
		"url":  "https://example.com/jobs",
		"type": "graphql",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_AddWebsite_Conflict(t *testing.T) {
	t.Parallel()

	srv, m := newServer(t)

	m.websiteRepo.On("Save", mock.Anything, mock.Anything).
		Return(&customerrors.ErrWebsiteAlreadyExists{URL: "https://example.com/jobs"})

	rec := doJSON(t, srv, http.MethodPost, "/api/websites", map[string]any{
		"name": "Example",
		"url":  "https://example.com/jobs",
		"type": "rss",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_AddMonitor(t *testing.T) {
	t.Parallel()

	srv, m := newServer(t)

	m.service.On("AddMonitor", mock.Anything, mock.MatchedBy(func(mon *models.Monitor) bool {
		return mon.Name == "Go remote" &&
			mon.CheckInterval == 30*time.Minute &&
			mon.IsActive && mon.NotifyOnChange
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Monitor).ID = 11
	}).Return(nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/monitors", map[string]any{
		"name":                 "Go remote",
		"websiteId":            2,
		"checkIntervalMinutes": 30,
		"keywords":             []string{"go", "golang"},
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID                   int64 `json:"id"`
		CheckIntervalMinutes int   `json:"checkIntervalMinutes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(11), resp.ID)
	assert.Equal(t, 30, resp.CheckIntervalMinutes)

	m.service.AssertExpectations(t)
}

func TestServer_AddMonitor_InvalidInterval(t *testing.T) {
	t.Parallel()

	srv, m := newServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/monitors", map[string]any{
		"name":                 "Go remote",
		"websiteId":            2,
		"checkIntervalMinutes": 0,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	m.service.AssertNotCalled(t, "AddMonitor", mock.Anything, mock.Anything)
}

func TestServer_GetMonitor_NotFound(t *testing.T) {
	t.Parallel()

	srv, m := newServer(t)

	m.monitorRepo.On("FindByID", mock.Anything, int64(42)).
		Return(nil, &customerrors.ErrMonitorNotFound{ID: 42})

	rec := doJSON(t, srv, http.MethodGet, "/api/monitors/42", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_UpdateMonitor(t *testing.T) {
	t.Parallel()

	srv, m := newServer(t)

	updated := &models.Monitor{
		ID:            5,
		Name:          "Переименованный",
		WebsiteID:     2,
		CheckInterval: time.Hour,
		IsActive:      true,
	}

	m.service.On("UpdateMonitor", mock.Anything, int64(5), mock.MatchedBy(func(patch *models.MonitorPatch) bool {
		return patch.Name != nil && *patch.Name == "Переименованный" &&
			patch.CheckInterval != nil && *patch.CheckInterval == time.Hour
	})).Return(updated, nil)

	rec := doJSON(t, srv, http.MethodPatch, "/api/monitors/5", map[string]any{
		"name":                 "Переименованный",
		"checkIntervalMinutes": 60,
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Переименованный", resp.Name)

	m.service.AssertExpectations(t)
}

func TestServer_CheckMonitorNow(t *testing.T) {
	t.Parallel()

	srv, m := newServer(t)

	m.service.On("CheckMonitorNow", mock.Anything, int64(3)).Return(nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/monitors/3/check", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	m.service.AssertExpectations(t)
}

func TestServer_ListJobs(t *testing.T) {
	t.Parallel()

	srv, m := newServer(t)

	m.jobRepo.On("FindByMonitorID", mock.Anything, int64(3)).Return([]*models.JobRecord{
		{ID: 1, MonitorID: 3, Title: "Go Developer", Company: "Acme", URL: "https://a.com/1"},
		{ID: 2, MonitorID: 3, Title: "Backend Engineer", Company: "Widgets", URL: "https://a.com/2"},
	}, nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/monitors/3/jobs", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "Go Developer", resp[0].Title)
}

func TestServer_ChangeLog_Limit(t *testing.T) {
	t.Parallel()

	srv, m := newServer(t)

	m.changeLogRepo.On("FindByMonitorID", mock.Anything, int64(3), 5).
		Return([]*models.ChangeLogEntry{{ID: 1, JobID: 9, ChangeType: models.ChangeNew}}, nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/monitors/3/changelog?limit=5", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	m.changeLogRepo.AssertExpectations(t)
}

func TestServer_AttachChannel(t *testing.T) {
	t.Parallel()

	srv, m := newServer(t)

	m.monitorRepo.On("FindByID", mock.Anything, int64(3)).Return(&models.Monitor{ID: 3}, nil)
	m.channelRepo.On("FindByID", mock.Anything, int64(8)).
		Return(&models.NotificationChannel{ID: 8, Type: models.ChannelEmail}, nil)
	m.channelRepo.On("AttachToMonitor", mock.Anything, int64(3), int64(8)).Return(nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/monitors/3/channels/8", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	m.channelRepo.AssertExpectations(t)
}

func TestServer_RegisterChat(t *testing.T) {
	t.Parallel()

	srv, m := newServer(t)

	m.chatRepo.On("Save", mock.Anything, mock.MatchedBy(func(chat *models.Chat) bool {
		return chat.ID == 100 && chat.NotificationMode == models.NotificationModeInstant
	})).Return(nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/chats", map[string]any{"id": 100})

	assert.Equal(t, http.StatusCreated, rec.Code)
	m.chatRepo.AssertExpectations(t)
}

func TestServer_RegisterChat_Duplicate(t *testing.T) {
	t.Parallel()

	srv, m := newServer(t)

	m.chatRepo.On("Save", mock.Anything, mock.Anything).
		Return(&customerrors.ErrChatAlreadyExists{ChatID: 100})

	rec := doJSON(t, srv, http.MethodPost, "/api/chats", map[string]any{"id": 100})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_Subscribe(t *testing.T) {
	t.Parallel()

	srv, m := newServer(t)

	m.chatRepo.On("FindByID", mock.Anything, int64(100)).Return(&models.Chat{ID: 100}, nil)
	m.monitorRepo.On("FindByID", mock.Anything, int64(3)).Return(&models.Monitor{ID: 3}, nil)
	m.chatRepo.On("AddMonitor", mock.Anything, int64(100), int64(3)).Return(nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/chats/100/monitors/3", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	m.chatRepo.AssertExpectations(t)
}

func TestServer_NotificationSettings(t *testing.T) {
	t.Parallel()

	srv, m := newServer(t)

	m.chatRepo.On("UpdateNotificationSettings", mock.Anything, int64(100),
		models.NotificationModeDigest, mock.MatchedBy(func(tm time.Time) bool {
			return tm.Hour() == 9 && tm.Minute() == 30
		})).Return(nil)

	rec := doJSON(t, srv, http.MethodPatch, "/api/chats/100/notifications", map[string]any{
		"mode":       "digest",
		"digestTime": "09:30",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	m.chatRepo.AssertExpectations(t)
}

func TestServer_NotificationSettings_UnknownMode(t *testing.T) {
	t.Parallel()

	srv, m := newServer(t)

	rec := doJSON(t, srv, http.MethodPatch, "/api/chats/100/notifications", map[string]any{
		"mode": "weekly",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	m.chatRepo.AssertNotCalled(t, "UpdateNotificationSettings",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestServer_Stats_CacheMiss(t *testing.T) {
	t.Parallel()

	srv, m := newServer(t)

	m.statsCache.On("GetStats", mock.Anything).Return(nil, nil)
	m.monitorRepo.On("Count", mock.Anything).Return(4, nil)
	m.jobRepo.On("CountActive", mock.Anything).Return(120, nil)
	m.statsCache.On("SetStats", mock.Anything, mock.MatchedBy(func(stats *models.Stats) bool {
		return stats.Monitors == 4 && stats.ActiveJobs == 120
	})).Return(nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/stats", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Monitors   int `json:"monitors"`
		ActiveJobs int `json:"activeJobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Monitors)
	assert.Equal(t, 120, resp.ActiveJobs)

	m.statsCache.AssertExpectations(t)
}

func TestServer_Stats_CacheHit(t *testing.T) {
	t.Parallel()

	srv, m := newServer(t)

	m.statsCache.On("GetStats", mock.Anything).
		Return(&models.Stats{Monitors: 2, ActiveJobs: 50, GeneratedAt: time.Now()}, nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/stats", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	m.monitorRepo.AssertNotCalled(t, "Count", mock.Anything)
	m.jobRepo.AssertNotCalled(t, "CountActive", mock.Anything)
}
