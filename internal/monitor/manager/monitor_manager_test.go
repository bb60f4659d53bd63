package manager_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/remote-radar-dev/go-job-radar/internal/config"
	domainErrors "github.com/remote-radar-dev/go-job-radar/internal/domain/errors"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
	"github.com/remote-radar-dev/go-job-radar/internal/monitor/manager"
	managermocks "github.com/remote-radar-dev/go-job-radar/internal/monitor/manager/mocks"
	repomocks "github.com/remote-radar-dev/go-job-radar/internal/monitor/repository/mocks"
)

type managerMocks struct {
	monitorRepo   *repomocks.MonitorRepository
	websiteRepo   *repomocks.WebsiteRepository
	jobRepo       *repomocks.JobRepository
	changeLogRepo *repomocks.ChangeLogRepository
	chatRepo      *repomocks.ChatRepository
	crawler       *managermocks.Crawler
	notifier      *managermocks.UpdateNotifier
	digest        *managermocks.DigestSink
}

func newManager(t *testing.T) (*manager.MonitorManager, *managerMocks) {
	t.Helper()

	m := &managerMocks{
		monitorRepo:   new(repomocks.MonitorRepository),
		websiteRepo:   new(repomocks.WebsiteRepository),
		jobRepo:       new(repomocks.JobRepository),
		changeLogRepo: new(repomocks.ChangeLogRepository),
		chatRepo:      new(repomocks.ChatRepository),
		crawler:       new(managermocks.Crawler),
		notifier:      new(managermocks.UpdateNotifier),
		digest:        new(managermocks.DigestSink),
	}

	cfg := &config.Config{CheckRetryDelay: 10 * time.Millisecond}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mgr := manager.NewMonitorManager(m.monitorRepo, m.websiteRepo, m.jobRepo,
		m.changeLogRepo, m.chatRepo, m.crawler, m.notifier, m.digest, cfg, logger)

	return mgr, m
}

func testMonitor() *models.Monitor {
	return &models.Monitor{
		ID:             1,
		Name:           "Go вакансии",
		WebsiteID:      2,
		CheckInterval:  time.Hour,
		Keywords:       []string{"go"},
		IsActive:       true,
		NotifyOnChange: true,
		LastCheckAt:    time.Now(),
	}
}

func testWebsite() *models.Website {
	return &models.Website{
		ID:   2,
		Name: "Пример площадки",
		URL:  "https://jobs.example.com",
		Type: models.SiteHTML,
	}
}

func job(url, title string) *models.JobRecord {
	return &models.JobRecord{MonitorID: 1, URL: url, Title: title}
}

func TestMonitorManager_CheckMonitorNow_NewAndRemoved(t *testing.T) {
	t.Parallel()

	mgr, m := newManager(t)
	ctx := context.Background()
	monitor := testMonitor()

	stored := []*models.JobRecord{
		job("https://a.com/1", "Вакансия 1"),
		job("https://a.com/2", "Вакансия 2"),
	}
	crawled := []*models.JobRecord{
		job("https://a.com/2", "Вакансия 2"),
		job("https://a.com/3", "Вакансия 3"),
	}

	m.monitorRepo.On("FindByID", ctx, int64(1)).Return(monitor, nil)
	m.websiteRepo.On("FindByID", ctx, int64(2)).Return(testWebsite(), nil)
	m.crawler.On("GetJobsFromWebsite", ctx, mock.Anything, monitor.Keywords, monitor.ExcludeKeywords).
		Return(crawled, nil)
	m.jobRepo.On("FindByMonitorID", ctx, int64(1)).Return(stored, nil)

	m.crawler.On("GetJobDetails", ctx, mock.Anything, mock.MatchedBy(func(j *models.JobRecord) bool {
		return j.URL == "https://a.com/3"
	})).Return(nil)
	m.jobRepo.On("Save", ctx, mock.MatchedBy(func(j *models.JobRecord) bool {
		return j.URL == "https://a.com/3"
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.JobRecord).ID = 33
	})
	m.jobRepo.On("MarkRemoved", ctx, int64(1), "https://a.com/1").Return(nil)

	appended := make([]*models.ChangeLogEntry, 0, 2)
	m.changeLogRepo.On("Append", ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		entry := args.Get(1).(*models.ChangeLogEntry)
		entry.ID = int64(len(appended) + 1)
		appended = append(appended, entry)
	})
	m.changeLogRepo.On("MarkNotified", ctx, mock.Anything).Return(nil)

	m.chatRepo.On("FindByMonitorID", ctx, int64(1)).Return([]*models.Chat{{ID: 100}}, nil)

	sent := make([]*models.JobUpdate, 0, 2)
	m.notifier.On("SendUpdate", ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		sent = append(sent, args.Get(1).(*models.JobUpdate))
	})

	m.monitorRepo.On("UpdateLastCheck", mock.Anything, int64(1), mock.AnythingOfType("time.Time")).
		Return(nil)

	err := mgr.CheckMonitorNow(ctx, 1)
	require.NoError(t, err)

	require.Len(t, appended, 2)
	assert.Equal(t, models.ChangeNew, appended[0].ChangeType)
	assert.Equal(t, int64(33), appended[0].JobID)
	assert.Equal(t, models.ChangeRemoved, appended[1].ChangeType)

	require.Len(t, sent, 2)
	assert.Equal(t, "https://a.com/3", sent[0].Job.URL)
	assert.Equal(t, []int64{100}, sent[0].TgChatIDs)
	assert.Equal(t, "https://a.com/1", sent[1].Job.URL)

	m.jobRepo.AssertExpectations(t)
	m.changeLogRepo.AssertExpectations(t)
	m.notifier.AssertExpectations(t)
}

func TestMonitorManager_CheckMonitorNow_NoChanges(t *testing.T) {
	t.Parallel()

	mgr, m := newManager(t)
	ctx := context.Background()
	monitor := testMonitor()

	same := []*models.JobRecord{job("https://a.com/1", "Вакансия 1")}

	m.monitorRepo.On("FindByID", ctx, int64(1)).Return(monitor, nil)
	m.websiteRepo.On("FindByID", ctx, int64(2)).Return(testWebsite(), nil)
	m.crawler.On("GetJobsFromWebsite", ctx, mock.Anything, monitor.Keywords, monitor.ExcludeKeywords).
		Return(same, nil)
	m.jobRepo.On("FindByMonitorID", ctx, int64(1)).Return(same, nil)
	m.monitorRepo.On("UpdateLastCheck", mock.Anything, int64(1), mock.AnythingOfType("time.Time")).
		Return(nil)

	err := mgr.CheckMonitorNow(ctx, 1)
	require.NoError(t, err)

	m.jobRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	m.jobRepo.AssertNotCalled(t, "MarkRemoved", mock.Anything, mock.Anything, mock.Anything)
	m.notifier.AssertNotCalled(t, "SendUpdate", mock.Anything, mock.Anything)
}

func TestMonitorManager_CheckMonitorNow_CrawlError(t *testing.T) {
	t.Parallel()

	mgr, m := newManager(t)
	ctx := context.Background()
	monitor := testMonitor()
	before := monitor.LastCheckAt

	m.monitorRepo.On("FindByID", ctx, int64(1)).Return(monitor, nil)
	m.websiteRepo.On("FindByID", ctx, int64(2)).Return(testWebsite(), nil)
	m.crawler.On("GetJobsFromWebsite", ctx, mock.Anything, monitor.Keywords, monitor.ExcludeKeywords).
		Return(nil, &domainErrors.ErrCrawlFailed{WebsiteURL: "https://jobs.example.com", Cause: errors.New("timeout")})
	m.monitorRepo.On("UpdateLastCheck", mock.Anything, int64(1), mock.AnythingOfType("time.Time")).
		Return(nil)

	err := mgr.CheckMonitorNow(ctx, 1)
	require.Error(t, err)

	var crawlErr *domainErrors.ErrCrawlFailed

	require.ErrorAs(t, err, &crawlErr)

	assert.True(t, monitor.LastCheckAt.After(before), "время проверки должно сдвинуться даже при ошибке")
	m.jobRepo.AssertNotCalled(t, "FindByMonitorID", mock.Anything, mock.Anything)
	m.monitorRepo.AssertExpectations(t)
}

func TestMonitorManager_StartAndStop(t *testing.T) {
	t.Parallel()

	mgr, m := newManager(t)
	ctx := context.Background()

	// Следующая проверка через час: горутина должна спать, а Stop —
	// вернуться сразу, не дождавшись ни одного обхода.
	monitor := testMonitor()

	m.monitorRepo.On("GetAllActive", ctx).Return([]*models.Monitor{monitor}, nil)
	m.websiteRepo.On("FindByID", ctx, int64(2)).Return(testWebsite(), nil)

	require.NoError(t, mgr.Start(ctx))

	done := make(chan struct{})

	go func() {
		mgr.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop не завершился за отведённое время")
	}

	m.crawler.AssertNotCalled(t, "GetJobsFromWebsite", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMonitorManager_Start_CatchUpCheck(t *testing.T) {
	t.Parallel()

	mgr, m := newManager(t)
	ctx := context.Background()

	// Монитор давно не проверялся: после запуска должна пройти ровно
	// одна догоняющая проверка.
	monitor := testMonitor()
	monitor.LastCheckAt = time.Now().Add(-24 * time.Hour)

	checked := make(chan struct{})

	m.monitorRepo.On("GetAllActive", ctx).Return([]*models.Monitor{monitor}, nil)
	m.websiteRepo.On("FindByID", mock.Anything, int64(2)).Return(testWebsite(), nil)
	m.crawler.On("GetJobsFromWebsite", mock.Anything, mock.Anything, monitor.Keywords, monitor.ExcludeKeywords).
		Return([]*models.JobRecord{}, nil).Once().Run(func(mock.Arguments) {
		close(checked)
	})
	m.jobRepo.On("FindByMonitorID", mock.Anything, int64(1)).Return([]*models.JobRecord{}, nil)
	m.monitorRepo.On("UpdateLastCheck", mock.Anything, int64(1), mock.AnythingOfType("time.Time")).
		Return(nil)

	require.NoError(t, mgr.Start(ctx))

	select {
	case <-checked:
	case <-time.After(2 * time.Second):
		t.Fatal("догоняющая проверка не выполнилась")
	}

	mgr.Stop()

	m.crawler.AssertExpectations(t)
}

func TestMonitorManager_CheckMonitorNow_DigestChatsDeferred(t *testing.T) {
	t.Parallel()

	mgr, m := newManager(t)
	ctx := context.Background()
	monitor := testMonitor()

	crawled := []*models.JobRecord{job("https://a.com/1", "Вакансия 1")}

	m.monitorRepo.On("FindByID", ctx, int64(1)).Return(monitor, nil)
	m.websiteRepo.On("FindByID", ctx, int64(2)).Return(testWebsite(), nil)
	m.crawler.On("GetJobsFromWebsite", ctx, mock.Anything, monitor.Keywords, monitor.ExcludeKeywords).
		Return(crawled, nil)
	m.jobRepo.On("FindByMonitorID", ctx, int64(1)).Return([]*models.JobRecord{}, nil)
	m.crawler.On("GetJobDetails", ctx, mock.Anything, mock.Anything).Return(nil)
	m.jobRepo.On("Save", ctx, mock.Anything).Return(nil)
	m.changeLogRepo.On("Append", ctx, mock.Anything).Return(nil)
	m.changeLogRepo.On("MarkNotified", ctx, mock.Anything).Return(nil)
	m.monitorRepo.On("UpdateLastCheck", mock.Anything, int64(1), mock.AnythingOfType("time.Time")).
		Return(nil)

	m.chatRepo.On("FindByMonitorID", ctx, int64(1)).Return([]*models.Chat{
		{ID: 100, NotificationMode: models.NotificationModeInstant},
		{ID: 200, NotificationMode: models.NotificationModeDigest},
	}, nil)

	m.digest.On("AddUpdate", ctx, int64(200), mock.Anything).Return(nil)

	m.notifier.On("SendUpdate", ctx, mock.MatchedBy(func(u *models.JobUpdate) bool {
		return assert.Equal(t, []int64{100}, u.TgChatIDs)
	})).Return(nil)

	err := mgr.CheckMonitorNow(ctx, 1)

	require.NoError(t, err)
	m.digest.AssertExpectations(t)
	m.notifier.AssertExpectations(t)
}

func TestMonitorManager_UpdateMonitor(t *testing.T) {
	t.Parallel()

	mgr, m := newManager(t)
	ctx := context.Background()
	monitor := testMonitor()

	m.monitorRepo.On("FindByID", ctx, int64(1)).Return(monitor, nil)
	m.websiteRepo.On("FindByID", ctx, int64(2)).Return(testWebsite(), nil)
	m.monitorRepo.On("Update", ctx, monitor).Return(nil)

	newName := "Rust вакансии"
	newInterval := 15 * time.Minute

	updated, err := mgr.UpdateMonitor(ctx, 1, &models.MonitorPatch{
		Name:          &newName,
		CheckInterval: &newInterval,
		Keywords:      []string{"rust"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Rust вакансии", updated.Name)
	assert.Equal(t, 15*time.Minute, updated.CheckInterval)
	assert.Equal(t, []string{"rust"}, updated.Keywords)
	assert.True(t, updated.NotifyOnChange, "неуказанные поля не должны меняться")

	m.monitorRepo.AssertExpectations(t)
}

func TestMonitorManager_DeleteMonitor_NotFound(t *testing.T) {
	t.Parallel()

	mgr, m := newManager(t)
	ctx := context.Background()

	m.monitorRepo.On("FindByID", ctx, int64(42)).
		Return(nil, &domainErrors.ErrMonitorNotFound{ID: 42})

	err := mgr.DeleteMonitor(ctx, 42)

	var notFound *domainErrors.ErrMonitorNotFound

	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, int64(42), notFound.ID)
}
