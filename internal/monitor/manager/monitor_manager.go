package manager

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/remote-radar-dev/go-job-radar/internal/common/metrics"
	"github.com/remote-radar-dev/go-job-radar/internal/config"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
	"github.com/remote-radar-dev/go-job-radar/internal/monitor/repository"
)

// Crawler обходит площадку и возвращает отфильтрованный список вакансий.
type Crawler interface {
	GetJobsFromWebsite(ctx context.Context, website *models.Website,
		keywords, excludeKeywords []string) ([]*models.JobRecord, error)
	GetJobDetails(ctx context.Context, website *models.Website, job *models.JobRecord) error
}

// UpdateNotifier доставляет событие об изменении вакансии подписчикам.
type UpdateNotifier interface {
	SendUpdate(ctx context.Context, update *models.JobUpdate) error
}

// DigestSink откладывает событие для чатов с дайджест-режимом.
type DigestSink interface {
	AddUpdate(ctx context.Context, chatID int64, update *models.JobUpdate) error
}

// MonitorManager управляет жизненным циклом мониторов: на каждый активный
// монитор запускается собственная горутина, которая спит до следующей
// проверки и сверяет выдачу площадки с сохранёнными вакансиями.
type MonitorManager struct {
	monitorRepo   repository.MonitorRepository
	websiteRepo   repository.WebsiteRepository
	jobRepo       repository.JobRepository
	changeLogRepo repository.ChangeLogRepository
	chatRepo      repository.ChatRepository
	crawler       Crawler
	notifier      UpdateNotifier
	digest        DigestSink
	retryDelay    time.Duration
	logger        *slog.Logger

	mu         sync.Mutex
	baseCtx    context.Context
	cancels    map[int64]context.CancelFunc
	typeCounts map[models.SiteType]int
	wg         sync.WaitGroup
}

func NewMonitorManager(
	monitorRepo repository.MonitorRepository,
	websiteRepo repository.WebsiteRepository,
	jobRepo repository.JobRepository,
	changeLogRepo repository.ChangeLogRepository,
	chatRepo repository.ChatRepository,
	crawler Crawler,
	notifier UpdateNotifier,
	digest DigestSink,
	cfg *config.Config,
	logger *slog.Logger,
) *MonitorManager {
	return &MonitorManager{
		monitorRepo:   monitorRepo,
		websiteRepo:   websiteRepo,
		jobRepo:       jobRepo,
		changeLogRepo: changeLogRepo,
		chatRepo:      chatRepo,
		crawler:       crawler,
		notifier:      notifier,
		digest:        digest,
		retryDelay:    cfg.CheckRetryDelay,
		logger:        logger,
		cancels:       make(map[int64]context.CancelFunc),
		typeCounts:    make(map[models.SiteType]int),
	}
}

// Start загружает активные мониторы и запускает по горутине на каждый.
// Повторный запуск уже работающего монитора игнорируется.
func (m *MonitorManager) Start(ctx context.Context) error {
	m.mu.Lock()
	m.baseCtx = ctx
	m.mu.Unlock()

	monitors, err := m.monitorRepo.GetAllActive(ctx)
	if err != nil {
		return err
	}

	for _, monitor := range monitors {
		if err := m.startMonitor(ctx, monitor); err != nil {
			m.logger.Error("Не удалось запустить монитор",
				"monitorID", monitor.ID,
				"error", err,
			)
		}
	}

	m.logger.Info("Мониторы запущены", "count", len(monitors))

	return nil
}

// Stop останавливает все горутины мониторов и дожидается их завершения.
func (m *MonitorManager) Stop() {
	m.mu.Lock()
	for id, cancel := range m.cancels {
		cancel()
		delete(m.cancels, id)
	}

	for siteType := range m.typeCounts {
		m.typeCounts[siteType] = 0
		metrics.UpdateActiveMonitorsCount(string(siteType), 0)
	}
	m.mu.Unlock()

	m.wg.Wait()

	m.logger.Info("Все мониторы остановлены")
}

func (m *MonitorManager) startMonitor(ctx context.Context, monitor *models.Monitor) error {
	website, err := m.websiteRepo.FindByID(ctx, monitor.WebsiteID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, running := m.cancels[monitor.ID]; running {
		return nil
	}

	monitorCtx, cancel := context.WithCancel(m.baseCtx)
	m.cancels[monitor.ID] = cancel
	m.typeCounts[website.Type]++
	metrics.UpdateActiveMonitorsCount(string(website.Type), float64(m.typeCounts[website.Type]))

	m.wg.Add(1)

	go func() {
		defer m.wg.Done()
		m.runLoop(monitorCtx, monitor)
	}()

	return nil
}

// stopMonitor снимает горутину монитора, не дожидаясь её завершения.
// Возвращает true, если монитор был запущен.
func (m *MonitorManager) stopMonitor(id int64, siteType models.SiteType) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	cancel, running := m.cancels[id]
	if !running {
		return false
	}

	cancel()
	delete(m.cancels, id)

	if m.typeCounts[siteType] > 0 {
		m.typeCounts[siteType]--
	}

	metrics.UpdateActiveMonitorsCount(string(siteType), float64(m.typeCounts[siteType]))

	return true
}

// runLoop — цикл одного монитора: простой до следующей проверки, затем
// сверка выдачи. Пропущенные интервалы не накапливаются: при опоздании
// выполняется одна догоняющая проверка. Ошибка цикла не роняет горутину,
// следующая попытка — через retryDelay.
func (m *MonitorManager) runLoop(ctx context.Context, monitor *models.Monitor) {
	for {
		wait := time.Until(monitor.NextCheckAt())
		if wait < 0 {
			wait = 0
		}

		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		err := m.checkMonitor(ctx, monitor)
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			m.logger.Error("Ошибка проверки монитора",
				"monitorID", monitor.ID,
				"name", monitor.Name,
				"error", err,
			)

			select {
			case <-ctx.Done():
				return
			case <-time.After(m.retryDelay):
			}
		}
	}
}

// checkMonitor выполняет один цикл проверки. Время последней проверки
// обновляется независимо от исхода обхода.
func (m *MonitorManager) checkMonitor(ctx context.Context, monitor *models.Monitor) error {
	defer func() {
		now := time.Now()
		monitor.LastCheckAt = now

		if err := m.monitorRepo.UpdateLastCheck(context.WithoutCancel(ctx), monitor.ID, now); err != nil {
			m.logger.Error("Не удалось обновить время проверки",
				"monitorID", monitor.ID,
				"error", err,
			)
		}
	}()

	website, err := m.websiteRepo.FindByID(ctx, monitor.WebsiteID)
	if err != nil {
		return err
	}

	crawled, err := m.crawler.GetJobsFromWebsite(ctx, website,
		monitor.Keywords, monitor.ExcludeKeywords)
	if err != nil {
		return err
	}

	stored, err := m.jobRepo.FindByMonitorID(ctx, monitor.ID)
	if err != nil {
		return err
	}

	newJobs, removedJobs := compareJobs(stored, crawled)

	m.logger.Info("Монитор проверен",
		"monitorID", monitor.ID,
		"name", monitor.Name,
		"crawled", len(crawled),
		"new", len(newJobs),
		"removed", len(removedJobs),
	)

	for _, job := range newJobs {
		if err := m.processNewJob(ctx, monitor, website, job); err != nil {
			return err
		}
	}

	for _, job := range removedJobs {
		if err := m.processRemovedJob(ctx, monitor, job); err != nil {
			return err
		}
	}

	return nil
}

func (m *MonitorManager) processNewJob(ctx context.Context, monitor *models.Monitor,
	website *models.Website, job *models.JobRecord) error {
	if err := m.crawler.GetJobDetails(ctx, website, job); err != nil {
		m.logger.Warn("Не удалось дозагрузить описание вакансии",
			"url", job.URL,
			"error", err,
		)
	}

	job.MonitorID = monitor.ID

	if err := m.jobRepo.Save(ctx, job); err != nil {
		return err
	}

	metrics.RecordJobChange(string(models.ChangeNew))

	entry := &models.ChangeLogEntry{
		MonitorID:  monitor.ID,
		JobID:      job.ID,
		ChangeType: models.ChangeNew,
		NewData:    models.TextPreview(job.RawData, 500),
	}
	if err := m.changeLogRepo.Append(ctx, entry); err != nil {
		return err
	}

	return m.notify(ctx, monitor, models.ChangeNew, job, entry)
}

func (m *MonitorManager) processRemovedJob(ctx context.Context, monitor *models.Monitor,
	job *models.JobRecord) error {
	if err := m.jobRepo.MarkRemoved(ctx, monitor.ID, job.URL); err != nil {
		return err
	}

	metrics.RecordJobChange(string(models.ChangeRemoved))

	entry := &models.ChangeLogEntry{
		MonitorID:  monitor.ID,
		JobID:      job.ID,
		ChangeType: models.ChangeRemoved,
		OldData:    models.TextPreview(job.RawData, 500),
	}
	if err := m.changeLogRepo.Append(ctx, entry); err != nil {
		return err
	}

	return m.notify(ctx, monitor, models.ChangeRemoved, job, entry)
}

func (m *MonitorManager) notify(ctx context.Context, monitor *models.Monitor,
	changeType models.ChangeType, job *models.JobRecord, entry *models.ChangeLogEntry) error {
	if !monitor.NotifyOnChange {
		return nil
	}

	chats, err := m.chatRepo.FindByMonitorID(ctx, monitor.ID)
	if err != nil {
		return err
	}

	update := &models.JobUpdate{
		MonitorID:   monitor.ID,
		MonitorName: monitor.Name,
		ChangeType:  changeType,
		Job:         job,
	}

	// Чаты с дайджест-режимом получают событие отложенно, остальные — сразу.
	chatIDs := make([]int64, 0, len(chats))

	for _, chat := range chats {
		if chat.NotificationMode == models.NotificationModeDigest && m.digest != nil {
			if err := m.digest.AddUpdate(ctx, chat.ID, update); err != nil {
				m.logger.Error("Не удалось отложить событие в дайджест",
					"chatID", chat.ID,
					"error", err,
				)
			}

			continue
		}

		chatIDs = append(chatIDs, chat.ID)
	}

	update.TgChatIDs = chatIDs

	if err := m.notifier.SendUpdate(ctx, update); err != nil {
		m.logger.Error("Не удалось отправить уведомление",
			"monitorID", monitor.ID,
			"url", job.URL,
			"error", err,
		)

		return nil
	}

	return m.changeLogRepo.MarkNotified(ctx, entry.ID)
}

// compareJobs сравнивает сохранённые и свежесобранные вакансии по URL.
// Совпадающие URL не сравниваются по содержимому.
func compareJobs(stored, crawled []*models.JobRecord) (newJobs, removedJobs []*models.JobRecord) {
	storedURLs := make(map[string]struct{}, len(stored))
	for _, job := range stored {
		storedURLs[job.URL] = struct{}{}
	}

	crawledURLs := make(map[string]struct{}, len(crawled))
	for _, job := range crawled {
		crawledURLs[job.URL] = struct{}{}
	}

	for _, job := range crawled {
		if _, ok := storedURLs[job.URL]; !ok {
			newJobs = append(newJobs, job)
		}
	}

	for _, job := range stored {
		if _, ok := crawledURLs[job.URL]; !ok {
			removedJobs = append(removedJobs, job)
		}
	}

	return newJobs, removedJobs
}

// AddMonitor сохраняет монитор и, если менеджер уже запущен и монитор
// активен, сразу поднимает его горутину.
func (m *MonitorManager) AddMonitor(ctx context.Context, monitor *models.Monitor) error {
	if _, err := m.websiteRepo.FindByID(ctx, monitor.WebsiteID); err != nil {
		return err
	}

	if err := m.monitorRepo.Save(ctx, monitor); err != nil {
		return err
	}

	if monitor.IsActive && m.started() {
		return m.startMonitor(ctx, monitor)
	}

	return nil
}

// UpdateMonitor останавливает горутину монитора, применяет частичное
// обновление, сохраняет и перезапускает, если монитор остался активен.
func (m *MonitorManager) UpdateMonitor(ctx context.Context, id int64, patch *models.MonitorPatch) (*models.Monitor, error) {
	monitor, err := m.monitorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	siteType, err := m.siteTypeOf(ctx, monitor)
	if err != nil {
		return nil, err
	}

	m.stopMonitor(id, siteType)

	monitor.Apply(patch)

	if err := m.monitorRepo.Update(ctx, monitor); err != nil {
		return nil, err
	}

	if monitor.IsActive && m.started() {
		if err := m.startMonitor(ctx, monitor); err != nil {
			return nil, err
		}
	}

	return monitor, nil
}

func (m *MonitorManager) DeleteMonitor(ctx context.Context, id int64) error {
	monitor, err := m.monitorRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	siteType, err := m.siteTypeOf(ctx, monitor)
	if err != nil {
		return err
	}

	m.stopMonitor(id, siteType)

	return m.monitorRepo.Delete(ctx, id)
}

// CheckMonitorNow выполняет внеочередную проверку, не дожидаясь таймера.
func (m *MonitorManager) CheckMonitorNow(ctx context.Context, id int64) error {
	monitor, err := m.monitorRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	return m.checkMonitor(ctx, monitor)
}

func (m *MonitorManager) started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.baseCtx != nil
}

func (m *MonitorManager) siteTypeOf(ctx context.Context, monitor *models.Monitor) (models.SiteType, error) {
	website, err := m.websiteRepo.FindByID(ctx, monitor.WebsiteID)
	if err != nil {
		return models.SiteUnknown, err
	}

	return website.Type, nil
}
