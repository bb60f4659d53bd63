package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"log/slog"

	"github.com/remote-radar-dev/go-job-radar/internal/common/metrics"
	"github.com/remote-radar-dev/go-job-radar/internal/common/middleware"
	"github.com/remote-radar-dev/go-job-radar/internal/config"
	"github.com/remote-radar-dev/go-job-radar/internal/database"
	"github.com/remote-radar-dev/go-job-radar/internal/monitor/api"
	"github.com/remote-radar-dev/go-job-radar/internal/monitor/cache"
	"github.com/remote-radar-dev/go-job-radar/internal/monitor/crawler"
	"github.com/remote-radar-dev/go-job-radar/internal/monitor/manager"
	"github.com/remote-radar-dev/go-job-radar/internal/monitor/notify"
	"github.com/remote-radar-dev/go-job-radar/internal/monitor/repository"
	"github.com/remote-radar-dev/go-job-radar/internal/monitor/service"
	"github.com/remote-radar-dev/go-job-radar/pkg"
	"github.com/remote-radar-dev/go-job-radar/pkg/txs"
)

func gracefulShutdown(
	ctx context.Context,
	server *http.Server,
	monitorManager *manager.MonitorManager,
	digestService *service.DigestService,
	pipeline *notify.KafkaUpdateNotifier,
	stopCh <-chan struct{},
	appLogger *slog.Logger,
) {
	<-stopCh
	appLogger.Info("Получен сигнал завершения")

	monitorManager.Stop()

	if digestService != nil {
		digestService.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Ошибка при остановке HTTP сервера",
			"error", err,
		)
	}

	if err := pipeline.Close(); err != nil {
		appLogger.Error("Ошибка при закрытии Kafka продюсера",
			"error", err,
		)
	}

	appLogger.Info("Сервер успешно остановлен")
}

func startHTTPServer(_ context.Context, server *http.Server, port int, stopCh chan<- struct{}, appLogger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLogger.Info("Получен системный сигнал",
			"signal", sig.String(),
		)
		close(stopCh)
	}()

	go func() {
		appLogger.Info("Запуск HTTP сервера монитора",
			"port", port,
		)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Ошибка при запуске HTTP сервера",
				"error", err,
			)
			close(stopCh)
		}
	}()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка запуска сервиса: %v\n", err)
		os.Exit(1)
	}
}

//nolint:funlen // Длина функции обусловлена необходимостью последовательной инициализации всех компонентов.
func run() error {
	appLogger := pkg.NewLogger(os.Stdout)

	cfg := config.LoadConfig()

	ctx := context.Background()

	db, err := database.NewPostgresDB(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Ошибка при подключении к базе данных",
			"error", err,
		)

		return fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	defer db.Close()

	if err := database.RunMigrations(cfg, "migrations", appLogger); err != nil {
		appLogger.Error("Ошибка при применении миграций",
			"error", err,
		)

		return fmt.Errorf("ошибка применения миграций: %w", err)
	}

	txManager := txs.NewTxManager(db.Pool, appLogger)

	repoFactory := repository.NewFactory(db, txManager, cfg, appLogger)

	websiteRepo, err := repoFactory.CreateWebsiteRepository()
	if err != nil {
		appLogger.Error("Ошибка при создании репозитория сайтов",
			"error", err,
		)

		return err
	}

	monitorRepo, err := repoFactory.CreateMonitorRepository()
	if err != nil {
		appLogger.Error("Ошибка при создании репозитория мониторов",
			"error", err,
		)

		return err
	}

	jobRepo, err := repoFactory.CreateJobRepository()
	if err != nil {
		appLogger.Error("Ошибка при создании репозитория вакансий",
			"error", err,
		)

		return err
	}

	changeLogRepo := repoFactory.CreateChangeLogRepository()
	channelRepo := repoFactory.CreateChannelRepository()
	chatRepo := repoFactory.CreateChatRepository()

	jobCrawler := crawler.NewJobCrawler(
		crawler.NewHTMLParser(cfg, appLogger),
		crawler.NewRSSParser(appLogger),
		crawler.NewRemotiveParser(cfg.RemotiveBaseURL, cfg, appLogger),
		appLogger,
	)

	pipeline := notify.NewPipeline(cfg, appLogger)
	notifier := notify.NewManager(channelRepo, notify.NewDefaultNotifiers(cfg, appLogger), pipeline, appLogger)

	var digestService *service.DigestService

	if cfg.DigestEnabled {
		digestCache, cacheErr := cache.NewRedisDigestCache(
			ctx, cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB, cfg.RedisCacheTTL, appLogger)
		if cacheErr != nil {
			appLogger.Error("Ошибка при подключении к Redis для дайджестов",
				"error", cacheErr,
			)

			appLogger.Warn("Продолжаем без дайджестов")
		} else {
			digestService = service.NewDigestService(pipeline, digestCache, chatRepo, appLogger)
			digestService.Start(ctx)
			appLogger.Info("Сервис дайджестов успешно запущен")
		}
	} else {
		appLogger.Info("Дайджесты отключены в конфигурации")
	}

	monitorManager := manager.NewMonitorManager(
		monitorRepo,
		websiteRepo,
		jobRepo,
		changeLogRepo,
		chatRepo,
		jobCrawler,
		notifier,
		sinkOrNil(digestService),
		cfg,
		appLogger,
	)

	if err := monitorManager.Start(ctx); err != nil {
		appLogger.Error("Ошибка при запуске менеджера мониторов",
			"error", err,
		)

		return err
	}

	var statsCache api.StatsCache

	redisStats, err := cache.NewRedisStatsCache(
		ctx, cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB, cfg.StatsCacheTTL, appLogger)
	if err != nil {
		appLogger.Error("Ошибка при подключении к Redis для статистики",
			"error", err,
		)
	} else {
		statsCache = redisStats
	}

	apiServer := api.NewServer(
		monitorManager,
		websiteRepo,
		monitorRepo,
		jobRepo,
		changeLogRepo,
		channelRepo,
		chatRepo,
		statsCache,
		appLogger,
	)

	rateLimiter := middleware.NewRateLimiterMiddleware(
		ctx,
		cfg.RateLimitRequests,
		cfg.RateLimitWindow,
		appLogger,
	)

	serverWithMiddleware := rateLimiter.Middleware(
		middleware.NewMetricsMiddleware("monitor").Middleware(apiServer))

	metricsServer := metrics.NewMetricsServer(cfg.MonitorMetricsPort, appLogger)

	go func() {
		if err := metricsServer.Start(ctx); err != nil {
			appLogger.Error("Ошибка при запуске сервера метрик",
				"error", err,
			)
		}
	}()

	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.MonitorServerPort),
		Handler:           serverWithMiddleware,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopCh := make(chan struct{})

	startHTTPServer(ctx, httpServer, cfg.MonitorServerPort, stopCh, appLogger)

	gracefulShutdown(ctx, httpServer, monitorManager, digestService, pipeline, stopCh, appLogger)

	return nil
}

// sinkOrNil оставляет приёмник дайджестов пустым, если сервис не был запущен.
// Типизированный nil в интерфейсе прошёл бы проверку на nil внутри менеджера.
func sinkOrNil(digestService *service.DigestService) manager.DigestSink {
	if digestService == nil {
		return nil
	}

	return digestService
}
