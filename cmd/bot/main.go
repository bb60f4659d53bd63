package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"log/slog"

	"github.com/remote-radar-dev/go-job-radar/internal/bot/cache"
	"github.com/remote-radar-dev/go-job-radar/internal/bot/clients"
	"github.com/remote-radar-dev/go-job-radar/internal/bot/clients/kafka"
	"github.com/remote-radar-dev/go-job-radar/internal/bot/domain"
	"github.com/remote-radar-dev/go-job-radar/internal/bot/repository"
	botservice "github.com/remote-radar-dev/go-job-radar/internal/bot/service"
	"github.com/remote-radar-dev/go-job-radar/internal/bot/telegram"
	"github.com/remote-radar-dev/go-job-radar/internal/common/metrics"
	"github.com/remote-radar-dev/go-job-radar/internal/config"
	"github.com/remote-radar-dev/go-job-radar/internal/database"
	"github.com/remote-radar-dev/go-job-radar/pkg"
)

func gracefulShutdown(server *http.Server, poller *telegram.Poller, kafkaConsumer *kafka.Consumer,
	redisCache *cache.RedisMonitorCache, stopCh <-chan struct{}, appLogger *slog.Logger) {
	<-stopCh
	appLogger.Info("Получен сигнал завершения")

	if err := poller.Close(); err != nil {
		appLogger.Error("Ошибка при остановке поллера",
			"error", err,
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Ошибка при остановке HTTP сервера",
			"error", err,
		)
	}

	if kafkaConsumer != nil {
		if err := kafkaConsumer.Close(); err != nil {
			appLogger.Error("Ошибка при закрытии Kafka консьюмера",
				"error", err,
			)
		}
	}

	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			appLogger.Error("Ошибка при закрытии соединения с Redis",
				"error", err,
			)
		}
	}

	appLogger.Info("Сервер успешно остановлен")
}

func setupTelegramCommands(telegramClient domain.TelegramClientAPI, appLogger *slog.Logger) {
	botCommands := []domain.BotCommand{
		{Command: "start", Description: "Начать работу с ботом"},
		{Command: "help", Description: "Получить справку о командах"},
		{Command: "subscribe", Description: "Создать монитор вакансий"},
		{Command: "unsubscribe", Description: "Отписаться от монитора"},
		{Command: "list", Description: "Список ваших мониторов"},
		{Command: "jobs", Description: "Актуальные вакансии монитора"},
		{Command: "check", Description: "Запустить проверку монитора сейчас"},
		{Command: "mode", Description: "Изменить режим уведомлений (мгновенный/дайджест)"},
		{Command: "time", Description: "Установить время доставки дайджеста"},
	}

	ctx := context.Background()
	if err := telegramClient.SetMyCommands(ctx, botCommands); err != nil {
		appLogger.Error("Ошибка при регистрации команд бота",
			"error", err,
		)
	} else {
		appLogger.Info("Команды бота успешно зарегистрированы")
	}
}

func healthHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return mux
}

func startHTTPServer(server *http.Server, port int, stopCh chan<- struct{}, appLogger *slog.Logger) {
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
		appLogger.Info("Запуск HTTP сервера бота",
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

	repoFactory := repository.NewFactory(db, cfg, appLogger)

	chatStateRepo, err := repoFactory.CreateChatStateRepository()
	if err != nil {
		appLogger.Error("Ошибка при создании репозитория состояний чата",
			"error", err,
		)

		return fmt.Errorf("ошибка создания репозитория состояний чата: %w", err)
	}

	monitorClient := clients.NewMonitorClient(cfg.MonitorBaseURL, cfg, appLogger)

	telegramClient := clients.NewTelegramClient(cfg.TelegramBotToken, appLogger)
	setupTelegramCommands(telegramClient, appLogger)

	baseBotService := botservice.NewBotService(
		chatStateRepo,
		monitorClient,
		telegramClient,
	)

	var messageHandler kafka.MessageHandler

	var botService telegram.BotService

	botService = baseBotService
	messageHandler = baseBotService

	var redisCache *cache.RedisMonitorCache

	if cfg.RedisURL != "" {
		cacheTTL := cfg.RedisCacheTTL
		if cacheTTL <= 0 {
			cacheTTL = 30 * time.Minute
		}

		redisCache, err = cache.NewRedisMonitorCache(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB, cacheTTL, appLogger)
		if err != nil {
			appLogger.Error("Ошибка при подключении к Redis",
				"error", err,
			)
		} else {
			appLogger.Info("Кэш Redis успешно инициализирован")

			cachedService := botservice.NewCachedBotService(baseBotService, redisCache, appLogger)
			botService = cachedService
			messageHandler = cachedService
		}
	}

	brokers := strings.Split(cfg.KafkaBrokers, ",")
	kafkaConsumer := kafka.NewConsumer(
		brokers,
		"bot-group",
		cfg.TopicJobUpdates,
		cfg.TopicDeadLetterQueue,
		messageHandler,
		appLogger,
	)

	kafkaConsumer.Start(ctx)
	appLogger.Info("Kafka консьюмер успешно запущен")

	poller := telegram.NewPoller(telegramClient, botService, appLogger)
	poller.Start()

	metricsServer := metrics.NewMetricsServer(cfg.BotMetricsPort, appLogger)

	go func() {
		if err := metricsServer.Start(ctx); err != nil {
			appLogger.Error("Ошибка при запуске сервера метрик",
				"error", err,
			)
		}
	}()

	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.BotServerPort),
		Handler:           healthHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopCh := make(chan struct{})

	startHTTPServer(httpServer, cfg.BotServerPort, stopCh, appLogger)
	gracefulShutdown(httpServer, poller, kafkaConsumer, redisCache, stopCh, appLogger)

	return nil
}
