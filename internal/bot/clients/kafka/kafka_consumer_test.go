package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	segkafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaClient "github.com/remote-radar-dev/go-job-radar/internal/bot/clients/kafka"
	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

type MockMessageHandler struct {
	updates []*models.JobUpdate
	mu      sync.Mutex
}

func (m *MockMessageHandler) HandleUpdate(_ context.Context, update *models.JobUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, update)

	return nil
}

func prepareTopicConfigs(topics []string) []segkafka.TopicConfig {
	topicConfigs := make([]segkafka.TopicConfig, 0, len(topics))

	for _, topic := range topics {
		topicConfigs = append(topicConfigs, segkafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
	}

	return topicConfigs
}

func logCreateTopicsError(logger *slog.Logger, err error, attempt int) {
	logger.Warn("Ошибка при вызове CreateTopics", slog.Int("attempt", attempt), slog.Any("error", err))

	var netErr net.Error

	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		logger.Warn("Таймаут операции CreateTopics")
	case errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, syscall.ECONNREFUSED):
		logger.Warn("Сетевая ошибка при вызове CreateTopics", slog.Any("error_details", err))
	case errors.Is(err, segkafka.GroupCoordinatorNotAvailable) || errors.Is(err, segkafka.NotController):
		logger.Warn("Брокер еще не полностью готов", slog.Any("kafka_error", err))
	default:
		logger.Warn("Неизвестная ошибка Kafka", slog.Any("error_details", err))
	}
}

func processTopicErrors(resp *segkafka.CreateTopicsResponse) (bool, error) {
	if resp == nil || resp.Errors == nil {
		return false, fmt.Errorf("пустой ответ от CreateTopics")
	}

	allCreatedOrExists := true

	var lastErr error

	for topicName, topicErrCode := range resp.Errors {
		if topicErrCode != nil && !errors.Is(topicErrCode, segkafka.TopicAlreadyExists) {
			lastErr = fmt.Errorf("ошибка создания топика %s: %w", topicName, topicErrCode)
			allCreatedOrExists = false
		}
	}

	return allCreatedOrExists, lastErr
}

func createTopicsAdmin(ctx context.Context, logger *slog.Logger, brokers []string, topics ...string) error {
	topicConfigs := prepareTopicConfigs(topics)

	transport := &segkafka.Transport{
		DialTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}
	defer transport.CloseIdleConnections()

	client := &segkafka.Client{
		Addr:      segkafka.TCP(brokers...),
		Timeout:   30 * time.Second,
		Transport: transport,
	}

	deadline := time.Now().Add(90 * time.Second)

	var lastErr error

	attempt := 1

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return fmt.Errorf("контекст отменен во время создания топиков: %w", ctx.Err())
		default:
		}

		createCtx, createCancel := context.WithTimeout(ctx, 25*time.Second)
		resp, err := client.CreateTopics(createCtx, &segkafka.CreateTopicsRequest{
			Topics:       topicConfigs,
			ValidateOnly: false,
		})

		createCancel()

		if err != nil {
			lastErr = err
			logCreateTopicsError(logger, err, attempt)
			time.Sleep(5 * time.Second)

			attempt++

			continue
		}

		allCreatedOrExists, err := processTopicErrors(resp)
		if err != nil {
			lastErr = err
		}

		if allCreatedOrExists {
			logger.Info("Все запрошенные топики созданы или уже существовали")
			return nil
		}

		time.Sleep(5 * time.Second)

		attempt++
	}

	finalError := fmt.Errorf("ошибка создания топиков %v после %d попыток", topics, attempt-1)
	if lastErr != nil {
		finalError = fmt.Errorf("%w: %w", finalError, lastErr)
	}

	return finalError
}

func TestKafkaConsumerMock(t *testing.T) {
	messageHandler := &MockMessageHandler{
		updates: make([]*models.JobUpdate, 0),
	}

	testUpdate := &models.JobUpdate{
		MonitorID:   3,
		MonitorName: "Go remote",
		ChangeType:  models.ChangeNew,
		Description: "Новая вакансия",
		TgChatIDs:   []int64{456, 789},
		Job: &models.JobRecord{
			MonitorID: 3,
			Title:     "Go Developer",
			Company:   "Acme",
			URL:       "https://example.com/jobs/1",
		},
	}

	err := messageHandler.HandleUpdate(context.Background(), testUpdate)
	require.NoError(t, err)

	messageHandler.mu.Lock()
	require.Len(t, messageHandler.updates, 1)
	assert.Equal(t, testUpdate.MonitorID, messageHandler.updates[0].MonitorID)
	assert.Equal(t, testUpdate.Job.URL, messageHandler.updates[0].Job.URL)
	messageHandler.mu.Unlock()
}

func TestKafkaIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционный тест в режиме short")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx := context.Background()

	kafkaContainer, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "Не удалось запустить контейнер Kafka")

	defer func() {
		termCtx, termCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer termCancel()

		if err := kafkaContainer.Terminate(termCtx); err != nil {
			logger.Error("Ошибка при остановке контейнера Kafka", slog.Any("error", err))
		}
	}()

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "Не удалось получить адрес брокеров Kafka")
	require.NotEmpty(t, kafkaBrokers, "Список брокеров Kafka не должен быть пустым")

	topicJobUpdates := fmt.Sprintf("test-job-updates-%d", time.Now().UnixNano())
	topicDeadLetterQueue := fmt.Sprintf("test-dlq-%d", time.Now().UnixNano())

	createCtx, createCancel := context.WithTimeout(ctx, 95*time.Second)
	defer createCancel()

	err = createTopicsAdmin(createCtx, logger, kafkaBrokers, topicJobUpdates, topicDeadLetterQueue)
	require.NoError(t, err, "Не удалось создать топики")

	writer := &segkafka.Writer{
		Addr:         segkafka.TCP(kafkaBrokers...),
		Topic:        topicJobUpdates,
		Balancer:     &segkafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  10 * time.Second,
		RequiredAcks: segkafka.RequireOne,
		Async:        false,
	}

	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("Ошибка при закрытии Kafka writer", slog.Any("error", err))
		}
	}()

	messageHandler := &MockMessageHandler{
		updates: make([]*models.JobUpdate, 0),
	}

	consumerGroupID := fmt.Sprintf("test-group-%d", time.Now().UnixNano())
	consumer := kafkaClient.NewConsumer(
		kafkaBrokers,
		consumerGroupID,
		topicJobUpdates,
		topicDeadLetterQueue,
		messageHandler,
		logger,
	)

	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Error("Ошибка при закрытии Kafka consumer", slog.Any("error", err))
		}
	}()

	consumerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	consumer.Start(consumerCtx)

	logger.Info("Ожидание запуска и стабилизации консьюмера")
	time.Sleep(5 * time.Second)

	message := kafkaClient.JobUpdateMessage{
		MonitorID:   7,
		MonitorName: "Backend remote",
		ChangeType:  string(models.ChangeNew),
		Title:       "Senior Go Engineer",
		Company:     "Widgets",
		URL:         "https://example.com/jobs/final",
		Description: "🆕 Новая вакансия",
		TgChatIDs:   []int64{505, 606},
		Tags:        []string{"go", "remote"},
	}

	jsonData, err := json.Marshal(message)
	require.NoError(t, err)

	sendCtx, sendCancel := context.WithTimeout(ctx, 20*time.Second)
	defer sendCancel()

	err = writer.WriteMessages(sendCtx, segkafka.Message{
		Key:   []byte(fmt.Sprintf("monitor-%d", message.MonitorID)),
		Value: jsonData,
		Time:  time.Now(),
	})
	require.NoError(t, err, "Ошибка при отправке сообщения в Kafka")

	receiveDeadline := time.Now().Add(20 * time.Second)

	var receivedUpdate *models.JobUpdate

	found := false

	for time.Now().Before(receiveDeadline) {
		messageHandler.mu.Lock()
		for _, upd := range messageHandler.updates {
			if upd != nil && upd.MonitorID == message.MonitorID {
				receivedUpdate = upd
				found = true

				break
			}
		}
		messageHandler.mu.Unlock()

		if found {
			break
		}

		time.Sleep(500 * time.Millisecond)
	}

	require.True(t, found, "Сообщение монитора %d не было получено обработчиком в течение отведенного времени", message.MonitorID)
	require.NotNil(t, receivedUpdate)

	assert.Equal(t, message.MonitorName, receivedUpdate.MonitorName)
	assert.Equal(t, models.ChangeNew, receivedUpdate.ChangeType)
	assert.Equal(t, message.Description, receivedUpdate.Description)
	assert.ElementsMatch(t, message.TgChatIDs, receivedUpdate.TgChatIDs)
	require.NotNil(t, receivedUpdate.Job, "Вакансия не должна быть nil после получения")
	assert.Equal(t, message.Title, receivedUpdate.Job.Title)
	assert.Equal(t, message.Company, receivedUpdate.Job.Company)
	assert.Equal(t, message.URL, receivedUpdate.Job.URL)
	assert.ElementsMatch(t, message.Tags, receivedUpdate.Job.Tags)
}
