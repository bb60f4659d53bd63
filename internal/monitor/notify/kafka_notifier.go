package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
	"github.com/segmentio/kafka-go"
)

// JobUpdateMessage — событие об изменении вакансии, которое монитор
// публикует в Kafka для бота.
type JobUpdateMessage struct {
	MonitorID   int64    `json:"monitorId"`
	MonitorName string   `json:"monitorName"`
	ChangeType  string   `json:"changeType"`
	Title       string   `json:"title"`
	Company     string   `json:"company,omitempty"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	TgChatIDs   []int64  `json:"tgChatIds"`
	Tags        []string `json:"tags,omitempty"`
}

type KafkaUpdateNotifier struct {
	producer    *kafka.Writer
	dlqProducer *kafka.Writer
	logger      *slog.Logger
	updateTopic string
	dlqTopic    string
}

func NewKafkaUpdateNotifier(brokers []string, updateTopic, dlqTopic string, logger *slog.Logger) *KafkaUpdateNotifier {
	producer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        updateTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(logger.Debug),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}

	dlqProducer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        dlqTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(logger.Debug),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}

	return &KafkaUpdateNotifier{
		producer:    producer,
		dlqProducer: dlqProducer,
		logger:      logger,
		updateTopic: updateTopic,
		dlqTopic:    dlqTopic,
	}
}

func (n *KafkaUpdateNotifier) SendUpdate(ctx context.Context, update *models.JobUpdate) error {
	n.logger.Info("Отправка уведомления в Kafka",
		"monitorID", update.MonitorID,
		"chats", len(update.TgChatIDs),
		"topic", n.updateTopic,
	)

	message := JobUpdateMessage{
		MonitorID:   update.MonitorID,
		MonitorName: update.MonitorName,
		ChangeType:  string(update.ChangeType),
		Description: update.Description,
		TgChatIDs:   update.TgChatIDs,
	}

	// Дайджесты приходят с готовым текстом и без вакансии.
	if update.Job != nil {
		message.Title = update.Job.Title
		message.Company = update.Job.Company
		message.URL = update.Job.URL
		message.Tags = update.Job.Tags

		if message.Description == "" {
			message.Description = formatUpdate(update)
		}
	}

	value, err := json.Marshal(message)
	if err != nil {
		n.logger.Error("Ошибка при сериализации сообщения",
			"error", err,
		)

		return fmt.Errorf("ошибка при сериализации сообщения: %w", err)
	}

	err = n.producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", update.MonitorID)),
		Value: value,
		Time:  time.Now(),
	})

	if err != nil {
		n.logger.Error("Ошибка при отправке сообщения в Kafka",
			"error", err,
		)

		return fmt.Errorf("ошибка при отправке сообщения в Kafka: %w", err)
	}

	return nil
}

func (n *KafkaUpdateNotifier) SendToDLQ(ctx context.Context, message []byte, errMsg string) error {
	n.logger.Info("Отправка сообщения в DLQ",
		"error", errMsg,
		"topic", n.dlqTopic,
	)

	err := n.dlqProducer.WriteMessages(ctx, kafka.Message{
		Key:   []byte("error"),
		Value: message,
		Headers: []kafka.Header{
			{Key: "error", Value: []byte(errMsg)},
			{Key: "timestamp", Value: []byte(time.Now().Format(time.RFC3339))},
		},
		Time: time.Now(),
	})

	if err != nil {
		n.logger.Error("Ошибка при отправке сообщения в DLQ",
			"error", err,
		)

		return fmt.Errorf("ошибка при отправке сообщения в DLQ: %w", err)
	}

	return nil
}

func (n *KafkaUpdateNotifier) Close() error {
	if err := n.producer.Close(); err != nil {
		return err
	}

	return n.dlqProducer.Close()
}
