package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/remote-radar-dev/go-job-radar/internal/domain/models"
)

// MonitorCache хранит списки подписок чатов, чтобы /list не ходил
// в сервис мониторинга на каждый запрос.
type MonitorCache interface {
	GetMonitors(ctx context.Context, chatID int64) ([]*models.Monitor, error)
	SetMonitors(ctx context.Context, chatID int64, monitors []*models.Monitor) error
	DeleteMonitors(ctx context.Context, chatID int64) error
}

type RedisMonitorCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisMonitorCache(redisURL, password string, db int, ttl time.Duration, logger *slog.Logger) (*RedisMonitorCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ошибка при подключении к Redis: %w", err)
	}

	logger.Info("Соединение с Redis успешно установлено")

	return &RedisMonitorCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}, nil
}

func (c *RedisMonitorCache) GetMonitors(ctx context.Context, chatID int64) ([]*models.Monitor, error) {
	key := fmt.Sprintf("monitors:%d", chatID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.logger.Debug("Кэш не найден",
				"chatID", chatID,
			)

			return nil, nil
		}

		c.logger.Error("Ошибка при получении данных из Redis",
			"error", err,
			"chatID", chatID,
		)

		return nil, fmt.Errorf("ошибка при получении данных из Redis: %w", err)
	}

	var monitors []*models.Monitor
	if err := json.Unmarshal(data, &monitors); err != nil {
		return nil, fmt.Errorf("ошибка при десериализации данных из Redis: %w", err)
	}

	c.logger.Debug("Подписки получены из кэша",
		"chatID", chatID,
		"count", len(monitors),
	)

	return monitors, nil
}

func (c *RedisMonitorCache) SetMonitors(ctx context.Context, chatID int64, monitors []*models.Monitor) error {
	key := fmt.Sprintf("monitors:%d", chatID)

	data, err := json.Marshal(monitors)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации данных для Redis: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Error("Ошибка при сохранении данных в Redis",
			"error", err,
			"chatID", chatID,
		)

		return fmt.Errorf("ошибка при сохранении данных в Redis: %w", err)
	}

	c.logger.Debug("Подписки сохранены в кэш",
		"chatID", chatID,
		"count", len(monitors),
		"ttl", c.ttl,
	)

	return nil
}

func (c *RedisMonitorCache) DeleteMonitors(ctx context.Context, chatID int64) error {
	key := fmt.Sprintf("monitors:%d", chatID)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Error("Ошибка при удалении данных из Redis",
			"error", err,
			"chatID", chatID,
		)

		return fmt.Errorf("ошибка при удалении данных из Redis: %w", err)
	}

	return nil
}

func (c *RedisMonitorCache) Close() error {
	return c.client.Close()
}
