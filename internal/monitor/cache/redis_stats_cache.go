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

const statsKey = "stats:summary"

// RedisStatsCache хранит сводку по сервису, чтобы не считать её на
// каждый запрос API.
type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisStatsCache(
	ctx context.Context,
	redisURL, password string,
	db int,
	ttl time.Duration,
	logger *slog.Logger,
) (*RedisStatsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ошибка при подключении к Redis: %w", err)
	}

	logger.Info("Соединение с Redis для кэша статистики успешно установлено")

	return &RedisStatsCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// GetStats возвращает nil без ошибки, если кэш пуст или протух.
func (c *RedisStatsCache) GetStats(ctx context.Context) (*models.Stats, error) {
	data, err := c.client.Get(ctx, statsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("ошибка при получении статистики из Redis: %w", err)
	}

	stats := &models.Stats{}
	if err := json.Unmarshal(data, stats); err != nil {
		return nil, fmt.Errorf("ошибка при десериализации статистики: %w", err)
	}

	return stats, nil
}

func (c *RedisStatsCache) SetStats(ctx context.Context, stats *models.Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации статистики: %w", err)
	}

	if err := c.client.Set(ctx, statsKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка при сохранении статистики в Redis: %w", err)
	}

	c.logger.Debug("Статистика сохранена в кэш", "ttl", c.ttl)

	return nil
}

func (c *RedisStatsCache) Close() error {
	return c.client.Close()
}
