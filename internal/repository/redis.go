package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"hotelops/internal/config"
	"hotelops/internal/models"

	"github.com/redis/go-redis/v9"
)

const bufferHoursKey = "settings:buffer_hours"

// RedisSettingsRepository keeps operational settings in Redis so every
// process instance sees a buffer-hours change immediately.
type RedisSettingsRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisSettingsRepository(client *redis.Client, ttl time.Duration) *RedisSettingsRepository {
	if ttl <= 0 {
		ttl = time.Duration(models.DefaultSettingsTTL) * time.Second
	}
	return &RedisSettingsRepository{
		client: client,
		ttl:    ttl,
	}
}

// GetBufferHours returns the configured cleaning buffer. A missing key means
// the setting was never changed; the default applies.
func (r *RedisSettingsRepository) GetBufferHours(ctx context.Context) (int, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, bufferHoursKey).Result()
	if err == redis.Nil {
		return models.DefaultBufferHours, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get buffer hours from redis: %w", err)
	}

	hours, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("failed to parse buffer hours: %w", err)
	}
	return hours, nil
}

func (r *RedisSettingsRepository) SetBufferHours(ctx context.Context, hours int) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if hours < models.MinBufferHours || hours > models.MaxBufferHours {
		return fmt.Errorf("buffer hours %d out of range [%d, %d]", hours, models.MinBufferHours, models.MaxBufferHours)
	}

	if err := r.client.Set(ctx, bufferHoursKey, strconv.Itoa(hours), r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set buffer hours in redis: %w", err)
	}
	return nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
