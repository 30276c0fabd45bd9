package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shestoi/rocketcart/internal/repository"
)

// Storage реализует repository.Storage используя Redis string (GET/SET)
// Значение хранится без TTL: корзина живёт, пока её не перезапишут
type Storage struct {
	client *redis.Client
	logger *zap.Logger
}

// NewStorage создаёт новое Redis хранилище
func NewStorage(client *redis.Client, logger *zap.Logger) *Storage {
	return &Storage{
		client: client,
		logger: logger,
	}
}

// Load получает значение ключа из Redis
func (s *Storage) Load(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.logger.Debug("cart key not found in redis", zap.String("key", key))
			return "", repository.ErrNotFound
		}
		s.logger.Error("failed to get cart from redis",
			zap.Error(err),
			zap.String("key", key),
		)
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}

	return value, nil
}

// Save записывает значение ключа в Redis
func (s *Storage) Save(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		s.logger.Error("failed to set cart in redis",
			zap.Error(err),
			zap.String("key", key),
		)
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	s.logger.Debug("cart saved to redis",
		zap.String("key", key),
		zap.Int("bytes", len(value)),
	)

	return nil
}

// Ping проверяет соединение с Redis
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
