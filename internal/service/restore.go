package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/shestoi/rocketcart/internal/repository"
)

// RestoreCart читает сохранённую корзину для начального снимка CartStore.
// Отсутствующее, нечитаемое или нарушающее инварианты значение даёт пустую корзину
func RestoreCart(ctx context.Context, logger *zap.Logger, storage repository.Storage, key string) repository.Cart {
	raw, err := storage.Load(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Info("no persisted cart, starting empty", zap.String("key", key))
		} else {
			logger.Warn("failed to load persisted cart, starting empty", zap.String("key", key), zap.Error(err))
		}
		return repository.Cart{}
	}

	cart, err := repository.DecodeCart(raw)
	if err != nil {
		logger.Warn("persisted cart is unreadable, starting empty", zap.String("key", key), zap.Error(err))
		return repository.Cart{}
	}
	if err := cart.Validate(); err != nil {
		logger.Warn("persisted cart is invalid, starting empty", zap.String("key", key), zap.Error(err))
		return repository.Cart{}
	}

	logger.Info("persisted cart restored", zap.String("key", key), zap.Int("items", len(cart)))
	return cart
}
