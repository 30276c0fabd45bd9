package service

import (
	"context"
	"errors"

	"github.com/shestoi/rocketcart/internal/repository"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=ProductCatalog --dir=. --output=./mocks --outpkg=mocks

// ProductCatalog определяет интерфейс каталога товаров
// Использует доменные типы - service не зависит от транспорта (HTTP, in-memory)
type ProductCatalog interface {
	// GetProduct возвращает карточку товара по ID
	// Возвращает ErrUnknownProduct, если товара нет
	GetProduct(ctx context.Context, productID int64) (repository.Product, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=StockService --dir=. --output=./mocks --outpkg=mocks

// StockService определяет интерфейс сервиса остатков
type StockService interface {
	// GetStock возвращает текущий доступный остаток товара
	GetStock(ctx context.Context, productID int64) (repository.Stock, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=Notifier --dir=. --output=./mocks --outpkg=mocks

// Notifier - канал сообщений пользователю (toast)
// Fire-and-forget: ошибки доставки реализация обрабатывает сама
type Notifier interface {
	Report(ctx context.Context, message string)
}

// ErrUnknownProduct возвращают адаптеры каталога и склада, когда товара с таким ID нет
var ErrUnknownProduct = errors.New("unknown product")
