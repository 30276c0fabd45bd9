package repository

import (
	"context"
	"errors"
)

// DefaultKeyPrefix - префикс ключей хранилища по умолчанию
const DefaultKeyPrefix = "@RocketShoes"

// StorageKey возвращает ключ, под которым хранится корзина: "<prefix>:cart"
func StorageKey(prefix string) string {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return prefix + ":cart"
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=Storage --dir=. --output=./mocks --outpkg=mocks

// Storage определяет key-value хранилище сериализованной корзины
// Service слой зависит от этого интерфейса, а не от конкретной реализации (файл, Redis, PostgreSQL, MongoDB)
type Storage interface {
	// Load возвращает значение по ключу
	// Возвращает ErrNotFound, если ключа нет
	Load(ctx context.Context, key string) (string, error)

	// Save записывает значение по ключу, перезаписывая предыдущее
	Save(ctx context.Context, key, value string) error
}

// Pinger реализуют хранилища, у которых есть сетевое соединение (для readiness)
type Pinger interface {
	Ping(ctx context.Context) error
}

// ErrNotFound возвращается, когда ключа нет в хранилище
var ErrNotFound = errors.New("key not found")
