package memory

import (
	"context"
	"sync"

	"github.com/shestoi/rocketcart/internal/repository"
)

// MemoryStorage реализует Storage используя in-memory map
// Используется для разработки и тестирования, содержимое теряется при перезапуске
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
	saves  int
}

// NewMemoryStorage создаёт новое in-memory хранилище
// Если initial != nil, его содержимое копируется
func NewMemoryStorage(initial map[string]string) *MemoryStorage {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}

	return &MemoryStorage{
		values: values,
	}
}

// Load возвращает значение по ключу или repository.ErrNotFound
func (s *MemoryStorage) Load(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.values[key]
	if !exists {
		return "", repository.ErrNotFound
	}

	return value, nil
}

// Save записывает значение по ключу
func (s *MemoryStorage) Save(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	s.saves++
	return nil
}

// Saves возвращает количество успешных вызовов Save (для проверок в тестах)
func (s *MemoryStorage) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
