package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/shestoi/rocketcart/internal/repository"
)

// Storage реализует repository.Storage поверх каталога на диске: один ключ - один файл
// Аналог localStorage браузера для локального запуска
type Storage struct {
	mu     sync.Mutex
	dir    string
	logger *zap.Logger
}

// NewStorage создаёт файловое хранилище и при необходимости создаёт каталог
func NewStorage(dir string, logger *zap.Logger) (*Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}

	return &Storage{
		dir:    dir,
		logger: logger,
	}, nil
}

// path возвращает путь к файлу ключа; ключ экранируется, т.к. содержит '@' и ':'
func (s *Storage) path(key string) string {
	return filepath.Join(s.dir, url.QueryEscape(key)+".json")
}

// Load читает значение ключа из файла
func (s *Storage) Load(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}

	return string(data), nil
}

// Save атомарно перезаписывает файл ключа: запись во временный файл и rename
func (s *Storage) Save(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.path(key)
	tmp, err := os.CreateTemp(s.dir, ".cart-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}

	s.logger.Debug("cart blob written",
		zap.String("key", key),
		zap.String("path", target),
		zap.Int("bytes", len(value)),
	)

	return nil
}
