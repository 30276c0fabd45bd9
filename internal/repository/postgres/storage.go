package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" //для goose миграций
	"github.com/pressly/goose/v3"

	"github.com/shestoi/rocketcart/internal/repository"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate накатывает миграции таблицы cart_storage через goose
func Migrate(ctx context.Context, dsn string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open db for migrations: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Storage реализует repository.Storage используя PostgreSQL таблицу key/value
type Storage struct {
	pool *pgxpool.Pool
}

// NewStorage создаёт новое PostgreSQL хранилище
func NewStorage(pool *pgxpool.Pool) *Storage {
	return &Storage{
		pool: pool,
	}
}

// Load получает значение ключа из cart_storage
func (s *Storage) Load(ctx context.Context, key string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value
		 FROM cart_storage
		 WHERE key = $1`,
		key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", err
	}

	return value, nil
}

// Save записывает значение ключа (upsert)
func (s *Storage) Save(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO cart_storage (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET
		   value = EXCLUDED.value,
		   updated_at = EXCLUDED.updated_at`,
		key, value)
	return err
}

// Ping проверяет соединение с PostgreSQL
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
