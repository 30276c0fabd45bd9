package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shestoi/rocketcart/internal/repository"
)

func openTestStorage(t *testing.T, path string) *Storage {
	t.Helper()
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorage_LoadSave(t *testing.T) {
	ctx := context.Background()
	s := openTestStorage(t, filepath.Join(t.TempDir(), "cart.db"))
	key := repository.StorageKey("")

	_, err := s.Load(ctx, key)
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, s.Save(ctx, key, `[{"id":1,"amount":1}]`))
	require.NoError(t, s.Save(ctx, key, `[{"id":1,"amount":2}]`))

	value, err := s.Load(ctx, key)
	require.NoError(t, err)
	require.Equal(t, `[{"id":1,"amount":2}]`, value)

	require.NoError(t, s.Ping(ctx))
}

func TestStorage_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cart.db")

	first, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, "k", "[]"))
	require.NoError(t, first.Close())

	// повторный Open не должен падать на уже применённых миграциях
	second := openTestStorage(t, path)
	value, err := second.Load(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "[]", value)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	require.Error(t, err)
}
