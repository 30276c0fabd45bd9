package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePool struct{ closed bool }

func (p *fakePool) Close() { p.closed = true }

type fakeCloser struct{ err error }

func (c fakeCloser) Close() error { return c.err }

func TestManager_ShutdownOrder(t *testing.T) {
	m := New(time.Second, zap.NewNop())

	var order []string
	m.Add("first", func(context.Context) error { order = append(order, "first"); return nil })
	m.Add("second", func(context.Context) error { order = append(order, "second"); return errors.New("boom") })
	m.Add("third", func(context.Context) error { order = append(order, "third"); return nil })

	err := m.Shutdown()
	require.EqualError(t, err, "boom")
	require.Equal(t, []string{"third", "second", "first"}, order)

	// повторный вызов ничего не выполняет
	require.EqualError(t, m.Shutdown(), "boom")
	require.Len(t, order, 3)
}

func TestManager_Timeout(t *testing.T) {
	m := New(10*time.Millisecond, zap.NewNop())
	m.Add("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	require.ErrorIs(t, m.Shutdown(), context.DeadlineExceeded)
}

func TestManager_WaitOnContextCancel(t *testing.T) {
	m := New(time.Second, zap.NewNop())
	pool := &fakePool{}
	m.Add("pool", ClosePool(pool))
	m.Add("closer", Close(fakeCloser{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, m.Wait(ctx))
	require.True(t, pool.closed)
}
