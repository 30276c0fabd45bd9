package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/shestoi/rocketcart/internal/repository"
)

// fakeReader отдаёт заранее заданные сообщения, затем ждёт отмены контекста
type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.messages) > 0 {
		m := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()

	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) committedOffsets() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

type recordingHandler struct {
	mu            sync.Mutex
	carts         []CartUpdatedEvent
	notifications []NotificationEvent
	failures      int
}

func (h *recordingHandler) HandleCartUpdated(_ context.Context, event CartUpdatedEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failures > 0 {
		h.failures--
		return errors.New("temporary failure")
	}
	h.carts = append(h.carts, event)
	return nil
}

func (h *recordingHandler) HandleNotification(_ context.Context, event NotificationEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notifications = append(h.notifications, event)
	return nil
}

func mustJSON(t *testing.T, v interface{}) []byte {
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func runConsumer(t *testing.T, c *EventConsumer, reader *fakeReader, expectedCommits int) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	require.Eventually(t, func() bool {
		return len(reader.committedOffsets()) == expectedCommits
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestEventConsumer_Start(t *testing.T) {
	reader := &fakeReader{messages: []kafka.Message{
		{Offset: 1, Value: mustJSON(t, CartUpdatedEvent{EventID: "e1", EventType: EventTypeCartUpdated,
			Items: []repository.Product{{ID: 1, Amount: 2}}, TotalAmount: 2})},
		{Offset: 2, Value: []byte(`{not json`)},
		{Offset: 3, Value: mustJSON(t, NotificationEvent{EventID: "e2", EventType: EventTypeNotification, Message: "stock exceeded"})},
		{Offset: 4, Value: []byte(`{"event_type":"order.created"}`)},
	}}
	handler := &recordingHandler{}
	c := newEventConsumer(zap.NewNop(), reader, handler, 3, time.Millisecond)

	runConsumer(t, c, reader, 4)

	// poison pill и неизвестные типы коммитятся, чтобы не зациклиться
	require.Equal(t, []int64{1, 2, 3, 4}, reader.committedOffsets())
	require.Len(t, handler.carts, 1)
	require.Equal(t, 2, handler.carts[0].TotalAmount)
	require.Len(t, handler.notifications, 1)
	require.Equal(t, "stock exceeded", handler.notifications[0].Message)
}

func TestEventConsumer_Retry(t *testing.T) {
	reader := &fakeReader{messages: []kafka.Message{
		{Offset: 7, Value: mustJSON(t, CartUpdatedEvent{EventID: "e1", EventType: EventTypeCartUpdated})},
	}}
	handler := &recordingHandler{failures: 2}
	c := newEventConsumer(zap.NewNop(), reader, handler, 3, time.Millisecond)

	runConsumer(t, c, reader, 1)

	require.Len(t, handler.carts, 1)
	require.Zero(t, handler.failures)
}

func TestEventConsumer_ProcessMessage_Shutdown(t *testing.T) {
	tests := []struct {
		name          string
		cancelled     bool
		expectedInfo  int
		expectedError int
	}{
		{name: "success: shutdown during retries is not an error", cancelled: true, expectedInfo: 1},
		{name: "error: retries exhausted", cancelled: false, expectedError: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.InfoLevel)
			handler := &recordingHandler{failures: 100}
			// большой backoff при отмене: ожидание прерывается контекстом
			backoff := time.Millisecond
			if tt.cancelled {
				backoff = time.Hour
			}
			c := newEventConsumer(zap.New(core), &fakeReader{}, handler, 3, backoff)

			ctx, cancel := context.WithCancel(context.Background())
			if tt.cancelled {
				cancel()
			} else {
				defer cancel()
			}

			c.processMessage(ctx, kafka.Message{Offset: 1, Value: mustJSON(t, CartUpdatedEvent{EventID: "e1", EventType: EventTypeCartUpdated})})

			require.Equal(t, tt.expectedInfo, logs.FilterMessage("cart event handling interrupted by shutdown").Len())
			require.Equal(t, tt.expectedError, logs.FilterMessage("failed to handle cart event after all retries").Len())
			require.Empty(t, handler.carts)
		})
	}
}
