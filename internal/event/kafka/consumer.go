package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	platformobservability "github.com/shestoi/rocketcart/platform/observability"
)

// EventHandler обрабатывает события корзины, прочитанные из Kafka
type EventHandler interface {
	HandleCartUpdated(ctx context.Context, event CartUpdatedEvent) error
	HandleNotification(ctx context.Context, event NotificationEvent) error
}

// messageReader - часть kafka.Reader, которая нужна consumer'у (подменяется в тестах)
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventConsumer читает топики уведомлений и снимков корзины (например, для аудита или витрин)
// Семантика at-least-once: offset коммитится после обработки или после исчерпания попыток
type EventConsumer struct {
	logger      *zap.Logger
	reader      messageReader
	handler     EventHandler
	maxAttempts int
	backoffBase time.Duration
}

// NewEventConsumer создаёт consumer группы groupID на топики topics
func NewEventConsumer(
	logger *zap.Logger,
	brokers []string,
	groupID string,
	topics []string,
	handler EventHandler,
	maxAttempts int,
	backoffBase time.Duration,
) *EventConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
	})
	return newEventConsumer(logger, reader, handler, maxAttempts, backoffBase)
}

func newEventConsumer(logger *zap.Logger, reader messageReader, handler EventHandler, maxAttempts int, backoffBase time.Duration) *EventConsumer {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if backoffBase <= 0 {
		backoffBase = time.Second
	}
	return &EventConsumer{
		logger:      logger,
		reader:      reader,
		handler:     handler,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
	}
}

// Close закрывает Kafka reader
func (c *EventConsumer) Close() error {
	return c.reader.Close()
}

// Start читает сообщения до отмены ctx
func (c *EventConsumer) Start(ctx context.Context) error {
	c.logger.Info("starting cart event consumer",
		zap.Int("max_retry_attempts", c.maxAttempts),
		zap.Duration("retry_backoff_base", c.backoffBase),
	)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer context cancelled, stopping")
				return nil
			}
			c.logger.Error("failed to fetch message from kafka", zap.Error(err))
			continue
		}

		c.processMessage(ctx, m)

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("failed to commit message offset",
				zap.Error(err),
				zap.String("topic", m.Topic),
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
			)
		}
	}
}

type envelope struct {
	EventType string `json:"event_type"`
}

// processMessage разбирает сообщение и передаёт его handler'у с retry
// Нечитаемые сообщения (poison pill) логируются и пропускаются
func (c *EventConsumer) processMessage(ctx context.Context, m kafka.Message) {
	ctx = platformobservability.ExtractKafkaHeaders(ctx, m.Headers)
	log := platformobservability.L(ctx, c.logger).With(
		zap.String("topic", m.Topic),
		zap.Int("partition", m.Partition),
		zap.Int64("offset", m.Offset),
	)

	handle, err := c.decode(m.Value)
	if err != nil {
		log.Error("skipping unreadable kafka message", zap.Error(err))
		return
	}

	if err := c.handleWithRetry(ctx, handle); err != nil {
		if ctx.Err() != nil {
			log.Info("cart event handling interrupted by shutdown", zap.Error(err))
			return
		}
		log.Error("failed to handle cart event after all retries", zap.Error(err))
		return
	}
	log.Debug("cart event processed")
}

func (c *EventConsumer) decode(value []byte) (func(context.Context) error, error) {
	var env envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}

	switch env.EventType {
	case EventTypeCartUpdated:
		var event CartUpdatedEvent
		if err := json.Unmarshal(value, &event); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", env.EventType, err)
		}
		return func(ctx context.Context) error { return c.handler.HandleCartUpdated(ctx, event) }, nil
	case EventTypeNotification:
		var event NotificationEvent
		if err := json.Unmarshal(value, &event); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", env.EventType, err)
		}
		return func(ctx context.Context) error { return c.handler.HandleNotification(ctx, event) }, nil
	}
	return nil, fmt.Errorf("unknown event_type %q", env.EventType)
}

// handleWithRetry вызывает handle до maxAttempts раз с экспоненциальным backoff (1x, 2x, 4x...)
func (c *EventConsumer) handleWithRetry(ctx context.Context, handle func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			backoff := c.backoffBase * time.Duration(1<<uint(attempt-2))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		if lastErr = handle(ctx); lastErr == nil {
			return nil
		}
		c.logger.Warn("failed to handle cart event",
			zap.Error(lastErr),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.maxAttempts),
		)
	}
	return lastErr
}
