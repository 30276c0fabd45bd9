// Package main - утилита, которая читает события корзины из Kafka и пишет их в лог.
//
// Полезна при локальной разработке, чтобы видеть, что публикует сервис корзины:
//   - cart.updated - снимки корзины после успешных изменений
//   - cart.notifications - сообщения пользователю
//
// Брокеры и топики берутся из тех же переменных, что и у сервиса
// (KAFKA_BROKERS, KAFKA_NOTIFICATIONS_TOPIC, KAFKA_CART_EVENTS_TOPIC).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	platformkafka "github.com/shestoi/rocketcart/platform/kafka"
	platformlogging "github.com/shestoi/rocketcart/platform/logging"

	kafkaevent "github.com/shestoi/rocketcart/internal/event/kafka"
)

// logHandler пишет каждое событие в лог
type logHandler struct {
	logger *zap.Logger
}

func (h logHandler) HandleCartUpdated(_ context.Context, event kafkaevent.CartUpdatedEvent) error {
	h.logger.Info("cart updated",
		zap.String("event_id", event.EventID),
		zap.String("occurred_at", event.OccurredAt),
		zap.Int("items", len(event.Items)),
		zap.Int("total_amount", event.TotalAmount),
	)
	return nil
}

func (h logHandler) HandleNotification(_ context.Context, event kafkaevent.NotificationEvent) error {
	h.logger.Info("cart notification",
		zap.String("event_id", event.EventID),
		zap.String("occurred_at", event.OccurredAt),
		zap.String("message", event.Message),
	)
	return nil
}

func main() {
	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "cart-events",
		Env:         "local",
		Level:       os.Getenv("LOG_LEVEL"),
		Format:      "console",
	})
	if err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer platformlogging.Sync(logger)

	// Если переменные не заданы, используются дефолты (localhost:19092, cart.notifications, cart.updated)
	cfg := platformkafka.DefaultConfig()
	if err := platformkafka.LoadEnv(&cfg); err != nil {
		logger.Error("failed to load kafka config", zap.Error(err))
		os.Exit(1)
	}

	groupID := os.Getenv("KAFKA_GROUP_ID")
	if groupID == "" {
		groupID = "cart-events-tail"
	}

	logger.Info("kafka config loaded",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("group_id", groupID),
		zap.String("notifications_topic", cfg.NotificationsTopic),
		zap.String("cart_events_topic", cfg.CartEventsTopic),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := kafkaevent.NewEventConsumer(logger, cfg.Brokers, groupID,
		[]string{cfg.NotificationsTopic, cfg.CartEventsTopic},
		logHandler{logger: logger}, 3, time.Second)
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Error("failed to close kafka reader", zap.Error(err))
		}
	}()

	if err := consumer.Start(ctx); err != nil {
		logger.Error("consumer stopped with error", zap.Error(err))
		os.Exit(1)
	}
}
