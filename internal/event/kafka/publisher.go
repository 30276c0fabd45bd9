package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	platformobservability "github.com/shestoi/rocketcart/platform/observability"

	"github.com/shestoi/rocketcart/internal/repository"
)

const (
	EventTypeNotification = "cart.notification"
	EventTypeCartUpdated  = "cart.updated"
)

// messageWriter - часть kafka.Writer, которая нужна publisher'ам (подменяется в тестах)
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// newAsyncWriter создаёт асинхронный writer: WriteMessages не ждёт брокера,
// ошибки доставки приходят в Completion и только логируются
func newAsyncWriter(logger *zap.Logger, brokers []string, topic string, balancer kafka.Balancer) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     balancer,
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("failed to deliver kafka messages",
					zap.Error(err),
					zap.String("topic", topic),
					zap.Int("count", len(messages)),
				)
			}
		},
	}
}

// NotificationEvent - событие с сообщением пользователю
type NotificationEvent struct {
	EventID    string `json:"event_id"`
	EventType  string `json:"event_type"`
	OccurredAt string `json:"occurred_at"`
	Message    string `json:"message"`
}

// NotificationPublisher реализует service.Notifier, публикуя сообщения в Kafka
type NotificationPublisher struct {
	logger *zap.Logger
	writer messageWriter
	topic  string
	now    func() time.Time
}

// NewNotificationPublisher создаёт publisher сообщений пользователю
// Сообщения независимы (ключ - event_id), поэтому партиция выбирается по нагрузке
func NewNotificationPublisher(logger *zap.Logger, brokers []string, topic string) *NotificationPublisher {
	return newNotificationPublisher(logger, newAsyncWriter(logger, brokers, topic, &kafka.LeastBytes{}), topic)
}

func newNotificationPublisher(logger *zap.Logger, writer messageWriter, topic string) *NotificationPublisher {
	return &NotificationPublisher{
		logger: logger,
		writer: writer,
		topic:  topic,
		now:    time.Now,
	}
}

// Close закрывает Kafka writer, дожидаясь отправки буфера
func (p *NotificationPublisher) Close() error {
	return p.writer.Close()
}

// Report реализует service.Notifier
// Fire-and-forget: ошибка публикации логируется и не влияет на операцию корзины
func (p *NotificationPublisher) Report(ctx context.Context, message string) {
	event := NotificationEvent{
		EventID:    uuid.New().String(),
		EventType:  EventTypeNotification,
		OccurredAt: p.now().UTC().Format(time.RFC3339),
		Message:    message,
	}

	valueBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal notification event", zap.Error(err))
		return
	}

	msg := kafka.Message{
		Key:     []byte(event.EventID),
		Value:   valueBytes,
		Headers: platformobservability.InjectKafkaHeaders(ctx, nil),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		platformobservability.L(ctx, p.logger).Error("failed to publish notification event",
			zap.Error(err),
			zap.String("topic", p.topic),
			zap.String("event_id", event.EventID),
		)
		return
	}

	p.logger.Debug("notification event published",
		zap.String("topic", p.topic),
		zap.String("event_id", event.EventID),
	)
}

// CartUpdatedEvent - снимок корзины после успешного изменения
type CartUpdatedEvent struct {
	EventID     string               `json:"event_id"`
	EventType   string               `json:"event_type"`
	OccurredAt  string               `json:"occurred_at"`
	Items       []repository.Product `json:"items"`
	TotalAmount int                  `json:"total_amount"`
}

// CartEventPublisher публикует снимки корзины в Kafka
type CartEventPublisher struct {
	logger *zap.Logger
	writer messageWriter
	topic  string
	key    string
	now    func() time.Time
}

// NewCartEventPublisher создаёт publisher событий корзины; key - ключ корзины в хранилище,
// он же ключ сообщения. Партиция выбирается хешем ключа, поэтому все снимки одной корзины
// попадают в одну партицию в порядке изменений
func NewCartEventPublisher(logger *zap.Logger, brokers []string, topic, key string) *CartEventPublisher {
	return newCartEventPublisher(logger, newAsyncWriter(logger, brokers, topic, &kafka.Hash{}), topic, key)
}

func newCartEventPublisher(logger *zap.Logger, writer messageWriter, topic, key string) *CartEventPublisher {
	return &CartEventPublisher{
		logger: logger,
		writer: writer,
		topic:  topic,
		key:    key,
		now:    time.Now,
	}
}

// Close закрывает Kafka writer, дожидаясь отправки буфера
func (p *CartEventPublisher) Close() error {
	return p.writer.Close()
}

// PublishCartUpdated публикует снимок корзины
func (p *CartEventPublisher) PublishCartUpdated(ctx context.Context, cart repository.Cart) error {
	items := cart.Clone()
	event := CartUpdatedEvent{
		EventID:     uuid.New().String(),
		EventType:   EventTypeCartUpdated,
		OccurredAt:  p.now().UTC().Format(time.RFC3339),
		Items:       items,
		TotalAmount: items.TotalAmount(),
	}

	valueBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal cart updated event", zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:     []byte(p.key),
		Value:   valueBytes,
		Headers: platformobservability.InjectKafkaHeaders(ctx, nil),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish cart updated event",
			zap.Error(err),
			zap.String("topic", p.topic),
			zap.String("event_id", event.EventID),
		)
		return err
	}

	p.logger.Debug("cart updated event published",
		zap.String("topic", p.topic),
		zap.String("event_id", event.EventID),
		zap.Int("items", len(items)),
	)
	return nil
}

// Subscriber возвращает функцию для CartStore.Subscribe
// ctx - контекст операции корзины, его trace context уходит в заголовки сообщения.
// Ошибка публикации уже залогирована в PublishCartUpdated
func (p *CartEventPublisher) Subscriber() func(context.Context, repository.Cart) {
	return func(ctx context.Context, cart repository.Cart) {
		_ = p.PublishCartUpdated(ctx, cart)
	}
}
