package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shestoi/rocketcart/internal/service"
)

// LogNotifier пишет сообщения пользователю в лог
// Используется, когда другие каналы доставки отключены
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier создаёт notifier, который только логирует
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Report реализует service.Notifier
func (n *LogNotifier) Report(ctx context.Context, message string) {
	n.logger.Warn("cart notification", zap.String("message", message))
}

// Fanout рассылает каждое сообщение всем вложенным notifier по порядку
type Fanout []service.Notifier

// Report реализует service.Notifier
func (f Fanout) Report(ctx context.Context, message string) {
	for _, n := range f {
		n.Report(ctx, message)
	}
}

// DefaultRecorderSize - сколько последних сообщений хранит Recorder по умолчанию
const DefaultRecorderSize = 50

// Message - сообщение, записанное Recorder
type Message struct {
	Text       string    `json:"message"`
	ReportedAt time.Time `json:"reported_at"`
}

// Recorder хранит последние сообщения в кольцевом буфере, чтобы UI мог их показать
type Recorder struct {
	mu       sync.RWMutex
	size     int
	messages []Message
	now      func() time.Time
}

// NewRecorder создаёт Recorder на size сообщений (DefaultRecorderSize при size <= 0)
func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = DefaultRecorderSize
	}
	return &Recorder{
		size:     size,
		messages: make([]Message, 0, size),
		now:      time.Now,
	}
}

// Report реализует service.Notifier
func (r *Recorder) Report(ctx context.Context, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.messages) == r.size {
		copy(r.messages, r.messages[1:])
		r.messages = r.messages[:r.size-1]
	}
	r.messages = append(r.messages, Message{Text: message, ReportedAt: r.now().UTC()})
}

// Messages возвращает копию сохранённых сообщений, последнее - в конце
func (r *Recorder) Messages() []Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}
