package kafka

import (
	"fmt"
	"strings"
)

// Config содержит конфигурацию публикации событий корзины в Kafka
type Config struct {
	// Enabled включает публикацию; при false события пишутся только в лог
	Enabled bool `env:"KAFKA_ENABLED" envDefault:"false"`
	// Brokers - список брокеров Kafka:
	//   - локальная разработка (go run): localhost:19092
	//   - запуск в Docker: kafka:9092
	// Можно указать несколько брокеров через запятую: "broker1:9092,broker2:9092"
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	// NotificationsTopic - топик сообщений пользователю
	NotificationsTopic string `env:"KAFKA_NOTIFICATIONS_TOPIC" envDefault:"cart.notifications"`
	// CartEventsTopic - топик снимков корзины после изменений
	CartEventsTopic string `env:"KAFKA_CART_EVENTS_TOPIC" envDefault:"cart.updated"`
}

// DefaultConfig возвращает конфигурацию с дефолтными значениями для локальной разработки.
func DefaultConfig() Config {
	return Config{
		Brokers:            []string{"localhost:19092"},
		NotificationsTopic: "cart.notifications",
		CartEventsTopic:    "cart.updated",
	}
}

// Validate проверяет конфигурацию, если публикация включена
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if len(c.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED=true")
	}
	for _, b := range c.Brokers {
		if strings.TrimSpace(b) == "" {
			return fmt.Errorf("KAFKA_BROKERS contains an empty broker address")
		}
	}
	if c.NotificationsTopic == "" || c.CartEventsTopic == "" {
		return fmt.Errorf("kafka topics must not be empty")
	}
	return nil
}
