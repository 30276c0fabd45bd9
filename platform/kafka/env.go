package kafka

import (
	"strings"

	"github.com/caarlos0/env/v10"
)

// LoadEnv загружает конфигурацию из переменных окружения поверх значений cfg
// Пустой KAFKA_BROKERS оставляет брокеры из cfg (например, из DefaultConfig)
func LoadEnv(cfg *Config) error {
	brokers := cfg.Brokers
	if err := env.Parse(cfg); err != nil {
		return err
	}

	cfg.Brokers = splitBrokers(cfg.Brokers)
	if len(cfg.Brokers) == 0 {
		cfg.Brokers = brokers
	}
	return nil
}

// splitBrokers убирает пробелы и пустые элементы ("a:9092, ,b:9092" -> [a:9092 b:9092])
func splitBrokers(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, b := range raw {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
