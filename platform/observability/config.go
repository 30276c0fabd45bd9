package observability

import (
	"fmt"
	"time"
)

// Config конфигурация OpenTelemetry (traces + metrics + propagator)
// Поля с env-тегами читаются вместе с конфигом приложения
type Config struct {
	// Enabled включить экспорт в OTLP collector
	Enabled bool `env:"OTEL_ENABLED" envDefault:"false"`
	// OTLPEndpoint адрес OTLP gRPC (traces + metrics), например "127.0.0.1:4317" или "otel-collector:4317"
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// SamplingRatio доля трасс для семплирования (0..1), 1.0 = все
	SamplingRatio float64 `env:"OTEL_SAMPLING_RATIO" envDefault:"1.0"`
	// MetricInterval период выгрузки метрик
	MetricInterval time.Duration `env:"OTEL_METRIC_INTERVAL" envDefault:"10s"`

	// Заполняются приложением
	ServiceName           string
	DeploymentEnvironment string
	ServiceVersion        string
}

// Validate проверяет конфигурацию, если экспорт включён
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.OTLPEndpoint == "" {
		return fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT is required when OTEL_ENABLED=true")
	}
	if c.SamplingRatio < 0 || c.SamplingRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLING_RATIO must be in [0, 1], got %v", c.SamplingRatio)
	}
	return nil
}
