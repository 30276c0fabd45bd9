package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{ServiceName: "cart", Env: "docker", Level: "debug", Output: &buf})
	require.NoError(t, err)

	logger.Debug("hello")
	Sync(logger)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "hello", line["msg"])
	require.Equal(t, "cart", line["service"])
	require.Equal(t, "docker", line["env"])
	require.Equal(t, "debug", line["level"])
	require.NotContains(t, line, "caller")
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{ServiceName: "cart", Env: "local", Level: "WARN", Format: "json", Output: &buf})
	require.NoError(t, err)

	logger.Info("skipped")
	require.Zero(t, buf.Len())

	logger.Warn("kept")
	require.Contains(t, buf.String(), "kept")
	require.Contains(t, buf.String(), "caller")
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "error: unknown level", cfg: Config{Level: "trace"}},
		{name: "error: unknown format", cfg: Config{Format: "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.Error(t, err)
		})
	}
}
