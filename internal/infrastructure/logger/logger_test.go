package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigs(t *testing.T) {
	dev := DefaultConfig()
	assert.Equal(t, "console", dev.Format)
	assert.Equal(t, "info", dev.Level)

	prod := ProductionConfig()
	assert.Equal(t, "json", prod.Format)
	assert.Equal(t, "stdout", prod.Output)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"console stdout", &Config{Level: "debug", Format: "console", Output: "stdout"}},
		{"json stderr", &Config{Level: "warn", Format: "json", Output: "stderr"}},
		{"empty time format", &Config{Level: "info", Format: "json", Output: "stdout"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg)
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receivables.log")
	log, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	log.Info("receipt approved", zap.String("receipt_number", "PT-001"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "receipt approved", entry["msg"])
	assert.Equal(t, "PT-001", entry["receipt_number"])
}

func TestNew_UnwritableOutput(t *testing.T) {
	_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "x.log")})
	assert.Error(t, err)
}

func TestNew_TeesExtraCores(t *testing.T) {
	observed, logs := observer.New(zapcore.InfoLevel)
	log, err := New(&Config{Level: "error", Format: "json", Output: "stderr"}, observed)
	require.NoError(t, err)

	log.Info("bridged")
	assert.Equal(t, 1, logs.Len())
}

func TestNewForEnvironment(t *testing.T) {
	for _, env := range []string{"development", "production", "test"} {
		log, err := NewForEnvironment(env)
		require.NoError(t, err, env)
		assert.NotNil(t, log)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"bogus", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.level), tt.level)
	}
}

func TestJSONEncoder_Fields(t *testing.T) {
	var buf bytes.Buffer
	core := zapcore.NewCore(createEncoder(&Config{Format: "json"}), zapcore.AddSync(&buf), zapcore.DebugLevel)
	zap.New(core).Warn("period locked", zap.String("seller_tax_code", "0101234567"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "period locked", entry["msg"])
	assert.Equal(t, "0101234567", entry["seller_tax_code"])
	assert.Contains(t, entry, "time")
}
