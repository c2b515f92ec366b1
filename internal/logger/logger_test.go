package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{
			name:   "default config",
			config: nil,
		},
		{
			name: "custom json config",
			config: &Config{
				Level:  "debug",
				Format: "json",
			},
		},
		{
			name: "console config",
			config: &Config{
				Level:  "info",
				Format: "console",
				Output: io.Discard,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, New(tt.config))
		})
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(&Config{Level: "info", Format: "json", Output: buf})

	logger.Info("test message")

	entry := decode(t, buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "test message", entry["message"])
	assert.NotEmpty(t, entry["time"])
}

func TestLogger_WithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(&Config{Level: "info", Format: "json", Output: buf})

	child := logger.With().
		Str("database", "northwind.mdb").
		Int("tables", 12).
		Logger()

	child.Info("tables listed")

	entry := decode(t, buf)
	assert.Equal(t, "northwind.mdb", entry["database"])
	assert.Equal(t, float64(12), entry["tables"])
	assert.Equal(t, "tables listed", entry["message"])
}

func TestLogger_ErrorWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(&Config{Level: "error", Format: "json", Output: buf})

	logger.ErrorWith("export failed", errors.New("exit status 1"), map[string]any{
		"table": "Customers",
	})

	entry := decode(t, buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "export failed", entry["message"])
	assert.Equal(t, "exit status 1", entry["error"])
	assert.Equal(t, "Customers", entry["table"])
}

func TestLogger_Command(t *testing.T) {
	t.Run("success logs at debug", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := New(&Config{Level: "debug", Format: "json", Output: buf})

		logger.Command("mdb-tables", []string{"-d", "--b--", "db.mdb"}, 20*time.Millisecond, nil)

		entry := decode(t, buf)
		assert.Equal(t, "debug", entry["level"])
		assert.Equal(t, "mdb-tables", entry["command"])
		assert.Equal(t, []any{"-d", "--b--", "db.mdb"}, entry["args"])
	})

	t.Run("failure logs at warn", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := New(&Config{Level: "warn", Format: "json", Output: buf})

		logger.Command("mdb-export", nil, time.Second, errors.New("boom"))

		entry := decode(t, buf)
		assert.Equal(t, "warn", entry["level"])
		assert.Equal(t, "boom", entry["error"])
	})
}

func TestLogger_Context(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(&Config{Level: "info", Format: "json", Output: buf})

	ctx := logger.WithContext(context.Background())
	FromContext(ctx).Info("from context")

	entry := decode(t, buf)
	assert.Equal(t, "from context", entry["message"])
}

func TestLogger_FromEmptyContextUsesGlobal(t *testing.T) {
	buf := &bytes.Buffer{}
	prev := Global()
	SetGlobal(New(&Config{Level: "info", Format: "json", Output: buf}))
	t.Cleanup(func() { SetGlobal(prev) })

	FromContext(context.Background()).Info("global")

	entry := decode(t, buf)
	assert.Equal(t, "global", entry["message"])
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		logFunc  func(*Logger)
		expected bool
	}{
		{
			name:     "debug level logs debug",
			level:    "debug",
			logFunc:  func(l *Logger) { l.Debug("debug message") },
			expected: true,
		},
		{
			name:     "info level skips debug",
			level:    "info",
			logFunc:  func(l *Logger) { l.Debug("debug message") },
			expected: false,
		},
		{
			name:     "error level logs error",
			level:    "error",
			logFunc:  func(l *Logger) { l.Error("error message") },
			expected: true,
		},
		{
			name:     "error level skips info",
			level:    "error",
			logFunc:  func(l *Logger) { l.Info("info message") },
			expected: false,
		},
		{
			name:     "unknown level falls back to info",
			level:    "chatty",
			logFunc:  func(l *Logger) { l.Info("info message") },
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(&Config{Level: tt.level, Format: "json", Output: buf})

			tt.logFunc(logger)

			if tt.expected {
				assert.NotEmpty(t, buf.String(), "expected log output")
			} else {
				assert.Empty(t, buf.String(), "expected no log output")
			}
		})
	}
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Error("dropped")
	})
}

func BenchmarkLogger_Info(b *testing.B) {
	logger := New(&Config{Level: "info", Format: "json", Output: io.Discard})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message")
	}
}
