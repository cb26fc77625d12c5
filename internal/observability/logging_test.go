package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vyrodovalexey/avadispatch/internal/util"
)

func newObservedLogger(t *testing.T) (Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return &zapLogger{logger: zap.New(core)}, logs
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LogConfig
		wantErr bool
	}{
		{name: "json stdout", cfg: LogConfig{Level: "info", Format: "json", Output: "stdout"}},
		{name: "console stderr", cfg: LogConfig{Level: "debug", Format: "console", Output: "stderr"}},
		{name: "warn level", cfg: LogConfig{Level: "warn", Format: "json"}},
		{name: "bad level", cfg: LogConfig{Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestLoggerLevelsAndFields(t *testing.T) {
	logger, logs := newObservedLogger(t)

	logger.Debug("debug msg", String("k", "v"))
	logger.Info("info msg", Int("n", 7))
	logger.Warn("warn msg")
	logger.Error("error msg", Error(assert.AnError))

	require.Equal(t, 4, logs.Len())

	entries := logs.All()
	assert.Equal(t, "debug msg", entries[0].Message)
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	assert.Equal(t, "v", entries[0].ContextMap()["k"])
	assert.Equal(t, int64(7), entries[1].ContextMap()["n"])
	assert.Equal(t, zap.ErrorLevel, entries[3].Level)
}

func TestLoggerWith(t *testing.T) {
	logger, logs := newObservedLogger(t)

	child := logger.With(String("component", "dispatch"))
	child.Info("hello")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "dispatch", logs.All()[0].ContextMap()["component"])
}

func TestLoggerWithContext(t *testing.T) {
	logger, logs := newObservedLogger(t)

	ctx := util.ContextWithRequestID(context.Background(), "req-9")
	logger.WithContext(ctx).Info("traced")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-9", logs.All()[0].ContextMap()["request_id"])

	// Without a request ID the logger is returned unchanged.
	logger.WithContext(context.Background()).Info("plain")
	assert.NotContains(t, logs.All()[1].ContextMap(), "request_id")
}

func TestGlobalLogger(t *testing.T) {
	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	logger, logs := newObservedLogger(t)
	SetGlobalLogger(logger)

	L().Info("via global")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "via global", logs.All()[0].Message)
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	logger.Info("discarded")
	assert.NoError(t, logger.Sync())
}
