// File: internal/observability/logger_test.go
package observability

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/probeworks/gptprobe/internal/config"
)

// syncBuffer adapts strings.Builder to zapcore.WriteSyncer for capture.
type syncBuffer struct {
	strings.Builder
}

func (b *syncBuffer) Sync() error { return nil }

func TestInitialize(t *testing.T) {
	t.Run("JSONFormatEmitsStructuredOutput", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		buf := &syncBuffer{}
		Initialize(config.LoggerConfig{Level: "debug", Format: "json", ServiceName: "gptprobe"}, buf)

		GetLogger().Info("hello", zap.String("key", "value"))

		out := buf.String()
		assert.Contains(t, out, `"msg":"hello"`)
		assert.Contains(t, out, `"key":"value"`)
		assert.Contains(t, out, "gptprobe")
	})

	t.Run("InvalidLevelFallsBackToInfo", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		buf := &syncBuffer{}
		Initialize(config.LoggerConfig{Level: "not-a-level", Format: "json", ServiceName: "gptprobe"}, buf)

		GetLogger().Debug("invisible")
		GetLogger().Info("visible")

		out := buf.String()
		assert.NotContains(t, out, "invisible")
		assert.Contains(t, out, "visible")
	})

	t.Run("SecondInitializeIsANoOp", func(t *testing.T) {
		ResetForTest()
		t.Cleanup(ResetForTest)

		first := &syncBuffer{}
		second := &syncBuffer{}
		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "gptprobe"}, first)
		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "other"}, second)

		GetLogger().Info("routed")
		assert.Contains(t, first.String(), "routed")
		assert.Empty(t, second.String())
	})
}

func TestGetLoggerFallback(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	// Without Initialize the accessor must still hand back a usable logger.
	logger := GetLogger()
	require.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Info("fallback path") })
}

func TestNewEncoder(t *testing.T) {
	entry := zapcore.Entry{Level: zapcore.InfoLevel, Message: "m"}

	t.Run("ConsoleFormat", func(t *testing.T) {
		buf, err := newEncoder("console").EncodeEntry(entry, nil)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "m")
	})

	t.Run("AnythingElseIsJSON", func(t *testing.T) {
		buf, err := newEncoder("json").EncodeEntry(entry, nil)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), `"msg":"m"`)
	})
}
