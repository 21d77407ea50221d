package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/v0xg/formmap/internal/config"
)

func TestInitialize(t *testing.T) {
	t.Run("console logger with colors", func(t *testing.T) {
		ResetForTest()
		defer ResetForTest()

		var buf bytes.Buffer
		Initialize(config.LoggerConfig{Level: "debug", Format: "console"}, zapcore.AddSync(&buf))
		GetLogger().Info("crawl started")
		Sync()

		out := buf.String()
		assert.Contains(t, out, "INFO")
		assert.Contains(t, out, "crawl started")
		assert.Contains(t, out, levelColors[zapcore.InfoLevel])
		assert.Contains(t, out, colorReset)
		assert.Contains(t, out, "formmap.")
	})

	t.Run("json logger", func(t *testing.T) {
		ResetForTest()
		defer ResetForTest()

		var buf bytes.Buffer
		Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&buf))
		GetLogger().Warn("page failed", zap.String("url", "https://example.com/a"))
		Sync()

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, "page failed", entry["msg"])
		assert.Equal(t, "https://example.com/a", entry["url"])
		assert.Equal(t, "formmap", entry["logger"])
	})

	t.Run("level filters debug", func(t *testing.T) {
		ResetForTest()
		defer ResetForTest()

		var buf bytes.Buffer
		Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&buf))
		GetLogger().Debug("hidden")
		Sync()
		assert.Empty(t, buf.String())
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		ResetForTest()
		defer ResetForTest()

		var buf bytes.Buffer
		Initialize(config.LoggerConfig{Level: "loud", Format: "json"}, zapcore.AddSync(&buf))
		GetLogger().Debug("hidden")
		GetLogger().Info("shown")
		Sync()
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("file output", func(t *testing.T) {
		ResetForTest()
		defer ResetForTest()

		path := filepath.Join(t.TempDir(), "formmap.log")
		var buf bytes.Buffer
		Initialize(config.LoggerConfig{Level: "info", Format: "console", LogFile: path, MaxSize: 1}, zapcore.AddSync(&buf))
		GetLogger().Info("written twice")
		Sync()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		line := strings.TrimSpace(string(data))
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "file log is JSON")
		assert.Equal(t, "written twice", entry["msg"])
		assert.Contains(t, buf.String(), "written twice")
	})

	t.Run("only the first call takes effect", func(t *testing.T) {
		ResetForTest()
		defer ResetForTest()

		var first, second bytes.Buffer
		Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&first))
		Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&second))
		GetLogger().Info("once")
		Sync()
		assert.Contains(t, first.String(), "once")
		assert.Empty(t, second.String())
	})
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	ResetForTest()
	logger := GetLogger()
	require.NotNil(t, logger)
	assert.NotPanics(t, func() {
		logger.Info("dropped")
		Sync()
	})
}
