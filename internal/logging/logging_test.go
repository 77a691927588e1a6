package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/dyluth/quill/internal/config"
)

func TestNew(t *testing.T) {
	t.Run("json at info", func(t *testing.T) {
		logger, err := New(config.LoggingConfig{Level: "info", Format: "json"})
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("console at debug", func(t *testing.T) {
		logger, err := New(config.LoggingConfig{Level: "debug", Format: "console"})
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := New(config.LoggingConfig{Level: "chatty", Format: "json"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		_, err := New(config.LoggingConfig{Level: "info", Format: "xml"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log format")
	})
}
