package loggers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewZapLogger(t *testing.T) {
	t.Run("newZapLogger() - Production logs info", testZapLoggerLevelFunc(false, "", zapcore.InfoLevel, zapcore.DebugLevel))
	t.Run("newZapLogger() - Debug logs debug", testZapLoggerLevelFunc(true, "", zapcore.DebugLevel, zapcore.DebugLevel-1))
	t.Run("newZapLogger() - Level override", testZapLoggerLevelFunc(true, "warn", zapcore.WarnLevel, zapcore.InfoLevel))
	t.Run("newZapLogger() - Invalid level ignored", testZapLoggerLevelFunc(false, "loud", zapcore.InfoLevel, zapcore.DebugLevel))
}

func testZapLoggerLevelFunc(debug bool, level string, enabled zapcore.Level, disabled zapcore.Level) func(*testing.T) {
	return func(t *testing.T) {
		logger := newZapLogger(debug, level)
		assert.True(t, logger.Core().Enabled(enabled))
		assert.False(t, logger.Core().Enabled(disabled))
	}
}
