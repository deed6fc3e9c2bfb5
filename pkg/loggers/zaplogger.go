package loggers

import (
	"log"
	"os"
	"sync"

	"github.com/biolinks/biolinks/pkg/util"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	zapLogger  *zap.Logger
	loggerOnce sync.Once
)

// ZapLogger returns the process-wide logger that package level zaplog vars
// share. It is never nil.
func ZapLogger() *zap.Logger {
	loggerOnce.Do(func() {
		zapLogger = newZapLogger(util.IsDebug(), os.Getenv(util.LogLevelEnvVar))
	})
	return zapLogger
}

func newZapLogger(debug bool, level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}

	if level != "" {
		var l zapcore.Level
		if err := l.UnmarshalText([]byte(level)); err != nil {
			log.Printf("ignoring %s: %s", util.LogLevelEnvVar, err.Error())
		} else {
			cfg.Level = zap.NewAtomicLevelAt(l)
		}
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Printf("unable to create zap logger: %s", err.Error())
		return zap.NewNop()
	}

	return logger
}

func ZapLoggerSync() {
	if zapLogger == nil {
		return
	}
	// Sync fails on stdout/stderr for some platforms, see uber-go/zap#880
	_ = zapLogger.Sync()
}
