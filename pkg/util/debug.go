package util

import (
	"os"
	"strconv"
	"strings"
	"sync"
)

const (
	// DebugEnvVar switches the shared logger to zap's development config.
	DebugEnvVar = "BIOLINKS_DEBUG"
	// LogLevelEnvVar overrides the shared logger's level, e.g. "warn".
	LogLevelEnvVar = "BIOLINKS_LOG_LEVEL"
)

var (
	debugOnce sync.Once
	isDebug   bool
)

func IsDebug() bool {
	debugOnce.Do(func() {
		isDebug = parseDebug(os.Getenv(DebugEnvVar))
	})
	return isDebug
}

func parseDebug(value string) bool {
	debug, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && debug
}
