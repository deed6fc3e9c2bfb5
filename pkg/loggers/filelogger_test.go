package loggers_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/biolinks/biolinks/pkg/loggers"
	"github.com/stretchr/testify/assert"
)

func TestFormatTimestampedLogFileName(t *testing.T) {
	timeNow := time.Now().UTC().Format("20060102T150405Z")
	expectedName := fmt.Sprintf("%s-%s.log", "basename", timeNow)

	actualName := loggers.FormatTimestampedLogFileName("basename")

	if expectedName != actualName {
		t.Errorf("Expected: %s, got: %s", expectedName, actualName)
	}
}

func TestNewFileLogger(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "log")

	logger, err := loggers.NewFileLogger("biolinksd", logDir)
	assert.NoError(t, err)

	logger.Info("started")
	_ = logger.Sync()

	entries, err := os.ReadDir(logDir)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(entries))
}
