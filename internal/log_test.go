package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"ERROR":   LogLevelError,
		"warn":    LogLevelWarn,
		"WARNING": LogLevelWarn,
		"Info":    LogLevelInfo,
		" debug ": LogLevelDebug,
		"TRACE":   LogLevelTrace,
		"":        LogLevelInfo,
		"verbose": LogLevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), "input %q", in)
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput(LogLevelWarn, &buf)

	logger.Info("hidden %d", 1)
	logger.Debug("hidden")
	logger.Warn("column %q not found", "AngularWidth [deg]")
	logger.Error("fatal")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `[WARN] column "AngularWidth [deg]" not found`)
	assert.Contains(t, out, "[ERROR] fatal")
	assert.Equal(t, LogLevelWarn, logger.GetLevel())
}

func TestLoggerWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput(LogLevelInfo, &buf).With("loader").With("excel")

	logger.Info("read %d rows", 12)

	assert.Contains(t, buf.String(), "[INFO] [loader] [excel] read 12 rows")
}
