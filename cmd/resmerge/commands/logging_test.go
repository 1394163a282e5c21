package commands

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		verbose bool
		want    slog.Level
	}{
		{"default is warn", "", false, slog.LevelWarn},
		{"verbose wins", "error", true, slog.LevelDebug},
		{"env debug", "debug", false, slog.LevelDebug},
		{"env info any case", " INFO ", false, slog.LevelInfo},
		{"env error", "error", false, slog.LevelError},
		{"unknown env", "loud", false, slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(LogLevelEnv, tt.env)
			assert.Equal(t, tt.want, logLevel(tt.verbose))
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Setenv(LogLevelEnv, "")

	var buf bytes.Buffer
	logger := NewLogger(&buf, false)
	logger.Info("hidden")
	logger.With("set", "main").Warn("shown", "key", "string/app_name")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "set=main")
	assert.Contains(t, buf.String(), "key=string/app_name")
}
