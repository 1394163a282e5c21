package commands

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/erraggy/resmerge/resource"
)

// LogLevelEnv selects the log level when --verbose is not given.
const LogLevelEnv = "RESMERGE_LOG_LEVEL"

// NewLogger returns a text logger on w. --verbose forces debug output;
// otherwise RESMERGE_LOG_LEVEL (debug, info, warn, error) applies and the
// default is warn.
func NewLogger(w io.Writer, verbose bool) resource.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel(verbose)})
	return resource.NewSlogAdapter(slog.New(handler))
}

func logLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(LogLevelEnv))) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
