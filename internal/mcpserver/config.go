package mcpserver

import (
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/erraggy/resmerge/merger"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Merge tool defaults.
	Incremental    bool
	Clean          bool
	ParallelLoad   int
	MergeTimeout   time.Duration
	ValuesFileName string
	SnapshotName   string

	// Inspect tool defaults.
	InspectLimit int
	MaxLimit     int
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from RESMERGE_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		Incremental:    envBool("RESMERGE_INCREMENTAL", true),
		Clean:          envBool("RESMERGE_CLEAN", true),
		ParallelLoad:   envInt("RESMERGE_PARALLEL_LOAD", runtime.GOMAXPROCS(0)),
		MergeTimeout:   envDuration("RESMERGE_MERGE_TIMEOUT", 5*time.Minute),
		ValuesFileName: envFileName("RESMERGE_VALUES_FILE_NAME", merger.DefaultValuesFileName, ".xml"),
		SnapshotName:   envFileName("RESMERGE_SNAPSHOT_NAME", merger.DefaultSnapshotName, ""),
		InspectLimit:   envInt("RESMERGE_INSPECT_LIMIT", 100),
		MaxLimit:       envInt("RESMERGE_MAX_LIMIT", 1000),
	}
}

// mergerOptions turns the configured defaults into merger options.
func (c *serverConfig) mergerOptions() []merger.Option {
	return []merger.Option{
		merger.WithParallelLoad(c.ParallelLoad),
		merger.WithValuesFileName(c.ValuesFileName),
		merger.WithSnapshotName(c.SnapshotName),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

// envFileName accepts a bare file name, optionally requiring a suffix.
func envFileName(key, fallback, suffix string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if strings.ContainsAny(v, `/\`) || v == "." || v == ".." || !strings.HasSuffix(v, suffix) {
		slog.Warn("invalid file name env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return v
}
