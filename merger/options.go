package merger

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/erraggy/resmerge/internal/fileutil"
	"github.com/erraggy/resmerge/internal/options"
	"github.com/erraggy/resmerge/reserrors"
	"github.com/erraggy/resmerge/resource"
)

// Default file names used under the blob folder and inside value buckets.
const (
	DefaultSnapshotName   = "merger.yaml"
	DefaultValuesFileName = "values.xml"
)

// Option is a function that configures a Merger
type Option func(*config) error

// config holds configuration for a Merger
type config struct {
	logger         resource.Logger
	fileMode       os.FileMode
	dirMode        os.FileMode
	snapshotName   string
	valuesFileName string
	parallelLoad   int
}

func defaultConfig() *config {
	return &config{
		logger:         resource.NopLogger{},
		fileMode:       fileutil.ReadableByAll,
		dirMode:        fileutil.DirReadableByAll,
		snapshotName:   DefaultSnapshotName,
		valuesFileName: DefaultValuesFileName,
		parallelLoad:   runtime.GOMAXPROCS(0),
	}
}

func applyOptions(opts ...Option) (*config, error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WithLogger sets the logger for merge, update and export operations.
// A nil logger keeps the default, which discards output.
func WithLogger(logger resource.Logger) Option {
	return func(cfg *config) error {
		if logger != nil {
			cfg.logger = logger
		}
		return nil
	}
}

// WithFileMode sets the permission mode of exported files (default 0644).
func WithFileMode(mode os.FileMode) Option {
	return func(cfg *config) error {
		if !fileutil.ValidFileMode(mode) {
			return &reserrors.ConfigError{
				Option:  "file mode",
				Value:   "0" + strconv.FormatUint(uint64(mode), 8),
				Message: "must be a permission mode with owner read/write",
			}
		}
		cfg.fileMode = mode
		return nil
	}
}

// WithDirMode sets the permission mode of created output directories (default 0755).
func WithDirMode(mode os.FileMode) Option {
	return func(cfg *config) error {
		if !fileutil.ValidDirMode(mode) {
			return &reserrors.ConfigError{
				Option:  "dir mode",
				Value:   "0" + strconv.FormatUint(uint64(mode), 8),
				Message: "must be a permission mode with owner read/write/execute",
			}
		}
		cfg.dirMode = mode
		return nil
	}
}

// WithSnapshotName sets the file name of the snapshot inside the blob folder.
func WithSnapshotName(name string) Option {
	return func(cfg *config) error {
		if err := validateFileName("snapshot name", name); err != nil {
			return err
		}
		cfg.snapshotName = name
		return nil
	}
}

// WithValuesFileName sets the file name of the merged value document
// written in every values bucket.
func WithValuesFileName(name string) Option {
	return func(cfg *config) error {
		if err := validateFileName("values file name", name); err != nil {
			return err
		}
		if !strings.EqualFold(filepath.Ext(name), ".xml") {
			return &reserrors.ConfigError{Option: "values file name", Value: name, Message: "must have an .xml extension"}
		}
		cfg.valuesFileName = name
		return nil
	}
}

// WithParallelLoad bounds the number of sets LoadAll reads concurrently.
// 1 loads sets one after another.
func WithParallelLoad(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return &reserrors.ConfigError{Option: "parallel load", Value: strconv.Itoa(n), Message: "must be at least 1"}
		}
		cfg.parallelLoad = n
		return nil
	}
}

func validateFileName(option, name string) error {
	switch {
	case name == "":
		return &reserrors.ConfigError{Option: option, Message: "must not be empty"}
	case name != filepath.Base(name), strings.ContainsAny(name, `/\`), name == ".", name == "..":
		return &reserrors.ConfigError{Option: option, Value: name, Message: "must be a plain file name"}
	}
	return nil
}
