package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/resmerge/internal/pipeline"
	"github.com/erraggy/resmerge/reserrors"
)

// ProjectConfig is the optional project file passed with --config.
// Relative paths are resolved against the file's directory.
type ProjectConfig struct {
	Sets           []pipeline.SetSpec `yaml:"sets"`
	Output         string             `yaml:"output"`
	Blob           string             `yaml:"blob"`
	ValuesFileName string             `yaml:"values_file_name"`
}

// LoadProjectConfig reads and resolves a project file.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &reserrors.IOError{Op: "read", Path: path, Cause: err}
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &reserrors.ParseError{Path: path, Message: "invalid project file", Cause: err}
	}

	base := filepath.Dir(path)
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	for i := range cfg.Sets {
		if cfg.Sets[i].Name == "" {
			return nil, &reserrors.ParseError{Path: path, Message: fmt.Sprintf("sets[%d] has no name", i)}
		}
		for j, root := range cfg.Sets[i].Roots {
			cfg.Sets[i].Roots[j] = resolve(root)
		}
	}
	cfg.Output = resolve(cfg.Output)
	cfg.Blob = resolve(cfg.Blob)
	return &cfg, nil
}
