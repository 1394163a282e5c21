package commands

import (
	"flag"
	"runtime"

	"github.com/erraggy/resmerge/internal/pipeline"
	"github.com/erraggy/resmerge/merger"
	"github.com/erraggy/resmerge/resource"
)

// TargetFlags are the flags shared by every command that merges: which
// sets to read and where the output and the snapshot go.
type TargetFlags struct {
	Config         string
	Sets           setFlag
	Output         string
	Blob           string
	ValuesFileName string
	Parallel       int
	Verbose        bool
}

func (t *TargetFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&t.Config, "config", "", "project file listing sets, output and blob folders")
	fs.Var(&t.Sets, "set", "resource set as name=root[,root...]; repeat from lowest to highest priority")
	fs.StringVar(&t.Output, "o", "", "output folder")
	fs.StringVar(&t.Output, "out", "", "output folder")
	fs.StringVar(&t.Blob, "blob", "", "folder holding the merge snapshot")
	fs.StringVar(&t.ValuesFileName, "values-file-name", "", "file name of merged value documents (default "+merger.DefaultValuesFileName+")")
	fs.IntVar(&t.Parallel, "parallel", runtime.GOMAXPROCS(0), "number of sets loaded concurrently")
	fs.BoolVar(&t.Verbose, "v", false, "verbose logging")
	fs.BoolVar(&t.Verbose, "verbose", false, "verbose logging")
}

// resolve merges the project file under the flags; flags win.
func (t *TargetFlags) resolve() error {
	if t.Config == "" {
		return nil
	}
	project, err := LoadProjectConfig(t.Config)
	if err != nil {
		return err
	}
	if len(t.Sets) == 0 {
		t.Sets = project.Sets
	}
	if t.Output == "" {
		t.Output = project.Output
	}
	if t.Blob == "" {
		t.Blob = project.Blob
	}
	if t.ValuesFileName == "" {
		t.ValuesFileName = project.ValuesFileName
	}
	return nil
}

func (t *TargetFlags) request(logger resource.Logger) pipeline.Request {
	opts := []merger.Option{merger.WithParallelLoad(t.Parallel)}
	if t.ValuesFileName != "" {
		opts = append(opts, merger.WithValuesFileName(t.ValuesFileName))
	}
	return pipeline.Request{
		Sets:       t.Sets,
		OutputRoot: t.Output,
		BlobDir:    t.Blob,
		Logger:     logger,
		Options:    opts,
	}
}

// roots returns every source root of every set.
func (t *TargetFlags) roots() []string {
	var roots []string
	for _, spec := range t.Sets {
		roots = append(roots, spec.Roots...)
	}
	return roots
}
