package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/erraggy/resmerge/internal/cliutil"
	"github.com/erraggy/resmerge/internal/pipeline"
	"github.com/erraggy/resmerge/merger"
)

// InspectFlags contains flags for the inspect command
type InspectFlags struct {
	Config string
	Blob   string
	Key    string
	Type   string
	Set    string
	Format string
}

// SetupInspectFlags creates and configures a FlagSet for the inspect command.
// Returns the FlagSet and an InspectFlags struct with bound flag variables.
func SetupInspectFlags() (*flag.FlagSet, *InspectFlags) {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	flags := &InspectFlags{}

	fs.StringVar(&flags.Config, "config", "", "project file naming the blob folder")
	fs.StringVar(&flags.Blob, "blob", "", "folder holding the merge snapshot")
	fs.StringVar(&flags.Key, "key", "", "glob on the canonical key, e.g. 'string/*'")
	fs.StringVar(&flags.Type, "type", "", "only keys of this resource type")
	fs.StringVar(&flags.Set, "set", "", "only keys whose winner comes from this set")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: resmerge inspect [flags]\n\n")
		cliutil.Writef(fs.Output(), "List the winning resource of every key stored in a merge snapshot.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  resmerge inspect --blob build/merger\n")
		cliutil.Writef(fs.Output(), "  resmerge inspect --config resmerge.yaml --type string --format json\n")
	}

	return fs, flags
}

// HandleInspect executes the inspect command
func HandleInspect(args []string) error {
	return runInspect(args, os.Stdout, os.Stderr)
}

func runInspect(args []string, stdout, stderr io.Writer) error {
	fs, flags := SetupInspectFlags()
	fs.SetOutput(stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	var opts []merger.Option
	if flags.Config != "" {
		project, err := LoadProjectConfig(flags.Config)
		if err != nil {
			return err
		}
		if flags.Blob == "" {
			flags.Blob = project.Blob
		}
		if project.ValuesFileName != "" {
			opts = append(opts, merger.WithValuesFileName(project.ValuesFileName))
		}
	}
	if flags.Blob == "" {
		fs.Usage()
		return fmt.Errorf("inspect command requires --blob or a --config naming one")
	}

	entries, err := pipeline.Inspect(flags.Blob, pipeline.Filter{Key: flags.Key, Type: flags.Type, Set: flags.Set}, opts...)
	if err != nil {
		return fmt.Errorf("inspecting snapshot: %w", err)
	}

	if flags.Format != FormatText {
		if entries == nil {
			entries = []pipeline.Entry{}
		}
		return OutputStructured(stdout, entries, flags.Format)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	cliutil.Writef(tw, "KEY\tKIND\tSET\tSHADOWED\tSOURCE\n")
	for _, e := range entries {
		cliutil.Writef(tw, "%s\t%s\t%s\t%d\t%s\n", e.Key, e.Kind, e.Set, e.Shadowed, e.Source)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	cliutil.Writef(stdout, "\n%d resource(s)\n", len(entries))
	return nil
}
