package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/resmerge/internal/cliutil"
	"github.com/erraggy/resmerge/internal/options"
	"github.com/erraggy/resmerge/internal/pipeline"
	"github.com/erraggy/resmerge/reserrors"
	"github.com/erraggy/resmerge/resource"
)

// UpdateFlags contains flags for the update command
type UpdateFlags struct {
	TargetFlags
	Events string
	Stdin  bool
	Format string
}

// SetupUpdateFlags creates and configures a FlagSet for the update command.
// Returns the FlagSet and an UpdateFlags struct with bound flag variables.
func SetupUpdateFlags() (*flag.FlagSet, *UpdateFlags) {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	flags := &UpdateFlags{}

	flags.register(fs)
	fs.StringVar(&flags.Events, "events", "", "YAML or JSON file listing change events")
	fs.BoolVar(&flags.Stdin, "stdin", false, "read change events from stdin")
	fs.StringVar(&flags.Format, "format", FormatText, "result format: text, json, or yaml")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: resmerge update [flags] (--events <file> | --stdin)\n\n")
		cliutil.Writef(fs.Output(), "Apply file change events on top of a previous merge and update the\n")
		cliutil.Writef(fs.Output(), "output folder with the minimal set of writes and deletions.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nEvent file format:\n")
		cliutil.Writef(fs.Output(), "  - root: src/main/res\n")
		cliutil.Writef(fs.Output(), "    path: src/main/res/values/strings.xml\n")
		cliutil.Writef(fs.Output(), "    status: CHANGED    # NEW, CHANGED or REMOVED\n")
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  resmerge update --config resmerge.yaml --events changes.yaml\n")
		cliutil.Writef(fs.Output(), "  build-driver changes | resmerge update --config resmerge.yaml --stdin\n")
	}

	return fs, flags
}

// HandleUpdate executes the update command
func HandleUpdate(args []string) error {
	return runUpdate(args, os.Stdin, os.Stdout, os.Stderr)
}

func runUpdate(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs, flags := SetupUpdateFlags()
	fs.SetOutput(stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := options.ValidateSingleInputSource("events",
		"update command requires --events or --stdin",
		"use either --events or --stdin, not both",
		flags.Events != "", flags.Stdin,
	); err != nil {
		fs.Usage()
		return err
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}
	if err := flags.resolve(); err != nil {
		return err
	}

	source := flags.Events
	var data []byte
	var err error
	if flags.Stdin {
		source = StdinFilePath
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(flags.Events)
	}
	if err != nil {
		return &reserrors.IOError{Op: "read", Path: FormatEventsPath(source), Cause: err}
	}
	events, err := ParseEvents(FormatEventsPath(source), data)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := pipeline.Update(ctx, flags.request(NewLogger(stderr, flags.Verbose)), events)
	if err != nil {
		return fmt.Errorf("updating resources: %w", err)
	}
	return writeResult(stdout, res, flags.Format)
}

// eventRecord is one entry of an events file.
type eventRecord struct {
	Root   string `yaml:"root"`
	Path   string `yaml:"path"`
	Status string `yaml:"status"`
}

// ParseEvents decodes a YAML or JSON list of change events.
func ParseEvents(source string, data []byte) ([]resource.ChangeEvent, error) {
	var records []eventRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, &reserrors.ParseError{Path: source, Message: "invalid change events", Cause: err}
	}
	events := make([]resource.ChangeEvent, 0, len(records))
	for i, r := range records {
		if r.Root == "" || r.Path == "" {
			return nil, &reserrors.ParseError{Path: source, Message: fmt.Sprintf("event %d needs both root and path", i)}
		}
		status, err := resource.ParseFileStatus(r.Status)
		if err != nil {
			return nil, &reserrors.ParseError{Path: source, Message: fmt.Sprintf("event %d", i), Cause: err}
		}
		events = append(events, resource.ChangeEvent{Root: r.Root, Path: r.Path, Status: status})
	}
	return events, nil
}

// FormatEventsPath returns a display-friendly name for the events source.
// Returns "<stdin>" if the path is StdinFilePath, otherwise returns the path as-is.
func FormatEventsPath(path string) string {
	if path == StdinFilePath {
		return "<stdin>"
	}
	return path
}
