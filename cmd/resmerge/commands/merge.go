package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/erraggy/resmerge/internal/cliutil"
	"github.com/erraggy/resmerge/internal/pipeline"
)

// MergeFlags contains flags for the merge command
type MergeFlags struct {
	TargetFlags
	Full    bool
	NoClean bool
	Format  string
}

// SetupMergeFlags creates and configures a FlagSet for the merge command.
// Returns the FlagSet and a MergeFlags struct with bound flag variables.
func SetupMergeFlags() (*flag.FlagSet, *MergeFlags) {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	flags := &MergeFlags{}

	flags.register(fs)
	fs.BoolVar(&flags.Full, "full", false, "ignore the snapshot and merge every set from scratch")
	fs.BoolVar(&flags.NoClean, "no-clean", false, "keep existing files in the output folder on a full merge")
	fs.StringVar(&flags.Format, "format", FormatText, "result format: text, json, or yaml")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: resmerge merge [flags]\n\n")
		cliutil.Writef(fs.Output(), "Merge resource sets into an output folder. With --blob the merge state is\n")
		cliutil.Writef(fs.Output(), "saved, and the next run only rewrites outputs whose winner changed.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  resmerge merge --set main=src/main/res --set debug=src/debug/res -o build/res\n")
		cliutil.Writef(fs.Output(), "  resmerge merge --config resmerge.yaml --format json\n")
		cliutil.Writef(fs.Output(), "  resmerge merge --config resmerge.yaml --full\n")
		cliutil.Writef(fs.Output(), "\nLater sets override earlier ones. Resources are laid out as\n")
		cliutil.Writef(fs.Output(), "<root>/<folder>[-<qualifiers>]/<file>.\n")
	}

	return fs, flags
}

// HandleMerge executes the merge command
func HandleMerge(args []string) error {
	return runMerge(args, os.Stdout, os.Stderr)
}

func runMerge(args []string, stdout, stderr io.Writer) error {
	fs, flags := SetupMergeFlags()
	fs.SetOutput(stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("merge command takes no positional arguments, got %d", fs.NArg())
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}
	if err := flags.resolve(); err != nil {
		return err
	}

	req := flags.request(NewLogger(stderr, flags.Verbose))
	req.Incremental = !flags.Full && req.BlobDir != ""
	req.Clean = !flags.NoClean

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := pipeline.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("merging resources: %w", err)
	}
	return writeResult(stdout, res, flags.Format)
}
