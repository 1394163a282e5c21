package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erraggy/resmerge/internal/cliutil"
	"github.com/erraggy/resmerge/internal/pipeline"
	"github.com/erraggy/resmerge/reserrors"
	"github.com/erraggy/resmerge/resource"
	"github.com/erraggy/resmerge/watch"
)

// WatchFlags contains flags for the watch command
type WatchFlags struct {
	TargetFlags
	Quiet time.Duration
}

// SetupWatchFlags creates and configures a FlagSet for the watch command.
// Returns the FlagSet and a WatchFlags struct with bound flag variables.
func SetupWatchFlags() (*flag.FlagSet, *WatchFlags) {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	flags := &WatchFlags{}

	flags.register(fs)
	fs.DurationVar(&flags.Quiet, "quiet-period", watch.DefaultQuietPeriod, "wait this long after the last change before merging")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: resmerge watch [flags]\n\n")
		cliutil.Writef(fs.Output(), "Merge once, then keep the output folder up to date as source files change.\n")
		cliutil.Writef(fs.Output(), "Stops on interrupt.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  resmerge watch --config resmerge.yaml\n")
		cliutil.Writef(fs.Output(), "  resmerge watch --set main=res -o build/res --quiet-period 1s\n")
	}

	return fs, flags
}

// HandleWatch executes the watch command
func HandleWatch(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runWatch(ctx, args, os.Stdout, os.Stderr)
}

func runWatch(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, flags := SetupWatchFlags()
	fs.SetOutput(stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := flags.resolve(); err != nil {
		return err
	}

	logger := NewLogger(stderr, flags.Verbose)
	req := flags.request(logger)
	req.Incremental = req.BlobDir != ""
	req.Clean = true

	session, first, err := pipeline.Open(ctx, req)
	if err != nil {
		return fmt.Errorf("initial merge: %w", err)
	}
	if err := writeResult(stdout, first, FormatText); err != nil {
		return err
	}

	w, err := watch.New(flags.roots(), watch.WithQuietPeriod(flags.Quiet), watch.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	cliutil.Writef(stderr, "Watching %d source root(s). Press Ctrl+C to stop.\n", len(w.Roots()))
	return w.Run(ctx, func(ctx context.Context, events []resource.ChangeEvent) error {
		res, err := session.Apply(ctx, events)
		if err != nil {
			if !sourceError(err) {
				return fmt.Errorf("applying %d change(s): %w", len(events), err)
			}
			logger.Warn("change batch skipped", "changes", len(events), "error", err)
			cliutil.Writef(stderr, "%s: skipped %d change(s): %v\n", time.Now().Format(time.TimeOnly), len(events), err)
			return nil
		}
		for _, r := range res.Rejected {
			cliutil.Writef(stderr, "%s: skipped %s: %s\n", time.Now().Format(time.TimeOnly), r.Event.Path, r.Error)
		}
		cliutil.Writef(stdout, "%s: %d change(s), %d written, %d deleted\n",
			time.Now().Format(time.TimeOnly), len(events), len(res.Written), len(res.Deleted))
		return nil
	})
}

// sourceError reports whether err comes from the content of a source file,
// which a later edit can fix, rather than from the filesystem or the merger.
func sourceError(err error) bool {
	return errors.Is(err, reserrors.ErrParse) || errors.Is(err, reserrors.ErrDuplicateResource)
}
