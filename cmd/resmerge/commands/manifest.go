package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/erraggy/resmerge/internal/cliutil"
	"github.com/erraggy/resmerge/manifest"
)

// ManifestFlags contains flags for the manifest command
type ManifestFlags struct {
	Output          string
	PackageName     string
	TestPackageName string
	TestRunner      string
}

// SetupManifestFlags creates and configures a FlagSet for the manifest command.
// Returns the FlagSet and a ManifestFlags struct with bound flag variables.
func SetupManifestFlags() (*flag.FlagSet, *ManifestFlags) {
	fs := flag.NewFlagSet("manifest", flag.ContinueOnError)
	flags := &ManifestFlags{}

	fs.StringVar(&flags.Output, "o", "", "output file path (default: stdout)")
	fs.StringVar(&flags.Output, "output", "", "output file path (default: stdout)")
	fs.StringVar(&flags.PackageName, "package", "", "package under test")
	fs.StringVar(&flags.TestPackageName, "test-package", "", "package of the test application (default: <package>.test)")
	fs.StringVar(&flags.TestRunner, "runner", manifest.DefaultTestRunner, "instrumentation runner class")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: resmerge manifest [flags]\n\n")
		cliutil.Writef(fs.Output(), "Generate the instrumentation test manifest for a package.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  resmerge manifest --package com.example.app -o build/test/AndroidManifest.xml\n")
	}

	return fs, flags
}

// HandleManifest executes the manifest command
func HandleManifest(args []string) error {
	return runManifest(args, os.Stdout, os.Stderr)
}

func runManifest(args []string, stdout, stderr io.Writer) error {
	fs, flags := SetupManifestFlags()
	fs.SetOutput(stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if flags.PackageName == "" {
		fs.Usage()
		return fmt.Errorf("manifest command requires --package")
	}
	if flags.TestPackageName == "" {
		flags.TestPackageName = flags.PackageName + ".test"
	}

	gen := &manifest.Generator{
		OutputFile:      flags.Output,
		PackageName:     flags.PackageName,
		TestPackageName: flags.TestPackageName,
		TestRunnerName:  flags.TestRunner,
	}
	if flags.Output == "" {
		return gen.Render(stdout)
	}
	if err := gen.Generate(); err != nil {
		return err
	}
	cliutil.Writef(stderr, "Wrote %s\n", flags.Output)
	return nil
}
