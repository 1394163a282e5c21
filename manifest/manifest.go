// Package manifest generates the manifest of an instrumentation test
// package from an embedded template.
package manifest

import (
	"bytes"
	"embed"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/erraggy/resmerge/internal/fileutil"
	"github.com/erraggy/resmerge/internal/pathutil"
	"github.com/erraggy/resmerge/reserrors"
)

// DefaultTestRunner is used when Generator.TestRunnerName is empty.
const DefaultTestRunner = "android.test.InstrumentationTestRunner"

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").
	Funcs(template.FuncMap{"xml": escapeXML}).
	ParseFS(templateFS, "templates/*.tmpl"))

var packageName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Generator renders a test manifest for one tested package.
type Generator struct {
	// OutputFile is where Generate writes the manifest
	OutputFile string
	// PackageName is the package under test
	PackageName string
	// TestPackageName is the package of the test application
	TestPackageName string
	// TestRunnerName is the instrumentation class; DefaultTestRunner if empty
	TestRunnerName string
}

// Generate writes the manifest to OutputFile, creating parent directories.
func (g *Generator) Generate() error {
	if g.OutputFile == "" {
		return &reserrors.ConfigError{Option: "output file", Message: "must not be empty"}
	}
	path, err := pathutil.SanitizeOutputPath(g.OutputFile)
	if err != nil {
		return &reserrors.ConfigError{Option: "output file", Value: g.OutputFile, Cause: err}
	}

	var buf bytes.Buffer
	if err := g.Render(&buf); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), fileutil.DirReadableByAll); err != nil {
		return &reserrors.IOError{Op: "create directory", Path: filepath.Dir(path), Cause: err}
	}
	if err := os.WriteFile(path, buf.Bytes(), fileutil.ReadableByAll); err != nil {
		return &reserrors.IOError{Op: "write", Path: path, Cause: err}
	}
	return nil
}

// Render writes the manifest to w.
func (g *Generator) Render(w io.Writer) error {
	data := *g
	if data.TestRunnerName == "" {
		data.TestRunnerName = DefaultTestRunner
	}
	for _, f := range []struct{ option, value string }{
		{"package name", data.PackageName},
		{"test package name", data.TestPackageName},
		{"test runner name", data.TestRunnerName},
	} {
		if !packageName.MatchString(f.value) {
			return &reserrors.ConfigError{Option: f.option, Value: f.value, Message: "must be a dotted Java identifier"}
		}
	}
	if err := templates.ExecuteTemplate(w, "test_manifest.xml.tmpl", data); err != nil {
		return fmt.Errorf("manifest: rendering template: %w", err)
	}
	return nil
}

func escapeXML(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
