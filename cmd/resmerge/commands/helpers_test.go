package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/erraggy/resmerge/internal/testutil"
)

// tree is a two-set source layout with output and blob folders.
type tree struct {
	main, overlay, out, blob string
}

func newTree(t *testing.T) *tree {
	t.Helper()

	dir := t.TempDir()
	tr := &tree{
		main:    filepath.Join(dir, "main"),
		overlay: filepath.Join(dir, "overlay"),
		out:     filepath.Join(dir, "out"),
		blob:    filepath.Join(dir, "blob"),
	}
	testutil.WriteTree(t, tr.main, map[string]string{
		"drawable/icon.png": "main icon",
		"values/strings.xml": testutil.Values(
			`<string name="app_name">Main</string>`,
			`<string name="title">Title</string>`,
		),
	})
	testutil.WriteTree(t, tr.overlay, map[string]string{
		"values-fr/strings.xml": testutil.Values(`<string name="title">Titre</string>`),
	})
	return tr
}

func (tr *tree) args(extra ...string) []string {
	return append([]string{
		"--set", "main=" + tr.main,
		"--set", "overlay=" + tr.overlay,
		"-o", tr.out,
		"--blob", tr.blob,
	}, extra...)
}

// run invokes a command runner with captured output.
func run(fn func(args []string, stdout, stderr *bytes.Buffer) error, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	err := fn(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func merge(args []string, stdout, stderr *bytes.Buffer) error {
	return runMerge(args, stdout, stderr)
}

func inspect(args []string, stdout, stderr *bytes.Buffer) error {
	return runInspect(args, stdout, stderr)
}

func genManifest(args []string, stdout, stderr *bytes.Buffer) error {
	return runManifest(args, stdout, stderr)
}
