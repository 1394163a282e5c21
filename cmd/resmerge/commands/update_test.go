package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/resmerge/internal/testutil"
	"github.com/erraggy/resmerge/reserrors"
	"github.com/erraggy/resmerge/resource"
)

func TestParseEvents(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		events, err := ParseEvents("changes.yaml", []byte(
			"- root: /res\n  path: /res/values/strings.xml\n  status: changed\n"+
				"- root: /res\n  path: /res/drawable/icon.png\n  status: REMOVED\n"))
		require.NoError(t, err)
		assert.Equal(t, []resource.ChangeEvent{
			{Root: "/res", Path: "/res/values/strings.xml", Status: resource.StatusChanged},
			{Root: "/res", Path: "/res/drawable/icon.png", Status: resource.StatusRemoved},
		}, events)
	})

	t.Run("json", func(t *testing.T) {
		events, err := ParseEvents("changes.json", []byte(`[{"root":"/res","path":"/res/layout/main.xml","status":"NEW"}]`))
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, resource.StatusNew, events[0].Status)
	})

	tests := []struct {
		name string
		data string
	}{
		{"not a list", "root: /res"},
		{"missing path", "- root: /res\n  status: NEW\n"},
		{"missing status", "- root: /res\n  path: /res/a.xml\n"},
		{"unknown status", "- root: /res\n  path: /res/a.xml\n  status: MOVED\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEvents("changes.yaml", []byte(tt.data))
			assert.ErrorIs(t, err, reserrors.ErrParse)
		})
	}
}

func TestFormatEventsPath(t *testing.T) {
	assert.Equal(t, "<stdin>", FormatEventsPath(StdinFilePath))
	assert.Equal(t, "changes.yaml", FormatEventsPath("changes.yaml"))
}

func TestHandleUpdate(t *testing.T) {
	tr := newTree(t)
	_, _, err := run(merge, tr.args()...)
	require.NoError(t, err)

	frValues := filepath.Join(tr.overlay, "values-fr", "strings.xml")
	testutil.RemoveFile(t, frValues)
	events := "- root: " + tr.overlay + "\n  path: " + frValues + "\n  status: REMOVED\n"

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "changes.yaml")
		testutil.WriteFile(t, path, events)

		var stdout, stderr bytes.Buffer
		err := runUpdate(tr.args("--events", path), strings.NewReader(""), &stdout, &stderr)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Merge mode: incremental")
		assert.Contains(t, stdout.String(), "Deleted: 1")
		assert.NotContains(t, testutil.ReadTree(t, tr.out), "values-fr/values.xml")
	})

	t.Run("from stdin replays cleanly", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		err := runUpdate(tr.args("--stdin"), strings.NewReader("[]"), &stdout, &stderr)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Written: 0")
		assert.Contains(t, stdout.String(), "Deleted: 0")
	})
}

func TestHandleUpdateErrors(t *testing.T) {
	tr := newTree(t)

	tests := []struct {
		name  string
		args  []string
		stdin string
	}{
		{"no event source", tr.args(), ""},
		{"both event sources", tr.args("--stdin", "--events", "x.yaml"), ""},
		{"missing events file", tr.args("--events", filepath.Join(tr.out, "none.yaml")), ""},
		{"invalid events", tr.args("--stdin"), "{"},
		{"no snapshot", tr.args("--stdin"), "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := runUpdate(tt.args, strings.NewReader(tt.stdin), &stdout, &stderr)
			assert.Error(t, err)
		})
	}
}
