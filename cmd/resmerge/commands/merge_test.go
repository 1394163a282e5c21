package commands

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/resmerge/internal/pipeline"
	"github.com/erraggy/resmerge/internal/testutil"
)

func TestSetupMergeFlags(t *testing.T) {
	fs, flags := SetupMergeFlags()

	t.Run("default values", func(t *testing.T) {
		assert.Empty(t, flags.Sets)
		assert.Empty(t, flags.Output)
		assert.False(t, flags.Full)
		assert.False(t, flags.NoClean)
		assert.Equal(t, FormatText, flags.Format)
		assert.Positive(t, flags.Parallel)
	})

	t.Run("parse flags", func(t *testing.T) {
		args := []string{"--set", "main=a,b", "--set", "debug=c", "--out", "build", "--full", "--parallel", "2", "-v"}
		require.NoError(t, fs.Parse(args))

		assert.Equal(t, []pipeline.SetSpec{
			{Name: "main", Roots: []string{"a", "b"}},
			{Name: "debug", Roots: []string{"c"}},
		}, []pipeline.SetSpec(flags.Sets))
		assert.Equal(t, "build", flags.Output)
		assert.True(t, flags.Full)
		assert.Equal(t, 2, flags.Parallel)
		assert.True(t, flags.Verbose)
	})
}

func TestHandleMerge(t *testing.T) {
	tr := newTree(t)

	stdout, _, err := run(merge, tr.args()...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Merge mode: full")
	assert.Contains(t, stdout, "Resources: 4")

	assert.Equal(t, map[string]string{
		"drawable/icon.png": "main icon",
		"values/values.xml": `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
			"<resources>\n" +
			`    <string name="app_name">Main</string>` + "\n" +
			`    <string name="title">Title</string>` + "\n" +
			"</resources>\n",
		"values-fr/values.xml": `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
			"<resources>\n" +
			`    <string name="title">Titre</string>` + "\n" +
			"</resources>\n",
	}, testutil.ReadTree(t, tr.out))

	stdout, _, err = run(merge, tr.args("--format", "json")...)
	require.NoError(t, err)
	var res pipeline.Result
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.True(t, res.Incremental)
	assert.Empty(t, res.Written)

	stdout, _, err = run(merge, tr.args("--full")...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Merge mode: full")
	assert.Contains(t, stdout, "Written: 3")
}

func TestHandleMergeWithConfig(t *testing.T) {
	tr := newTree(t)
	path := testutil.WriteTempYAML(t, map[string]any{
		"sets": []map[string]any{
			{"name": "main", "roots": []string{tr.main}},
		},
		"output":           tr.out,
		"values_file_name": "merged.xml",
	})

	_, _, err := run(merge, "--config", path)
	require.NoError(t, err)

	out := testutil.ReadTree(t, tr.out)
	assert.Contains(t, out, "values/merged.xml")
	assert.NotContains(t, out, "values-fr/merged.xml")
}

func TestHandleMergeErrors(t *testing.T) {
	tr := newTree(t)

	tests := []struct {
		name string
		args []string
	}{
		{"positional argument", tr.args("extra")},
		{"bad format", tr.args("--format", "xml")},
		{"no sets", []string{"-o", tr.out}},
		{"bad set", []string{"--set", "main"}},
		{"missing config", []string{"--config", filepath.Join(tr.out, "none.yaml")}},
		{"bad values file name", tr.args("--values-file-name", "values.json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(merge, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestHandleMergeHelp(t *testing.T) {
	_, stderr, err := run(merge, "--help")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Usage: resmerge merge")
}
