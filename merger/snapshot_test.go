package merger

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/resmerge/internal/testutil"
	"github.com/erraggy/resmerge/reserrors"
	"github.com/erraggy/resmerge/resource"
)

func TestBlobRoundTrip(t *testing.T) {
	p := basicProject(t)
	p.write("overlay", map[string]string{
		"values-fr/strings.xml": `<resources xmlns:xliff="urn:oasis:names:tc:xliff:document:1.2">` +
			`<string name="hello">Salut <xliff:g id="n">%s</xliff:g></string></resources>`,
	})
	m := p.load("main", "overlay")
	p.export(m)
	require.NoError(t, m.WriteBlobTo(p.blob))

	info, err := os.Stat(filepath.Join(p.blob, DefaultSnapshotName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := New()
	require.NoError(t, err)
	require.NoError(t, loaded.LoadFromBlob(p.blob))

	require.Len(t, loaded.ResourceSets(), 2)
	assert.Equal(t, "main", loaded.ResourceSets()[0].Name())
	assert.Equal(t, []string{p.root("overlay")}, loaded.ResourceSets()[1].SourceFiles())
	assert.Equal(t, m.ResourceMap().Keys(), loaded.ResourceMap().Keys())

	for _, key := range m.ResourceMap().Keys() {
		want := historyOf(m, key)
		got := historyOf(loaded, key)
		require.Len(t, got, len(want), key)
		for i := range want {
			assert.Equal(t, want[i].Source().Path(), got[i].Source().Path(), key)
			assert.Equal(t, want[i].IsFile(), got[i].IsFile(), key)
			assert.True(t, want[i].Value().Equal(got[i].Value()), key)
		}
		// only the winner is known to be on disk
		winner := loaded.ResourceMap().Winner(key)
		for _, r := range got {
			assert.Equal(t, r == winner, r.IsWritten(), key)
		}
	}

	// nothing to do for an unchanged tree
	report := p.export(loaded)
	assert.False(t, report.Changed())
}

// Forcing a rewrite of every value document from a restored snapshot
// reproduces the previous output byte for byte.
func TestBlobReproducesValueDocuments(t *testing.T) {
	p := basicProject(t)
	m := p.load("main", "overlay")
	p.export(m)
	before := p.outTree()
	require.NoError(t, m.WriteBlobTo(p.blob))

	loaded, err := New()
	require.NoError(t, err)
	require.NoError(t, loaded.LoadFromBlob(p.blob))
	require.NoError(t, os.RemoveAll(p.out))

	require.NoError(t, loaded.ApplyChanges([]resource.ChangeEvent{
		changed(p, "main", "drawable/icon.png"),
		changed(p, "main", "drawable-ldpi/icon.png"),
		changed(p, "overlay", "drawable/icon.png"),
	}))
	for _, key := range loaded.ResourceMap().Keys() {
		if w := loaded.ResourceMap().Winner(key); w != nil && !w.IsFile() {
			w.ResetStatus()
		}
	}

	p.export(loaded)
	assert.Equal(t, before, p.outTree())
}

// An incremental update from a snapshot produces the same output as a full
// merge of the updated sources.
func TestIncrementalMatchesFullMerge(t *testing.T) {
	p := basicProject(t)
	m := p.load("main", "overlay")
	p.export(m)
	require.NoError(t, m.WriteBlobTo(p.blob))

	testutil.RemoveFile(t, p.path("overlay", "drawable/icon.png"))
	testutil.WriteFile(t, p.path("overlay", "drawable-hdpi/icon.png"), "hdpi icon")
	testutil.RewriteFile(t, p.path("main", "values/values.xml"), testutil.Values(
		`<string name="app_name">Main</string>`,
		`<color name="primary">#00ff00</color>`,
	))
	testutil.RemoveFile(t, p.path("main", "values-en/strings.xml"))

	incremental, err := New()
	require.NoError(t, err)
	require.NoError(t, incremental.LoadFromBlob(p.blob))
	require.True(t, incremental.CheckValidUpdate(p.sets("main", "overlay")))
	events, err := incremental.DetectChanges()
	require.NoError(t, err)
	require.Len(t, events, 4)
	require.NoError(t, incremental.ApplyChanges(events))
	require.NoError(t, incremental.ValidateResourceSets())
	report := p.export(incremental)
	assert.ElementsMatch(t, []string{p.outPath("values-en/values.xml")}, report.Deleted)

	full := p.load("main", "overlay")
	fullOut := filepath.Join(p.dir, "full")
	_, err = full.WriteResourceFolder(fullOut)
	require.NoError(t, err)

	assert.Equal(t, testutil.ReadTree(t, fullOut), p.outTree())
}

func TestLoadFromBlobErrors(t *testing.T) {
	t.Run("missing snapshot", func(t *testing.T) {
		m, err := New()
		require.NoError(t, err)
		err = m.LoadFromBlob(t.TempDir())
		require.Error(t, err)
		assert.True(t, errors.Is(err, fs.ErrNotExist))
		assert.True(t, errors.Is(err, reserrors.ErrIO))
	})

	t.Run("unknown version", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteFile(t, filepath.Join(dir, DefaultSnapshotName), "version: 99\nsets: []\n")
		m, err := New()
		require.NoError(t, err)
		err = m.LoadFromBlob(dir)
		assert.True(t, errors.Is(err, reserrors.ErrSnapshotIncompatible))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteFile(t, filepath.Join(dir, DefaultSnapshotName), "version: [\n")
		m, err := New()
		require.NoError(t, err)
		err = m.LoadFromBlob(dir)
		assert.True(t, errors.Is(err, reserrors.ErrParse))
	})

	t.Run("invalid entry", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteFile(t, filepath.Join(dir, DefaultSnapshotName),
			"version: 1\nsets:\n  - name: main\n    sources: [/r]\n    files:\n      - {root: /r, path: /r/bogus/a, folder: bogus, kind: file}\n")
		m, err := New()
		require.NoError(t, err)
		err = m.LoadFromBlob(dir)
		assert.True(t, errors.Is(err, reserrors.ErrParse))
	})
}

func TestWriteBlobToCustomName(t *testing.T) {
	p := basicProject(t)
	m, err := New(WithSnapshotName("state.yaml"))
	require.NoError(t, err)
	for _, set := range p.sets("main") {
		m.AddResourceSet(set)
	}
	require.NoError(t, m.WriteBlobTo(p.blob))

	tree := testutil.ReadTree(t, p.blob)
	assert.Len(t, tree, 1)
	assert.Contains(t, tree["state.yaml"], "name: main")
}
