package merger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erraggy/resmerge/internal/testutil"
	"github.com/erraggy/resmerge/resource"
)

// project is a temporary workspace holding source roots, an output tree
// and a blob folder.
type project struct {
	t    *testing.T
	dir  string
	out  string
	blob string
}

func newProject(t *testing.T) *project {
	t.Helper()

	dir := t.TempDir()
	return &project{
		t:    t,
		dir:  dir,
		out:  filepath.Join(dir, "out"),
		blob: filepath.Join(dir, "blob"),
	}
}

// root returns the absolute path of a named source root.
func (p *project) root(name string) string {
	return filepath.Join(p.dir, "src", name)
}

// path returns the absolute path of a file below a named source root.
func (p *project) path(root, rel string) string {
	return filepath.Join(p.root(root), filepath.FromSlash(rel))
}

func (p *project) write(root string, files map[string]string) {
	p.t.Helper()
	testutil.WriteTree(p.t, p.root(root), files)
}

// sets builds one set per name, each with a single root of the same name.
func (p *project) sets(names ...string) []*resource.Set {
	sets := make([]*resource.Set, len(names))
	for i, name := range names {
		sets[i] = resource.NewSet(name)
		sets[i].AddSource(p.root(name))
	}
	return sets
}

// load creates a merger over fresh sets and loads them.
func (p *project) load(names ...string) *Merger {
	p.t.Helper()

	m, err := New()
	require.NoError(p.t, err)
	for _, set := range p.sets(names...) {
		m.AddResourceSet(set)
	}
	require.NoError(p.t, m.LoadAll(context.Background()))
	require.NoError(p.t, m.ValidateResourceSets())
	return m
}

// export writes m to the project output tree.
func (p *project) export(m *Merger) *WriteReport {
	p.t.Helper()

	report, err := m.WriteResourceFolder(p.out)
	require.NoError(p.t, err)
	return report
}

// outPath returns the absolute path of an output file.
func (p *project) outPath(rel string) string {
	return filepath.Join(p.out, filepath.FromSlash(rel))
}

func (p *project) outTree() map[string]string {
	p.t.Helper()
	return testutil.ReadTree(p.t, p.out)
}

// historyOf returns the merged history for key.
func historyOf(m *Merger, key string) []*resource.Resource {
	return m.ResourceMap().Get(key)
}
