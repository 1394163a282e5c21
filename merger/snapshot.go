package merger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/resmerge/internal/fileutil"
	"github.com/erraggy/resmerge/internal/pathutil"
	"github.com/erraggy/resmerge/reserrors"
	"github.com/erraggy/resmerge/resource"
)

// snapshotVersion is bumped whenever the snapshot layout changes in a way
// older readers cannot handle.
const snapshotVersion = 1

// snapshot is the document stored in the blob folder.
type snapshot struct {
	Version int                    `yaml:"version"`
	Sets    []resource.SetSnapshot `yaml:"sets"`
}

// SnapshotPath returns the path of the snapshot file inside dir.
func (m *Merger) SnapshotPath(dir string) string {
	return filepath.Join(dir, m.cfg.snapshotName)
}

// WriteBlobTo persists every set, its sources and every live resource under
// dir. The file is replaced atomically.
func (m *Merger) WriteBlobTo(dir string) error {
	dir, err := pathutil.SanitizeOutputPath(dir)
	if err != nil {
		return fmt.Errorf("merger: blob folder: %w", err)
	}
	if err := os.MkdirAll(dir, m.cfg.dirMode); err != nil {
		return &reserrors.IOError{Op: "create directory", Path: dir, Cause: err}
	}

	doc := snapshot{Version: snapshotVersion}
	for _, set := range m.sets {
		doc.Sets = append(doc.Sets, set.Snapshot())
	}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("merger: encoding snapshot: %w", err)
	}

	path := m.SnapshotPath(dir)
	tmp, err := os.CreateTemp(dir, "."+m.cfg.snapshotName+".*")
	if err != nil {
		return &reserrors.IOError{Op: "create", Path: path, Cause: err}
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &reserrors.IOError{Op: "write", Path: path, Cause: err}
	}
	if err := tmp.Chmod(fileutil.OwnerReadWrite); err != nil {
		_ = tmp.Close()
		return &reserrors.IOError{Op: "chmod", Path: path, Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &reserrors.IOError{Op: "write", Path: path, Cause: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &reserrors.IOError{Op: "rename", Path: path, Cause: err}
	}
	m.cfg.logger.Debug("wrote snapshot", "path", path, "sets", len(doc.Sets))
	return nil
}

// LoadFromBlob replaces the merger's sets with those stored under dir. The
// winner of every key is marked written: it is what the export that
// accompanied the snapshot left in the output tree. A missing snapshot is
// reported as an IOError wrapping fs.ErrNotExist.
func (m *Merger) LoadFromBlob(dir string) error {
	path := m.SnapshotPath(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		return &reserrors.IOError{Op: "read", Path: path, Cause: err}
	}

	var doc snapshot
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return &reserrors.ParseError{Path: path, Message: "malformed snapshot", Cause: err}
	}
	if doc.Version != snapshotVersion {
		return &reserrors.SnapshotIncompatibleError{
			Reason: fmt.Sprintf("snapshot version %d, expected %d", doc.Version, snapshotVersion),
		}
	}

	sets := make([]*resource.Set, 0, len(doc.Sets))
	for _, s := range doc.Sets {
		set, err := resource.RestoreSet(s, resource.WithLogger(m.cfg.logger))
		if err != nil {
			return &reserrors.ParseError{Path: path, Message: "invalid snapshot entry", Cause: err}
		}
		sets = append(sets, set)
	}
	m.sets = sets

	merged := m.ResourceMap()
	for _, key := range merged.Keys() {
		if w := merged.Winner(key); w != nil {
			w.ResetStatusToWritten()
		}
	}
	m.cfg.logger.Debug("loaded snapshot", "path", path, "sets", len(sets), "keys", merged.Len())
	return nil
}
