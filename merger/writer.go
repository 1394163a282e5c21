package merger

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/erraggy/resmerge/internal/pathutil"
	"github.com/erraggy/resmerge/reserrors"
	"github.com/erraggy/resmerge/resource"
)

// WriteReport lists the output files an export created, rewrote or deleted.
type WriteReport struct {
	Written []string `json:"written,omitempty" yaml:"written,omitempty"`
	Deleted []string `json:"deleted,omitempty" yaml:"deleted,omitempty"`
}

// Changed reports whether the export touched the output tree.
func (r *WriteReport) Changed() bool {
	return len(r.Written) > 0 || len(r.Deleted) > 0
}

// bucket collects the value winners sharing one qualifier set; they are
// written together as one document.
type bucket struct {
	folder  string
	entries []*resource.Resource
	dirty   bool
}

// exportPlan is what WriteResourceFolder decided to do, before touching disk.
type exportPlan struct {
	copies  []*resource.Resource
	keep    map[string]bool
	stale   []string
	buckets map[string]*bucket
}

// WriteResourceFolder exports the merged map under outputRoot, writing only
// what changed since the previous export:
//
//   - a file-based winner is copied when it is new, touched, or replaces a
//     different instance that was previously exported;
//   - value winners are grouped per qualifier set into
//     <values-folder>/<values file name>, and a group is rewritten when one
//     of its entries changed or a previously exported entry left it;
//   - previously exported outputs that no longer have a winner are deleted.
//
// Afterwards tombstones are purged, winners are marked written and every
// other instance is reset. An I/O failure aborts the export part way.
func (m *Merger) WriteResourceFolder(outputRoot string) (*WriteReport, error) {
	outputRoot, err := pathutil.SanitizeOutputPath(outputRoot)
	if err != nil {
		return nil, fmt.Errorf("merger: output folder: %w", err)
	}

	plan := m.planExport(outputRoot)
	report := &WriteReport{}

	for _, path := range plan.stale {
		if plan.keep[path] {
			continue
		}
		if err := m.deleteOutput(path, report); err != nil {
			return report, err
		}
	}
	for _, r := range plan.copies {
		if err := m.copyFile(r, m.fileOutputPath(outputRoot, r), report); err != nil {
			return report, err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(plan.buckets)) {
		b := plan.buckets[name]
		if !b.dirty {
			continue
		}
		path := filepath.Join(outputRoot, b.folder, m.cfg.valuesFileName)
		if len(b.entries) == 0 {
			if err := m.deleteOutput(path, report); err != nil {
				return report, err
			}
			continue
		}
		if err := m.writeBucket(path, b, report); err != nil {
			return report, err
		}
	}

	m.settle()
	slices.Sort(report.Written)
	slices.Sort(report.Deleted)
	m.cfg.logger.Info("exported resources", "output", outputRoot,
		"written", len(report.Written), "deleted", len(report.Deleted))
	return report, nil
}

func (m *Merger) planExport(outputRoot string) *exportPlan {
	plan := &exportPlan{
		keep:    make(map[string]bool),
		buckets: make(map[string]*bucket),
	}
	bucketFor := func(qualifiers string) *bucket {
		b, ok := plan.buckets[qualifiers]
		if !ok {
			folder := string(resource.FolderValues)
			if qualifiers != "" {
				folder += "-" + qualifiers
			}
			b = &bucket{folder: folder}
			plan.buckets[qualifiers] = b
		}
		return b
	}

	merged := m.ResourceMap()
	for _, key := range merged.Keys() {
		history := merged.Get(key)
		winner := resource.Winner(history)

		// instances other than the winner that the output tree still holds
		replaced := false
		for _, r := range history {
			if r == winner || !r.IsWritten() {
				continue
			}
			replaced = true
			if r.IsFile() {
				plan.stale = append(plan.stale, m.fileOutputPath(outputRoot, r))
			} else {
				bucketFor(r.Key().Qualifiers).dirty = true
			}
		}

		if winner == nil {
			continue
		}
		needsWrite := winner.NeedsWrite() || replaced
		if winner.IsFile() {
			plan.keep[m.fileOutputPath(outputRoot, winner)] = true
			if needsWrite {
				plan.copies = append(plan.copies, winner)
			}
			continue
		}
		b := bucketFor(winner.Key().Qualifiers)
		b.entries = append(b.entries, winner)
		if needsWrite {
			b.dirty = true
		}
	}
	return plan
}

// settle brings the in-memory flags in line with the output tree.
func (m *Merger) settle() {
	for _, set := range m.sets {
		set.Purge()
	}
	merged := m.ResourceMap()
	for _, key := range merged.Keys() {
		history := merged.Get(key)
		winner := resource.Winner(history)
		for _, r := range history {
			if r == winner {
				r.ResetStatusToWritten()
			} else {
				r.ResetStatus()
			}
		}
	}
}

// fileOutputPath maps a file-based resource to <output>/<folder>/<file name>.
func (m *Merger) fileOutputPath(outputRoot string, r *resource.Resource) string {
	src := r.Source()
	return filepath.Join(outputRoot, src.Folder().Name(), filepath.Base(src.Path()))
}

func (m *Merger) copyFile(r *resource.Resource, dst string, report *WriteReport) error {
	src := r.Source().Path()
	in, err := os.Open(src)
	if err != nil {
		return &reserrors.IOError{Op: "copy", Path: src, Cause: err}
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), m.cfg.dirMode); err != nil {
		return &reserrors.IOError{Op: "create directory", Path: filepath.Dir(dst), Cause: err}
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, m.cfg.fileMode)
	if err != nil {
		return &reserrors.IOError{Op: "copy", Path: dst, Cause: err}
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return &reserrors.IOError{Op: "copy", Path: dst, Cause: err}
	}
	if err := out.Close(); err != nil {
		return &reserrors.IOError{Op: "copy", Path: dst, Cause: err}
	}
	report.Written = append(report.Written, dst)
	m.cfg.logger.Debug("copied resource", "key", r.Key().String(), "from", src, "to", dst)
	return nil
}

func (m *Merger) writeBucket(path string, b *bucket, report *WriteReport) error {
	slices.SortFunc(b.entries, func(x, y *resource.Resource) int {
		return strings.Compare(x.Key().String(), y.Key().String())
	})
	values := make([]*resource.Value, len(b.entries))
	for i, r := range b.entries {
		values[i] = r.Value()
	}

	var buf bytes.Buffer
	if err := resource.WriteValuesDocument(&buf, values); err != nil {
		return fmt.Errorf("merger: encoding %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), m.cfg.dirMode); err != nil {
		return &reserrors.IOError{Op: "create directory", Path: filepath.Dir(path), Cause: err}
	}
	if err := os.WriteFile(path, buf.Bytes(), m.cfg.fileMode); err != nil {
		return &reserrors.IOError{Op: "write", Path: path, Cause: err}
	}
	report.Written = append(report.Written, path)
	m.cfg.logger.Debug("wrote value document", "path", path, "entries", len(values))
	return nil
}

// deleteOutput removes path; a file that is already gone is not an error.
func (m *Merger) deleteOutput(path string, report *WriteReport) error {
	err := os.Remove(path)
	switch {
	case err == nil:
		report.Deleted = append(report.Deleted, path)
		m.cfg.logger.Debug("deleted output", "path", path)
		return nil
	case os.IsNotExist(err):
		return nil
	default:
		return &reserrors.IOError{Op: "delete", Path: path, Cause: err}
	}
}
