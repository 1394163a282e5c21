package resource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/erraggy/resmerge/reserrors"
)

// SetOption configures a Set.
type SetOption func(*Set)

// WithLogger sets the logger used by the set. The default discards output.
func WithLogger(logger Logger) SetOption {
	return func(s *Set) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Set is one priority layer: a named, ordered list of source roots, the
// files discovered under them, and the per-key history of the resources
// those files contribute.
//
// Concurrency: a Set is not safe for concurrent use.
type Set struct {
	name    string
	sources []string
	files   map[string]*File
	order   []string
	items   *ResourceMap
	logger  Logger
}

// NewSet creates an empty set.
func NewSet(name string, opts ...SetOption) *Set {
	s := &Set{
		name:   name,
		files:  make(map[string]*File),
		items:  NewResourceMap(),
		logger: NopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("set", name)
	return s
}

// Name returns the set name.
func (s *Set) Name() string { return s.name }

// AddSource registers a source root. Nothing is scanned until LoadFromFiles.
func (s *Set) AddSource(root string) {
	root = filepath.Clean(root)
	if !slices.Contains(s.sources, root) {
		s.sources = append(s.sources, root)
	}
}

// SourceFiles returns the registered source roots in registration order.
func (s *Set) SourceFiles() []string {
	return slices.Clone(s.sources)
}

// HasSource reports whether root is one of the set's source roots.
func (s *Set) HasSource(root string) bool {
	return slices.Contains(s.sources, filepath.Clean(root))
}

// Files returns the paths of the files currently owned by the set, in
// discovery order.
func (s *Set) Files() []string {
	return slices.Clone(s.order)
}

// File returns the file for path, or nil.
func (s *Set) File(path string) *File {
	return s.files[filepath.Clean(path)]
}

// Map returns the set's key -> history multimap. Callers must not mutate it.
func (s *Set) Map() *ResourceMap {
	return s.items
}

// LoadFromFiles scans every source root. Folders are visited in name order
// and files in name order within a folder. Per-file failures (parse errors,
// same-set duplicates, unreadable files) are collected and returned together
// once the whole tree has been visited; only context cancellation stops early.
func (s *Set) LoadFromFiles(ctx context.Context) error {
	var result *multierror.Error
	loaded := 0
	for _, root := range s.sources {
		entries, err := s.scanRoot(root)
		if err != nil {
			result = multierror.Append(result, err)
		}
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("resource: loading set %q: %w", s.name, err)
			}
			f, err := s.readFile(entry.root, entry.path, entry.folder)
			if err != nil {
				s.logger.Warn("skipping unreadable resource file", "path", entry.path, "error", err)
				result = multierror.Append(result, err)
				continue
			}
			if err := s.addLoadedFile(f); err != nil {
				result = multierror.Append(result, err)
			}
			loaded++
		}
	}
	s.logger.Debug("loaded resource set", "files", loaded, "keys", s.items.Len())
	return result.ErrorOrNil()
}

// UpdateWith applies one change event for a file under root. A failing
// update leaves the set exactly as it was.
//
//   - NEW parses the file and appends its resources, marked touched.
//   - CHANGED re-parses the file: unchanged entries are left alone, changed
//     and added entries are marked touched, vanished entries become tombstones.
//   - REMOVED turns every resource of the file into a tombstone.
func (s *Set) UpdateWith(root, path string, status FileStatus) error {
	root = filepath.Clean(root)
	path = filepath.Clean(path)

	invalid := func(msg string, cause error) error {
		return &reserrors.InvalidUpdateError{
			Root:    root,
			Path:    path,
			Status:  status.String(),
			Message: msg,
			Cause:   cause,
		}
	}

	if !slices.Contains(s.sources, root) {
		return invalid(fmt.Sprintf("not a source root of set %q", s.name), nil)
	}
	folder, err := folderOf(root, path)
	if err != nil {
		return invalid("file is not inside a resource folder", err)
	}

	existing := s.files[path]
	switch status {
	case StatusNew:
		if existing != nil {
			s.logger.Debug("NEW event for a known file, handling as CHANGED", "path", path)
			return s.changeFile(existing)
		}
		return s.addNewFile(root, path, folder)
	case StatusChanged:
		if existing == nil {
			s.logger.Debug("CHANGED event for an unknown file, handling as NEW", "path", path)
			return s.addNewFile(root, path, folder)
		}
		return s.changeFile(existing)
	case StatusRemoved:
		if existing == nil {
			return invalid(fmt.Sprintf("file is unknown to set %q", s.name), nil)
		}
		s.removeFile(existing)
		return nil
	default:
		return invalid("unknown file status", nil)
	}
}

// Validate reports, as DuplicateResourceErrors, every key for which the set
// holds conflicting non-removed instances.
func (s *Set) Validate() error {
	var result *multierror.Error
	for _, key := range s.items.keys {
		if err := s.checkDuplicates(key, s.items.items[key]); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Purge drops tombstones from the history and from their files. The merger
// calls it once removals have been exported.
func (s *Set) Purge() {
	for _, key := range s.items.Keys() {
		// Remove shifts the history in place; walk a copy.
		for _, r := range s.items.Get(key) {
			if r.removed {
				s.items.Remove(r)
			}
		}
	}
	for _, f := range s.files {
		f.dropRemoved()
	}
}

// conflicts reports whether two live instances of one key cannot coexist in
// one set. A value entry and a file for the same key replace each other, and
// identical value entries are tolerated.
func conflicts(a, b *Resource) bool {
	if a.removed || b.removed {
		return false
	}
	if a.IsFile() != b.IsFile() {
		return false
	}
	if !a.IsFile() && a.value.Equal(b.value) {
		return false
	}
	return true
}

func (s *Set) checkDuplicates(key string, history []*Resource) error {
	var sources []string
	for i, a := range history {
		for _, b := range history[i+1:] {
			if !conflicts(a, b) {
				continue
			}
			for _, r := range []*Resource{a, b} {
				if !slices.Contains(sources, r.source.path) {
					sources = append(sources, r.source.path)
				}
			}
		}
	}
	if len(sources) == 0 {
		return nil
	}
	return &reserrors.DuplicateResourceError{Key: key, Set: s.name, Sources: sources}
}

type sourceEntry struct {
	root   string
	path   string
	folder Folder
}

// scanRoot lists the candidate resource files of one root in load order.
// A missing root is treated as empty.
func (s *Set) scanRoot(root string) ([]sourceEntry, error) {
	dirs, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("source root does not exist", "root", root)
			return nil, nil
		}
		return nil, &reserrors.IOError{Op: "read directory", Path: root, Cause: err}
	}

	var result *multierror.Error
	var entries []sourceEntry
	for _, dir := range dirs {
		if !dir.IsDir() || IsIgnoredName(dir.Name()) {
			continue
		}
		folder, err := ParseFolderName(dir.Name())
		if err != nil {
			s.logger.Warn("ignoring folder", "root", root, "folder", dir.Name(), "reason", err)
			continue
		}
		dirPath := filepath.Join(root, dir.Name())
		files, err := os.ReadDir(dirPath)
		if err != nil {
			result = multierror.Append(result, &reserrors.IOError{Op: "read directory", Path: dirPath, Cause: err})
			continue
		}
		for _, file := range files {
			if file.IsDir() || IsIgnoredName(file.Name()) {
				continue
			}
			if folder.Type.HoldsValues() && !strings.EqualFold(filepath.Ext(file.Name()), ".xml") {
				s.logger.Warn("ignoring non-XML file in values folder", "path", filepath.Join(dirPath, file.Name()))
				continue
			}
			entries = append(entries, sourceEntry{
				root:   root,
				path:   filepath.Join(dirPath, file.Name()),
				folder: folder,
			})
		}
	}
	return entries, result.ErrorOrNil()
}

func folderOf(root, path string) (Folder, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return Folder{}, err
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) != 2 || parts[0] == ".." || IsIgnoredName(parts[1]) {
		return Folder{}, fmt.Errorf("resource: %q is not <root>/<folder>/<file>", rel)
	}
	folder, err := ParseFolderName(parts[0])
	if err != nil {
		return Folder{}, err
	}
	if folder.Type.HoldsValues() && !strings.EqualFold(filepath.Ext(parts[1]), ".xml") {
		return Folder{}, fmt.Errorf("resource: %q is not a value document", parts[1])
	}
	return folder, nil
}

// readFile parses one source file into a detached File.
func (s *Set) readFile(root, path string, folder Folder) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &reserrors.IOError{Op: "stat", Path: path, Cause: err}
	}
	f := &File{
		root:    root,
		path:    path,
		kind:    KindFile,
		folder:  folder,
		size:    info.Size(),
		modTime: info.ModTime(),
	}
	qualifiers := folder.Config.String()

	if !folder.Type.HoldsValues() {
		f.newResource(Key{Type: folder.ResourceType(), Qualifiers: qualifiers, Name: ResourceNameFromFile(path)}, nil)
		return f, nil
	}

	f.kind = KindValues
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &reserrors.IOError{Op: "read", Path: path, Cause: err}
	}
	values, err := ParseValuesDocument(path, data)
	if err != nil {
		return nil, err
	}
	seen := make(map[Key]*Resource, len(values))
	for _, v := range values {
		key := Key{Type: v.Type(), Qualifiers: qualifiers, Name: v.Name()}
		if prev, ok := seen[key]; ok {
			if prev.value.Equal(v) {
				continue
			}
			return nil, &reserrors.DuplicateResourceError{Key: key.String(), Set: s.name, Sources: []string{path}}
		}
		seen[key] = f.newResource(key, v)
	}
	return f, nil
}

// addLoadedFile registers a file found by a full load. A file already known
// under the same path is replaced wholesale.
func (s *Set) addLoadedFile(f *File) error {
	if old, ok := s.files[f.path]; ok {
		for _, r := range old.resources {
			s.items.Remove(r)
		}
		s.forgetFile(old.path)
	}

	var result *multierror.Error
	for _, r := range f.resources {
		key := r.key.String()
		for _, e := range s.items.items[key] {
			if conflicts(e, r) {
				result = multierror.Append(result, &reserrors.DuplicateResourceError{
					Key:     key,
					Set:     s.name,
					Sources: []string{e.source.path, r.source.path},
				})
				break
			}
		}
		s.items.Append(r)
	}
	s.trackFile(f)
	return result.ErrorOrNil()
}

func (s *Set) addNewFile(root, path string, folder Folder) error {
	f, err := s.readFile(root, path, folder)
	if err != nil {
		return err
	}
	for _, r := range f.resources {
		r.markTouched()
		s.items.Append(r)
	}
	s.trackFile(f)
	s.logger.Debug("added file", "path", path, "resources", len(f.resources))
	return nil
}

func (s *Set) changeFile(f *File) error {
	if f.kind == KindFile {
		info, err := os.Stat(f.path)
		if err != nil {
			return &reserrors.IOError{Op: "stat", Path: f.path, Cause: err}
		}
		f.size, f.modTime = info.Size(), info.ModTime()
		for _, r := range f.resources {
			if !r.removed {
				r.markTouched()
			}
		}
		s.logger.Debug("touched file", "path", f.path)
		return nil
	}

	fresh, err := s.readFile(f.root, f.path, f.folder)
	if err != nil {
		return err
	}

	incoming := make(map[Key]*Resource, len(fresh.resources))
	for _, n := range fresh.resources {
		incoming[n.key] = n
	}
	var touched, removed, added int
	for _, r := range f.resources {
		if r.removed {
			continue
		}
		n, ok := incoming[r.key]
		if !ok {
			r.markRemoved()
			removed++
			continue
		}
		delete(incoming, r.key)
		if !r.value.Equal(n.value) {
			r.value = n.value
			r.markTouched()
			touched++
		}
	}
	for _, n := range fresh.resources {
		if _, ok := incoming[n.key]; !ok {
			continue
		}
		r := f.newResource(n.key, n.value)
		r.markTouched()
		s.items.Append(r)
		added++
	}
	f.size, f.modTime = fresh.size, fresh.modTime
	s.logger.Debug("updated value document", "path", f.path, "touched", touched, "removed", removed, "added", added)
	return nil
}

func (s *Set) removeFile(f *File) {
	for _, r := range f.resources {
		if !r.removed {
			r.markRemoved()
		}
	}
	s.forgetFile(f.path)
	s.logger.Debug("removed file", "path", f.path, "resources", len(f.resources))
}

func (s *Set) trackFile(f *File) {
	s.files[f.path] = f
	s.order = append(s.order, f.path)
}

func (s *Set) forgetFile(path string) {
	delete(s.files, path)
	s.order = slices.DeleteFunc(s.order, func(p string) bool { return p == path })
}
