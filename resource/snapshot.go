package resource

import (
	"fmt"
	"path/filepath"
	"time"
)

// SetSnapshot is the persisted form of a Set: its sources and, per file,
// the live resources it contributed. Tombstones are never persisted.
type SetSnapshot struct {
	Name    string         `yaml:"name"              json:"name"`
	Sources []string       `yaml:"sources"           json:"sources"`
	Files   []FileSnapshot `yaml:"files,omitempty"   json:"files,omitempty"`
}

// FileSnapshot is the persisted form of a File.
type FileSnapshot struct {
	Root      string             `yaml:"root"                json:"root"`
	Path      string             `yaml:"path"                json:"path"`
	Folder    string             `yaml:"folder"              json:"folder"`
	Kind      string             `yaml:"kind"                json:"kind"`
	Size      int64              `yaml:"size"                json:"size"`
	ModTime   int64              `yaml:"mod_time"            json:"mod_time"`
	Resources []ResourceSnapshot `yaml:"resources,omitempty" json:"resources,omitempty"`
}

// ResourceSnapshot is the persisted form of a Resource. Value is the
// serialized element for value entries and empty for file-based ones.
type ResourceSnapshot struct {
	Type       string            `yaml:"type"                 json:"type"`
	Name       string            `yaml:"name"                 json:"name"`
	Value      string            `yaml:"value,omitempty"      json:"value,omitempty"`
	Namespaces map[string]string `yaml:"namespaces,omitempty" json:"namespaces,omitempty"`
}

// Snapshot captures the set's current state.
func (s *Set) Snapshot() SetSnapshot {
	snap := SetSnapshot{Name: s.name, Sources: s.SourceFiles()}
	for _, path := range s.order {
		f := s.files[path]
		fs := FileSnapshot{
			Root:    f.root,
			Path:    f.path,
			Folder:  f.folder.Name(),
			Kind:    f.kind.String(),
			Size:    f.size,
			ModTime: f.modTime.UnixNano(),
		}
		for _, r := range f.resources {
			if r.removed {
				continue
			}
			rs := ResourceSnapshot{Type: string(r.key.Type), Name: r.key.Name}
			if r.value != nil {
				rs.Value = r.value.XML()
				rs.Namespaces = r.value.Namespaces
			}
			fs.Resources = append(fs.Resources, rs)
		}
		snap.Files = append(snap.Files, fs)
	}
	return snap
}

// RestoreSet rebuilds a Set from a snapshot. Every restored resource has
// clean flags; the caller decides which instances are marked written.
func RestoreSet(snap SetSnapshot, opts ...SetOption) (*Set, error) {
	s := NewSet(snap.Name, opts...)
	for _, root := range snap.Sources {
		s.AddSource(root)
	}
	for _, fs := range snap.Files {
		folder, err := ParseFolderName(fs.Folder)
		if err != nil {
			return nil, fmt.Errorf("resource: snapshot file %s: %w", fs.Path, err)
		}
		kind, ok := ParseFileKind(fs.Kind)
		if !ok {
			return nil, fmt.Errorf("resource: snapshot file %s: unknown kind %q", fs.Path, fs.Kind)
		}
		f := &File{
			root:    filepath.Clean(fs.Root),
			path:    filepath.Clean(fs.Path),
			kind:    kind,
			folder:  folder,
			size:    fs.Size,
			modTime: time.Unix(0, fs.ModTime),
		}
		for _, rs := range fs.Resources {
			key := Key{Type: ResourceType(rs.Type), Qualifiers: folder.Config.String(), Name: rs.Name}
			var value *Value
			if kind == KindValues {
				value, err = ParseValue(rs.Value, rs.Namespaces)
				if err != nil {
					return nil, fmt.Errorf("resource: snapshot entry %s in %s: %w", key, fs.Path, err)
				}
			}
			s.items.Append(f.newResource(key, value))
		}
		s.trackFile(f)
	}
	return s, nil
}
