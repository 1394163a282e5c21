package resource

import (
	"slices"
	"time"
)

// FileKind distinguishes value documents from one-resource asset files.
type FileKind int

const (
	// KindFile is a file whose single resource is the file itself.
	KindFile FileKind = iota
	// KindValues is a document holding many named value entries.
	KindValues
)

// String returns "file" or "values".
func (k FileKind) String() string {
	if k == KindValues {
		return "values"
	}
	return "file"
}

// ParseFileKind is the inverse of FileKind.String.
func ParseFileKind(s string) (FileKind, bool) {
	switch s {
	case "file":
		return KindFile, true
	case "values":
		return KindValues, true
	default:
		return KindFile, false
	}
}

// File is one physical source file and the resources it produced.
type File struct {
	root    string
	path    string
	kind    FileKind
	folder  Folder
	size    int64
	modTime time.Time

	resources []*Resource
}

// Root returns the source root the file was found under.
func (f *File) Root() string { return f.root }

// Path returns the absolute file path.
func (f *File) Path() string { return f.path }

// Kind returns the file kind.
func (f *File) Kind() FileKind { return f.kind }

// Folder returns the parsed folder the file lives in.
func (f *File) Folder() Folder { return f.folder }

// Size returns the file size recorded at the last load or update.
func (f *File) Size() int64 { return f.size }

// ModTime returns the modification time recorded at the last load or update.
func (f *File) ModTime() time.Time { return f.modTime }

// Resources returns the resources produced by the file, tombstones included.
func (f *File) Resources() []*Resource {
	return slices.Clone(f.resources)
}

func (f *File) newResource(key Key, value *Value) *Resource {
	r := &Resource{key: key, value: value, source: f}
	f.resources = append(f.resources, r)
	return r
}

func (f *File) dropRemoved() {
	f.resources = slices.DeleteFunc(f.resources, (*Resource).IsRemoved)
}
