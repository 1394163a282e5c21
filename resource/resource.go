package resource

import "fmt"

// Resource is one concrete instance of a Key contributed by one file.
//
// A nil value means the resource is file-based: its content is the source
// file itself. The touched, removed and written flags form a small state
// machine driven by Set updates and the merger's folder writer:
//
//	absent -> present -> touched -> {written, removed}
//
// A written instance becomes touched again on CHANGED and removed on REMOVED.
// removed and written may co-occur (a previously exported resource being
// deleted); touched and removed never do.
type Resource struct {
	key    Key
	value  *Value
	source *File

	touched bool
	removed bool
	written bool
}

// Key returns the identity of the resource.
func (r *Resource) Key() Key { return r.key }

// Name returns the resource name.
func (r *Resource) Name() string { return r.key.Name }

// Type returns the resource type.
func (r *Resource) Type() ResourceType { return r.key.Type }

// Value returns the parsed value, or nil for a file-based resource.
func (r *Resource) Value() *Value { return r.value }

// Source returns the file that produced the resource.
func (r *Resource) Source() *File { return r.source }

// IsFile reports whether the resource is file-based.
func (r *Resource) IsFile() bool { return r.value == nil }

// IsTouched reports whether the content differs from what is on disk.
func (r *Resource) IsTouched() bool { return r.touched }

// IsRemoved reports whether the instance is a tombstone.
func (r *Resource) IsRemoved() bool { return r.removed }

// IsWritten reports whether the instance is known to be in the output tree.
func (r *Resource) IsWritten() bool { return r.written }

// NeedsWrite reports whether exporting must materialize the instance.
func (r *Resource) NeedsWrite() bool { return !r.removed && (r.touched || !r.written) }

func (r *Resource) markTouched() {
	r.touched = true
	r.removed = false
}

func (r *Resource) markRemoved() {
	r.removed = true
	r.touched = false
}

// ResetStatusToWritten records that the instance is exactly what the output
// tree holds. Used by the folder writer and by snapshot restore.
func (r *Resource) ResetStatusToWritten() {
	r.touched = false
	r.removed = false
	r.written = true
}

// ResetStatus clears every flag. Used by the folder writer for instances
// that are shadowed by a higher-priority winner.
func (r *Resource) ResetStatus() {
	r.touched = false
	r.removed = false
	r.written = false
}

// String implements fmt.Stringer for diagnostics.
func (r *Resource) String() string {
	path := ""
	if r.source != nil {
		path = r.source.path
	}
	return fmt.Sprintf("%s (%s) touched=%t removed=%t written=%t", r.key, path, r.touched, r.removed, r.written)
}
