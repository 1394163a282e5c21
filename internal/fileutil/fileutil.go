// Package fileutil holds the permission modes used for merged output.
package fileutil

import "os"

// OwnerReadWrite is the file permission mode for private state such as
// merger snapshots (owner read/write only).
const OwnerReadWrite os.FileMode = 0o600

// ReadableByAll is the file permission mode for exported resource files
// intended to be read by build tools and other users.
const ReadableByAll os.FileMode = 0o644

// DirReadableByAll is the permission mode for output directories.
const DirReadableByAll os.FileMode = 0o755

// ValidFileMode reports whether mode is a usable permission mode for a
// file the owner must be able to rewrite.
func ValidFileMode(mode os.FileMode) bool {
	return mode&^os.ModePerm == 0 && mode&0o600 == 0o600
}

// ValidDirMode reports whether mode is a usable permission mode for a
// directory the owner must be able to populate.
func ValidDirMode(mode os.FileMode) bool {
	return mode&^os.ModePerm == 0 && mode&0o700 == 0o700
}
