// Package reserrors provides structured error types for the resmerge library.
//
// Import path: github.com/erraggy/resmerge/reserrors
//
// This package enables programmatic error handling via [errors.Is] and [errors.As],
// allowing build drivers to distinguish a fatal same-layer collision from a
// stale snapshot that only requires a full reload.
//
// # Error Types
//
//   - [DuplicateResourceError]: two instances of one key collide inside a single set
//   - [InvalidUpdateError]: a change event cannot be mapped to a set, root or folder
//   - [SnapshotIncompatibleError]: a persisted snapshot does not match the configured sets
//   - [ParseError]: a malformed value document or snapshot
//   - [IOError]: a filesystem failure while reading, copying, writing or deleting
//   - [ConfigError]: an invalid option or flag value
//
// # Sentinel Errors
//
// Each error type has a corresponding sentinel error for use with errors.Is():
//
//   - [ErrDuplicateResource]: Matches any [DuplicateResourceError]
//   - [ErrInvalidUpdate]: Matches any [InvalidUpdateError]
//   - [ErrSnapshotIncompatible]: Matches any [SnapshotIncompatibleError]
//   - [ErrParse]: Matches any [ParseError]
//   - [ErrIO]: Matches any [IOError]
//   - [ErrConfig]: Matches any [ConfigError]
//
// # Recovery
//
// Only [SnapshotIncompatibleError] is recoverable inside a build: the driver
// discards the snapshot and performs a full load. Everything else is reported.
//
//	if err := m.ValidateUpdate(configured); errors.Is(err, reserrors.ErrSnapshotIncompatible) {
//	    // fall back to a full reload
//	}
package reserrors
