package reserrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrDuplicateResource indicates a same-set key collision.
	ErrDuplicateResource = errors.New("duplicate resource")

	// ErrInvalidUpdate indicates a change event that cannot be applied.
	ErrInvalidUpdate = errors.New("invalid update")

	// ErrSnapshotIncompatible indicates a persisted snapshot that cannot be reused.
	ErrSnapshotIncompatible = errors.New("snapshot incompatible")

	// ErrParse indicates a parsing failure occurred.
	ErrParse = errors.New("parse error")

	// ErrIO indicates a filesystem failure.
	ErrIO = errors.New("io error")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// DuplicateResourceError reports a key defined more than once, with
// conflicting content, by the files of a single resource set.
type DuplicateResourceError struct {
	// Key is the string form of the resource key (e.g. "string-en/app_name")
	Key string
	// Set is the name of the resource set holding the collision
	Set string
	// Sources lists the files that define the key
	Sources []string
}

// Error returns a human-readable error message.
func (e *DuplicateResourceError) Error() string {
	msg := "duplicate resource"
	if e.Key != "" {
		msg += " " + e.Key
	}
	if e.Set != "" {
		msg += fmt.Sprintf(" in set %q", e.Set)
	}
	if len(e.Sources) > 0 {
		msg += ": " + strings.Join(e.Sources, ", ")
	}
	return msg
}

// Unwrap returns nil as DuplicateResourceError has no underlying cause.
func (e *DuplicateResourceError) Unwrap() error {
	return nil
}

// Is reports whether target matches this error type.
func (e *DuplicateResourceError) Is(target error) bool {
	return target == ErrDuplicateResource
}

// InvalidUpdateError reports a change event whose set, root or resource
// folder cannot be identified.
type InvalidUpdateError struct {
	// Root is the source root named by the event
	Root string
	// Path is the absolute file path named by the event
	Path string
	// Status is the event status ("NEW", "CHANGED", "REMOVED")
	Status string
	// Message describes why the event was rejected
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *InvalidUpdateError) Error() string {
	msg := "invalid update"
	if e.Status != "" {
		msg += " (" + e.Status + ")"
	}
	if e.Path != "" {
		msg += " for " + e.Path
	}
	if e.Root != "" {
		msg += " under " + e.Root
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *InvalidUpdateError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *InvalidUpdateError) Is(target error) bool {
	return target == ErrInvalidUpdate
}

// SnapshotIncompatibleError reports that a persisted merger state does not
// describe the same sets and sources as the current configuration.
type SnapshotIncompatibleError struct {
	// Reason describes the first structural difference found
	Reason string
}

// Error returns a human-readable error message.
func (e *SnapshotIncompatibleError) Error() string {
	msg := "snapshot incompatible"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Unwrap returns nil as SnapshotIncompatibleError has no underlying cause.
func (e *SnapshotIncompatibleError) Unwrap() error {
	return nil
}

// Is reports whether target matches this error type.
func (e *SnapshotIncompatibleError) Is(target error) bool {
	return target == ErrSnapshotIncompatible
}

// ParseError represents a failure to parse a value document or snapshot.
type ParseError struct {
	// Path is the file path or source identifier
	Path string
	// Line is the line number where the error occurred (0 if unknown)
	Line int
	// Message describes the parsing failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// IOError represents a filesystem failure. It is never retried here; retry
// policy belongs to the caller.
type IOError struct {
	// Op is the failed operation (e.g. "read", "copy", "write", "delete")
	Op string
	// Path is the file or directory involved
	Path string
	// Cause is the underlying error
	Cause error
}

// Error returns a human-readable error message.
func (e *IOError) Error() string {
	msg := "io error"
	if e.Op != "" {
		msg += " during " + e.Op
	}
	if e.Path != "" {
		msg += " of " + e.Path
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *IOError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// ConfigError represents an invalid configuration or input.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
