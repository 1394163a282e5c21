package resource

import (
	"fmt"
	"strings"
)

// FileStatus is the kind of change reported for one source file.
type FileStatus int

const (
	StatusNew FileStatus = iota
	StatusChanged
	StatusRemoved
)

// String returns "NEW", "CHANGED" or "REMOVED".
func (s FileStatus) String() string {
	switch s {
	case StatusNew:
		return "NEW"
	case StatusChanged:
		return "CHANGED"
	case StatusRemoved:
		return "REMOVED"
	default:
		return fmt.Sprintf("FileStatus(%d)", int(s))
	}
}

// ParseFileStatus parses a status name, case-insensitively.
func ParseFileStatus(s string) (FileStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NEW", "ADDED":
		return StatusNew, nil
	case "CHANGED", "MODIFIED":
		return StatusChanged, nil
	case "REMOVED", "DELETED":
		return StatusRemoved, nil
	default:
		return 0, fmt.Errorf("resource: unknown file status %q", s)
	}
}

// ChangeEvent is one per-file notification from the build driver.
type ChangeEvent struct {
	Root   string     `json:"root"   yaml:"root"`
	Path   string     `json:"path"   yaml:"path"`
	Status FileStatus `json:"status" yaml:"status"`
}

// String renders the event as "STATUS path".
func (e ChangeEvent) String() string {
	return e.Status.String() + " " + e.Path
}

// MarshalText implements encoding.TextMarshaler.
func (s FileStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *FileStatus) UnmarshalText(text []byte) error {
	status, err := ParseFileStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}
