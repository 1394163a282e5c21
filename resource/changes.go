package resource

import (
	"os"
	"slices"

	"github.com/hashicorp/go-multierror"
)

// DetectChanges rescans the source roots and compares what it finds with
// the files the set already owns. A file is CHANGED when its size or
// modification time differs from the recorded one. Events come back in
// scan order, followed by REMOVED events in the set's file order.
func (s *Set) DetectChanges() ([]ChangeEvent, error) {
	var result *multierror.Error
	var events []ChangeEvent
	seen := make(map[string]bool, len(s.files))

	for _, root := range s.sources {
		entries, err := s.scanRoot(root)
		if err != nil {
			result = multierror.Append(result, err)
		}
		for _, entry := range entries {
			seen[entry.path] = true
			known, ok := s.files[entry.path]
			if !ok {
				events = append(events, ChangeEvent{Root: root, Path: entry.path, Status: StatusNew})
				continue
			}
			info, err := os.Stat(entry.path)
			if err != nil {
				// vanished between listing and stat
				continue
			}
			if info.Size() != known.size || !info.ModTime().Equal(known.modTime) {
				events = append(events, ChangeEvent{Root: root, Path: entry.path, Status: StatusChanged})
			}
		}
	}

	for _, path := range slices.Clone(s.order) {
		if !seen[path] {
			events = append(events, ChangeEvent{Root: s.files[path].root, Path: path, Status: StatusRemoved})
		}
	}
	return events, result.ErrorOrNil()
}
