package merger

import (
	"fmt"
	"slices"

	"github.com/erraggy/resmerge/reserrors"
	"github.com/erraggy/resmerge/resource"
)

// CheckValidUpdate reports whether the merger's state, typically restored
// from a snapshot, can be updated incrementally for the given sets.
func (m *Merger) CheckValidUpdate(sets []*resource.Set) bool {
	return m.ValidateUpdate(sets) == nil
}

// ValidateUpdate is CheckValidUpdate with the reason for a mismatch. The set
// names must match in count and order, and each pair of sets must have the
// same source roots, in any order.
func (m *Merger) ValidateUpdate(sets []*resource.Set) error {
	if len(sets) != len(m.sets) {
		return &reserrors.SnapshotIncompatibleError{
			Reason: fmt.Sprintf("got %d resource sets, snapshot has %d", len(sets), len(m.sets)),
		}
	}
	for i, set := range sets {
		known := m.sets[i]
		if set.Name() != known.Name() {
			return &reserrors.SnapshotIncompatibleError{
				Reason: fmt.Sprintf("resource set %d is %q, snapshot has %q", i, set.Name(), known.Name()),
			}
		}
		got := set.SourceFiles()
		want := known.SourceFiles()
		slices.Sort(got)
		slices.Sort(want)
		if !slices.Equal(got, want) {
			return &reserrors.SnapshotIncompatibleError{
				Reason: fmt.Sprintf("source roots of resource set %q changed", set.Name()),
			}
		}
	}
	return nil
}
