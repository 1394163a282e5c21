package watch

import (
	"github.com/erraggy/resmerge/resource"
)

// batch accumulates change events per path until the quiet period ends,
// folding successive events for one file into the single event that takes
// a set from its state before the batch to the state after it. A path that
// ends the batch deleted is reported REMOVED, whether or not the set knew it.
type batch struct {
	order  []string
	events map[string]resource.ChangeEvent
}

func newBatch() *batch {
	return &batch{events: make(map[string]resource.ChangeEvent)}
}

func (b *batch) add(e resource.ChangeEvent) {
	prev, ok := b.events[e.Path]
	if !ok {
		b.order = append(b.order, e.Path)
		b.events[e.Path] = e
		return
	}

	switch {
	case prev.Status == resource.StatusNew && e.Status == resource.StatusChanged:
		return
	case prev.Status == resource.StatusRemoved && e.Status == resource.StatusNew:
		// replaced by rename or atomic save
		e.Status = resource.StatusChanged
	}
	b.events[e.Path] = e
}

func (b *batch) len() int {
	return len(b.order)
}

// flush returns the events in first-seen order and empties the batch.
func (b *batch) flush() []resource.ChangeEvent {
	out := make([]resource.ChangeEvent, 0, len(b.order))
	for _, path := range b.order {
		out = append(out, b.events[path])
	}
	b.order = nil
	b.events = make(map[string]resource.ChangeEvent)
	return out
}
