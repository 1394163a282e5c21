package merger

import (
	"context"
	"fmt"
	"slices"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/erraggy/resmerge/reserrors"
	"github.com/erraggy/resmerge/resource"
)

// Merger merges an ordered list of resource sets. Sets added later have
// higher priority: for every key the winner is the last non-removed
// instance across all sets, in set order.
//
// Concurrency: a Merger is not safe for concurrent use. Callers serialize
// loads, updates and exports.
type Merger struct {
	cfg  *config
	sets []*resource.Set
}

// New creates an empty Merger.
func New(opts ...Option) (*Merger, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("merger: invalid options: %w", err)
	}
	return &Merger{cfg: cfg}, nil
}

// AddResourceSet appends set at the top of the priority order.
func (m *Merger) AddResourceSet(set *resource.Set) {
	m.sets = append(m.sets, set)
}

// ResourceSets returns the sets from lowest to highest priority.
func (m *Merger) ResourceSets() []*resource.Set {
	return slices.Clone(m.sets)
}

// ResourceMap returns the merged view: each set's per-key history
// concatenated in set order. The view is rebuilt on every call and
// reflects the sets at that moment.
func (m *Merger) ResourceMap() *resource.ResourceMap {
	merged := resource.NewResourceMap()
	for _, set := range m.sets {
		items := set.Map()
		for _, key := range items.Keys() {
			for _, r := range items.Get(key) {
				merged.Append(r)
			}
		}
	}
	return merged
}

// Size returns the number of keys that currently have a winner.
func (m *Merger) Size() int {
	merged := m.ResourceMap()
	n := 0
	for _, key := range merged.Keys() {
		if merged.Winner(key) != nil {
			n++
		}
	}
	return n
}

// LoadAll loads every set from its source roots. Sets are read
// concurrently, up to the configured limit; each goroutine touches only
// its own set, so the merged view is the same as a sequential load.
// Per-set failures are collected and returned together.
func (m *Merger) LoadAll(ctx context.Context) error {
	errs := make([]error, len(m.sets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.parallelLoad)
	for i, set := range m.sets {
		g.Go(func() error {
			if err := set.LoadFromFiles(ctx); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				errs[i] = err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("merger: load cancelled: %w", err)
	}

	var result *multierror.Error
	for _, err := range errs {
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return err
	}
	m.cfg.logger.Info("loaded resource sets", "sets", len(m.sets), "resources", m.Size())
	return nil
}

// ValidateResourceSets checks every set for same-set duplicates. Overlays
// across sets never conflict.
func (m *Merger) ValidateResourceSets() error {
	var result *multierror.Error
	for _, set := range m.sets {
		if err := set.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// ApplyChanges routes each event, in order, to the set owning its root.
// The first failing event stops processing; events already applied stay
// applied, so callers should fall back to a full merge on error.
func (m *Merger) ApplyChanges(events []resource.ChangeEvent) error {
	for _, e := range events {
		set := m.setForRoot(e.Root)
		if set == nil {
			return &reserrors.InvalidUpdateError{
				Root:    e.Root,
				Path:    e.Path,
				Status:  e.Status.String(),
				Message: "no resource set owns this root",
			}
		}
		if err := set.UpdateWith(e.Root, e.Path, e.Status); err != nil {
			return err
		}
		m.cfg.logger.Debug("applied change", "set", set.Name(), "event", e.String())
	}
	return nil
}

// DetectChanges compares every set with its source roots and returns the
// change events that bring it up to date, set by set.
func (m *Merger) DetectChanges() ([]resource.ChangeEvent, error) {
	var result *multierror.Error
	var events []resource.ChangeEvent
	for _, set := range m.sets {
		found, err := set.DetectChanges()
		if err != nil {
			result = multierror.Append(result, err)
		}
		events = append(events, found...)
	}
	return events, result.ErrorOrNil()
}

// setForRoot returns the highest-priority set that owns root.
func (m *Merger) setForRoot(root string) *resource.Set {
	for i := len(m.sets) - 1; i >= 0; i-- {
		if m.sets[i].HasSource(root) {
			return m.sets[i]
		}
	}
	return nil
}
