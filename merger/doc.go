// Package merger merges layered resource sets into one output tree and
// keeps that tree current across builds.
//
// Sets are added from lowest to highest priority. For every resource key the
// merged map holds the history of all instances, in set order; the last
// instance that is not a tombstone is the winner and is what gets exported.
//
// # Quick Start
//
// A full merge:
//
//	m, err := merger.New(merger.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	m.AddResourceSet(mainSet)
//	m.AddResourceSet(flavorSet)
//	if err := m.LoadAll(ctx); err != nil {
//		return err
//	}
//	if err := m.ValidateResourceSets(); err != nil {
//		return err
//	}
//	report, err := m.WriteResourceFolder("build/res/merged")
//	if err != nil {
//		return err
//	}
//	err = m.WriteBlobTo("build/res/blob")
//
// An incremental merge restores the previous state and applies change
// events; when the snapshot no longer matches the configured sets the
// caller falls back to a full merge:
//
//	m, _ := merger.New()
//	if err := m.LoadFromBlob("build/res/blob"); err != nil || !m.CheckValidUpdate(sets) {
//		// full merge
//	}
//	if err := m.ApplyChanges(events); err != nil {
//		// full merge
//	}
//	report, err := m.WriteResourceFolder("build/res/merged")
//
// # Output
//
// File-based resources are copied to <output>/<folder>/<file name>. Value
// resources are grouped by qualifiers into one document per values folder,
// <output>/values[-qualifiers]/values.xml, with entries sorted by key so that
// rewriting an unchanged group is byte-identical.
//
// WriteResourceFolder writes only what changed: a winner already exported
// and not touched since is left alone, so exporting twice in a row performs
// no filesystem writes the second time.
//
// # Snapshot
//
// WriteBlobTo stores every set, its source roots, and every live resource
// (value payloads included) as YAML under merger.yaml. Paths are stored
// verbatim; relocating a tree requires rewriting them.
package merger
