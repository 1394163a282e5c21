// Package resmerge merges layered trees of typed resource declarations into
// one consistent output tree and keeps that tree up to date incrementally.
//
// # Overview
//
// A project's resources come from several layers, ordered from lowest to
// highest priority (for example a library, the main sources, then a flavor
// overlay). Each layer is a set of source roots laid out as
// <root>/<folder>[-<qualifiers>]/<file>. Folders such as "values" hold XML
// documents of small value entries (strings, colors, dimensions); every
// other folder type holds whole files (layouts, drawables).
//
// The library consists of these packages:
//
//   - reserrors: typed failures usable with errors.Is and errors.As
//   - resource: qualifiers, keys, values, files and resource sets
//   - merger: the merged map, the snapshot and the minimal-diff writer
//   - watch: filesystem notifications turned into batched change events
//   - manifest: the instrumentation test manifest generator
//
// # Quick Start
//
// Merge two layers and write the result:
//
//	import (
//		"github.com/erraggy/resmerge/merger"
//		"github.com/erraggy/resmerge/resource"
//	)
//
//	main := resource.NewSet("main")
//	main.AddSource("src/main/res")
//	debug := resource.NewSet("debug")
//	debug.AddSource("src/debug/res")
//
//	m, err := merger.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	m.AddResourceSet(main)
//	m.AddResourceSet(debug)
//	if err := m.LoadAll(ctx); err != nil {
//		log.Fatal(err)
//	}
//	if _, err := m.WriteResourceFolder("build/res"); err != nil {
//		log.Fatal(err)
//	}
//	if err := m.WriteBlobTo("build/merger"); err != nil {
//		log.Fatal(err)
//	}
//
// # Incremental Merges
//
// A later run restores the snapshot with LoadFromBlob, checks it still fits
// the configured sets with ValidateUpdate, and then feeds NEW, CHANGED and
// REMOVED events to ApplyChanges. WriteResourceFolder then only touches the
// outputs whose winning resource changed.
//
// # Command Line
//
// The resmerge command wraps the library:
//
//	resmerge merge --set main=src/main/res --set debug=src/debug/res --out build/res --blob build/merger
//	resmerge watch --set main=src/main/res --out build/res --blob build/merger
//	resmerge inspect --blob build/merger --format json
//
// Version information is available through Version and BuildInfo.
package resmerge
