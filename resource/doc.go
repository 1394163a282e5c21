// Package resource models the inputs of a resource merge: qualifier
// configurations and folder names, individual resources and the files that
// produce them, and resource sets with their per-key history.
//
// A Set owns one priority layer. It is populated by a full scan
// (LoadFromFiles) and kept current by per-file change events (UpdateWith):
//
//	set := resource.NewSet("main")
//	set.AddSource("/project/src/main/res")
//	if err := set.LoadFromFiles(ctx); err != nil {
//		return err
//	}
//	err := set.UpdateWith("/project/src/main/res",
//		"/project/src/main/res/values/strings.xml", resource.StatusChanged)
//
// Value documents (files under values*/ folders) are parsed with
// encoding/xml; every named entry becomes one Resource holding a Value. Any
// other file is a single file-based Resource named after the file.
//
// Every Resource carries touched, removed and written flags. The merger
// package reads them to decide what must be exported and what may be
// skipped. Removed instances stay in the history as tombstones until the
// merger purges them after an export.
package resource
