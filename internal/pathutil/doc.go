// Package pathutil validates the filesystem paths resmerge writes to.
//
// Every folder the merger writes into (the output tree, the blob folder,
// a generated manifest) passes through [SanitizeOutputPath] first, which
// returns a clean absolute path and refuses symlinks. [Contains] guards
// destructive operations such as emptying an output folder that would
// also hold source files.
package pathutil
