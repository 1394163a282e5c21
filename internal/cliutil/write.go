// Package cliutil provides utilities for CLI operations.
package cliutil

import (
	"fmt"
	"io"
	"os"
)

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr (useful for debugging).
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// WriteList writes a "title: count" header followed by one indented,
// marker-prefixed line per item.
func WriteList(w io.Writer, title, marker string, items []string) {
	Writef(w, "%s: %d\n", title, len(items))
	for _, item := range items {
		Writef(w, "  %s %s\n", marker, item)
	}
}
