package pipeline

import (
	"path"
	"slices"
	"strings"

	"github.com/erraggy/resmerge/merger"
	"github.com/erraggy/resmerge/resource"
)

// Entry describes the winning instance of one merged key.
type Entry struct {
	Key        string `json:"key"                  yaml:"key"`
	Type       string `json:"type"                 yaml:"type"`
	Name       string `json:"name"                 yaml:"name"`
	Qualifiers string `json:"qualifiers,omitempty" yaml:"qualifiers,omitempty"`
	Kind       string `json:"kind"                 yaml:"kind"`
	Set        string `json:"set"                  yaml:"set"`
	Source     string `json:"source"               yaml:"source"`
	Shadowed   int    `json:"shadowed,omitempty"   yaml:"shadowed,omitempty"`
}

// Filter selects entries. Empty fields match everything.
type Filter struct {
	// Key is a path.Match pattern applied to the canonical key.
	Key string
	// Type matches the resource type exactly.
	Type string
	// Set matches the contributing set name exactly.
	Set string
}

func (f Filter) match(e Entry) bool {
	if f.Type != "" && f.Type != e.Type {
		return false
	}
	if f.Set != "" && f.Set != e.Set {
		return false
	}
	if f.Key != "" {
		ok, err := path.Match(f.Key, e.Key)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// Describe lists the winner of every key, sorted by key.
func Describe(m *merger.Merger, filter Filter) []Entry {
	setOf := make(map[string]string)
	for _, set := range m.ResourceSets() {
		for _, root := range set.SourceFiles() {
			setOf[root] = set.Name()
		}
	}

	merged := m.ResourceMap()
	var entries []Entry
	for _, key := range merged.Keys() {
		history := merged.Get(key)
		winner := resource.Winner(history)
		if winner == nil {
			continue
		}
		kind := "file"
		if !winner.IsFile() {
			kind = "value"
		}
		shadowed := -1
		for _, r := range history {
			if !r.IsRemoved() {
				shadowed++
			}
		}
		k := winner.Key()
		entry := Entry{
			Key:        key,
			Type:       string(k.Type),
			Name:       k.Name,
			Qualifiers: k.Qualifiers,
			Kind:       kind,
			Set:        setOf[winner.Source().Root()],
			Source:     winner.Source().Path(),
			Shadowed:   shadowed,
		}
		if filter.match(entry) {
			entries = append(entries, entry)
		}
	}
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Key, b.Key) })
	return entries
}

// Inspect loads the snapshot in blobDir and describes it.
func Inspect(blobDir string, filter Filter, opts ...merger.Option) ([]Entry, error) {
	m, err := merger.New(opts...)
	if err != nil {
		return nil, err
	}
	if err := m.LoadFromBlob(blobDir); err != nil {
		return nil, err
	}
	return Describe(m, filter), nil
}
