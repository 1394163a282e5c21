package resource

import "slices"

// ResourceMap is an ordered multimap from key string to the history of
// instances for that key. Keys keep first-insertion order and each history
// keeps append order; the last non-removed entry of a history is its winner.
type ResourceMap struct {
	keys  []string
	items map[string][]*Resource
}

// NewResourceMap returns an empty map.
func NewResourceMap() *ResourceMap {
	return &ResourceMap{items: make(map[string][]*Resource)}
}

// Append adds r at the end of its key's history.
func (m *ResourceMap) Append(r *Resource) {
	key := r.key.String()
	if _, ok := m.items[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.items[key] = append(m.items[key], r)
}

// Remove deletes r from its key's history, dropping the key when the
// history becomes empty. It reports whether r was present.
func (m *ResourceMap) Remove(r *Resource) bool {
	key := r.key.String()
	history := m.items[key]
	i := slices.Index(history, r)
	if i < 0 {
		return false
	}
	history = slices.Delete(history, i, i+1)
	if len(history) == 0 {
		delete(m.items, key)
		m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
		return true
	}
	m.items[key] = history
	return true
}

// Get returns a copy of the history for key.
func (m *ResourceMap) Get(key string) []*Resource {
	return slices.Clone(m.items[key])
}

// Winner returns the last non-removed instance for key, or nil.
func (m *ResourceMap) Winner(key string) *Resource {
	return Winner(m.items[key])
}

// Keys returns the keys in first-insertion order.
func (m *ResourceMap) Keys() []string {
	return slices.Clone(m.keys)
}

// Len returns the number of keys, including keys whose history holds only tombstones.
func (m *ResourceMap) Len() int {
	return len(m.keys)
}

// Winner returns the last non-removed entry of history, or nil.
func Winner(history []*Resource) *Resource {
	for i := len(history) - 1; i >= 0; i-- {
		if !history[i].removed {
			return history[i]
		}
	}
	return nil
}
