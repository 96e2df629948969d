package state

import (
	"maps"
	"slices"
)

// Record maps a target's display name to its last observed value. Absent
// readings are never stored, so every key has been read at least once.
type Record map[string]string

// NewRecord returns an empty record.
func NewRecord() Record {
	return make(Record)
}

// Get returns the stored value and whether one exists.
func (r Record) Get(name string) (string, bool) {
	v, ok := r[name]
	return v, ok
}

// Clone returns an independent copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	maps.Copy(out, r)
	return out
}

// Names returns the keys in sorted order.
func (r Record) Names() []string {
	return slices.Sorted(maps.Keys(r))
}
