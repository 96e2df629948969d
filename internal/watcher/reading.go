package watcher

import "fmt"

// Reading is the outcome of observing a target: a present string (possibly
// empty) or absent. Absent is never equal to the empty string.
type Reading struct {
	value   string
	present bool
}

// Present wraps a successfully read value.
func Present(v string) Reading { return Reading{value: v, present: true} }

// Absent represents a failed or missing observation.
func Absent() Reading { return Reading{} }

// Get returns the value and whether it is present.
func (r Reading) Get() (string, bool) { return r.value, r.present }

// IsPresent reports whether the reading holds a value.
func (r Reading) IsPresent() bool { return r.present }

func (r Reading) String() string {
	if !r.present {
		return "<absent>"
	}
	return fmt.Sprintf("%q", r.value)
}
