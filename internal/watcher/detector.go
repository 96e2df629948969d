package watcher

import "fmt"

// Outcome classifies one comparison between a stored and a fresh reading.
type Outcome int

const (
	// OutcomeUnavailable means the fresh reading is absent: no mutation, no notification.
	OutcomeUnavailable Outcome = iota
	// OutcomeSeed records a first value without notifying.
	OutcomeSeed
	// OutcomeChange records a new value and notifies once.
	OutcomeChange
	// OutcomeUnchanged is a no-op.
	OutcomeUnchanged
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnavailable:
		return "unavailable"
	case OutcomeSeed:
		return "seed"
	case OutcomeChange:
		return "change"
	case OutcomeUnchanged:
		return "unchanged"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Mutates reports whether the outcome updates the StateRecord.
func (o Outcome) Mutates() bool {
	return o == OutcomeSeed || o == OutcomeChange
}

// Detect compares the previous and current readings of one target. Values are
// compared byte for byte.
func Detect(previous, current Reading) Outcome {
	curr, ok := current.Get()
	if !ok {
		return OutcomeUnavailable
	}
	prev, ok := previous.Get()
	if !ok {
		return OutcomeSeed
	}
	if prev == curr {
		return OutcomeUnchanged
	}
	return OutcomeChange
}

const emptyPlaceholder = "(empty)"

// FormatChange renders the notification text for a change of name from prev
// to curr. Empty values are shown as "(empty)".
func FormatChange(name, prev, curr string) string {
	return fmt.Sprintf("%s: %s -> *%s*", name, placeholder(prev), placeholder(curr))
}

func placeholder(v string) string {
	if v == "" {
		return emptyPlaceholder
	}
	return v
}
