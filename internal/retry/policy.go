// Package retry holds the cycle-level backoff policy of the watch loop.
package retry

import "fmt"

// Defaults match the daemon's documented behaviour: the multiplier doubles
// from 1 on every consecutive failed cycle and never exceeds 300 units.
const (
	DefaultMaxUnits = 300
	baseUnits       = 1
)

// Policy describes exponential growth in whole time units.
// It is immutable after construction.
type Policy struct {
	Max int // cap for growth
}

// DefaultPolicy returns the 1→2→4…300 policy.
func DefaultPolicy() Policy {
	return Policy{Max: DefaultMaxUnits}
}

// Delay returns the backoff in units after the given number of consecutive
// failures (0 failures => 1, i.e. no backoff).
func (p Policy) Delay(failures int) int {
	d := baseUnits
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= p.Max {
			return p.Max
		}
	}
	return d
}

// Validate ensures invariants; returns error if policy impossible to apply.
func (p Policy) Validate() error {
	if p.Max < baseUnits {
		return fmt.Errorf("max must be >= %d", baseUnits)
	}
	return nil
}

// Backoff tracks the current multiplier across cycles. Not safe for
// concurrent use; the watch loop owns it.
type Backoff struct {
	policy   Policy
	failures int
}

// NewBackoff starts at multiplier 1.
func NewBackoff(p Policy) *Backoff {
	if p.Validate() != nil {
		p = DefaultPolicy()
	}
	return &Backoff{policy: p}
}

// Fail records a failed cycle and returns the new multiplier.
func (b *Backoff) Fail() int {
	if b.Current() < b.policy.Max {
		b.failures++
	}
	return b.Current()
}

// Reset returns the multiplier to 1 after a successful cycle.
func (b *Backoff) Reset() { b.failures = 0 }

// Current returns the multiplier.
func (b *Backoff) Current() int { return b.policy.Delay(b.failures) }

// Active reports whether a failure is currently being backed off.
func (b *Backoff) Active() bool { return b.Current() != baseUnits }

// SleepUnits returns how long to wait before the next cycle: the poll
// interval when not backing off, otherwise the backoff delay. Never below 1.
func (b *Backoff) SleepUnits(interval int) int {
	units := interval
	if b.Active() {
		units = b.Current()
	}
	return max(units, 1)
}
