package watcher

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// sleeper waits a number of time units, returning false if interrupted.
type sleeper interface {
	Sleep(units int) bool
}

// sliceSleeper waits in slices of at most one unit, checking the shutdown
// flag before each slice.
type sliceSleeper struct {
	clock    clockwork.Clock
	unit     time.Duration
	shutdown *Shutdown
}

func (s *sliceSleeper) Sleep(units int) bool {
	remaining := time.Duration(units) * s.unit
	for remaining > 0 {
		if s.shutdown.Requested() {
			return false
		}
		slice := min(remaining, s.unit)
		<-s.clock.After(slice)
		remaining -= slice
	}
	return !s.shutdown.Requested()
}
