// Package watcher implements the change-detection poll loop.
//
// A Watcher seeds its StateRecord once, then polls every target in registry
// order on each cycle. A change is notified exactly once and recorded; the
// first successful reading of a target is recorded silently (a seed). Read
// and notify failures are contained to their target. Cycle-level failures
// (state persistence, recovered panics, errors classified as cycle-scoped)
// switch the loop into exponential backoff.
//
// The loop is single-threaded. The only value shared with another goroutine
// is the Shutdown flag, which is observed at the top of every cycle and of
// every sleep slice of at most one time unit.
package watcher
