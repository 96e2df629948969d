package watcher

import (
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
)

// Shutdown is the process-wide stop request. It is written from the signal
// goroutine and read by the loop at its checkpoints.
type Shutdown struct {
	requested atomic.Bool
}

// NewShutdown returns an unset flag.
func NewShutdown() *Shutdown { return &Shutdown{} }

// Request asks the loop to stop. Safe to call more than once and from any goroutine.
func (s *Shutdown) Request() { s.requested.Store(true) }

// Requested reports whether a stop was requested.
func (s *Shutdown) Requested() bool { return s.requested.Load() }

// NotifyOnSignal sets the flag when any of sigs arrives. All signals are
// handled identically. The returned function stops signal delivery.
func (s *Shutdown) NotifyOnSignal(sigs ...os.Signal) (stop func()) {
	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, sigs...)

	go func() {
		for {
			select {
			case sig := <-ch:
				slog.Info("Received signal; shutting down", slog.String("signal", sig.String()))
				s.Request()
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}
