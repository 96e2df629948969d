package metrics

import "time"

// ResultLabel enumerates outcome categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailure ResultLabel = "failure"
)

// Recorder defines observability hooks for the poll loop. Implementations
// must tolerate being called from a single goroutine only.
type Recorder interface {
	IncRead(result ResultLabel)
	IncSeed()
	IncChange()
	IncNotification(result ResultLabel)
	IncStateSave(result ResultLabel)
	IncCycleFailure()
	ObserveCycleDuration(d time.Duration)
	SetBackoff(units int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncRead(ResultLabel)                {}
func (NoopRecorder) IncSeed()                           {}
func (NoopRecorder) IncChange()                         {}
func (NoopRecorder) IncNotification(ResultLabel)        {}
func (NoopRecorder) IncStateSave(ResultLabel)           {}
func (NoopRecorder) IncCycleFailure()                   {}
func (NoopRecorder) ObserveCycleDuration(time.Duration) {}
func (NoopRecorder) SetBackoff(int)                     {}

// Result maps an error to a ResultLabel.
func Result(err error) ResultLabel {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
