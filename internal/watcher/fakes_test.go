package watcher

import (
	"context"
	stderrors "errors"
	"sync"

	"git.home.luguber.info/inful/sheetwatch/internal/registry"
	"git.home.luguber.info/inful/sheetwatch/internal/state"
)

// scriptedReader returns queued results per target, then the last value.
type scriptedReader struct {
	mu     sync.Mutex
	values map[string][]string
	errs   map[string][]error
	calls  map[string]int
	panics bool
}

func newScriptedReader() *scriptedReader {
	return &scriptedReader{
		values: map[string][]string{},
		errs:   map[string][]error{},
		calls:  map[string]int{},
	}
}

func (r *scriptedReader) set(name string, values ...string) *scriptedReader {
	r.values[name] = values
	return r
}

func (r *scriptedReader) fail(name string, errs ...error) *scriptedReader {
	r.errs[name] = errs
	return r
}

func (r *scriptedReader) Read(_ context.Context, t registry.Target) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.panics {
		panic("reader exploded")
	}
	n := r.calls[t.DisplayName]
	r.calls[t.DisplayName]++

	if errs := r.errs[t.DisplayName]; n < len(errs) && errs[n] != nil {
		return "", errs[n]
	}
	values := r.values[t.DisplayName]
	if len(values) == 0 {
		return "", stderrors.New("no value scripted")
	}
	if n >= len(values) {
		return values[len(values)-1], nil
	}
	return values[n], nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	attempts int
	errs     []error
}

func (n *recordingNotifier) Notify(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	i := n.attempts
	n.attempts++
	if i < len(n.errs) && n.errs[i] != nil {
		return n.errs[i]
	}
	n.messages = append(n.messages, text)
	return nil
}

type memStore struct {
	record   state.Record
	saves    int
	attempts int
	errs     []error
}

func (s *memStore) Load(context.Context) state.Record {
	if s.record == nil {
		return state.NewRecord()
	}
	return s.record.Clone()
}

func (s *memStore) Save(_ context.Context, r state.Record) error {
	i := s.attempts
	s.attempts++
	if i < len(s.errs) && s.errs[i] != nil {
		return s.errs[i]
	}
	s.saves++
	s.record = r.Clone()
	return nil
}

// recordingSleeper records requested sleeps and requests shutdown after
// stopAfter sleeps.
type recordingSleeper struct {
	units     []int
	stopAfter int
	shutdown  *Shutdown
}

func (s *recordingSleeper) Sleep(units int) bool {
	s.units = append(s.units, units)
	if len(s.units) >= s.stopAfter {
		s.shutdown.Request()
		return false
	}
	return true
}

func targets(names ...string) []registry.Target {
	out := make([]registry.Target, 0, len(names))
	for _, n := range names {
		out = append(out, registry.Target{
			SpreadsheetID: "sheet-id",
			WorksheetName: "Sheet1",
			CellID:        "A1",
			DisplayName:   n,
		})
	}
	return out
}
