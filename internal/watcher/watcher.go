package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/sheetwatch/internal/errors"
	"git.home.luguber.info/inful/sheetwatch/internal/logfields"
	"git.home.luguber.info/inful/sheetwatch/internal/metrics"
	"git.home.luguber.info/inful/sheetwatch/internal/observability"
	"git.home.luguber.info/inful/sheetwatch/internal/registry"
	"git.home.luguber.info/inful/sheetwatch/internal/retry"
	"git.home.luguber.info/inful/sheetwatch/internal/state"
)

// CellReader fetches the current value of a target.
type CellReader interface {
	Read(ctx context.Context, t registry.Target) (string, error)
}

// Notifier delivers a formatted change message.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// StateStore loads and persists the StateRecord.
type StateStore interface {
	Load(ctx context.Context) state.Record
	Save(ctx context.Context, r state.Record) error
}

// Phase is the scheduler state.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseSeeding      Phase = "seeding"
	PhasePolling      Phase = "polling"
	PhaseBackoff      Phase = "backoff"
	PhaseShuttingDown Phase = "shutting_down"
)

// Defaults for Watcher options.
const (
	DefaultIntervalUnits    = 60
	DefaultCallTimeoutUnits = 10
	DefaultUnit             = time.Second
)

// Watcher owns the StateRecord for the duration of a run.
type Watcher struct {
	targets  []registry.Target
	reader   CellReader
	notifier Notifier
	store    StateStore

	interval    int
	unit        time.Duration
	callTimeout time.Duration
	clock       clockwork.Clock
	shutdown    *Shutdown
	recorder    metrics.Recorder
	backoff     *retry.Backoff
	newCycleID  func() string
	sleep       sleeper

	record state.Record
	dirty  bool
	phase  Phase
}

// Option customizes a Watcher.
type Option func(*Watcher)

// WithInterval sets the poll interval in time units (floored at 1).
func WithInterval(units int) Option {
	return func(w *Watcher) { w.interval = max(units, 1) }
}

// WithUnit sets the length of one time unit.
func WithUnit(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.unit = d
		}
	}
}

// WithCallTimeout bounds every read and notify call.
func WithCallTimeout(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.callTimeout = d
		}
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clockwork.Clock) Option {
	return func(w *Watcher) { w.clock = c }
}

// WithShutdown shares a shutdown flag with the caller.
func WithShutdown(s *Shutdown) Option {
	return func(w *Watcher) { w.shutdown = s }
}

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(w *Watcher) {
		if r != nil {
			w.recorder = r
		}
	}
}

// WithBackoffPolicy overrides the cycle-level backoff policy.
func WithBackoffPolicy(p retry.Policy) Option {
	return func(w *Watcher) { w.backoff = retry.NewBackoff(p) }
}

// New creates a Watcher over targets. The targets slice is copied.
func New(targets []registry.Target, reader CellReader, notifier Notifier, store StateStore, opts ...Option) *Watcher {
	w := &Watcher{
		targets:    append([]registry.Target(nil), targets...),
		reader:     reader,
		notifier:   notifier,
		store:      store,
		interval:   DefaultIntervalUnits,
		unit:       DefaultUnit,
		clock:      clockwork.NewRealClock(),
		shutdown:   NewShutdown(),
		recorder:   metrics.NoopRecorder{},
		backoff:    retry.NewBackoff(retry.DefaultPolicy()),
		newCycleID: uuid.NewString,
		phase:      PhaseIdle,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.callTimeout == 0 {
		w.callTimeout = DefaultCallTimeoutUnits * w.unit
	}
	w.sleep = &sliceSleeper{clock: w.clock, unit: w.unit, shutdown: w.shutdown}
	return w
}

// Shutdown returns the flag observed by the loop.
func (w *Watcher) Shutdown() *Shutdown { return w.shutdown }

// Phase returns the current scheduler state.
func (w *Watcher) Phase() Phase { return w.phase }

// Snapshot returns a copy of the in-memory StateRecord.
func (w *Watcher) Snapshot() state.Record { return w.record.Clone() }

// Run loads the StateRecord, seeds it, then polls until shutdown is
// requested. Errors inside the loop never end it; Run returns nil on a clean
// shutdown.
func (w *Watcher) Run(ctx context.Context) error {
	w.record = w.store.Load(ctx)
	slog.Info("Starting sheet watch",
		logfields.Count(len(w.targets)),
		slog.Int("interval", w.interval),
		slog.Duration("unit", w.unit))

	if !w.shutdown.Requested() {
		w.Seed(ctx)
	}

	for !w.shutdown.Requested() {
		w.Cycle(ctx)
		units := w.backoff.SleepUnits(w.interval)
		slog.Debug("Sleeping", logfields.SleepUnits(units), logfields.Phase(string(w.phase)))
		if !w.sleep.Sleep(units) {
			break
		}
	}

	w.phase = PhaseShuttingDown
	slog.Info("Exited cleanly.")
	return nil
}

// Seed performs the one-time initial pass. It records first values without
// notifying and persists when anything was recorded, or when the record was
// empty beforehand so a state file exists after the first run.
func (w *Watcher) Seed(ctx context.Context) {
	w.phase = PhaseSeeding
	wasEmpty := len(w.record) == 0
	if err := w.pass(ctx, PhaseSeeding, wasEmpty); err != nil {
		// The first poll cycle follows immediately and retries the save.
		w.recorder.IncCycleFailure()
		observability.ErrorContext(observability.WithPhase(ctx, string(PhaseSeeding)),
			"Seeding failed", logfields.Error(err))
	}
}

// Cycle performs one poll pass and updates the backoff state. It returns the
// cycle-level error, if any.
func (w *Watcher) Cycle(ctx context.Context) error {
	if w.phase != PhaseBackoff {
		w.phase = PhasePolling
	}
	start := w.clock.Now()
	err := w.pass(ctx, w.phase, false)
	w.recorder.ObserveCycleDuration(w.clock.Since(start))

	if err != nil {
		units := w.backoff.Fail()
		w.phase = PhaseBackoff
		w.recorder.IncCycleFailure()
		w.recorder.SetBackoff(units)
		slog.Error("Poll error", logfields.Error(err), logfields.Backoff(units))
		return err
	}

	if w.backoff.Active() {
		slog.Info("Poll recovered; backoff reset")
	}
	w.backoff.Reset()
	w.phase = PhasePolling
	w.recorder.SetBackoff(w.backoff.Current())
	return nil
}

// pass reads every target in order, applies Detect, and persists when the
// record is dirty (or force is set). Per-target failures are logged and
// skipped; a cycle-scoped failure aborts the pass.
func (w *Watcher) pass(ctx context.Context, phase Phase, force bool) (err error) {
	ctx = observability.WithCycleID(ctx, w.newCycleID())
	ctx = observability.WithPhase(ctx, string(phase))

	defer func() {
		if r := recover(); r != nil {
			err = errors.CycleError("panic during poll cycle").
				WithContext("panic", fmt.Sprint(r)).
				Build()
		}
	}()

	for _, t := range w.targets {
		mutated, terr := w.observe(ctx, t)
		if terr != nil {
			if errors.IsCycleScoped(terr) {
				return terr
			}
			observability.ErrorContext(ctx, "Target failed; will retry next cycle",
				logfields.Target(t.DisplayName), logfields.Error(terr))
			continue
		}
		if mutated {
			w.dirty = true
		}
	}

	// A forced save that fails stays pending until a later cycle succeeds.
	w.dirty = w.dirty || force
	if w.dirty {
		return w.persist(ctx)
	}
	return nil
}

// observe handles one target. It returns whether the record changed.
func (w *Watcher) observe(ctx context.Context, t registry.Target) (bool, error) {
	current, err := w.read(ctx, t)
	w.recorder.IncRead(metrics.Result(err))
	if err != nil {
		if errors.IsCycleScoped(err) {
			return false, err
		}
		observability.ErrorContext(ctx, "Error reading cell",
			logfields.Target(t.DisplayName), logfields.Cell(t.A1Range()), logfields.Error(err))
	}

	previous := Absent()
	if v, ok := w.record.Get(t.DisplayName); ok {
		previous = Present(v)
	}

	switch outcome := Detect(previous, current); outcome {
	case OutcomeUnavailable:
		return false, nil

	case OutcomeSeed:
		v, _ := current.Get()
		w.record[t.DisplayName] = v
		w.recorder.IncSeed()
		observability.InfoContext(ctx, "Seeding state",
			logfields.Target(t.DisplayName), logfields.Current(v))
		return true, nil

	case OutcomeChange:
		prev, _ := previous.Get()
		curr, _ := current.Get()
		observability.InfoContext(ctx, "Change detected",
			logfields.Target(t.DisplayName), logfields.Previous(prev), logfields.Current(curr))
		if err := w.notify(ctx, FormatChange(t.DisplayName, prev, curr)); err != nil {
			return false, err
		}
		w.record[t.DisplayName] = curr
		w.recorder.IncChange()
		return true, nil

	default:
		observability.DebugContext(ctx, "Unchanged", logfields.Target(t.DisplayName))
		return false, nil
	}
}

func (w *Watcher) read(ctx context.Context, t registry.Target) (Reading, error) {
	callCtx, cancel := context.WithTimeout(ctx, w.callTimeout)
	defer cancel()

	v, err := w.reader.Read(callCtx, t)
	if err != nil {
		if !errors.IsClassified(err) {
			err = errors.ReaderError(err, "read cell").WithContext("target", t.DisplayName).Build()
		}
		return Absent(), err
	}
	return Present(v), nil
}

func (w *Watcher) notify(ctx context.Context, text string) error {
	callCtx, cancel := context.WithTimeout(ctx, w.callTimeout)
	defer cancel()

	err := w.notifier.Notify(callCtx, text)
	w.recorder.IncNotification(metrics.Result(err))
	if err != nil && !errors.IsClassified(err) {
		err = errors.NotifierError(err, "deliver notification").Build()
	}
	return err
}

func (w *Watcher) persist(ctx context.Context) error {
	err := w.store.Save(ctx, w.record)
	w.recorder.IncStateSave(metrics.Result(err))
	if err != nil {
		if !errors.IsCycleScoped(err) {
			err = errors.StateError(err, "save state").Build()
		}
		return err
	}
	w.dirty = false
	observability.DebugContext(ctx, "State saved", logfields.Count(len(w.record)))
	return nil
}
