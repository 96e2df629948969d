package watcher

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sheetwatch/internal/errors"
	"git.home.luguber.info/inful/sheetwatch/internal/registry"
	"git.home.luguber.info/inful/sheetwatch/internal/state"
)

func newLoadedWatcher(t *testing.T, names []string, r CellReader, n Notifier, s StateStore, opts ...Option) *Watcher {
	t.Helper()
	w := New(targets(names...), r, n, s, opts...)
	w.record = s.Load(context.Background())
	return w
}

func TestSeedRecordsWithoutNotifying(t *testing.T) {
	reader := newScriptedReader().set("A", "x").set("B", "y")
	notifier := &recordingNotifier{}
	store := &memStore{}
	w := newLoadedWatcher(t, []string{"A", "B"}, reader, notifier, store)

	w.Seed(context.Background())

	require.Empty(t, notifier.messages)
	require.Equal(t, state.Record{"A": "x", "B": "y"}, store.record)
	require.Equal(t, 1, store.saves)
}

func TestSeedPersistsEmptyRecord(t *testing.T) {
	reader := newScriptedReader()
	store := &memStore{}
	w := newLoadedWatcher(t, []string{"A"}, reader, &recordingNotifier{}, store)

	w.Seed(context.Background())

	require.Equal(t, 1, store.saves)
	require.Empty(t, store.record)
}

func TestSeedFailedForcedSaveRetriesNextCycle(t *testing.T) {
	down := stderrors.New("sheets unavailable")
	reader := newScriptedReader().fail("A", down, down, down)
	store := &memStore{errs: []error{stderrors.New("disk full")}}
	w := newLoadedWatcher(t, []string{"A"}, reader, &recordingNotifier{}, store)

	w.Seed(context.Background())
	require.Equal(t, 1, store.attempts)
	require.Zero(t, store.saves)
	require.True(t, w.dirty)

	require.NoError(t, w.Cycle(context.Background()))
	require.Equal(t, 2, store.attempts)
	require.Equal(t, 1, store.saves)
	require.False(t, w.dirty)

	require.NoError(t, w.Cycle(context.Background()))
	require.Equal(t, 2, store.attempts, "nothing pending after a successful save")
}

func TestSeedWithoutMutationSkipsSave(t *testing.T) {
	reader := newScriptedReader().set("A", "x")
	store := &memStore{record: state.Record{"A": "x"}}
	w := newLoadedWatcher(t, []string{"A"}, reader, &recordingNotifier{}, store)

	w.Seed(context.Background())

	require.Zero(t, store.saves)
}

func TestSeedNotifiesChangeAgainstPersistedState(t *testing.T) {
	reader := newScriptedReader().set("A", "new")
	notifier := &recordingNotifier{}
	store := &memStore{record: state.Record{"A": "old"}}
	w := newLoadedWatcher(t, []string{"A"}, reader, notifier, store)

	w.Seed(context.Background())
	require.Equal(t, []string{"A: old -> *new*"}, notifier.messages)
	require.Equal(t, "new", store.record["A"])
}

func TestCycleNotifiesOncePerChange(t *testing.T) {
	reader := newScriptedReader().set("A", "x", "x").set("B", "y", "z")
	notifier := &recordingNotifier{}
	store := &memStore{}
	w := newLoadedWatcher(t, []string{"A", "B"}, reader, notifier, store)

	w.Seed(context.Background())
	require.NoError(t, w.Cycle(context.Background()))

	require.Equal(t, []string{"B: y -> *z*"}, notifier.messages)
	require.Equal(t, state.Record{"A": "x", "B": "z"}, store.record)
	require.Equal(t, 2, store.saves)

	// Nothing changes: no notification and no save.
	require.NoError(t, w.Cycle(context.Background()))
	require.Len(t, notifier.messages, 1)
	require.Equal(t, 2, store.saves)
}

func TestCycleReadFailureIsIsolated(t *testing.T) {
	reader := newScriptedReader().
		set("A", "x", "x2").
		set("B", "y", "z").
		fail("A", nil, stderrors.New("timeout"))
	notifier := &recordingNotifier{}
	store := &memStore{}
	w := newLoadedWatcher(t, []string{"A", "B"}, reader, notifier, store)

	w.Seed(context.Background())
	require.NoError(t, w.Cycle(context.Background()))

	require.Equal(t, []string{"B: y -> *z*"}, notifier.messages)
	require.Equal(t, "x", store.record["A"])
	require.False(t, w.backoff.Active())
}

func TestCycleAbsentThenPresentSeedsWithoutNotifying(t *testing.T) {
	reader := newScriptedReader().
		set("A", "x").
		fail("A", stderrors.New("sheets unavailable"))
	notifier := &recordingNotifier{}
	store := &memStore{record: state.Record{"B": "y"}}
	w := newLoadedWatcher(t, []string{"A"}, reader, notifier, store)

	w.Seed(context.Background())
	require.Zero(t, store.saves)

	require.NoError(t, w.Cycle(context.Background()))
	require.Empty(t, notifier.messages)
	require.Equal(t, "x", store.record["A"])
	require.Equal(t, 1, store.saves)
}

func TestCycleNotifyFailureRetriesNextCycle(t *testing.T) {
	reader := newScriptedReader().set("A", "x", "y")
	notifier := &recordingNotifier{errs: []error{stderrors.New("bad gateway")}}
	store := &memStore{}
	w := newLoadedWatcher(t, []string{"A"}, reader, notifier, store)

	w.Seed(context.Background())
	require.NoError(t, w.Cycle(context.Background()))
	require.Empty(t, notifier.messages)
	require.Equal(t, "x", store.record["A"])
	require.Equal(t, 1, store.saves)

	require.NoError(t, w.Cycle(context.Background()))
	require.Equal(t, []string{"A: x -> *y*"}, notifier.messages)
	require.Equal(t, 2, notifier.attempts)
	require.Equal(t, "y", store.record["A"])
}

func TestCycleScopedReadErrorAbortsCycle(t *testing.T) {
	quota := errors.CycleError("quota exhausted").Build()
	reader := newScriptedReader().
		set("A", "x").
		set("B", "y", "z").
		fail("A", nil, quota)
	notifier := &recordingNotifier{}
	store := &memStore{}
	w := newLoadedWatcher(t, []string{"A", "B"}, reader, notifier, store)

	w.Seed(context.Background())
	err := w.Cycle(context.Background())

	require.ErrorIs(t, err, quota)
	require.Equal(t, 1, reader.calls["B"], "B must not be read after the abort")
	require.Empty(t, notifier.messages)
	require.Equal(t, PhaseBackoff, w.Phase())
	require.Equal(t, 2, w.backoff.Current())
}

func TestCycleSaveFailureKeepsRecordDirty(t *testing.T) {
	reader := newScriptedReader().set("A", "x", "y")
	notifier := &recordingNotifier{}
	store := &memStore{errs: []error{nil, stderrors.New("disk full")}}
	w := newLoadedWatcher(t, []string{"A"}, reader, notifier, store)

	w.Seed(context.Background())
	err := w.Cycle(context.Background())
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryState))
	require.Equal(t, "x", store.record["A"])
	require.True(t, w.dirty)

	// No new change, but the pending save is retried and backoff resets.
	require.NoError(t, w.Cycle(context.Background()))
	require.Equal(t, "y", store.record["A"])
	require.Len(t, notifier.messages, 1)
	require.False(t, w.backoff.Active())
	require.Equal(t, PhasePolling, w.Phase())
}

func TestCyclePanicBecomesCycleError(t *testing.T) {
	reader := newScriptedReader()
	reader.panics = true
	w := newLoadedWatcher(t, []string{"A"}, reader, &recordingNotifier{}, &memStore{})

	err := w.Cycle(context.Background())
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryCycle))
}

func TestRunBackoffSequence(t *testing.T) {
	quota := errors.CycleError("quota exhausted").Build()
	reader := newScriptedReader().
		set("A", "x").
		fail("A", nil, quota, quota, quota)
	shutdown := NewShutdown()
	w := New(targets("A"), reader, &recordingNotifier{}, &memStore{},
		WithInterval(5), WithShutdown(shutdown))
	sl := &recordingSleeper{stopAfter: 5, shutdown: shutdown}
	w.sleep = sl

	require.NoError(t, w.Run(context.Background()))

	require.Equal(t, []int{2, 4, 8, 5, 5}, sl.units)
	require.Equal(t, PhaseShuttingDown, w.Phase())
}

func TestRunBackoffCaps(t *testing.T) {
	quota := errors.CycleError("quota exhausted").Build()
	errs := make([]error, 12)
	for i := 1; i < len(errs); i++ {
		errs[i] = quota
	}
	reader := newScriptedReader().set("A", "x").fail("A", errs...)
	shutdown := NewShutdown()
	w := New(targets("A"), reader, &recordingNotifier{}, &memStore{},
		WithInterval(60), WithShutdown(shutdown))
	sl := &recordingSleeper{stopAfter: 10, shutdown: shutdown}
	w.sleep = sl

	require.NoError(t, w.Run(context.Background()))

	require.Equal(t, []int{2, 4, 8, 16, 32, 64, 128, 256, 300, 300}, sl.units)
}

func TestRunShutdownBeforeStart(t *testing.T) {
	reader := newScriptedReader().set("A", "x")
	shutdown := NewShutdown()
	shutdown.Request()
	store := &memStore{}
	w := New(targets("A"), reader, &recordingNotifier{}, store, WithShutdown(shutdown))

	require.NoError(t, w.Run(context.Background()))
	require.Zero(t, reader.calls["A"])
	require.Zero(t, store.saves)
}

func TestRunExitsWithinOneUnitOfShutdown(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	shutdown := NewShutdown()
	reader := newScriptedReader().set("A", "x")
	w := New(targets("A"), reader, &recordingNotifier{}, &memStore{},
		WithInterval(100), WithUnit(time.Second), WithClock(clock), WithShutdown(shutdown))

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	start := clock.Now()
	shutdown.Request()
	clock.Advance(time.Second)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("watcher did not exit after shutdown")
	}
	require.LessOrEqual(t, clock.Since(start), time.Second)
}

func TestRunEndToEndWithJSONStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	reader := newScriptedReader().set("A", "x").set("B", "y")
	notifier := &recordingNotifier{}
	shutdown := NewShutdown()
	w := New(targets("A", "B"), reader, notifier, state.NewJSONStore(path), WithShutdown(shutdown))
	w.sleep = &recordingSleeper{stopAfter: 1, shutdown: shutdown}

	require.NoError(t, w.Run(context.Background()))
	_, err := os.Stat(path)
	require.NoError(t, err)
	require.Empty(t, notifier.messages)

	// Second run resumes from the persisted record.
	reader = newScriptedReader().set("A", "x").set("B", "z")
	shutdown = NewShutdown()
	w = New(targets("A", "B"), reader, notifier, state.NewJSONStore(path), WithShutdown(shutdown))
	w.sleep = &recordingSleeper{stopAfter: 1, shutdown: shutdown}

	require.NoError(t, w.Run(context.Background()))
	require.Equal(t, []string{"B: y -> *z*"}, notifier.messages)
	require.Equal(t, state.Record{"A": "x", "B": "z"}, state.NewJSONStore(path).Load(context.Background()))
}

func TestCheckDoesNotMutate(t *testing.T) {
	reader := newScriptedReader().set("A", "x").fail("B", stderrors.New("boom"))
	results := Check(context.Background(), targets("A", "B"), reader)

	require.Len(t, results, 2)
	require.Equal(t, "x", results[0].Value)
	require.NoError(t, results[0].Err)
	require.Error(t, results[1].Err)
	require.True(t, errors.HasCategory(results[1].Err, errors.CategoryReader))
}

func TestCallTimeoutBoundsRead(t *testing.T) {
	w := New(targets("A"), blockingReader{}, &recordingNotifier{}, &memStore{},
		WithCallTimeout(10*time.Millisecond))
	_, err := w.read(context.Background(), registry.Target{DisplayName: "A"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

type blockingReader struct{}

func (blockingReader) Read(ctx context.Context, _ registry.Target) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
