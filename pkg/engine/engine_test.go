package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokclean/pkg/classifier"
	"tokclean/pkg/state"
)

// stubClassifier returns canned verdicts and records call order
type stubClassifier struct {
	invalid map[string]string // handle -> reason
	calls   []string
}

func (s *stubClassifier) Classify(ctx context.Context, handle string) classifier.AccountRecord {
	s.calls = append(s.calls, handle)
	if reason, ok := s.invalid[handle]; ok {
		return classifier.AccountRecord{Handle: handle, Verdict: classifier.VerdictInvalid, Reason: reason}
	}
	return classifier.AccountRecord{Handle: handle, Verdict: classifier.VerdictValid}
}

// stubExecutor records unfollow calls and can fail selected handles
type stubExecutor struct {
	calls     []string
	failFor   map[string]error
	afterCall func(handle string)
}

func (s *stubExecutor) Unfollow(ctx context.Context, handle string) error {
	s.calls = append(s.calls, handle)
	var err error
	if s.failFor != nil {
		err = s.failFor[handle]
	}
	if s.afterCall != nil {
		s.afterCall(handle)
	}
	return err
}

type stubInterrupt struct{ flag bool }

func (s *stubInterrupt) Interrupted() bool { return s.flag }

// countingPacer records waits without sleeping
type countingPacer struct {
	probeWaits  int
	actionWaits int
}

func (p *countingPacer) WaitAction(ctx context.Context) error       { p.actionWaits++; return nil }
func (p *countingPacer) WaitProfileCheck(ctx context.Context) error { p.probeWaits++; return nil }

type collectSink struct {
	records []classifier.AccountRecord
	err     error
}

func (s *collectSink) WriteRecord(record classifier.AccountRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, record)
	return nil
}

func newTestStore(t *testing.T) *state.Store {
	t.Helper()
	store, err := state.NewStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	return store
}

func invalidAll(handles ...string) map[string]string {
	m := make(map[string]string, len(handles))
	for _, h := range handles {
		m[h] = classifier.ReasonNoContent
	}
	return m
}

func TestRunBatchBound(t *testing.T) {
	store := newTestStore(t)
	executor := &stubExecutor{}
	e := New(Deps{
		Store:      store,
		Classifier: &stubClassifier{invalid: invalidAll("a", "b", "c")},
		Executor:   executor,
	}, Options{BatchSize: 2})

	summary := e.Run(context.Background(), []string{"a", "b", "c"})

	assert.Equal(t, StatusCompleted, summary.Status)
	assert.Equal(t, 3, summary.Scanned)
	assert.Equal(t, 3, summary.Found)
	assert.Equal(t, 2, summary.Attempted)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Pending)
	assert.Equal(t, []string{"a", "b"}, executor.calls)

	assert.Equal(t, 3, store.ProcessedCount(), "all classified handles marked processed")
	assert.Equal(t, 2, store.UnfollowedCount(), "only batch-bound actions recorded")
	assert.Nil(t, store.LastRun(), "the engine never stamps the run time")
}

func TestRunDryRun(t *testing.T) {
	store := newTestStore(t)
	e := New(Deps{
		Store:      store,
		Classifier: &stubClassifier{invalid: invalidAll("a", "b", "c", "d", "e")},
		Executor:   nil, // never invoked under dry run
	}, Options{BatchSize: 5, DryRun: true})

	summary := e.Run(context.Background(), []string{"a", "b", "c", "d", "e"})

	assert.Equal(t, StatusCompleted, summary.Status)
	assert.Equal(t, 5, summary.Planned)
	assert.Equal(t, 0, summary.Attempted)
	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, 5, store.ProcessedCount(), "dry run still marks handles processed")
	assert.Equal(t, 0, store.UnfollowedCount(), "dry run records no unfollows")
}

func TestRunInterruptBetweenActions(t *testing.T) {
	store := newTestStore(t)
	interrupts := &stubInterrupt{}
	executor := &stubExecutor{
		afterCall: func(string) { interrupts.flag = true },
	}
	e := New(Deps{
		Store:      store,
		Classifier: &stubClassifier{invalid: invalidAll("a", "b", "c", "d", "e")},
		Executor:   executor,
		Interrupts: interrupts,
	}, Options{BatchSize: 5})

	summary := e.Run(context.Background(), []string{"a", "b", "c", "d", "e"})

	assert.Equal(t, StatusAborted, summary.Status)
	assert.Equal(t, 1, summary.Succeeded, "the in-flight action finishes before the stop")
	assert.Equal(t, 4, summary.Pending)
	assert.Len(t, executor.calls, 1)
	assert.Equal(t, 1, store.UnfollowedCount())
	assert.Nil(t, store.LastRun())
}

func TestRunSkipsProcessedHandles(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.MarkProcessed("old_timer"))

	c := &stubClassifier{}
	e := New(Deps{Store: store, Classifier: c}, Options{BatchSize: 5})

	summary := e.Run(context.Background(), []string{"old_timer", "newcomer"})

	assert.Equal(t, StatusCompleted, summary.Status)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Scanned)
	assert.Equal(t, []string{"newcomer"}, c.calls, "processed handles never reach the classifier")
}

func TestRunHonorsMaxToReview(t *testing.T) {
	store := newTestStore(t)
	c := &stubClassifier{}
	e := New(Deps{Store: store, Classifier: c}, Options{BatchSize: 5, MaxToReview: 2})

	summary := e.Run(context.Background(), []string{"a", "b", "c", "d"})

	assert.Equal(t, StatusCompleted, summary.Status)
	assert.Equal(t, 2, summary.Scanned)
	assert.Len(t, c.calls, 2)
}

func TestRunContinuesAfterFailedAction(t *testing.T) {
	store := newTestStore(t)
	executor := &stubExecutor{
		failFor: map[string]error{"b": errors.New("button not found")},
	}
	e := New(Deps{
		Store:      store,
		Classifier: &stubClassifier{invalid: invalidAll("a", "b", "c")},
		Executor:   executor,
	}, Options{BatchSize: 3})

	summary := e.Run(context.Background(), []string{"a", "b", "c"})

	assert.Equal(t, StatusCompleted, summary.Status)
	assert.Equal(t, 3, summary.Attempted)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, []string{"a", "b", "c"}, executor.calls, "one attempt per handle, never a retry")

	assert.True(t, store.IsProcessed("b"), "failed handle stays processed")
	assert.False(t, store.HasUnfollowed("b"), "failed handle is not recorded as unfollowed")
}

func TestRunPacesProbesAndActions(t *testing.T) {
	store := newTestStore(t)
	pacer := &countingPacer{}
	e := New(Deps{
		Store:      store,
		Classifier: &stubClassifier{invalid: invalidAll("a", "b", "c")},
		Executor:   &stubExecutor{},
		Pacer:      pacer,
	}, Options{BatchSize: 3})

	e.Run(context.Background(), []string{"a", "b", "c"})

	assert.Equal(t, 2, pacer.probeWaits, "waits between probes, not before the first")
	assert.Equal(t, 2, pacer.actionWaits, "waits between actions, not after the last")
}

func TestRunWritesCandidatesToSink(t *testing.T) {
	store := newTestStore(t)
	sink := &collectSink{}
	e := New(Deps{
		Store:      store,
		Classifier: &stubClassifier{invalid: map[string]string{"bad": classifier.ReasonBanned}},
		Executor:   &stubExecutor{},
		Sink:       sink,
	}, Options{BatchSize: 5})

	e.Run(context.Background(), []string{"good", "bad"})

	require.Len(t, sink.records, 1, "only invalid accounts are exported")
	assert.Equal(t, "bad", sink.records[0].Handle)
	assert.Equal(t, classifier.ReasonBanned, sink.records[0].Reason)
}

func TestRunToleratesSinkFailure(t *testing.T) {
	store := newTestStore(t)
	sink := &collectSink{err: errors.New("disk full")}
	e := New(Deps{
		Store:      store,
		Classifier: &stubClassifier{invalid: invalidAll("bad")},
		Executor:   &stubExecutor{},
		Sink:       sink,
	}, Options{BatchSize: 5})

	summary := e.Run(context.Background(), []string{"bad"})

	assert.Equal(t, StatusCompleted, summary.Status)
	assert.Equal(t, 1, summary.Succeeded, "export failures never block the run")
}

func TestRunSurvivesPersistenceFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	store, err := state.NewStore(filepath.Join(dir, "state.json"))
	require.NoError(t, err)
	store.Load()

	// Make every save fail by removing the directory out from under it
	require.NoError(t, os.RemoveAll(dir))

	e := New(Deps{
		Store:      store,
		Classifier: &stubClassifier{invalid: invalidAll("a")},
		Executor:   &stubExecutor{},
	}, Options{BatchSize: 1})

	summary := e.Run(context.Background(), []string{"a"})

	assert.Equal(t, StatusCompleted, summary.Status, "persistence failures are logged, never fatal")
	assert.Equal(t, 1, summary.Succeeded)
}

func TestRunEmptyFollowing(t *testing.T) {
	store := newTestStore(t)
	e := New(Deps{Store: store, Classifier: &stubClassifier{}}, Options{BatchSize: 5})

	summary := e.Run(context.Background(), nil)

	assert.Equal(t, StatusCompleted, summary.Status)
	assert.Zero(t, summary.Scanned)
	assert.Zero(t, summary.Found)
}

func TestRunCancelledContext(t *testing.T) {
	store := newTestStore(t)
	c := &stubClassifier{}
	e := New(Deps{Store: store, Classifier: c}, Options{BatchSize: 5})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := e.Run(ctx, []string{"a", "b"})

	assert.Equal(t, StatusAborted, summary.Status)
	assert.Empty(t, c.calls, "nothing is classified after cancellation")
}

func TestRunPhaseCallbacks(t *testing.T) {
	store := newTestStore(t)
	e := New(Deps{
		Store:      store,
		Classifier: &stubClassifier{invalid: invalidAll("a")},
		Executor:   &stubExecutor{},
	}, Options{BatchSize: 1})

	var phases []Phase
	var scans, actions int
	e.OnPhase = func(p Phase) { phases = append(phases, p) }
	e.OnScan = func(scanned, discovered int, record classifier.AccountRecord) { scans++ }
	e.OnAction = func(handle string, dryRun bool, err error) { actions++ }

	e.Run(context.Background(), []string{"a"})

	assert.Equal(t, []Phase{PhaseScanning, PhaseProcessing, PhaseDone}, phases)
	assert.Equal(t, 1, scans)
	assert.Equal(t, 1, actions)
}
