package cleaner

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokclean/pkg/classifier"
	"tokclean/pkg/config"
	"tokclean/pkg/engine"
	"tokclean/pkg/history"
	"tokclean/pkg/state"
)

// fakeSession counts lifecycle calls and can fail on demand
type fakeSession struct {
	acquires   int
	releases   int
	acquireErr error
	releaseErr error
}

func (f *fakeSession) Acquire(ctx context.Context) error {
	f.acquires++
	return f.acquireErr
}

func (f *fakeSession) Release() error {
	f.releases++
	return f.releaseErr
}

// fakeSource returns a fixed following list
type fakeSource struct {
	handles []string
	err     error
	calls   int
}

func (f *fakeSource) DiscoverFollowing(ctx context.Context) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.handles, nil
}

// fakeInspector marks the listed handles as banned profiles
type fakeInspector struct {
	banned map[string]bool
	calls  []string
}

func (f *fakeInspector) FetchEvidence(ctx context.Context, handle string) (classifier.Evidence, error) {
	f.calls = append(f.calls, handle)
	return classifier.Evidence{
		HasContent:   !f.banned[handle],
		BannedMarker: f.banned[handle],
	}, nil
}

// fakeExecutor records unfollow calls
type fakeExecutor struct {
	calls []string
}

func (f *fakeExecutor) Unfollow(ctx context.Context, handle string) error {
	f.calls = append(f.calls, handle)
	return nil
}

type fakeInterrupt struct {
	tripped bool
}

func (f *fakeInterrupt) Interrupted() bool {
	return f.tripped
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.RateLimit.RunDelaySeconds = 0
	cfg.RateLimit.ActionDelaySeconds = 0
	cfg.RateLimit.ProfileCheckDelaySeconds = 0
	cfg.Run.DryRun = false
	return cfg
}

func testStore(t *testing.T) *state.Store {
	t.Helper()
	store, err := state.NewStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	return store
}

func testJournal(t *testing.T) *history.Journal {
	t.Helper()
	journal, err := history.NewJournal(filepath.Join(t.TempDir(), "history.json"))
	require.NoError(t, err)
	return journal
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig()
	store := testStore(t)
	journal := testJournal(t)
	session := &fakeSession{}
	source := &fakeSource{handles: []string{"alive", "gone_a", "gone_b"}}
	inspector := &fakeInspector{banned: map[string]bool{"gone_a": true, "gone_b": true}}
	executor := &fakeExecutor{}

	c, err := New(cfg, Deps{
		Store:     store,
		Session:   session,
		Source:    source,
		Inspector: inspector,
		Executor:  executor,
		Journal:   journal,
	})
	require.NoError(t, err)

	report, err := c.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report.Summary)

	assert.Equal(t, engine.StatusCompleted, report.Summary.Status)
	assert.Equal(t, 3, report.Summary.Scanned)
	assert.Equal(t, 2, report.Summary.Found)
	assert.Equal(t, 2, report.Summary.Succeeded)
	assert.Equal(t, []string{"gone_a", "gone_b"}, executor.calls)

	// Completion stamps the last-run time
	require.NotNil(t, store.LastRun())
	assert.Equal(t, report.FinishedAt.UTC(), store.LastRun().UTC())

	// Session held exactly once, released exactly once
	assert.Equal(t, 1, session.acquires)
	assert.Equal(t, 1, session.releases)

	// Journal carries the run
	last, ok := journal.Last()
	require.True(t, ok)
	assert.Equal(t, report.RunID, last.RunID)
	assert.Equal(t, "completed", last.Status)
	assert.Equal(t, 2, last.Succeeded)
	assert.Len(t, report.RunID, 8)
}

func TestRunRateLimitGate(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.RunDelaySeconds = 3600

	store := testStore(t)
	recent := time.Now().Add(-time.Minute)
	require.NoError(t, store.SetLastRun(recent))

	journal := testJournal(t)
	session := &fakeSession{}
	source := &fakeSource{handles: []string{"anyone"}}

	c, err := New(cfg, Deps{
		Store:     store,
		Session:   session,
		Source:    source,
		Inspector: &fakeInspector{},
		Executor:  &fakeExecutor{},
		Journal:   journal,
	})
	require.NoError(t, err)

	report, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.RateLimited)
	assert.Nil(t, report.Summary)
	assert.Greater(t, report.Remaining, time.Duration(0))
	assert.False(t, report.NextEligibleAt.IsZero())

	// A refused run touches nothing external
	assert.Equal(t, 0, session.acquires)
	assert.Equal(t, 0, source.calls)

	last, ok := journal.Last()
	require.True(t, ok)
	assert.Equal(t, "skipped", last.Status)
}

func TestRunDryRunNeedsNoExecutor(t *testing.T) {
	cfg := testConfig()
	cfg.Run.DryRun = true

	store := testStore(t)
	source := &fakeSource{handles: []string{"gone_a", "gone_b"}}
	inspector := &fakeInspector{banned: map[string]bool{"gone_a": true, "gone_b": true}}

	c, err := New(cfg, Deps{
		Store:     store,
		Source:    source,
		Inspector: inspector,
	})
	require.NoError(t, err)

	report, err := c.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report.Summary)

	assert.Equal(t, engine.StatusCompleted, report.Summary.Status)
	assert.Equal(t, 2, report.Summary.Planned)
	assert.Equal(t, 0, report.Summary.Attempted)
	assert.Equal(t, 0, store.UnfollowedCount())

	// A completed dry run still pays the run delay: it executed probes
	assert.NotNil(t, store.LastRun())
}

func TestRunReleasesOnDiscoveryFailure(t *testing.T) {
	cfg := testConfig()
	session := &fakeSession{}
	source := &fakeSource{err: fmt.Errorf("following list did not load")}

	c, err := New(cfg, Deps{
		Store:     testStore(t),
		Session:   session,
		Source:    source,
		Inspector: &fakeInspector{},
		Executor:  &fakeExecutor{},
	})
	require.NoError(t, err)

	_, err = c.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discover following list")
	assert.Equal(t, 1, session.releases)
}

func TestRunAcquireFailure(t *testing.T) {
	cfg := testConfig()
	session := &fakeSession{acquireErr: fmt.Errorf("browser did not start")}
	source := &fakeSource{handles: []string{"anyone"}}

	c, err := New(cfg, Deps{
		Store:     testStore(t),
		Session:   session,
		Source:    source,
		Inspector: &fakeInspector{},
		Executor:  &fakeExecutor{},
	})
	require.NoError(t, err)

	_, err = c.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acquire session")

	// Discovery never ran, release was still attempted
	assert.Equal(t, 0, source.calls)
	assert.Equal(t, 1, session.releases)
}

func TestRunReleaseErrorNeverMasksSuccess(t *testing.T) {
	cfg := testConfig()
	session := &fakeSession{releaseErr: fmt.Errorf("browser refused to die")}
	source := &fakeSource{handles: []string{"alive"}}

	c, err := New(cfg, Deps{
		Store:     testStore(t),
		Session:   session,
		Source:    source,
		Inspector: &fakeInspector{},
		Executor:  &fakeExecutor{},
	})
	require.NoError(t, err)

	report, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, engine.StatusCompleted, report.Summary.Status)
}

func TestRunInterruptedRunKeepsGateOpen(t *testing.T) {
	cfg := testConfig()
	store := testStore(t)
	journal := testJournal(t)
	source := &fakeSource{handles: []string{"gone_a"}}
	inspector := &fakeInspector{banned: map[string]bool{"gone_a": true}}

	c, err := New(cfg, Deps{
		Store:      store,
		Source:     source,
		Inspector:  inspector,
		Executor:   &fakeExecutor{},
		Interrupts: &fakeInterrupt{tripped: true},
		Journal:    journal,
	})
	require.NoError(t, err)

	report, err := c.Run(context.Background())
	require.NoError(t, err, "an interrupted run is not an error")
	require.NotNil(t, report.Summary)

	assert.Equal(t, engine.StatusAborted, report.Summary.Status)
	assert.Nil(t, store.LastRun(), "aborted run must not pay the run delay")

	last, ok := journal.Last()
	require.True(t, ok)
	assert.Equal(t, "aborted", last.Status)
}

func TestNewValidatesDeps(t *testing.T) {
	cfg := testConfig()
	store := testStore(t)
	source := &fakeSource{}
	inspector := &fakeInspector{}

	_, err := New(cfg, Deps{Source: source, Inspector: inspector, Executor: &fakeExecutor{}})
	assert.Error(t, err, "missing store")

	_, err = New(cfg, Deps{Store: store, Inspector: inspector, Executor: &fakeExecutor{}})
	assert.Error(t, err, "missing source")

	_, err = New(cfg, Deps{Store: store, Source: source, Executor: &fakeExecutor{}})
	assert.Error(t, err, "missing inspector")

	// Real runs need an executor, dry runs do not
	_, err = New(cfg, Deps{Store: store, Source: source, Inspector: inspector})
	assert.Error(t, err, "missing executor outside dry run")

	cfg.Run.DryRun = true
	_, err = New(cfg, Deps{Store: store, Source: source, Inspector: inspector})
	assert.NoError(t, err)
}

func TestReportStatus(t *testing.T) {
	tests := []struct {
		name   string
		report Report
		want   string
	}{
		{"rate limited", Report{RateLimited: true}, "skipped"},
		{"no summary", Report{}, "failed"},
		{"completed", Report{Summary: &engine.Summary{Status: engine.StatusCompleted}}, "completed"},
		{"aborted", Report{Summary: &engine.Summary{Status: engine.StatusAborted}}, "aborted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.report.Status())
		})
	}
}
