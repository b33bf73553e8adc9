package cleaner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tokclean/pkg/classifier"
	"tokclean/pkg/config"
	"tokclean/pkg/engine"
	"tokclean/pkg/errors"
	"tokclean/pkg/history"
	"tokclean/pkg/logger"
	"tokclean/pkg/ratelimit"
	"tokclean/pkg/state"
)

// Deps wires the orchestrator's collaborators. Session is optional for
// setups where the handle source manages its own lifetime; Executor may
// be nil when every run is a dry run. Journal and Sink are optional.
type Deps struct {
	Store      *state.Store
	Session    ResourceLifecycle
	Source     HandleSource
	Inspector  classifier.PageInspector
	Executor   engine.ActionExecutor
	Interrupts engine.InterruptSource
	Sink       engine.RecordSink
	Journal    *history.Journal
}

// Report is the outcome of one Run call
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	// RateLimited is true when the run-level gate refused admission.
	// NextEligibleAt and Remaining say when to try again.
	RateLimited    bool
	NextEligibleAt time.Time
	Remaining      time.Duration

	// Summary is nil when the run was rate limited
	Summary *engine.Summary
}

// Phases surfaced to progress views before the engine takes over. The
// engine's own phases follow unchanged.
const (
	PhaseLogin    engine.Phase = "login"
	PhaseDiscover engine.Phase = "discover"
)

// Status collapses the report into a single word for the journal
func (r *Report) Status() string {
	switch {
	case r.RateLimited:
		return "skipped"
	case r.Summary == nil:
		return "failed"
	default:
		return string(r.Summary.Status)
	}
}

// Cleaner orchestrates one cleanup run end to end: gate, acquire,
// discover, classify and unfollow, persist, release, report.
type Cleaner struct {
	cfg    *config.Config
	deps   Deps
	logger logger.Logger
	now    func() time.Time

	// RunID overrides the generated identifier when set, so a caller
	// can show it before Run returns
	RunID string

	// Progress callbacks forwarded to the engine when set
	OnPhase  func(phase engine.Phase)
	OnScan   func(scanned, discovered int, record classifier.AccountRecord)
	OnAction func(handle string, dryRun bool, err error)
}

// New creates a Cleaner from its configuration and collaborators
func New(cfg *config.Config, deps Deps) (*Cleaner, error) {
	if deps.Store == nil {
		return nil, errors.New(errors.ErrorTypeConfiguration, "state store is required")
	}
	if deps.Source == nil {
		return nil, errors.New(errors.ErrorTypeConfiguration, "handle source is required")
	}
	if deps.Inspector == nil {
		return nil, errors.New(errors.ErrorTypeConfiguration, "page inspector is required")
	}
	if !cfg.Run.DryRun && deps.Executor == nil {
		return nil, errors.New(errors.ErrorTypeConfiguration, "action executor is required outside dry run")
	}

	return &Cleaner{
		cfg:    cfg,
		deps:   deps,
		logger: logger.GetLogger(),
		now:    time.Now,
	}, nil
}

// Run executes one cleanup run. An interrupted run is not an error: the
// report's summary carries the Aborted status and partial counts. The
// error return covers failures that prevented the run from happening at
// all, like a session that would not come up or a following list that
// could not be read.
func (c *Cleaner) Run(ctx context.Context) (*Report, error) {
	runID := c.RunID
	if runID == "" {
		runID = uuid.NewString()[:8]
	}
	report := &Report{
		RunID:     runID,
		StartedAt: c.now(),
	}
	log := c.logger.WithField("run_id", report.RunID)

	logger.LogRunStart(report.RunID, c.cfg.Run.DryRun, c.cfg.RateLimit.BatchSize)

	// Run-level gate. A refused run does no scanning, no probing and
	// no unfollowing; it only reports the remaining wait.
	decision := ratelimit.ShouldRun(c.deps.Store.LastRun(), c.cfg.RateLimit.RunDelay(), report.StartedAt)
	if !decision.Allowed {
		logger.LogRateLimited(decision.Remaining, decision.NextEligibleAt)
		report.RateLimited = true
		report.NextEligibleAt = decision.NextEligibleAt
		report.Remaining = decision.Remaining
		report.FinishedAt = c.now()
		c.journal(report)
		return report, nil
	}

	if c.deps.Session != nil {
		c.notifyPhase(PhaseLogin)
		log.Info("Acquiring session")
		if err := c.deps.Session.Acquire(ctx); err != nil {
			report.FinishedAt = c.now()
			c.release(log)
			c.journal(report)
			return report, fmt.Errorf("failed to acquire session: %w", err)
		}
		defer c.release(log)
	}

	c.notifyPhase(PhaseDiscover)
	log.Info("Discovering following list")
	handles, err := c.deps.Source.DiscoverFollowing(ctx)
	if err != nil {
		report.FinishedAt = c.now()
		c.journal(report)
		return report, fmt.Errorf("failed to discover following list: %w", err)
	}
	log.WithField("count", len(handles)).Info("Following list discovered")

	eng := engine.New(engine.Deps{
		Store:      c.deps.Store,
		Classifier: classifier.New(c.deps.Inspector),
		Executor:   c.deps.Executor,
		Pacer:      ratelimit.NewJitteredPacer(c.cfg.RateLimit.ActionDelay(), c.cfg.RateLimit.ProfileCheckDelay()),
		Interrupts: c.deps.Interrupts,
		Sink:       c.deps.Sink,
	}, engine.Options{
		BatchSize:   c.cfg.RateLimit.BatchSize,
		MaxToReview: c.cfg.RateLimit.MaxToReview,
		DryRun:      c.cfg.Run.DryRun,
	})
	eng.OnPhase = c.OnPhase
	eng.OnScan = c.OnScan
	eng.OnAction = c.OnAction

	report.Summary = eng.Run(ctx, handles)
	report.FinishedAt = c.now()

	// Only a completed run pays the run-delay. An aborted run keeps
	// its partial progress but stays eligible for a prompt retry.
	if report.Summary.Status == engine.StatusCompleted {
		if err := c.deps.Store.SetLastRun(report.FinishedAt); err != nil {
			log.WithError(err).Warn("Failed to persist last-run time")
		}
	}

	c.journal(report)
	logger.LogRunSummary(report.RunID, report.Status(), report.Summary.Counts())

	return report, nil
}

func (c *Cleaner) notifyPhase(phase engine.Phase) {
	if c.OnPhase != nil {
		c.OnPhase(phase)
	}
}

// release tears down the session. Teardown errors are logged and
// swallowed so they never mask an earlier failure.
func (c *Cleaner) release(log logger.Logger) {
	if c.deps.Session == nil {
		return
	}
	if err := c.deps.Session.Release(); err != nil {
		log.WithError(err).Warn("Resource teardown failed")
	}
}

// journal appends the run to the history file when a journal is wired
func (c *Cleaner) journal(report *Report) {
	if c.deps.Journal == nil {
		return
	}

	entry := history.Entry{
		RunID:      report.RunID,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Status:     report.Status(),
		DryRun:     c.cfg.Run.DryRun,
	}
	if s := report.Summary; s != nil {
		entry.Discovered = s.Discovered
		entry.Scanned = s.Scanned
		entry.Skipped = s.Skipped
		entry.Found = s.Found
		entry.Succeeded = s.Succeeded
		entry.Failed = s.Failed
		entry.Planned = s.Planned
	}

	if err := c.deps.Journal.Append(entry); err != nil {
		c.logger.WithError(err).WithField("run_id", report.RunID).Warn("Failed to journal run")
	}
}
