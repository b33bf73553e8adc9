package engine

import (
	"context"
	"time"

	"tokclean/pkg/classifier"
	"tokclean/pkg/logger"
	"tokclean/pkg/ratelimit"
	"tokclean/pkg/state"
)

// ActionExecutor performs the actual unfollow for one handle. The
// executor must resolve a live reference to the target at call time;
// references obtained earlier go stale once the list mutates.
type ActionExecutor interface {
	Unfollow(ctx context.Context, handle string) error
}

// InterruptSource reports whether a stop was requested
type InterruptSource interface {
	Interrupted() bool
}

// Classifier decides a verdict for one handle
type Classifier interface {
	Classify(ctx context.Context, handle string) classifier.AccountRecord
}

// RecordSink receives each newly detected invalid account
type RecordSink interface {
	WriteRecord(record classifier.AccountRecord) error
}

// Phase identifies where in the run state machine the engine is
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseScanning   Phase = "scanning"
	PhaseProcessing Phase = "processing"
	PhaseDone       Phase = "done"
)

// Status is the terminal state of a run
type Status string

const (
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
)

// Summary reports what one run did
type Summary struct {
	Status     Status
	Discovered int // handles in the following list
	Scanned    int // handles given to the classifier
	Skipped    int // handles already processed in earlier runs
	Found      int // invalid accounts detected this run
	Attempted  int // unfollow actions invoked
	Succeeded  int
	Failed     int
	Planned    int // would-be unfollows under dry run
	Pending    int // candidates left unprocessed when the run ended
}

// Counts returns the summary as loggable fields
func (s *Summary) Counts() map[string]interface{} {
	return map[string]interface{}{
		"discovered": s.Discovered,
		"scanned":    s.Scanned,
		"skipped":    s.Skipped,
		"found":      s.Found,
		"attempted":  s.Attempted,
		"succeeded":  s.Succeeded,
		"failed":     s.Failed,
		"planned":    s.Planned,
		"pending":    s.Pending,
	}
}

// Options bound engine behavior for one run
type Options struct {
	// BatchSize is the maximum unfollow actions per run; must be >= 1
	BatchSize int
	// MaxToReview caps handles scanned per run; 0 means unbounded
	MaxToReview int
	// DryRun reports candidates without invoking the executor
	DryRun bool
}

// Deps wires the engine's collaborators. Executor may be nil when
// every run is a dry run; Sink and Interrupts are optional.
type Deps struct {
	Store      *state.Store
	Classifier Classifier
	Executor   ActionExecutor
	Pacer      ratelimit.Pacer
	Interrupts InterruptSource
	Sink       RecordSink
}

// Engine walks the following list, classifies unprocessed handles and
// unfollows a bounded batch of the invalid ones. Single-goroutine use
// only; all pacing and interruption happens cooperatively inside Run.
type Engine struct {
	store      *state.Store
	classifier Classifier
	executor   ActionExecutor
	pacer      ratelimit.Pacer
	interrupts InterruptSource
	sink       RecordSink
	opts       Options
	logger     logger.Logger

	// Optional progress callbacks, invoked synchronously from Run
	OnPhase  func(phase Phase)
	OnScan   func(scanned, discovered int, record classifier.AccountRecord)
	OnAction func(handle string, dryRun bool, err error)
}

// New creates an engine from its collaborators
func New(deps Deps, opts Options) *Engine {
	pacer := deps.Pacer
	if pacer == nil {
		pacer = ratelimit.NewJitteredPacer(0, 0)
	}
	return &Engine{
		store:      deps.Store,
		classifier: deps.Classifier,
		executor:   deps.Executor,
		pacer:      pacer,
		interrupts: deps.Interrupts,
		sink:       deps.Sink,
		opts:       opts,
		logger:     logger.GetLogger(),
	}
}

// Run executes one cleanup pass over the discovered handles: build the
// candidate queue, then process up to BatchSize entries. Interrupts
// and context cancellation are observed between iterations, never
// mid-action, so the summary always reflects persisted reality. Run
// does not stamp the last-run time; that is the orchestrator's call to
// make once it knows the run completed.
func (e *Engine) Run(ctx context.Context, handles []string) *Summary {
	summary := &Summary{Discovered: len(handles)}

	e.setPhase(PhaseScanning)
	queue := e.buildQueue(ctx, handles, summary)

	if e.stopRequested(ctx) {
		summary.Status = StatusAborted
		summary.Pending = len(queue)
		e.finish(summary)
		return summary
	}

	e.setPhase(PhaseProcessing)
	e.processQueue(ctx, queue, summary)

	if e.stopRequested(ctx) {
		summary.Status = StatusAborted
	} else {
		summary.Status = StatusCompleted
	}
	e.finish(summary)
	return summary
}

// buildQueue classifies unprocessed handles and queues the invalid
// ones. Every classified handle is marked processed immediately, so
// classification cost is paid at most once even when unfollowing is
// deferred to a later run.
func (e *Engine) buildQueue(ctx context.Context, handles []string, summary *Summary) []classifier.AccountRecord {
	queue := make([]classifier.AccountRecord, 0)

	e.logger.InfoWithFields("Scanning following list", map[string]interface{}{
		"discovered":    len(handles),
		"max_to_review": e.opts.MaxToReview,
	})

	for _, handle := range handles {
		if e.stopRequested(ctx) {
			break
		}
		if e.opts.MaxToReview > 0 && summary.Scanned >= e.opts.MaxToReview {
			e.logger.WithField("max_to_review", e.opts.MaxToReview).Info("Review cap reached")
			break
		}
		if e.store.IsProcessed(handle) {
			summary.Skipped++
			continue
		}

		if summary.Scanned > 0 {
			if err := e.pacer.WaitProfileCheck(ctx); err != nil {
				break
			}
		}

		record := e.classifier.Classify(ctx, handle)
		summary.Scanned++

		if err := e.store.MarkProcessed(handle); err != nil {
			e.logger.WithError(err).WithField("handle", handle).
				Warn("Could not persist progress, continuing")
		}

		if record.IsCandidate() {
			queue = append(queue, record)
			summary.Found++
			e.writeToSink(record)
		}

		if e.OnScan != nil {
			e.OnScan(summary.Scanned, summary.Discovered, record)
		}
	}

	return queue
}

// processQueue pops up to BatchSize entries off the front of the
// queue, one at a time. Only the handle crosses the executor boundary.
func (e *Engine) processQueue(ctx context.Context, queue []classifier.AccountRecord, summary *Summary) {
	for i, record := range queue {
		if i >= e.opts.BatchSize || e.stopRequested(ctx) {
			summary.Pending = len(queue) - i
			return
		}

		if e.opts.DryRun {
			summary.Planned++
			logger.LogUnfollow(record.Handle, true, nil)
			e.notifyAction(record.Handle, true, nil)
			continue
		}

		err := e.executor.Unfollow(ctx, record.Handle)
		summary.Attempted++
		logger.LogUnfollow(record.Handle, false, err)
		e.notifyAction(record.Handle, false, err)

		if err != nil {
			// No retry: the handle stays processed, so it is skipped
			// for good rather than hammered again next run
			summary.Failed++
			continue
		}

		summary.Succeeded++
		if err := e.store.RecordUnfollow(record.Handle, time.Now()); err != nil {
			e.logger.WithError(err).WithField("handle", record.Handle).
				Warn("Could not persist unfollow, continuing")
		}

		if e.moreWork(i, len(queue)) {
			if err := e.pacer.WaitAction(ctx); err != nil {
				summary.Pending = len(queue) - i - 1
				return
			}
		}
	}
}

// moreWork reports whether another queue entry will be attempted after index i
func (e *Engine) moreWork(i, queued int) bool {
	return i+1 < queued && i+1 < e.opts.BatchSize
}

func (e *Engine) writeToSink(record classifier.AccountRecord) {
	if e.sink == nil {
		return
	}
	if err := e.sink.WriteRecord(record); err != nil {
		e.logger.WithError(err).WithField("handle", record.Handle).
			Warn("Could not write export record")
	}
}

func (e *Engine) stopRequested(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return e.interrupts != nil && e.interrupts.Interrupted()
}

func (e *Engine) setPhase(phase Phase) {
	if e.OnPhase != nil {
		e.OnPhase(phase)
	}
}

func (e *Engine) notifyAction(handle string, dryRun bool, err error) {
	if e.OnAction != nil {
		e.OnAction(handle, dryRun, err)
	}
}

func (e *Engine) finish(summary *Summary) {
	e.setPhase(PhaseDone)
	e.logger.InfoWithFields("Run finished", summary.Counts())
}
