package ratelimit

import (
	"context"
	"math/rand"
	"time"
)

// Jitter bounds: every wait is drawn uniformly from this band around
// the configured base delay so runs never emit fixed-interval patterns
const (
	jitterMin = 0.75
	jitterMax = 1.25
)

// Decision is the outcome of the run admission check
type Decision struct {
	Allowed        bool
	NextEligibleAt time.Time
	Remaining      time.Duration
}

// ShouldRun gates run admission on the time elapsed since the last
// completed run. A nil lastRun always admits. The boundary is
// inclusive: a check exactly runDelay after the last run is allowed.
func ShouldRun(lastRun *time.Time, runDelay time.Duration, now time.Time) Decision {
	if lastRun == nil {
		return Decision{Allowed: true, NextEligibleAt: now}
	}

	next := lastRun.Add(runDelay)
	if !now.Before(next) {
		return Decision{Allowed: true, NextEligibleAt: now}
	}

	return Decision{
		Allowed:        false,
		NextEligibleAt: next,
		Remaining:      next.Sub(now),
	}
}

// Pacer spaces consecutive operations inside a run
type Pacer interface {
	// WaitAction blocks between unfollow actions
	WaitAction(ctx context.Context) error
	// WaitProfileCheck blocks between classification probes
	WaitProfileCheck(ctx context.Context) error
}

// JitteredPacer implements Pacer with randomized delays around the
// configured base values
type JitteredPacer struct {
	actionDelay       time.Duration
	profileCheckDelay time.Duration
	randFloat         func() float64
}

// NewJitteredPacer creates a pacer for the given base delays. A zero
// base delay disables that wait entirely.
func NewJitteredPacer(actionDelay, profileCheckDelay time.Duration) *JitteredPacer {
	return &JitteredPacer{
		actionDelay:       actionDelay,
		profileCheckDelay: profileCheckDelay,
		randFloat:         rand.Float64,
	}
}

// Jitter randomizes a base delay within the jitter band. Each call
// draws independently.
func (p *JitteredPacer) Jitter(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	factor := jitterMin + p.randFloat()*(jitterMax-jitterMin)
	return time.Duration(float64(base) * factor)
}

// WaitAction blocks for a jittered action delay or until ctx is done
func (p *JitteredPacer) WaitAction(ctx context.Context) error {
	return p.sleep(ctx, p.Jitter(p.actionDelay))
}

// WaitProfileCheck blocks for a jittered probe delay or until ctx is done
func (p *JitteredPacer) WaitProfileCheck(ctx context.Context) error {
	return p.sleep(ctx, p.Jitter(p.profileCheckDelay))
}

func (p *JitteredPacer) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
