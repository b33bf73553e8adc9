// Package ratelimit paces cleanup activity at three levels.
//
// Between runs, ShouldRun admits a run only once the configured delay
// has elapsed since the previous completed run. The boundary is
// inclusive and a missing last-run time always admits.
//
// Within a run, a Pacer spaces consecutive operations: profile probes
// during scanning and unfollow actions during processing. Every wait
// is jittered by ±25% so the process never emits a fixed-interval
// signature, and every wait honors context cancellation.
//
// Usage:
//
//	decision := ratelimit.ShouldRun(store.LastRun(), cfg.RunDelay(), time.Now())
//	if !decision.Allowed {
//	    fmt.Printf("Next run at %s\n", decision.NextEligibleAt)
//	    return
//	}
//
//	pacer := ratelimit.NewJitteredPacer(cfg.ActionDelay(), cfg.ProfileCheckDelay())
//	if err := pacer.WaitAction(ctx); err != nil {
//	    // context cancelled mid-wait
//	}
//
// Pacing is a correctness requirement here, not an optimization: the
// engine relies on it to keep actions strictly sequential and spaced.
package ratelimit
