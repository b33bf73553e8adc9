// Package retry provides retry logic for transient browser failures.
//
// Only page navigation errors are retried by default; unfollow actions
// are deliberately never retried (a failed action stays recorded as
// processed and is skipped in later runs), so this package is used by
// the browser driver rather than the unfollow engine.
//
// Usage:
//
//	err := retry.Do(func() error {
//	    return driver.Navigate(url)
//	}, retry.DefaultConfig())
//
//	r := retry.NewRetrier(nil).WithMaxAttempts(2).WithContext(ctx)
//	err = r.Do(op)
//
// Backoff strategies are pluggable; the default is exponential with a
// small jitter.
package retry
