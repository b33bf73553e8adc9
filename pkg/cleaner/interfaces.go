package cleaner

import "context"

// ResourceLifecycle is implemented by collaborators that hold external
// resources for the duration of a run, such as a browser session.
// Release must be safe to call after a failed Acquire.
type ResourceLifecycle interface {
	Acquire(ctx context.Context) error
	Release() error
}

// HandleSource produces the full following list of the logged-in account
type HandleSource interface {
	DiscoverFollowing(ctx context.Context) ([]string, error)
}
