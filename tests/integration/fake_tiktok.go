package integration

import (
	"context"
	"fmt"
	"sync"

	"tokclean/pkg/classifier"
)

// Profile describes one account on the fake site
type Profile struct {
	Posts   int
	Banned  bool
	Deleted bool
}

// FakeTikTok simulates the browser-driven collaborators with realistic
// behavior: a session that must be acquired before anything works, a
// following list that shrinks as unfollows land, per-profile evidence,
// and injectable failures. It implements ResourceLifecycle,
// HandleSource, PageInspector and ActionExecutor, just like the real
// driver does.
type FakeTikTok struct {
	mu sync.Mutex

	profiles  map[string]Profile
	following []string

	loggedIn   bool
	acquireErr error
	releaseErr error

	probeErrors    map[string]error
	unfollowErrors map[string]error

	acquires     int
	releases     int
	probeOrder   []string
	probeCounts  map[string]int
	unfollowLog  []string
	attemptedLog []string

	// AfterUnfollow runs after each successful unfollow, while the
	// fake still holds its lock. Used to trip interrupts mid-batch.
	AfterUnfollow func(handle string)
}

// NewFakeTikTok creates an empty fake site
func NewFakeTikTok() *FakeTikTok {
	return &FakeTikTok{
		profiles:       make(map[string]Profile),
		probeErrors:    make(map[string]error),
		unfollowErrors: make(map[string]error),
		probeCounts:    make(map[string]int),
	}
}

// Follow adds a handle with its profile to the end of the following list
func (f *FakeTikTok) Follow(handle string, profile Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[handle] = profile
	f.following = append(f.following, handle)
}

// FollowAlive adds an ordinary account with posted content
func (f *FakeTikTok) FollowAlive(handle string) {
	f.Follow(handle, Profile{Posts: 3})
}

// FollowBanned adds an account whose profile shows the ban notice
func (f *FakeTikTok) FollowBanned(handle string) {
	f.Follow(handle, Profile{Banned: true})
}

// FollowDeleted adds an account whose profile no longer resolves
func (f *FakeTikTok) FollowDeleted(handle string) {
	f.Follow(handle, Profile{Deleted: true})
}

// FollowEmpty adds a resolvable account that never posted anything
func (f *FakeTikTok) FollowEmpty(handle string) {
	f.Follow(handle, Profile{})
}

// SetProbeError makes profile probes for handle fail
func (f *FakeTikTok) SetProbeError(handle string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probeErrors[handle] = err
}

// SetUnfollowError makes unfollow attempts for handle fail
func (f *FakeTikTok) SetUnfollowError(handle string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unfollowErrors[handle] = err
}

// SetAcquireError makes the next Acquire fail
func (f *FakeTikTok) SetAcquireError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquireErr = err
}

// SetReleaseError makes Release report a teardown failure
func (f *FakeTikTok) SetReleaseError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releaseErr = err
}

// Acquire opens the fake session
func (f *FakeTikTok) Acquire(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.acquires++
	if f.acquireErr != nil {
		return f.acquireErr
	}
	f.loggedIn = true
	return nil
}

// Release closes the fake session. Safe after a failed Acquire.
func (f *FakeTikTok) Release() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.releases++
	f.loggedIn = false
	return f.releaseErr
}

// DiscoverFollowing returns a copy of the current following list
func (f *FakeTikTok) DiscoverFollowing(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.loggedIn {
		return nil, fmt.Errorf("not logged in")
	}

	handles := make([]string, len(f.following))
	copy(handles, f.following)
	return handles, nil
}

// FetchEvidence reports what the handle's profile page would show
func (f *FakeTikTok) FetchEvidence(ctx context.Context, handle string) (classifier.Evidence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.loggedIn {
		return classifier.Evidence{}, fmt.Errorf("not logged in")
	}

	f.probeOrder = append(f.probeOrder, handle)
	f.probeCounts[handle]++

	if err := f.probeErrors[handle]; err != nil {
		return classifier.Evidence{}, err
	}

	profile, known := f.profiles[handle]
	if !known || profile.Deleted {
		return classifier.Evidence{NotFoundMarker: true}, nil
	}
	if profile.Banned {
		return classifier.Evidence{BannedMarker: true}, nil
	}
	return classifier.Evidence{HasContent: profile.Posts > 0}, nil
}

// Unfollow removes the handle from the following list. The list
// mutates on success, like the real page does, which is why callers
// must never hold on to positions resolved before the last action.
func (f *FakeTikTok) Unfollow(ctx context.Context, handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.loggedIn {
		return fmt.Errorf("not logged in")
	}

	f.attemptedLog = append(f.attemptedLog, handle)

	if err := f.unfollowErrors[handle]; err != nil {
		return err
	}

	for i, h := range f.following {
		if h == handle {
			f.following = append(f.following[:i], f.following[i+1:]...)
			f.unfollowLog = append(f.unfollowLog, handle)
			if f.AfterUnfollow != nil {
				f.AfterUnfollow(handle)
			}
			return nil
		}
	}

	return fmt.Errorf("@%s is not in the following list", handle)
}

// FollowingCount returns how many accounts are still followed
func (f *FakeTikTok) FollowingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.following)
}

// Unfollowed returns the handles unfollowed so far, in order
func (f *FakeTikTok) Unfollowed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.unfollowLog))
	copy(out, f.unfollowLog)
	return out
}

// UnfollowAttempts returns every unfollow call, including failed ones
func (f *FakeTikTok) UnfollowAttempts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.attemptedLog))
	copy(out, f.attemptedLog)
	return out
}

// ProbeCount returns how often handle's profile was fetched
func (f *FakeTikTok) ProbeCount(handle string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probeCounts[handle]
}

// TotalProbes returns the number of profile fetches across all handles
func (f *FakeTikTok) TotalProbes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.probeOrder)
}

// Acquires returns how often the session was opened
func (f *FakeTikTok) Acquires() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.acquires
}

// Releases returns how often the session was closed
func (f *FakeTikTok) Releases() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.releases
}

// StopFlag is a hand-tripped interrupt source for abort scenarios
type StopFlag struct {
	mu      sync.Mutex
	stopped bool
}

// Trip requests a graceful stop
func (s *StopFlag) Trip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

// Interrupted reports whether Trip was called
func (s *StopFlag) Interrupted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
