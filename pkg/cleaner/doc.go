// Package cleaner orchestrates a full TikTok following-list cleanup run.
//
// The cleaner coordinates every other component of the tool: the rate-limit
// gate, the browser session lifecycle, following-list discovery, the
// classification and unfollow engine, and the persisted run state.
//
// Architecture:
//
// The Cleaner struct drives one run through a fixed sequence:
//   - Check the run-level rate limit gate; a refused run exits early
//     and reports the remaining wait
//   - Acquire external resources (the browser session) with release
//     guaranteed on every exit path
//   - Discover the account's following list
//   - Hand the handles to the engine, which classifies unprocessed
//     accounts and unfollows a bounded batch of the invalid ones
//   - Stamp the last-run time only when the run completed, so an
//     interrupted run is not penalized by the run delay
//   - Append the outcome to the run history journal
//
// Usage:
//
//	store, _ := state.NewStore("")
//	c, err := cleaner.New(cfg, cleaner.Deps{
//	    Store:     store,
//	    Session:   session,   // e.g. the rod browser driver
//	    Source:    session,
//	    Inspector: session,
//	    Executor:  session,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := c.Run(ctx)
//
// Interrupts:
//
// An interrupted run is a normal outcome, not an error. The report's
// summary carries the Aborted status together with the counts of work
// done before the stop, all of which is already persisted.
package cleaner
