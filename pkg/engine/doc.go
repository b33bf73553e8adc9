// Package engine drives one cleanup run over the following list.
//
// A run is a two-phase state machine. The scanning phase classifies
// every handle not processed in an earlier run, marks it processed
// immediately and queues the invalid ones. The processing phase pops
// up to BatchSize queued candidates and unfollows them one at a time
// through the ActionExecutor, recording each success before moving on.
//
// Ordering rules the engine guarantees:
//   - Only handles cross the executor boundary; live references are
//     resolved by the executor at call time, never cached here.
//   - Failed actions are logged and skipped, never retried in-run.
//   - Interrupts and context cancellation are observed between
//     iterations, so an in-flight probe or action always finishes and
//     every completed unfollow is persisted before the run aborts.
//   - Waits are jittered and placed between operations: before every
//     probe but the first, after every successful action but the last.
//
// The engine never stamps the last-run time; the orchestrator does
// that once it sees a Completed summary.
package engine
