package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// LogRunStart logs the beginning of an admitted cleanup run
func LogRunStart(runID string, dryRun bool, batchSize int) {
	GetLogger().WithFields(map[string]interface{}{
		"run_id":     runID,
		"dry_run":    dryRun,
		"batch_size": batchSize,
	}).Info("Cleanup run started")
}

// LogRateLimited logs a run rejected by the run-delay gate
func LogRateLimited(remaining time.Duration, nextEligibleAt time.Time) {
	GetLogger().WithFields(map[string]interface{}{
		"remaining":        remaining.Round(time.Second),
		"next_eligible_at": nextEligibleAt,
	}).Info("Run delayed by rate limit")
}

// LogClassification logs one classified account
func LogClassification(handle, verdict, reason string) {
	fields := map[string]interface{}{
		"handle":  handle,
		"verdict": verdict,
	}
	if reason != "" {
		fields["reason"] = reason
	}
	GetLogger().DebugWithFields("Account classified", fields)
}

// LogUnfollow logs the outcome of one unfollow action
func LogUnfollow(handle string, dryRun bool, err error) {
	l := GetLogger().WithField("handle", handle)
	switch {
	case err != nil:
		l.WithError(err).Warn("Unfollow failed")
	case dryRun:
		l.Info("Would unfollow (dry run)")
	default:
		l.Info("Unfollowed")
	}
}

// LogStateSaved logs a successful state write
func LogStateSaved(path string, processed, unfollowed int) {
	GetLogger().DebugWithFields("State saved", map[string]interface{}{
		"path":       path,
		"processed":  processed,
		"unfollowed": unfollowed,
	})
}

// LogRunSummary logs the final counts of a run
func LogRunSummary(runID, status string, counts map[string]interface{}) {
	fields := map[string]interface{}{
		"run_id": runID,
		"status": status,
	}
	for k, v := range counts {
		fields[k] = v
	}
	GetLogger().InfoWithFields("Cleanup run finished", fields)
}

// MustGetLogger gets the logger or panics if it fails
func MustGetLogger() Logger {
	logger := GetLogger()
	if logger == nil {
		panic("logger not initialized")
	}
	return logger
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing (useful for testing)
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
