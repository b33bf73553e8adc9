// Package logger provides a structured logging interface for the cleanup tool.
//
// It wraps the zerolog library to provide a clean, easy-to-use API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output with colors, or JSON output
// - Optional log file (JSON lines) alongside the console
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "tokclean/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level:  "info",
//	    Format: "console",
//	}
//	err := logger.Initialize(cfg)
//
//	// Use the global logger
//	logger.Info("Run started")
//	logger.WithField("handle", "some_account").Info("Account classified")
//	logger.WithError(err).Error("Failed to save state")
//
// Domain helpers cover the common events of a cleanup run:
//
//	logger.LogRunStart(runID, dryRun, batchSize)
//	logger.LogClassification(handle, "invalid", "Banned account")
//	logger.LogUnfollow(handle, dryRun, err)
//	logger.LogRunSummary(runID, "completed", counts)
//
// Tests can swap in NewNopLogger() to silence output or NewTestLogger()
// to capture and assert on messages.
package logger
