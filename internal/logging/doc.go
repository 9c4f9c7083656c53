// Package logging assembles structured slog loggers and formatting helpers used
// across video2sub.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so workflow code can tag log lines
// with the run ID, stage, and input kind. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
package logging
