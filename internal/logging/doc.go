// Package logging assembles structured slog loggers and formatting helpers used
// across Gearboy.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so library code can tag log
// lines with ROM files, catalog IDs, and scan IDs. A no-op logger is provided
// for tests and wiring code that cannot fail.
package logging
