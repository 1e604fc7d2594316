// Package logging assembles structured slog loggers and formatting helpers used
// across tvmeta.
//
// It owns the configurable console/JSON handlers, rotates file output through
// lumberjack, and exposes context-aware helpers so resolution code can tag log
// lines with series IDs, operation names, and correlation IDs. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape as the rest of the system.
package logging
