// Package logging builds slog loggers for the CLI. Console output keeps
// a compact single-line format for interactive use; JSON output is for
// machine consumption.
package logging
