// Package archive reads the ground-truth session artifacts the audit engine
// verifies claims against.
//
// Each artifact is a Markdown document with a bounded header of
// "**Key**: value" lines followed by turn sections delimited by
// "## Turn N — Role [time]" markers. The package parses the header into
// SessionMetadata, slices the body into ordered Turns, and locates the
// archive directory and target session file for a run.
package archive
