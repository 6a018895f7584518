// Package transcript scans line-delimited JSON conversation transcripts for
// compaction summaries and resolves the transcript directory that belongs to
// a project workspace.
//
// Records are decoded individually; malformed lines are skipped rather than
// failing the scan. Message content may be a plain string or a list of typed
// blocks, of which only text blocks contribute to the summary body.
package transcript
