// Package preflight validates the environment before an audit runs: the
// archive directory, the history ledger, and the transcripts base must all be
// usable before anything is appended.
package preflight
