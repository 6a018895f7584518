// Package history owns the append-only audit ledger and the analytics
// derived from it: rate trends across runs and per-category regression
// detection between consecutive runs.
//
// The ledger is one JSON object per line. Appending is the only mutation;
// prior entries are never rewritten. Appends take a file lock and write the
// record in a single call so concurrent invocations cannot interleave and a
// failed run never leaves a partial line behind.
package history
