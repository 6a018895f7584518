// Package score aggregates verification results into per-category statistics
// and the run-level summary that is printed, serialized, and appended to the
// audit history ledger.
//
// A category with zero claims scores a rate of 1.0: absence of claims never
// penalizes a summary. The severity-weighted rate weights each category's
// counts by its severity so critical claims dominate the trend metric.
package score
