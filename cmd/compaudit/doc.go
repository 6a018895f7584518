// Command compaudit audits compaction summaries against archived session
// transcripts, tracks verification rates over time, and replays stored
// audits to check reproducibility.
package main
