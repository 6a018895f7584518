// Package rerun replays recorded audits against the current pipeline and
// reports whether their results reproduce.
package rerun

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"compaudit/internal/score"
	"compaudit/internal/transcript"
)

// matchTolerance bounds the timestamp fallback when an exact match fails.
// Ledger timestamps and transcript timestamps come from different clocks.
const matchTolerance = 5 * time.Second

// CompactionRef points at one compaction summary inside a transcript file.
type CompactionRef struct {
	TranscriptPath string
	Index          int
	SessionID      string
	TextLen        int
}

// Index maps transcript timestamps to the compaction summary recorded at
// that moment.
type Index map[string]CompactionRef

// BuildIndex scans every .jsonl transcript in dir. Unscannable files are
// logged and skipped.
func BuildIndex(dir string, logger *slog.Logger) (Index, error) {
	paths, err := transcript.ListTranscripts(dir)
	if err != nil {
		return nil, err
	}
	index := make(Index)
	for _, path := range paths {
		summaries, err := transcript.FindCompactionSummaries(path)
		if err != nil {
			logger.Warn("failed to scan transcript", "file", filepath.Base(path), "error", err)
			continue
		}
		for i, s := range summaries {
			if s.Timestamp == "" {
				continue
			}
			index[s.Timestamp] = CompactionRef{
				TranscriptPath: path,
				Index:          i,
				SessionID:      s.SessionID,
				TextLen:        len(s.Text),
			}
		}
	}
	return index, nil
}

// Match finds the compaction for a ledger timestamp: exact first, then the
// closest entry within the tolerance window.
func (idx Index) Match(timestamp string) (CompactionRef, bool) {
	if ref, ok := idx[timestamp]; ok {
		return ref, true
	}

	want, err := parseTimestamp(timestamp)
	if err != nil {
		return CompactionRef{}, false
	}
	var best CompactionRef
	bestDelta := matchTolerance + time.Second
	for ts, ref := range idx {
		got, err := parseTimestamp(ts)
		if err != nil {
			continue
		}
		delta := want.Sub(got)
		if delta < 0 {
			delta = -delta
		}
		if delta <= matchTolerance && delta < bestDelta {
			best = ref
			bestDelta = delta
		}
	}
	if bestDelta > matchTolerance {
		return CompactionRef{}, false
	}
	return best, true
}

func parseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// Replayable reports whether a ledger entry carries enough provenance to be
// rerun. Early baselines were recorded before structured provenance existed
// and used synthetic session ids.
func Replayable(run score.AuditRun) bool {
	if run.ArchiveFile == "" || run.ArchiveFile == "(pre-structured-output)" {
		return false
	}
	if strings.HasPrefix(run.SessionID, "session-") && strings.HasSuffix(run.SessionID, "-start") {
		return false
	}
	return true
}

// Numbered pairs a ledger entry with its effective run number.
type Numbered struct {
	Run   int
	Entry score.AuditRun
}

// Filter keeps replayable entries, optionally restricted to specific run
// numbers. Entries without a stored run number fall back to their 1-based
// ledger position.
func Filter(entries []score.AuditRun, runs []int) []Numbered {
	wanted := make(map[int]bool, len(runs))
	for _, n := range runs {
		wanted[n] = true
	}
	var result []Numbered
	for i, entry := range entries {
		num := entry.Run
		if num == 0 {
			num = i + 1
		}
		if !Replayable(entry) {
			continue
		}
		if len(wanted) > 0 && !wanted[num] {
			continue
		}
		result = append(result, Numbered{Run: num, Entry: entry})
	}
	return result
}
