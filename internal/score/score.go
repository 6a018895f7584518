package score

import (
	"strconv"
	"time"

	"compaudit/internal/archive"
	"compaudit/internal/claims"
	"compaudit/internal/verify"
)

// CategoryStats aggregates one category's verification outcomes.
type CategoryStats struct {
	Total      int             `json:"total"`
	Found      int             `json:"found"`
	Missing    int             `json:"missing"`
	Mismatched int             `json:"mismatched"`
	Rate       float64         `json:"rate"`
	Severity   claims.Severity `json:"severity"`
}

// Summary is the run-level rollup across all categories.
type Summary struct {
	Total                int     `json:"total"`
	Found                int     `json:"found"`
	Missing              int     `json:"missing"`
	Mismatched           int     `json:"mismatched"`
	Rate                 float64 `json:"rate"`
	SeverityWeightedRate float64 `json:"severity_weighted_rate"`
}

// ClaimResult is one claim with its final status and provenance. Deep hits
// are stored as FOUND with location "deep" so ledger consumers see a single
// success status while diffing can still distinguish provenance.
type ClaimResult struct {
	ID       string          `json:"id"`
	Category claims.Category `json:"category"`
	Claim    string          `json:"claim"`
	Status   verify.Status   `json:"status"`
	Severity claims.Severity `json:"severity"`
	Location string          `json:"location"`
	Detail   string          `json:"detail,omitempty"`
}

// AuditRun is the canonical machine-readable result of one audit. Immutable
// once appended to the history ledger; Run is assigned at append time.
type AuditRun struct {
	Run           int                               `json:"run,omitempty"`
	Timestamp     string                            `json:"timestamp"`
	SessionID     string                            `json:"session_id"`
	ArchiveFile   string                            `json:"archive_file"`
	ArchiveTurns  int                               `json:"archive_turns"`
	SummaryLength int                               `json:"summary_length"`
	Summary       Summary                           `json:"summary"`
	Categories    map[claims.Category]CategoryStats `json:"categories"`
	Claims        []ClaimResult                     `json:"claims"`
}

// RunInfo carries per-invocation metadata into the scorer.
type RunInfo struct {
	Timestamp     string
	SummaryLength int
}

// Build aggregates verification results into an AuditRun. Claim IDs are
// sequential per category and scoped to this run only.
func Build(results verify.Results, meta archive.SessionMetadata, info RunInfo) *AuditRun {
	timestamp := info.Timestamp
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	run := &AuditRun{
		Timestamp:     timestamp,
		SessionID:     meta.SessionID,
		ArchiveFile:   meta.Filename,
		ArchiveTurns:  meta.Turns,
		SummaryLength: info.SummaryLength,
		Categories:    make(map[claims.Category]CategoryStats, len(claims.Categories())),
	}

	weightedFound := 0
	weightedTotal := 0

	for _, category := range claims.Categories() {
		severity := category.Severity()
		stats := CategoryStats{Severity: severity}

		for i, r := range results[category] {
			claim := ClaimResult{
				ID:       category.IDPrefix() + "-" + strconv.Itoa(i+1),
				Category: category,
				Claim:    r.Claim,
				Severity: severity,
				Detail:   r.Detail,
			}
			switch r.Status {
			case verify.StatusFound:
				stats.Found++
				claim.Status = verify.StatusFound
				claim.Location = "header"
			case verify.StatusFoundDeep:
				stats.Found++
				claim.Status = verify.StatusFound
				claim.Location = "deep"
			case verify.StatusMissing:
				stats.Missing++
				claim.Status = verify.StatusMissing
				claim.Location = "none"
			default:
				stats.Mismatched++
				claim.Status = verify.StatusMismatch
				claim.Location = "none"
			}
			run.Claims = append(run.Claims, claim)
		}

		stats.Total = stats.Found + stats.Missing + stats.Mismatched
		stats.Rate = vacuousRate(stats.Found, stats.Total)
		run.Categories[category] = stats

		weight := severity.Weight()
		weightedFound += stats.Found * weight
		weightedTotal += stats.Total * weight

		run.Summary.Found += stats.Found
		run.Summary.Missing += stats.Missing
		run.Summary.Mismatched += stats.Mismatched
	}

	run.Summary.Total = run.Summary.Found + run.Summary.Missing + run.Summary.Mismatched
	run.Summary.Rate = vacuousRate(run.Summary.Found, run.Summary.Total)
	run.Summary.SeverityWeightedRate = vacuousRate(weightedFound, weightedTotal)

	return run
}

// vacuousRate is found/total, or 1.0 when there is nothing to verify.
func vacuousRate(found, total int) float64 {
	if total == 0 {
		return 1.0
	}
	return float64(found) / float64(total)
}
