package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"compaudit/internal/audit"
	"compaudit/internal/claims"
	"compaudit/internal/history"
	"compaudit/internal/score"
)

// bundleVersion tags the bundled report schema.
const bundleVersion = 1

// Bundle is the machine-readable report written next to the archive after an
// audit. It carries everything a later reader needs without the ledger.
type Bundle struct {
	ReportVersion     int               `json:"report_version"`
	Timestamp         string            `json:"timestamp"`
	SessionID         string            `json:"session_id"`
	RunNumber         int               `json:"run_number"`
	CompactionSummary BundledCompaction `json:"compaction_summary"`
	Audit             BundledAudit      `json:"audit"`
	Trend             []int             `json:"trend"`
}

// BundledCompaction preserves the audited summary text.
type BundledCompaction struct {
	Text                string `json:"text"`
	Length              int    `json:"length"`
	CompactionTimestamp string `json:"compaction_timestamp"`
}

// BundledAudit is the audit section of a bundled report.
type BundledAudit struct {
	Rate                 float64                                 `json:"rate"`
	SeverityWeightedRate float64                                 `json:"severity_weighted_rate"`
	Categories           map[claims.Category]score.CategoryStats `json:"categories"`
	Claims               []score.ClaimResult                     `json:"claims"`
	Regressions          []history.Regression                    `json:"regressions"`
}

// NewBundle assembles a bundled report from an audit outcome.
func NewBundle(outcome *audit.Outcome) Bundle {
	run := outcome.Run
	regressions := outcome.Regressions
	if regressions == nil {
		regressions = []history.Regression{}
	}
	return Bundle{
		ReportVersion: bundleVersion,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		SessionID:     run.SessionID,
		RunNumber:     run.Run,
		CompactionSummary: BundledCompaction{
			Text:                outcome.SummaryText,
			Length:              run.SummaryLength,
			CompactionTimestamp: run.Timestamp,
		},
		Audit: BundledAudit{
			Rate:                 run.Summary.Rate,
			SeverityWeightedRate: run.Summary.SeverityWeightedRate,
			Categories:           run.Categories,
			Claims:               run.Claims,
			Regressions:          regressions,
		},
		Trend: outcome.Trend,
	}
}

// WriteBundle persists a bundled report into dir, creating it if needed, and
// returns the report path. Callers treat failure as a warning; the rendered
// report already went to the terminal.
func WriteBundle(dir string, outcome *audit.Outcome) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	bundle := NewBundle(outcome)
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode bundled report: %w", err)
	}
	name := fmt.Sprintf("compaction_report_%s.json", time.Now().UTC().Format("2006-01-02_150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write bundled report: %w", err)
	}
	return path, nil
}
