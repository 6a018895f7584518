package report_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"compaudit/internal/audit"
	"compaudit/internal/claims"
	"compaudit/internal/history"
	"compaudit/internal/report"
	"compaudit/internal/rerun"
	"compaudit/internal/score"
	"compaudit/internal/verify"
)

func sampleOutcome() *audit.Outcome {
	run := &score.AuditRun{
		Run:           3,
		Timestamp:     "2026-08-01T10:00:00Z",
		SessionID:     "abc12345-6789-4def-8123-456789abcdef",
		ArchiveFile:   "session_2026-08-01_abc12345.md",
		ArchiveTurns:  12,
		SummaryLength: 2048,
		Summary: score.Summary{
			Total: 4, Found: 3, Missing: 1,
			Rate: 0.75, SeverityWeightedRate: 0.7,
		},
		Categories: map[claims.Category]score.CategoryStats{
			claims.FilePaths: {Total: 2, Found: 2, Rate: 1.0, Severity: claims.SeverityCritical},
			claims.Topics:    {Total: 2, Found: 1, Missing: 1, Rate: 0.5, Severity: claims.SeverityMinor},
		},
		Claims: []score.ClaimResult{
			{ID: "fp-1", Category: claims.FilePaths, Claim: "/src/a.go", Status: verify.StatusFound, Location: "header"},
			{ID: "fp-2", Category: claims.FilePaths, Claim: "/src/b.go", Status: verify.StatusFound, Location: "deep"},
			{ID: "tp-1", Category: claims.Topics, Claim: "caching", Status: verify.StatusFound, Location: "header"},
			{ID: "tp-2", Category: claims.Topics, Claim: "sharding", Status: verify.StatusMissing, Location: "none"},
		},
	}
	return &audit.Outcome{
		Run:   run,
		Trend: []int{71, 80, 75},
		Regressions: []history.Regression{
			{Category: claims.Topics, Severity: claims.SeverityMinor, PreviousRate: 0.9, CurrentRate: 0.5},
		},
		SummaryText: "summary body",
	}
}

func TestAuditReportContents(t *testing.T) {
	text := report.Audit(sampleOutcome(), false)

	for _, want := range []string{
		"COMPACTION SUMMARY AUDIT REPORT",
		"Run number           : 3",
		"abc12345-678...",
		"[FOUND]    /src/a.go",
		"[DEEP]     /src/b.go",
		"[MISSING]  sharding",
		"TOTALS: 3 found / 1 missing / 0 mismatched",
		"Verification rate: 75% (3/4 claims)",
		"71% → 80% → 75%",
		"REGRESSION [MINOR] Topics: 90% → 50%",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("report missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "\x1b[") {
		t.Fatal("uncolorized report must not contain ANSI codes")
	}
}

func TestAuditReportColorized(t *testing.T) {
	text := report.Audit(sampleOutcome(), true)
	if !strings.Contains(text, "\x1b[32m") {
		t.Fatal("expected green for found claims")
	}
	if !strings.Contains(text, "\x1b[31m") {
		t.Fatal("expected red for missing claims and regressions")
	}
}

func TestAuditReportBreakdownBar(t *testing.T) {
	text := report.Audit(sampleOutcome(), false)
	if !strings.Contains(text, "[####################]") {
		t.Fatalf("expected full bar for 100%% category:\n%s", text)
	}
	if !strings.Contains(text, "[##########----------]") {
		t.Fatalf("expected half bar for 50%% category:\n%s", text)
	}
}

func TestRerunReport(t *testing.T) {
	outcome := &rerun.Outcome{
		Batch:        "2026-08-29T00:00:00Z-deadbeef",
		TotalHistory: 3,
		Skipped:      1,
		Entries: []rerun.Entry{
			{
				RerunOf: 1,
				Comparison: &rerun.SummaryComparison{
					RateMatch: true, RateOriginal: 0.8, RateRerun: 0.8,
				},
				ClaimDiffs: &rerun.ClaimDiff{Unchanged: 5},
				Reproduced: true,
			},
			{
				RerunOf: 2,
				Comparison: &rerun.SummaryComparison{
					RateOriginal: 0.8, RateRerun: 0.6, RateDelta: -0.2,
				},
				ClaimDiffs: &rerun.ClaimDiff{
					Downgraded: []rerun.ClaimChange{
						{Claim: "/src/a.go", Category: claims.FilePaths, Original: verify.StatusFound, Rerun: verify.StatusMissing},
					},
				},
				CategoryDeltas: []rerun.CategoryDelta{
					{Category: claims.FilePaths, OriginalRate: 1.0, RerunRate: 0.5, Delta: -0.5, Changed: true},
				},
			},
			{RerunOf: 3, Status: rerun.StatusSkipped, Reason: "compaction not found"},
		},
	}

	text := report.Rerun(outcome, false)
	for _, want := range []string{
		"AUDIT RERUN REPORT",
		"Reruns: 3 of 3 entries (1 baselines skipped)",
		"SKIPPED",
		"[DOWNGRADED]",
		"Category Deltas",
		"RESULT: 1/2 runs reproduced exactly",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("rerun report missing %q:\n%s", want, text)
		}
	}
}

func TestRerunPlan(t *testing.T) {
	outcome := &rerun.Outcome{
		Skipped: 2,
		Plan: []rerun.PlanItem{
			{Run: 4, Timestamp: "2026-08-01T10:00:00Z", Rate: 0.9, Matched: true},
			{Run: 5, Timestamp: "2026-08-02T10:00:00Z", Rate: 0.7},
		},
	}
	text := report.RerunPlan(outcome)
	if !strings.Contains(text, "Run 4: rate=90.0%, ts=2026-08-01T10:00:00Z, MATCHED") {
		t.Fatalf("missing matched line:\n%s", text)
	}
	if !strings.Contains(text, "Run 5: rate=70.0%, ts=2026-08-02T10:00:00Z, NO MATCH") {
		t.Fatalf("missing unmatched line:\n%s", text)
	}
}

func TestWriteBundle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "compaction_reports")

	path, err := report.WriteBundle(dir, sampleOutcome())
	if err != nil {
		t.Fatalf("WriteBundle: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "compaction_report_") {
		t.Fatalf("unexpected report name: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read bundle: %v", err)
	}
	var bundle report.Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		t.Fatalf("decode bundle: %v", err)
	}
	if bundle.ReportVersion != 1 || bundle.RunNumber != 3 {
		t.Fatalf("unexpected bundle header: %+v", bundle)
	}
	if bundle.CompactionSummary.Text != "summary body" {
		t.Fatalf("summary text not preserved: %+v", bundle.CompactionSummary)
	}
	if len(bundle.Audit.Regressions) != 1 {
		t.Fatalf("regressions not bundled: %+v", bundle.Audit)
	}
	if len(bundle.Trend) != 3 {
		t.Fatalf("trend not bundled: %+v", bundle.Trend)
	}
}
