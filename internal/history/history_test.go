package history_test

import (
	"os"
	"path/filepath"
	"testing"

	"compaudit/internal/claims"
	"compaudit/internal/history"
	"compaudit/internal/score"
)

func runWithRate(rate float64) *score.AuditRun {
	return &score.AuditRun{
		Timestamp: "2026-08-01T10:00:00Z",
		Summary:   score.Summary{Total: 10, Found: int(rate * 10), Rate: rate},
	}
}

func TestAppendAssignsRunNumbers(t *testing.T) {
	store := history.NewStore(filepath.Join(t.TempDir(), history.FileName))

	first := runWithRate(0.7)
	if err := store.Append(first); err != nil {
		t.Fatalf("append: %v", err)
	}
	second := runWithRate(0.9)
	if err := store.Append(second); err != nil {
		t.Fatalf("append: %v", err)
	}

	if first.Run != 1 || second.Run != 2 {
		t.Fatalf("expected run numbers 1,2 got %d,%d", first.Run, second.Run)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(loaded))
	}
	if loaded[0].Run != 1 || loaded[1].Run != 2 {
		t.Fatalf("run numbers not persisted: %d,%d", loaded[0].Run, loaded[1].Run)
	}
	if loaded[1].Summary.Rate != 0.9 {
		t.Fatalf("unexpected rate: %v", loaded[1].Summary.Rate)
	}
}

func TestLoadMissingLedgerIsEmpty(t *testing.T) {
	store := history.NewStore(filepath.Join(t.TempDir(), history.FileName))
	runs, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if runs != nil {
		t.Fatalf("expected empty history, got %v", runs)
	}
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), history.FileName)
	content := `{"timestamp":"t1","summary":{"total":1,"found":1,"rate":1}}` + "\n" +
		"garbage line\n" +
		"\n" +
		`{"timestamp":"t2","summary":{"total":2,"found":1,"rate":0.5}}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write ledger: %v", err)
	}

	runs, err := history.NewStore(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected malformed lines skipped, got %d runs", len(runs))
	}
	if runs[0].Timestamp != "t1" || runs[1].Timestamp != "t2" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

func TestTrendLine(t *testing.T) {
	past := []score.AuditRun{*runWithRate(0.71), *runWithRate(0.71)}
	current := runWithRate(0.95)

	trend := history.Trend(past, current)
	if got := history.TrendLine(trend); got != "71% → 71% → 95%" {
		t.Fatalf("unexpected trend line: %q", got)
	}
}

func TestDetectRegressions(t *testing.T) {
	previous := &score.AuditRun{Categories: map[claims.Category]score.CategoryStats{
		claims.FilePaths: {Total: 10, Found: 9, Rate: 0.9, Severity: claims.SeverityCritical},
		claims.Topics:    {Total: 10, Found: 9, Rate: 0.9, Severity: claims.SeverityMinor},
	}}
	current := &score.AuditRun{Categories: map[claims.Category]score.CategoryStats{
		claims.FilePaths: {Total: 10, Found: 9, Rate: 0.9, Severity: claims.SeverityCritical},
		claims.Topics:    {Total: 10, Found: 6, Rate: 0.6, Severity: claims.SeverityMinor},
	}}

	regressions := history.DetectRegressions(current, previous, history.DefaultRegressionThreshold)
	if len(regressions) != 1 {
		t.Fatalf("expected one regression, got %v", regressions)
	}
	r := regressions[0]
	if r.Category != claims.Topics || r.PreviousRate != 0.9 || r.CurrentRate != 0.6 {
		t.Fatalf("unexpected regression: %+v", r)
	}
}

func TestDetectRegressionsThreshold(t *testing.T) {
	previous := &score.AuditRun{Categories: map[claims.Category]score.CategoryStats{
		claims.Topics: {Total: 100, Found: 90, Rate: 0.90, Severity: claims.SeverityMinor},
	}}
	current := &score.AuditRun{Categories: map[claims.Category]score.CategoryStats{
		claims.Topics: {Total: 100, Found: 87, Rate: 0.87, Severity: claims.SeverityMinor},
	}}

	if got := history.DetectRegressions(current, previous, history.DefaultRegressionThreshold); got != nil {
		t.Fatalf("3pp drop must not trip the 5pp threshold, got %v", got)
	}
	strict := history.DetectRegressions(current, previous, 0)
	if len(strict) != 1 {
		t.Fatalf("zero threshold must flag any decrease, got %v", strict)
	}
}

func TestDetectRegressionsNoPrevious(t *testing.T) {
	if got := history.DetectRegressions(runWithRate(0.5), nil, 0); got != nil {
		t.Fatalf("expected nil without previous run, got %v", got)
	}
}
