package report

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"compaudit/internal/rerun"
	"compaudit/internal/textutil"
)

// Rerun renders the batch comparison report for an executed rerun.
func Rerun(outcome *rerun.Outcome, colorize bool) string {
	var lines []string
	lines = append(lines, rule)
	lines = append(lines, "  AUDIT RERUN REPORT")
	lines = append(lines, fmt.Sprintf("  Batch: %s", outcome.Batch))
	lines = append(lines, fmt.Sprintf("  Reruns: %d of %d entries (%d baselines skipped)",
		len(outcome.Entries), outcome.TotalHistory, outcome.Skipped))
	lines = append(lines, rule)
	lines = append(lines, "")

	var rows []table.Row
	var diffEntries []rerun.Entry
	for _, entry := range outcome.Entries {
		switch entry.Status {
		case rerun.StatusSkipped:
			rows = append(rows, table.Row{entry.RerunOf, "SKIPPED", "", "", entry.Reason})
		case rerun.StatusFailed:
			rows = append(rows, table.Row{entry.RerunOf, "FAILED", "", "", entry.Reason})
		default:
			comp := entry.Comparison
			match := "NO"
			delta := fmt.Sprintf("%+.1fpp", comp.RateDelta*100)
			if comp.RateMatch {
				match = "YES"
				delta = "0pp"
			} else {
				diffEntries = append(diffEntries, entry)
			}
			rows = append(rows, table.Row{
				entry.RerunOf,
				fmt.Sprintf("%.1f%%", comp.RateOriginal*100),
				fmt.Sprintf("%.1f%%", comp.RateRerun*100),
				delta,
				match,
			})
		}
	}
	lines = append(lines, renderTable(
		table.Row{"Run", "Original", "Rerun", "Delta", "Match"}, rows, 1, 2, 3, 4))

	for _, entry := range diffEntries {
		lines = append(lines, renderEntryDiff(entry, colorize)...)
	}

	reproduced, ran := outcome.Reproduced()
	lines = append(lines, "")
	lines = append(lines, rule)
	result := fmt.Sprintf("  RESULT: %d/%d runs reproduced exactly", reproduced, ran)
	color := ansiGreen
	if reproduced < ran {
		color = ansiYellow
	}
	lines = append(lines, maybeColor(result, color, colorize))
	lines = append(lines, rule)

	return strings.Join(lines, "\n")
}

func renderEntryDiff(entry rerun.Entry, colorize bool) []string {
	var lines []string

	diff := entry.ClaimDiffs
	if diff != nil && (len(diff.Upgraded) > 0 || len(diff.Downgraded) > 0) {
		changes := len(diff.Upgraded) + len(diff.Downgraded)
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("  --- Run %d: Claim Diffs (%d changes) ---", entry.RerunOf, changes))
		for _, change := range diff.Upgraded {
			lines = append(lines, maybeColor(
				fmt.Sprintf("    [UPGRADED]   %s / %q  %s -> %s",
					change.Category, textutil.Clip(change.Claim, 50), change.Original, change.Rerun),
				ansiGreen, colorize))
		}
		for _, change := range diff.Downgraded {
			lines = append(lines, maybeColor(
				fmt.Sprintf("    [DOWNGRADED] %s / %q  %s -> %s",
					change.Category, textutil.Clip(change.Claim, 50), change.Original, change.Rerun),
				ansiRed, colorize))
		}
	}

	var changed []rerun.CategoryDelta
	for _, delta := range entry.CategoryDeltas {
		if delta.Changed {
			changed = append(changed, delta)
		}
	}
	if len(changed) > 0 {
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("  --- Run %d: Category Deltas ---", entry.RerunOf))
		for _, delta := range changed {
			lines = append(lines, fmt.Sprintf("    %-25s %.0f%% -> %.0f%%  (%+.1f%%)",
				delta.Category, delta.OriginalRate*100, delta.RerunRate*100, delta.Delta*100))
		}
	}

	return lines
}

// RerunPlan renders the dry-run listing.
func RerunPlan(outcome *rerun.Outcome) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Dry run: %d entries to rerun, %d baselines skipped",
		len(outcome.Plan), outcome.Skipped))
	for _, item := range outcome.Plan {
		status := "NO MATCH"
		if item.Matched {
			status = "MATCHED"
		}
		lines = append(lines, fmt.Sprintf("  Run %d: rate=%.1f%%, ts=%s, %s",
			item.Run, item.Rate*100, item.Timestamp, status))
	}
	return strings.Join(lines, "\n")
}

