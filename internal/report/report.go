package report

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"compaudit/internal/audit"
	"compaudit/internal/claims"
	"compaudit/internal/verify"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const rule = "================================================================"

var titleCaser = cases.Title(language.English)

// Audit renders the full human-readable audit report.
func Audit(outcome *audit.Outcome, colorize bool) string {
	run := outcome.Run
	var lines []string

	lines = append(lines, rule)
	lines = append(lines, "  COMPACTION SUMMARY AUDIT REPORT")
	lines = append(lines, rule)
	lines = append(lines, fmt.Sprintf("  Run number           : %d", run.Run))
	lines = append(lines, fmt.Sprintf("  Compaction timestamp : %s", run.Timestamp))
	lines = append(lines, fmt.Sprintf("  Summary length       : %d chars", run.SummaryLength))
	lines = append(lines, fmt.Sprintf("  Archive file         : %s", run.ArchiveFile))
	lines = append(lines, fmt.Sprintf("  Archive session ID   : %s", shortID(run.SessionID)))
	lines = append(lines, fmt.Sprintf("  Archive turns        : %d", run.ArchiveTurns))
	lines = append(lines, rule)

	for _, category := range claims.Categories() {
		stats := run.Categories[category]
		if stats.Total == 0 {
			continue
		}
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("  --- %s (%d/%d) ---", category, stats.Found, stats.Total))
		for _, claim := range run.Claims {
			if claim.Category != category {
				continue
			}
			line := fmt.Sprintf("    %s %s", statusMarker(claim.Status, claim.Location), claim.Claim)
			if claim.Detail != "" {
				line += fmt.Sprintf(" (%s)", claim.Detail)
			}
			lines = append(lines, maybeColor(line, statusColor(claim.Status), colorize))
		}
	}

	summary := run.Summary
	lines = append(lines, "")
	lines = append(lines, rule)
	lines = append(lines, fmt.Sprintf("  TOTALS: %d found / %d missing / %d mismatched",
		summary.Found, summary.Missing, summary.Mismatched))
	if summary.Total > 0 {
		lines = append(lines, fmt.Sprintf("  Verification rate: %.0f%% (%d/%d claims)",
			summary.Rate*100, summary.Found, summary.Total))
		lines = append(lines, fmt.Sprintf("  Severity-weighted: %.0f%%", summary.SeverityWeightedRate*100))
	}
	lines = append(lines, rule)

	if breakdown := categoryBreakdown(outcome); breakdown != "" {
		lines = append(lines, "")
		lines = append(lines, "  Category Breakdown:")
		lines = append(lines, breakdown)
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("  Trend: %s", trendLine(outcome.Trend)))
	if len(outcome.Regressions) == 0 {
		lines = append(lines, "  Regressions: none")
	} else {
		for _, regression := range outcome.Regressions {
			lines = append(lines, maybeColor("  REGRESSION "+regression.String(), ansiRed, colorize))
		}
	}

	return strings.Join(lines, "\n")
}

func categoryBreakdown(outcome *audit.Outcome) string {
	var rows []table.Row
	for _, category := range claims.Categories() {
		stats, ok := outcome.Run.Categories[category]
		if !ok || stats.Total == 0 {
			continue
		}
		pct := stats.Rate * 100
		rows = append(rows, table.Row{
			string(category),
			titleCaser.String(strings.ToLower(string(stats.Severity))),
			progressBar(pct),
			fmt.Sprintf("%.0f%%", pct),
			fmt.Sprintf("%d/%d", stats.Found, stats.Total),
		})
	}
	if len(rows) == 0 {
		return ""
	}
	return renderTable(table.Row{"Category", "Severity", "", "Rate", "Found"}, rows, 4, 5)
}

// progressBar renders a 20-cell bar, one cell per 5 percentage points.
func progressBar(pct float64) string {
	filled := int(pct / 5)
	if filled > 20 {
		filled = 20
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", 20-filled) + "]"
}

func trendLine(trend []int) string {
	if len(trend) == 0 {
		return "(no history)"
	}
	parts := make([]string, len(trend))
	for i, pct := range trend {
		parts[i] = fmt.Sprintf("%d%%", pct)
	}
	return strings.Join(parts, " → ")
}

func statusMarker(status verify.Status, location string) string {
	switch {
	case status == verify.StatusFound && location == "deep":
		return "[DEEP]    "
	case status == verify.StatusFound:
		return "[FOUND]   "
	case status == verify.StatusMissing:
		return "[MISSING] "
	default:
		return "[MISMATCH]"
	}
}

func statusColor(status verify.Status) string {
	switch status {
	case verify.StatusFound:
		return ansiGreen
	case verify.StatusMissing:
		return ansiRed
	default:
		return ansiYellow
	}
}

func maybeColor(line, color string, colorize bool) string {
	if !colorize || color == "" {
		return line
	}
	return color + line + ansiReset
}

func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12] + "..."
}
