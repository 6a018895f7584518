package history

import (
	"fmt"
	"math"
	"strings"

	"compaudit/internal/claims"
	"compaudit/internal/score"
)

// DefaultRegressionThreshold is the category rate drop, in percentage
// points, that flags a regression. Zero flags any decrease.
const DefaultRegressionThreshold = 5.0

// Regression records a category whose rate dropped versus the previous run.
type Regression struct {
	Category     claims.Category `json:"category"`
	Severity     claims.Severity `json:"severity"`
	PreviousRate float64         `json:"previous_rate"`
	CurrentRate  float64         `json:"current_rate"`
}

func (r Regression) String() string {
	return fmt.Sprintf("[%s] %s: %.0f%% → %.0f%%",
		r.Severity, r.Category, r.PreviousRate*100, r.CurrentRate*100)
}

// Trend projects every historical rate plus the current run into a
// percentage sequence, in chronological order.
func Trend(past []score.AuditRun, current *score.AuditRun) []int {
	trend := make([]int, 0, len(past)+1)
	for _, run := range past {
		trend = append(trend, roundPercent(run.Summary.Rate))
	}
	if current != nil {
		trend = append(trend, roundPercent(current.Summary.Rate))
	}
	return trend
}

// TrendLine renders a trend sequence like "71% → 71% → 95%".
func TrendLine(trend []int) string {
	parts := make([]string, len(trend))
	for i, pct := range trend {
		parts[i] = fmt.Sprintf("%d%%", pct)
	}
	return strings.Join(parts, " → ")
}

// DetectRegressions compares the current run's category rates against the
// previous run's. A category regresses when its rate drops by more than
// thresholdPP percentage points. The same threshold drives the live report
// and the regression API.
func DetectRegressions(current, previous *score.AuditRun, thresholdPP float64) []Regression {
	if current == nil || previous == nil {
		return nil
	}

	var regressions []Regression
	for _, category := range claims.Categories() {
		currStats, ok := current.Categories[category]
		if !ok {
			continue
		}
		prevStats, ok := previous.Categories[category]
		if !ok {
			continue
		}
		prevPct := prevStats.Rate * 100
		currPct := currStats.Rate * 100
		if prevPct-currPct > thresholdPP {
			regressions = append(regressions, Regression{
				Category:     category,
				Severity:     currStats.Severity,
				PreviousRate: prevStats.Rate,
				CurrentRate:  currStats.Rate,
			})
		}
	}
	return regressions
}

func roundPercent(rate float64) int {
	return int(math.Round(rate * 100))
}
