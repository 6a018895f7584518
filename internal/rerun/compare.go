package rerun

import (
	"math"
	"sort"

	"compaudit/internal/claims"
	"compaudit/internal/score"
	"compaudit/internal/verify"
)

// rateTolerance absorbs rounding in ledger entries that only stored a
// truncated rate.
const rateTolerance = 0.005

// SummaryComparison contrasts run-level stats between the stored audit and
// its rerun.
type SummaryComparison struct {
	RateMatch     bool    `json:"rate_match"`
	RateOriginal  float64 `json:"rate_original"`
	RateRerun     float64 `json:"rate_rerun"`
	RateDelta     float64 `json:"rate_delta"`
	TotalOriginal int     `json:"total_original"`
	TotalRerun    int     `json:"total_rerun"`
	FoundOriginal int     `json:"found_original"`
	FoundRerun    int     `json:"found_rerun"`
}

// CompareSummaries contrasts two run summaries. Integer counts are compared
// when both sides have them; the rate tolerance is a fallback for entries
// with zero totals.
func CompareSummaries(original, fresh score.Summary) SummaryComparison {
	var match bool
	if original.Total > 0 && fresh.Total > 0 {
		match = original.Total == fresh.Total &&
			original.Found == fresh.Found &&
			original.Missing == fresh.Missing &&
			original.Mismatched == fresh.Mismatched
	} else {
		match = math.Abs(original.Rate-fresh.Rate) < rateTolerance
	}
	return SummaryComparison{
		RateMatch:     match,
		RateOriginal:  original.Rate,
		RateRerun:     fresh.Rate,
		RateDelta:     fresh.Rate - original.Rate,
		TotalOriginal: original.Total,
		TotalRerun:    fresh.Total,
		FoundOriginal: original.Found,
		FoundRerun:    fresh.Found,
	}
}

// CategoryDelta contrasts one category's rate between original and rerun.
type CategoryDelta struct {
	Category     claims.Category `json:"category"`
	OriginalRate float64         `json:"original_rate"`
	RerunRate    float64         `json:"rerun_rate"`
	Delta        float64         `json:"delta"`
	Changed      bool            `json:"changed"`
}

// CompareCategories contrasts per-category rates across the union of
// categories seen on either side.
func CompareCategories(original, fresh map[claims.Category]score.CategoryStats) []CategoryDelta {
	seen := make(map[claims.Category]bool, len(original)+len(fresh))
	var names []claims.Category
	for c := range original {
		if !seen[c] {
			seen[c] = true
			names = append(names, c)
		}
	}
	for c := range fresh {
		if !seen[c] {
			seen[c] = true
			names = append(names, c)
		}
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	deltas := make([]CategoryDelta, 0, len(names))
	for _, c := range names {
		o := original[c].Rate
		r := fresh[c].Rate
		deltas = append(deltas, CategoryDelta{
			Category:     c,
			OriginalRate: o,
			RerunRate:    r,
			Delta:        r - o,
			Changed:      math.Abs(o-r) > 1e-9,
		})
	}
	return deltas
}

// ClaimChange records one claim whose status differs between runs.
type ClaimChange struct {
	Claim    string          `json:"claim"`
	Category claims.Category `json:"category"`
	Original verify.Status   `json:"original"`
	Rerun    verify.Status   `json:"rerun"`
}

// ClaimRecord is a claim present on only one side of the comparison.
type ClaimRecord struct {
	Claim    string          `json:"claim"`
	Category claims.Category `json:"category"`
	Status   verify.Status   `json:"status"`
}

// ClaimDiff is the per-claim comparison between a stored audit and its rerun.
type ClaimDiff struct {
	Unchanged     int           `json:"unchanged"`
	Upgraded      []ClaimChange `json:"upgraded"`
	Downgraded    []ClaimChange `json:"downgraded"`
	NewClaims     []ClaimRecord `json:"new_claims"`
	RemovedClaims []ClaimRecord `json:"removed_claims"`
	Note          string        `json:"note,omitempty"`
}

type claimKey struct {
	category claims.Category
	claim    string
}

// CompareClaims matches claims by category and text, since ids are assigned
// per run and may shift when extraction order changes.
func CompareClaims(original, fresh []score.ClaimResult) ClaimDiff {
	diff := ClaimDiff{
		Upgraded:      []ClaimChange{},
		Downgraded:    []ClaimChange{},
		NewClaims:     []ClaimRecord{},
		RemovedClaims: []ClaimRecord{},
	}
	if len(original) == 0 && len(fresh) == 0 {
		diff.Note = "both empty"
		return diff
	}
	if len(original) == 0 {
		diff.Note = "original had no per-claim data"
		for _, c := range fresh {
			diff.NewClaims = append(diff.NewClaims, ClaimRecord{Claim: c.Claim, Category: c.Category, Status: c.Status})
		}
		return diff
	}

	origMap := make(map[claimKey]score.ClaimResult, len(original))
	for _, c := range original {
		origMap[claimKey{c.Category, c.Claim}] = c
	}
	freshMap := make(map[claimKey]score.ClaimResult, len(fresh))
	for _, c := range fresh {
		freshMap[claimKey{c.Category, c.Claim}] = c
	}

	keys := make([]claimKey, 0, len(origMap)+len(freshMap))
	seen := make(map[claimKey]bool, len(origMap)+len(freshMap))
	for k := range origMap {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for k := range freshMap {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].category != keys[j].category {
			return keys[i].category < keys[j].category
		}
		return keys[i].claim < keys[j].claim
	})

	for _, key := range keys {
		o, haveOrig := origMap[key]
		r, haveFresh := freshMap[key]
		switch {
		case haveOrig && haveFresh:
			change := ClaimChange{Claim: key.claim, Category: key.category, Original: o.Status, Rerun: r.Status}
			switch {
			case o.Status == r.Status:
				diff.Unchanged++
			case o.Status == verify.StatusFound:
				diff.Downgraded = append(diff.Downgraded, change)
			default:
				diff.Upgraded = append(diff.Upgraded, change)
			}
		case haveOrig:
			diff.RemovedClaims = append(diff.RemovedClaims, ClaimRecord{Claim: key.claim, Category: key.category, Status: o.Status})
		default:
			diff.NewClaims = append(diff.NewClaims, ClaimRecord{Claim: key.claim, Category: key.category, Status: r.Status})
		}
	}
	return diff
}
