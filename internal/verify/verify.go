package verify

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"compaudit/internal/archive"
	"compaudit/internal/claims"
	"compaudit/internal/textutil"
)

// Status is the outcome of checking one claim.
type Status string

const (
	StatusFound     Status = "FOUND"
	StatusFoundDeep Status = "FOUND_DEEP"
	StatusMissing   Status = "MISSING"
	StatusMismatch  Status = "MISMATCH"
)

// Verified reports whether the status counts as a success.
func (s Status) Verified() bool {
	return s == StatusFound || s == StatusFoundDeep
}

// Result is the verification outcome for a single claim.
type Result struct {
	Category claims.Category
	Claim    string
	Status   Status
	Detail   string
}

// Results groups outcomes per category.
type Results map[claims.Category][]Result

// Verifier holds the parsed archive plus precomputed search text.
type Verifier struct {
	meta      archive.SessionMetadata
	userText  string
	turnText  string
	turnLower string
}

// New prepares a verifier for one session. Turn content is concatenated once
// up front; user turns separately for quote matching.
func New(session *archive.Session) *Verifier {
	var user, all []string
	for _, turn := range session.Turns {
		all = append(all, turn.Content)
		if turn.Role == "user" {
			user = append(user, turn.Content)
		}
	}
	turnText := strings.Join(all, " ")
	return &Verifier{
		meta:      session.Meta,
		userText:  strings.ToLower(strings.Join(user, " ")),
		turnText:  turnText,
		turnLower: strings.ToLower(turnText),
	}
}

// Verify runs every category strategy over the claim set.
func (v *Verifier) Verify(set claims.Set) Results {
	return Results{
		claims.FilePaths:        v.VerifyFiles(set.FilePaths),
		claims.ToolsUsed:        v.VerifyTools(set.Tools),
		claims.UserQuotes:       v.VerifyQuotes(set.Quotes),
		claims.Topics:           v.VerifyTopics(set.Topics),
		claims.TurnCounts:       v.VerifyTurnCounts(set.TurnCounts),
		claims.FunctionsClasses: v.VerifyFunctions(set.Functions),
	}
}

// VerifyFiles checks claimed paths against the Files Referenced field,
// case-insensitive and slash-normalized, retrying with just the filename
// when the full path misses.
func (v *Verifier) VerifyFiles(paths []string) []Result {
	archiveNorm := normalizePath(v.meta.FilesReferenced)

	results := make([]Result, 0, len(paths))
	for _, p := range paths {
		norm := normalizePath(p)
		found := strings.Contains(archiveNorm, norm)
		if !found {
			if name := lastSegment(norm); len(name) > 3 {
				found = strings.Contains(archiveNorm, name)
			}
		}
		results = append(results, Result{
			Category: claims.FilePaths,
			Claim:    p,
			Status:   foundOrMissing(found),
		})
	}
	return results
}

// VerifyTools checks exact membership in the Tools Used list.
func (v *Verifier) VerifyTools(tools []string) []Result {
	archiveTools := make(map[string]struct{})
	for _, t := range strings.Split(v.meta.ToolsUsed, ",") {
		archiveTools[strings.TrimSpace(t)] = struct{}{}
	}

	results := make([]Result, 0, len(tools))
	for _, tool := range tools {
		_, found := archiveTools[tool]
		results = append(results, Result{
			Category: claims.ToolsUsed,
			Claim:    tool,
			Status:   foundOrMissing(found),
		})
	}
	return results
}

// VerifyQuotes searches user-turn content with three escalating strategies:
// exact substring, 40-character prefix, then significant-word overlap.
func (v *Verifier) VerifyQuotes(quotes []string) []Result {
	results := make([]Result, 0, len(quotes))
	for _, quote := range quotes {
		display := quote
		if len(display) > 80 {
			display = textutil.Clip(display, 80) + "..."
		}
		results = append(results, Result{
			Category: claims.UserQuotes,
			Claim:    display,
			Status:   foundOrMissing(v.quoteFound(strings.ToLower(quote))),
		})
	}
	return results
}

func (v *Verifier) quoteFound(quote string) bool {
	if strings.Contains(v.userText, quote) {
		return true
	}

	prefix := strings.TrimSpace(textutil.Clip(quote, 40))
	if len(prefix) > 10 && strings.Contains(v.userText, prefix) {
		return true
	}

	words := textutil.SignificantWords(quote, 4)
	if len(words) == 0 {
		return false
	}
	threshold := int(math.Ceil(0.6 * float64(len(words))))
	if threshold < 1 {
		threshold = 1
	}
	return textutil.CountContainedWords(v.userText, words) >= threshold
}

// VerifyTopics checks claims against the Topics field, falling back to
// individual words longer than three characters.
func (v *Verifier) VerifyTopics(topics []string) []Result {
	archiveTopics := strings.ToLower(v.meta.Topics)

	results := make([]Result, 0, len(topics))
	for _, topic := range topics {
		lower := strings.ToLower(topic)
		found := strings.Contains(archiveTopics, lower) ||
			textutil.ContainsAnyWord(archiveTopics, textutil.SignificantWords(lower, 3))
		results = append(results, Result{
			Category: claims.Topics,
			Claim:    topic,
			Status:   foundOrMissing(found),
		})
	}
	return results
}

// VerifyTurnCounts compares claimed counts with the recorded turn count. A
// wrong count is a MISMATCH carrying the actual value, not a MISSING.
func (v *Verifier) VerifyTurnCounts(counts []int) []Result {
	results := make([]Result, 0, len(counts))
	for _, count := range counts {
		r := Result{
			Category: claims.TurnCounts,
			Claim:    fmt.Sprintf("%d turns", count),
		}
		if count == v.meta.Turns {
			r.Status = StatusFound
		} else {
			r.Status = StatusMismatch
			r.Detail = fmt.Sprintf("archive: %d turns", v.meta.Turns)
		}
		results = append(results, r)
	}
	return results
}

// VerifyFunctions checks for exact presence of each name in the full turn
// content.
func (v *Verifier) VerifyFunctions(names []string) []Result {
	results := make([]Result, 0, len(names))
	for _, name := range names {
		label := fmt.Sprintf("def %s()", name)
		if first := []rune(name); len(first) > 0 && unicode.IsUpper(first[0]) {
			label = "class " + name
		}
		results = append(results, Result{
			Category: claims.FunctionsClasses,
			Claim:    label,
			Status:   foundOrMissing(strings.Contains(v.turnText, name)),
		})
	}
	return results
}

// DeepSearch rechecks MISSING claims against the full turn content and
// upgrades hits to FOUND_DEEP. Path-like claims match on filename only.
func (v *Verifier) DeepSearch(results Results) {
	for category, categoryResults := range results {
		for i, r := range categoryResults {
			if r.Status != StatusMissing {
				continue
			}
			key := strings.TrimRight(normalizePath(strings.ToLower(r.Claim)), "/")
			found := false
			if strings.ContainsAny(key, "/:") {
				if name := lastSegment(key); len(name) > 3 {
					found = strings.Contains(v.turnLower, name)
				}
			} else {
				found = strings.Contains(v.turnLower, key)
			}
			if found {
				results[category][i].Status = StatusFoundDeep
			}
		}
	}
}

func normalizePath(s string) string {
	s = strings.ReplaceAll(s, `\\`, "/")
	s = strings.ReplaceAll(s, `\`, "/")
	return strings.ToLower(s)
}

func lastSegment(path string) string {
	path = strings.TrimRight(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

func foundOrMissing(found bool) Status {
	if found {
		return StatusFound
	}
	return StatusMissing
}
