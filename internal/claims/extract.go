package claims

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"compaudit/internal/textutil"
)

// Blacklist holds user-supplied topic terms to exclude, upper-cased.
type Blacklist map[string]struct{}

// NewBlacklist normalizes configured terms into a lookup set.
func NewBlacklist(terms []string) Blacklist {
	bl := make(Blacklist, len(terms))
	for _, t := range terms {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			bl[t] = struct{}{}
		}
	}
	return bl
}

func (bl Blacklist) contains(term string) bool {
	_, ok := bl[strings.ToUpper(term)]
	return ok
}

// Set is the result of one extraction pass: raw claim values per category.
type Set struct {
	FilePaths  []string
	Tools      []string
	Quotes     []string
	Topics     []string
	TurnCounts []int
	Functions  []string
}

// Total reports the number of claims across all categories.
func (s Set) Total() int {
	return len(s.FilePaths) + len(s.Tools) + len(s.Quotes) +
		len(s.Topics) + len(s.TurnCounts) + len(s.Functions)
}

var fencedBlockPattern = regexp.MustCompile("(?s)```.*?```")

// StripCodeBlocks removes fenced code blocks so code is never matched as prose.
func StripCodeBlocks(text string) string {
	return fencedBlockPattern.ReplaceAllString(text, "")
}

// Extract pulls every category of claim from the summary text. Code blocks
// are stripped once up front; all categories see the stripped text.
func Extract(text string, blacklist Blacklist) Set {
	stripped := StripCodeBlocks(text)
	return Set{
		FilePaths:  ExtractFilePaths(stripped),
		Tools:      ExtractTools(stripped),
		Quotes:     ExtractQuotes(stripped),
		Topics:     ExtractTopics(stripped, blacklist),
		TurnCounts: ExtractTurnCounts(stripped),
		Functions:  ExtractFunctions(stripped),
	}
}

var (
	drivePathPattern = regexp.MustCompile(`[A-Za-z]:[/\\][\w./\\-]+`)
	// RE2 has no lookbehind; a leading non-word capture group stands in for
	// the "not preceded by a word character" guard.
	posixPathPattern = regexp.MustCompile(`(?:^|[^\w])(/(?:[\w.-]+/)+[\w.-]+)`)
)

// ExtractFilePaths matches absolute drive-letter and POSIX paths, trims
// trailing punctuation, and drops anything five characters or shorter.
func ExtractFilePaths(text string) []string {
	seen := make(map[string]struct{})
	add := func(match string) {
		cleaned := strings.TrimRight(match, `/\).,:;`)
		if len(cleaned) > 5 {
			seen[cleaned] = struct{}{}
		}
	}
	for _, m := range drivePathPattern.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range posixPathPattern.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	return sortedKeys(seen)
}

// knownTools is the closed vocabulary of assistant tool names.
var knownTools = []string{
	"Read", "Write", "Edit", "Bash", "Glob", "Grep", "Task",
	"TodoWrite", "AskUserQuestion", "ExitPlanMode", "EnterPlanMode",
	"WebFetch", "WebSearch", "NotebookEdit", "Skill",
}

var toolPatterns = compileToolPatterns()

func compileToolPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(knownTools))
	for _, tool := range knownTools {
		patterns[tool] = regexp.MustCompile(`\b` + regexp.QuoteMeta(tool) + `\b`)
	}
	return patterns
}

// ExtractTools matches known tool names as whole words.
func ExtractTools(text string) []string {
	seen := make(map[string]struct{})
	for tool, pattern := range toolPatterns {
		if pattern.MatchString(text) {
			seen[tool] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

var (
	userMessagesHeading = regexp.MustCompile(`(?i)All User Messages[:\s]*\n`)
	numberedSection     = regexp.MustCompile(`(?m)^\s*\d+\.\s+[A-Z]`)
	smartQuotePattern   = regexp.MustCompile(`\x{201c}([^\x{201d}]{8,})\x{201d}`)
	straightQuotePattern = regexp.MustCompile(`"([^"]{8,})"`)
	pathLikePattern     = regexp.MustCompile(`^[\w./\\:]+$`)
)

// ExtractQuotes collects quoted user-message spans. When the summary has an
// "All User Messages" section, only that section is searched.
func ExtractQuotes(text string) []string {
	target := text
	if loc := userMessagesHeading.FindStringIndex(text); loc != nil {
		start := loc[1]
		end := len(text)
		if next := numberedSection.FindStringIndex(text[start:]); next != nil {
			end = start + next[0]
		}
		target = text[start:end]
	}
	target = StripCodeBlocks(target)

	var quotes []string
	for _, m := range smartQuotePattern.FindAllStringSubmatch(target, -1) {
		quotes = append(quotes, m[1])
	}
	for _, m := range straightQuotePattern.FindAllStringSubmatch(target, -1) {
		q := m[1]
		// Skip code-like strings and bare paths.
		if strings.HasPrefix(q, "{") || strings.HasPrefix(q, "[") || strings.Contains(q, `\n`) {
			continue
		}
		if pathLikePattern.MatchString(q) {
			continue
		}
		quotes = append(quotes, q)
	}

	seen := make(map[string]struct{})
	var unique []string
	for _, q := range quotes {
		key := strings.TrimSpace(strings.ToLower(textutil.Clip(q, 40)))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, q)
	}
	return unique
}

// Summary structure headings, not topic claims.
var sectionHeaders = map[string]struct{}{
	"primary request and intent": {},
	"key technical concepts":     {},
	"files and code sections":    {},
	"errors and fixes":           {},
	"problem solving":            {},
	"all user messages":          {},
	"pending tasks":              {},
	"current work":               {},
	"optional next step":         {},
	"analysis":                   {},
	"summary":                    {},
}

// Status and label words that show up bolded but carry no topic meaning.
var skipLabels = map[string]struct{}{
	"NOTE": {}, "CRITICAL": {}, "IMPORTANT": {}, "SOLVED": {}, "NOT FIXED": {},
	"ONGOING": {}, "MODIFIED": {}, "CREATED": {}, "READ": {}, "GENERATED": {},
	"BUG": {}, "COMPLETE": {}, "WHAT": {}, "WHY": {}, "HOW": {}, "FIX": {},
	"ERROR": {}, "FIXED": {}, "DEFERRED": {}, "IN": {}, "ADD": {}, "JUST": {},
	"ONLY": {}, "CHANGE": {},
}

var skipAcronyms = buildAcronymSkipSet()

func buildAcronymSkipSet() map[string]struct{} {
	words := []string{
		// 2-letter
		"OK", "ID", "VS", "IE", "EG", "IF", "OR", "IS", "IT", "DO", "AS",
		"ON", "TO", "AT", "OF", "NO", "UP", "SO", "BE", "BY", "AM", "AN",
		"PC", "IN",
		// 3-letter
		"NOT", "THE", "AND", "FOR", "ALL", "HAS", "WAS", "GET", "SET", "PUT",
		"API", "CLI", "URL", "SQL", "ADD", "BUT", "CAN", "DID", "HAD", "HER",
		"HIS", "HIM", "HOW", "ITS", "LET", "MAY", "NEW", "NOW", "OLD", "OUR",
		"OWN", "RAN", "SAY", "SHE", "TRY", "USE", "WAY", "WHO", "WIN",
		"YET", "ANY", "FEW", "GOT", "NOR", "RUN", "TWO",
		// 4-letter
		"JSON", "HTML", "TEXT", "FILE", "PATH", "UUID", "NULL", "TRUE", "ARGS",
		"HTTP", "SELF", "NONE", "JUST", "ONLY", "ALSO", "BACK", "BEEN", "BOTH",
		"CALL", "COME", "DONE", "EACH", "EVEN", "FIND", "FROM", "GAVE", "GOES",
		"GONE", "GOOD", "HAVE", "HERE", "INTO", "KEEP", "KNOW", "LAST", "LEFT",
		"LIKE", "LIST", "LOOK", "MADE", "MAKE", "MANY", "MORE", "MOST", "MUCH",
		"MUST", "NAME", "NEED", "NEXT", "ONCE", "OVER", "PART", "SAME", "SHOW",
		"SIDE", "SOME", "SUCH", "SURE", "TAKE", "TELL", "THAN", "THAT", "THEM",
		"THEN", "THEY", "THIS", "TOOK", "VERY", "WANT", "WELL", "WENT", "WERE",
		"WHAT", "WHEN", "WILL", "WITH", "WORK", "YOUR",
		// 5+ letter common English
		"FALSE", "ABOUT", "ABOVE", "AFTER", "AGAIN", "BEING", "BELOW", "COULD",
		"EVERY", "FIRST", "FOUND", "NEVER", "OTHER", "SHALL", "SINCE", "STILL",
		"THEIR", "THERE", "THESE", "THINK", "THOSE", "THREE", "UNDER", "UNTIL",
		"WHERE", "WHICH", "WHILE", "WHOSE", "WOULD", "SHOULD", "THROUGH",
		"BEFORE", "BETWEEN", "BECAUSE", "DURING", "WITHOUT", "ALREADY",
		"ANOTHER", "ALWAYS", "APPEAR", "CHANGE", "DISCUSSED", "IDENTIFIED",
		"PREVIOUS", "UPDATED", "UNLESS",
		// Technical/formatting labels
		"CREATED", "MODIFIED", "GENERATED", "MEMORY", "README",
		"UTF", "STDERR", "STDOUT", "TYPE", "LOCAL",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

var (
	boldTermPattern  = regexp.MustCompile(`\*\*([^*]{3,50})\*\*`)
	capPhrasePattern = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)\b`)
	acronymPattern   = regexp.MustCompile(`\b([A-Z]{2,})\b`)
	messageNumber    = regexp.MustCompile(`^Message\s+\d+`)
	structuralNoun   = regexp.MustCompile(`^(Message|Session|Turn|Step|Phase|Option)\s`)
)

// ExtractTopics collects emphasized terms, capitalized multi-word phrases, and
// all-caps acronyms, filtered through the structural skip lists, the
// user-supplied blacklist, and the formatting-artifact heuristic.
func ExtractTopics(text string, blacklist Blacklist) []string {
	topics := make(map[string]struct{})

	for _, m := range boldTermPattern.FindAllStringSubmatch(text, -1) {
		term := strings.TrimSpace(m[1])
		upper := strings.ToUpper(term)
		if _, ok := skipLabels[upper]; ok {
			continue
		}
		if blacklist.contains(term) {
			continue
		}
		if _, ok := sectionHeaders[strings.ToLower(term)]; ok {
			continue
		}
		if messageNumber.MatchString(term) {
			continue
		}
		if strings.ContainsAny(term, `/\`) {
			continue
		}
		if isFormattingArtifact(term) {
			continue
		}
		if len(term) > 3 {
			topics[term] = struct{}{}
		}
	}

	for _, m := range capPhrasePattern.FindAllStringSubmatch(text, -1) {
		phrase := strings.TrimSpace(m[1])
		if _, ok := sectionHeaders[strings.ToLower(phrase)]; ok {
			continue
		}
		if blacklist.contains(phrase) {
			continue
		}
		if structuralNoun.MatchString(phrase) {
			continue
		}
		if isFormattingArtifact(phrase) {
			continue
		}
		if len(phrase) > 5 {
			topics[phrase] = struct{}{}
		}
	}

	for _, m := range acronymPattern.FindAllStringSubmatch(text, -1) {
		acr := m[1]
		if _, ok := skipAcronyms[acr]; ok {
			continue
		}
		if blacklist.contains(acr) {
			continue
		}
		topics[acr] = struct{}{}
	}

	return sortedKeys(topics)
}

// isFormattingArtifact rejects terms that are markdown debris rather than
// real topics: embedded line breaks, mostly-punctuation runs, or leading
// bracket/punctuation characters.
func isFormattingArtifact(term string) bool {
	if strings.ContainsAny(term, "\n\r") {
		return true
	}
	if len(term) > 0 {
		alnum := 0
		runes := []rune(term)
		for _, r := range runes {
			if isAlnum(r) {
				alnum++
			}
		}
		if float64(alnum)/float64(len(runes)) < 0.5 {
			return true
		}
		if strings.ContainsRune(":-()[]{}|>", runes[0]) {
			return true
		}
	}
	return false
}

func isAlnum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

var turnCountPattern = regexp.MustCompile(`(?i)(\d+)[\s-]*turns?\b`)

// ExtractTurnCounts matches integers immediately followed by "turn(s)".
func ExtractTurnCounts(text string) []int {
	var counts []int
	for _, m := range turnCountPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		counts = append(counts, n)
	}
	return counts
}

var (
	funcDefPattern  = regexp.MustCompile(`\bdef\s+(\w+)\s*\(`)
	classDefPattern = regexp.MustCompile(`\bclass\s+(\w+)`)
)

// Generic words that coincidentally match class-name syntax.
var functionExclusions = map[string]struct{}{
	"Task": {}, "Path": {}, "Counter": {},
}

// ExtractFunctions matches function and class definition syntax.
func ExtractFunctions(text string) []string {
	names := make(map[string]struct{})
	for _, m := range funcDefPattern.FindAllStringSubmatch(text, -1) {
		names[m[1]] = struct{}{}
	}
	for _, m := range classDefPattern.FindAllStringSubmatch(text, -1) {
		if _, ok := functionExclusions[m[1]]; ok {
			continue
		}
		names[m[1]] = struct{}{}
	}
	return sortedKeys(names)
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
