package claims

// Category identifies one kind of checkable claim.
type Category string

const (
	FilePaths        Category = "File Paths"
	ToolsUsed        Category = "Tools Used"
	UserQuotes       Category = "User Quotes"
	Topics           Category = "Topics"
	TurnCounts       Category = "Turn Counts"
	FunctionsClasses Category = "Functions/Classes"
)

// Severity ranks how damaging an unverified claim in a category is.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityMajor    Severity = "MAJOR"
	SeverityMinor    Severity = "MINOR"
	SeverityInfo     Severity = "INFO"
)

// categoryOrder fixes the iteration order used by reports and ledgers.
var categoryOrder = []Category{
	FilePaths,
	ToolsUsed,
	UserQuotes,
	Topics,
	TurnCounts,
	FunctionsClasses,
}

var categorySeverity = map[Category]Severity{
	FilePaths:        SeverityCritical,
	FunctionsClasses: SeverityCritical,
	ToolsUsed:        SeverityMajor,
	UserQuotes:       SeverityMajor,
	Topics:           SeverityMinor,
	TurnCounts:       SeverityInfo,
}

var severityWeight = map[Severity]int{
	SeverityCritical: 4,
	SeverityMajor:    3,
	SeverityMinor:    2,
	SeverityInfo:     1,
}

// idPrefix feeds sequential claim IDs like fp-1, uq-3. The IDs are a display
// convenience scoped to a single run; diffing keys on (category, claim text).
var idPrefix = map[Category]string{
	FilePaths:        "fp",
	ToolsUsed:        "tu",
	UserQuotes:       "uq",
	Topics:           "tp",
	TurnCounts:       "tc",
	FunctionsClasses: "fc",
}

// Categories returns every claim category in report order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Severity returns the fixed severity assigned to the category.
func (c Category) Severity() Severity {
	if sev, ok := categorySeverity[c]; ok {
		return sev
	}
	return SeverityInfo
}

// IDPrefix returns the short prefix used for sequential claim IDs.
func (c Category) IDPrefix() string {
	if p, ok := idPrefix[c]; ok {
		return p
	}
	return "cl"
}

// Weight returns the scoring weight for the severity.
func (s Severity) Weight() int {
	if w, ok := severityWeight[s]; ok {
		return w
	}
	return 1
}
