package audit

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoSummary marks runs where no compaction summary could be located.
	ErrNoSummary = errors.New("no compaction summary")
	// ErrNoArchive marks runs where no ground-truth session archive exists.
	ErrNoArchive = errors.New("no session archive")
	// ErrMalformed marks unparseable transcript or archive input.
	ErrMalformed = errors.New("malformed input")
	// ErrPersist marks failures writing to a ledger or report file.
	ErrPersist = errors.New("persist failure")
	// ErrNotReplayable marks history entries that cannot be re-run.
	ErrNotReplayable = errors.New("not replayable")
)

// Wrap builds an error message that includes pipeline context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrMalformed
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "audit failure"
	}
	return strings.Join(parts, ": ")
}
