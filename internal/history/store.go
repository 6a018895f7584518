package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gofrs/flock"

	"compaudit/internal/score"
)

// FileName is the audit ledger's conventional name inside the archive dir.
const FileName = "audit_history.jsonl"

// maxRecordSize bounds one ledger line; full claim lists can be large.
const maxRecordSize = 16 * 1024 * 1024

// Store reads and appends the audit history ledger.
type Store struct {
	path string
	lock *flock.Flock
}

// NewStore creates a store for the ledger at path. The file may not exist
// yet; it is created on first append.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the ledger location.
func (s *Store) Path() string {
	return s.path
}

// Load reads every run in chronological order. A missing ledger is an empty
// history; malformed lines are skipped, never fatal.
func (s *Store) Load() ([]score.AuditRun, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open history ledger: %w", err)
	}
	defer f.Close()

	var runs []score.AuditRun
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxRecordSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var run score.AuditRun
		if err := json.Unmarshal([]byte(line), &run); err != nil {
			continue
		}
		runs = append(runs, run)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history ledger: %w", err)
	}
	return runs, nil
}

// Append assigns the next run number and writes the run as one new record.
// The caller's run is updated with the assigned number.
func (s *Store) Append(run *score.AuditRun) error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock history ledger: %w", err)
	}
	defer s.lock.Unlock()

	existing, err := s.Load()
	if err != nil {
		return err
	}
	run.Run = len(existing) + 1

	return appendRecord(s.path, run)
}

// AppendRecords writes arbitrary records to a ledger at path, one JSON line
// each, under the same lock discipline as the audit ledger. The rerun ledger
// shares this so partial batches never interleave.
func AppendRecords(path string, records ...any) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock ledger: %w", err)
	}
	defer lock.Unlock()

	for _, record := range records {
		if err := appendRecord(path, record); err != nil {
			return err
		}
	}
	return nil
}

// appendRecord marshals v and appends it as a single line in one write.
func appendRecord(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode ledger record: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger for append: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("append ledger record: %w", err)
	}
	return nil
}
