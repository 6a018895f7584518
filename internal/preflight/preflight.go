package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"compaudit/internal/archive"
	"compaudit/internal/config"
	"compaudit/internal/history"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks that guard an audit run. The transcripts base is
// only checked when the summary will come from a transcript scan.
func RunAll(cfg *config.Config, needTranscripts bool) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	dir, ok := archive.FindDir(cfg.Paths.ArchiveDir)
	if !ok {
		results = append(results, Result{
			Name:   "Archive directory",
			Detail: fmt.Sprintf("no %s directory near %s", archive.DirName, cfg.Paths.ArchiveDir),
		})
	} else {
		results = append(results, CheckDirectoryAccess("Archive directory", dir))
		results = append(results, CheckLedgerAppend(filepath.Join(dir, history.FileName)))
	}

	if needTranscripts {
		results = append(results, CheckDirectoryAccess("Transcripts base", cfg.Paths.TranscriptsBase))
	}

	return results
}

// Passed reports whether every check succeeded.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckLedgerAppend verifies the history ledger can be opened for append. A
// ledger that does not exist yet passes as long as its directory is writable.
func CheckLedgerAppend(path string) Result {
	const name = "History ledger"

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := unix.Access(filepath.Dir(path), unix.W_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: directory not writable: %v)", path, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not appendable: %v)", path, err)}
	}
	f.Close()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (append ok)", path)}
}
