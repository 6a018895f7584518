// Package audit wires claim extraction, archive verification, scoring, and
// history persistence into a single pipeline run.
package audit

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"compaudit/internal/archive"
	"compaudit/internal/claims"
	"compaudit/internal/config"
	"compaudit/internal/history"
	"compaudit/internal/logging"
	"compaudit/internal/score"
	"compaudit/internal/transcript"
	"compaudit/internal/verify"
)

// Options selects a compaction summary, a ground-truth archive, and pipeline
// behavior for one audit run. Exactly one summary source is used, in order of
// precedence: SummaryText, SummaryFile, TranscriptPath, then a scan of the
// project's transcript directory.
type Options struct {
	Config *config.Config
	Logger *slog.Logger

	SummaryText    string
	SummaryFile    string
	TranscriptPath string
	ProjectPath    string

	// SummaryIndex selects among multiple compaction summaries in a
	// transcript. Negative values count from the end, so -1 is the last.
	SummaryIndex int

	// ArchiveFile names an explicit session archive, either as a path or as
	// a filename fragment matched against the archive directory. When empty
	// the directory is searched using the summary's session id as a hint.
	ArchiveFile string

	DeepSearch bool

	// DryRun skips the history append; scoring and trend output still run.
	DryRun bool

	// Timestamp overrides the run timestamp, RFC3339. Empty means now.
	Timestamp string
}

// Outcome is the result of one audit pipeline run.
type Outcome struct {
	Run         *score.AuditRun
	Past        []score.AuditRun
	Trend       []int
	Regressions []history.Regression
	SummaryText string
	Source      string
	HistoryPath string
}

// Run executes the full audit pipeline.
func Run(opts Options) (*Outcome, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, Wrap(ErrMalformed, "run", "configuration missing", nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	summary, source, err := resolveSummary(opts)
	if err != nil {
		return nil, err
	}
	logger.Info("compaction summary resolved", "source", source, "length", len(summary.Text))

	session, err := locateArchive(cfg, opts.ArchiveFile, summary.SessionID)
	if err != nil {
		return nil, err
	}
	logger.Info("session archive loaded",
		"file", session.Meta.Filename,
		"turns", session.Meta.Turns)

	blacklist := claims.NewBlacklist(cfg.Audit.TopicBlacklist)
	set := claims.Extract(summary.Text, blacklist)
	logger.Debug("claims extracted", "total", set.Total())

	verifier := verify.New(session)
	results := verifier.Verify(set)
	if opts.DeepSearch {
		verifier.DeepSearch(results)
	}

	// The run inherits the compaction's own timestamp when one exists so
	// later reruns can match the ledger entry back to its transcript.
	timestamp := opts.Timestamp
	if timestamp == "" {
		timestamp = summary.Timestamp
	}
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	run := score.Build(results, session.Meta, score.RunInfo{
		Timestamp:     timestamp,
		SummaryLength: len(summary.Text),
	})

	store := history.NewStore(filepath.Join(filepath.Dir(session.Meta.Path), history.FileName))
	past, err := store.Load()
	if err != nil {
		return nil, Wrap(ErrPersist, "history", "load ledger", err)
	}
	run.Run = len(past) + 1

	outcome := &Outcome{
		Run:         run,
		Past:        past,
		Trend:       history.Trend(past, run),
		SummaryText: summary.Text,
		Source:      source,
		HistoryPath: store.Path(),
	}
	if len(past) > 0 {
		outcome.Regressions = history.DetectRegressions(run, &past[len(past)-1], cfg.Audit.RegressionThreshold)
	}

	if opts.DryRun {
		logger.Info("dry run, ledger not updated", "ledger", store.Path())
		return outcome, nil
	}
	// Append failure degrades to a warning so the rendered report is never
	// lost to a full disk or a permissions change mid-run.
	if err := store.Append(run); err != nil {
		logger.Warn("could not append to history ledger", "ledger", store.Path(), "error", err)
		return outcome, nil
	}
	logger.Info("audit recorded", "run", run.Run, "ledger", store.Path())
	return outcome, nil
}

func resolveSummary(opts Options) (transcript.Summary, string, error) {
	switch {
	case opts.SummaryText != "":
		return transcript.Summary{Text: opts.SummaryText}, "inline", nil
	case opts.SummaryFile != "":
		text, err := transcript.ReadSummaryFile(opts.SummaryFile)
		if err != nil {
			return transcript.Summary{}, "", Wrap(ErrNoSummary, "read summary file", opts.SummaryFile, err)
		}
		return transcript.Summary{Text: text}, opts.SummaryFile, nil
	case opts.TranscriptPath != "":
		summary, err := pickFromTranscript(opts.TranscriptPath, opts.SummaryIndex)
		if err != nil {
			return transcript.Summary{}, "", err
		}
		return summary, opts.TranscriptPath, nil
	}

	project := opts.ProjectPath
	if project == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return transcript.Summary{}, "", Wrap(ErrNoSummary, "resolve project", "working directory", err)
		}
		project = cwd
	}
	dir, err := transcript.ResolveProjectDir(opts.Config.Paths.TranscriptsBase, project)
	if err != nil {
		return transcript.Summary{}, "", Wrap(ErrNoSummary, "resolve project", project, err)
	}
	paths, err := transcript.ListTranscripts(dir)
	if err != nil {
		return transcript.Summary{}, "", Wrap(ErrNoSummary, "list transcripts", dir, err)
	}
	if len(paths) == 0 {
		return transcript.Summary{}, "", Wrap(ErrNoSummary, "list transcripts", fmt.Sprintf("no .jsonl files in %s", dir), nil)
	}
	for _, path := range sortByModTime(paths) {
		summary, err := pickFromTranscript(path, opts.SummaryIndex)
		if err == nil {
			return summary, path, nil
		}
	}
	return transcript.Summary{}, "", Wrap(ErrNoSummary, "scan transcripts", fmt.Sprintf("no compaction summaries under %s", dir), nil)
}

func pickFromTranscript(path string, index int) (transcript.Summary, error) {
	summaries, err := transcript.FindCompactionSummaries(path)
	if err != nil {
		return transcript.Summary{}, Wrap(ErrMalformed, "scan transcript", path, err)
	}
	if len(summaries) == 0 {
		return transcript.Summary{}, Wrap(ErrNoSummary, "scan transcript", path, nil)
	}
	summary, err := transcript.Pick(summaries, index)
	if err != nil {
		return transcript.Summary{}, Wrap(ErrNoSummary, "select summary", path, err)
	}
	return summary, nil
}

func locateArchive(cfg *config.Config, explicit, sessionHint string) (*archive.Session, error) {
	// An explicit request naming an actual file wins outright; anything else
	// is matched as a filename fragment against the archive's session files.
	if explicit != "" {
		if info, err := os.Stat(explicit); err == nil && !info.IsDir() {
			session, err := archive.Load(explicit)
			if err != nil {
				return nil, Wrap(ErrNoArchive, "load archive", explicit, err)
			}
			return session, nil
		}
	}
	dir, ok := archive.FindDir(cfg.Paths.ArchiveDir)
	if !ok {
		if explicit != "" {
			session, err := archive.Load(explicit)
			if err != nil {
				return nil, Wrap(ErrNoArchive, "load archive", explicit, err)
			}
			return session, nil
		}
		return nil, Wrap(ErrNoArchive, "locate archive", fmt.Sprintf("no %s directory near %s", archive.DirName, cfg.Paths.ArchiveDir), nil)
	}
	files, err := archive.ListSessionFiles(dir)
	if err != nil {
		return nil, Wrap(ErrNoArchive, "list sessions", dir, err)
	}
	path, ok := archive.SelectSession(files, explicit, sessionHint)
	if !ok {
		if explicit != "" {
			return nil, Wrap(ErrNoArchive, "select session", fmt.Sprintf("no session matching %q in %s", explicit, dir), nil)
		}
		return nil, Wrap(ErrNoArchive, "select session", fmt.Sprintf("no session files in %s", dir), nil)
	}
	session, err := archive.Load(path)
	if err != nil {
		return nil, Wrap(ErrNoArchive, "load archive", path, err)
	}
	return session, nil
}

// sortByModTime orders transcript paths newest first so the scan finds the
// most recent compaction without reading every file.
func sortByModTime(paths []string) []string {
	type stamped struct {
		path string
		mod  time.Time
	}
	entries := make([]stamped, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		entries = append(entries, stamped{path: path, mod: info.ModTime()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].mod.After(entries[j].mod) })
	ordered := make([]string, len(entries))
	for i, e := range entries {
		ordered[i] = e.path
	}
	return ordered
}
