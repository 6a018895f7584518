package rerun

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"compaudit/internal/archive"
	"compaudit/internal/audit"
	"compaudit/internal/config"
	"compaudit/internal/history"
	"compaudit/internal/logging"
	"compaudit/internal/score"
	"compaudit/internal/transcript"
)

// LedgerName is the rerun ledger's conventional name inside the archive dir.
const LedgerName = "audit_rerun_history.jsonl"

// Entry statuses for reruns that never produced a comparison.
const (
	StatusSkipped = "SKIPPED"
	StatusFailed  = "FAILED"
)

// Entry is one rerun ledger record. Comparison fields are empty for skipped
// and failed entries.
type Entry struct {
	RerunOf         int                `json:"rerun_of"`
	Batch           string             `json:"batch"`
	Status          string             `json:"status,omitempty"`
	Reason          string             `json:"reason,omitempty"`
	RerunTimestamp  string             `json:"rerun_timestamp,omitempty"`
	OriginalSummary *score.Summary     `json:"original_summary,omitempty"`
	RerunSummary    *score.Summary     `json:"rerun_summary,omitempty"`
	Comparison      *SummaryComparison `json:"comparison,omitempty"`
	CategoryDeltas  []CategoryDelta    `json:"category_deltas,omitempty"`
	ClaimDiffs      *ClaimDiff         `json:"claim_diffs,omitempty"`
	Reproduced      bool               `json:"reproduced"`
}

// PlanItem describes one entry a dry run would replay.
type PlanItem struct {
	Run       int
	Timestamp string
	Rate      float64
	Matched   bool
}

// Outcome is the result of one rerun batch.
type Outcome struct {
	Batch        string
	Entries      []Entry
	Plan         []PlanItem
	TotalHistory int
	Skipped      int
	LedgerPath   string
}

// Reproduced counts entries whose comparison matched, alongside the number
// of entries that actually ran.
func (o *Outcome) Reproduced() (reproduced, ran int) {
	for _, e := range o.Entries {
		if e.Status != "" {
			continue
		}
		ran++
		if e.Reproduced {
			reproduced++
		}
	}
	return reproduced, ran
}

// Options configures one rerun batch.
type Options struct {
	Config *config.Config
	Logger *slog.Logger

	// ProjectPath locates the transcript directory. Empty means the
	// working directory.
	ProjectPath string

	// Runs restricts the batch to specific run numbers.
	Runs []int

	// DryRun lists matchable entries without executing audits.
	DryRun bool
}

// Run loads the audit ledger, matches each replayable entry to its original
// compaction summary, replays it through the current pipeline, and appends
// the batch to the rerun ledger.
func Run(ctx context.Context, opts Options) (*Outcome, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, audit.Wrap(audit.ErrMalformed, "rerun", "configuration missing", nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	archiveDir, entries, err := loadLedger(cfg)
	if err != nil {
		return nil, err
	}
	replayable := Filter(entries, opts.Runs)
	if len(replayable) == 0 {
		// A ledger of nothing but baseline entries is a valid state, not a
		// failure. The batch is simply empty.
		logger.Info("no replayable audit entries", "history", len(entries))
		return &Outcome{
			TotalHistory: len(entries),
			Skipped:      len(entries),
			LedgerPath:   filepath.Join(archiveDir, LedgerName),
		}, nil
	}

	project := opts.ProjectPath
	if project == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, audit.Wrap(audit.ErrNoSummary, "resolve project", "working directory", err)
		}
		project = cwd
	}
	transcriptDir, err := transcript.ResolveProjectDir(cfg.Paths.TranscriptsBase, project)
	if err != nil {
		return nil, audit.Wrap(audit.ErrNoSummary, "resolve project", project, err)
	}

	logger.Info("scanning transcripts", "dir", transcriptDir)
	index, err := BuildIndex(transcriptDir, logger)
	if err != nil {
		return nil, audit.Wrap(audit.ErrNoSummary, "index transcripts", transcriptDir, err)
	}
	logger.Info("compaction index built", "summaries", len(index))

	outcome := &Outcome{
		Batch:        time.Now().UTC().Format(time.RFC3339) + "-" + uuid.NewString()[:8],
		TotalHistory: len(entries),
		Skipped:      len(entries) - len(replayable),
		LedgerPath:   filepath.Join(archiveDir, LedgerName),
	}

	if opts.DryRun {
		for _, item := range replayable {
			_, matched := index.Match(item.Entry.Timestamp)
			outcome.Plan = append(outcome.Plan, PlanItem{
				Run:       item.Run,
				Timestamp: item.Entry.Timestamp,
				Rate:      item.Entry.Summary.Rate,
				Matched:   matched,
			})
		}
		return outcome, nil
	}

	outcome.Entries = make([]Entry, len(replayable))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(cfg.Rerun.Concurrency)
	for i, item := range replayable {
		i, item := i, item
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			outcome.Entries[i] = replay(cfg, logger, outcome.Batch, item, index)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	records := make([]any, len(outcome.Entries))
	for i := range outcome.Entries {
		records[i] = outcome.Entries[i]
	}
	if err := history.AppendRecords(outcome.LedgerPath, records...); err != nil {
		return nil, audit.Wrap(audit.ErrPersist, "rerun", "append rerun ledger", err)
	}
	logger.Info("rerun batch recorded", "entries", len(outcome.Entries), "ledger", outcome.LedgerPath)
	return outcome, nil
}

// replay executes one audit rerun. Failures degrade to FAILED entries so a
// single bad transcript never aborts the batch.
func replay(cfg *config.Config, logger *slog.Logger, batch string, item Numbered, index Index) Entry {
	entry := Entry{RerunOf: item.Run, Batch: batch}

	ref, ok := index.Match(item.Entry.Timestamp)
	if !ok {
		entry.Status = StatusSkipped
		entry.Reason = "compaction not found"
		return entry
	}

	logger.Info("rerunning audit", "run", item.Run, "transcript", filepath.Base(ref.TranscriptPath))
	fresh, err := audit.Run(audit.Options{
		Config:         cfg,
		Logger:         logging.NewNop(),
		TranscriptPath: ref.TranscriptPath,
		SummaryIndex:   ref.Index,
		DeepSearch:     true,
		DryRun:         true,
	})
	if err != nil {
		logger.Warn("rerun failed", "run", item.Run, "error", err)
		entry.Status = StatusFailed
		entry.Reason = "auditor error"
		return entry
	}

	comparison := CompareSummaries(item.Entry.Summary, fresh.Run.Summary)
	diff := CompareClaims(item.Entry.Claims, fresh.Run.Claims)
	original := item.Entry.Summary
	rerunSummary := fresh.Run.Summary

	entry.RerunTimestamp = time.Now().UTC().Format(time.RFC3339)
	entry.OriginalSummary = &original
	entry.RerunSummary = &rerunSummary
	entry.Comparison = &comparison
	entry.CategoryDeltas = CompareCategories(item.Entry.Categories, fresh.Run.Categories)
	entry.ClaimDiffs = &diff
	entry.Reproduced = comparison.RateMatch
	return entry
}

func loadLedger(cfg *config.Config) (string, []score.AuditRun, error) {
	dir, ok := archive.FindDir(cfg.Paths.ArchiveDir)
	if !ok {
		return "", nil, audit.Wrap(audit.ErrNoArchive, "rerun", "archive directory not found", nil)
	}
	store := history.NewStore(filepath.Join(dir, history.FileName))
	entries, err := store.Load()
	if err != nil {
		return "", nil, audit.Wrap(audit.ErrPersist, "rerun", "load audit ledger", err)
	}
	if len(entries) == 0 {
		return "", nil, audit.Wrap(audit.ErrNotReplayable, "rerun", "audit ledger is empty", nil)
	}
	return dir, entries, nil
}
