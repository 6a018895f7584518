package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"compaudit/internal/audit"
	"compaudit/internal/preflight"
	"compaudit/internal/report"
)

func newAuditCommand(ctx *commandContext) *cobra.Command {
	var (
		summaryFile  string
		transcript   string
		projectPath  string
		archiveFile  string
		which        int
		deep         bool
		noDeep       bool
		dryRun       bool
		bundle       bool
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit a compaction summary against the session archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if outputFormat != "text" && outputFormat != "json" {
				return fmt.Errorf("unknown output format %q", outputFormat)
			}

			needTranscripts := summaryFile == "" && transcript == ""
			checks := preflight.RunAll(cfg, needTranscripts)
			if !preflight.Passed(checks) {
				colorize := shouldColorize(cmd.ErrOrStderr())
				for _, check := range checks {
					fmt.Fprintln(cmd.ErrOrStderr(), renderCheckLine(check, colorize))
				}
				return fmt.Errorf("preflight checks failed")
			}

			deepSearch := cfg.Audit.DeepSearch
			if cmd.Flags().Changed("deep") {
				deepSearch = deep
			}
			if noDeep {
				deepSearch = false
			}

			outcome, err := audit.Run(audit.Options{
				Config:         cfg,
				Logger:         logger,
				SummaryFile:    summaryFile,
				TranscriptPath: transcript,
				ProjectPath:    projectPath,
				SummaryIndex:   which,
				ArchiveFile:    archiveFile,
				DeepSearch:     deepSearch,
				DryRun:         dryRun,
			})
			if err != nil {
				return err
			}

			if bundle && !dryRun {
				path, err := report.WriteBundle(cfg.Paths.ReportsDir, outcome)
				if err != nil {
					logger.Warn("could not write bundled report", "error", err)
				} else {
					logger.Info("bundled report written", "path", path)
				}
			}

			if outputFormat == "json" {
				return writeJSON(cmd, outcome.Run)
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Audit(outcome, shouldColorize(cmd.OutOrStdout())))
			return nil
		},
	}

	cmd.Flags().StringVar(&summaryFile, "summary", "", "File containing the compaction summary text")
	cmd.Flags().StringVar(&transcript, "jsonl", "", "Transcript file to scan for compaction summaries")
	cmd.Flags().StringVar(&projectPath, "project-path", "", "Project root used to locate transcripts (default: working directory)")
	cmd.Flags().StringVar(&archiveFile, "session", "", "Session archive file path or filename fragment")
	cmd.Flags().IntVar(&which, "which", -1, "Which compaction summary to audit (-1 = most recent)")
	cmd.Flags().BoolVar(&deep, "deep", false, "Search full turn content for claims missing from headers")
	cmd.Flags().BoolVar(&noDeep, "no-deep", false, "Disable the deep search pass")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Audit without appending to the history ledger")
	cmd.Flags().BoolVar(&bundle, "bundle", false, "Write a bundled JSON report to the reports directory")
	cmd.Flags().StringVar(&outputFormat, "format", "text", "Output format: text or json")

	return cmd
}
