package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"compaudit/internal/report"
	"compaudit/internal/rerun"
)

func newRerunCommand(ctx *commandContext) *cobra.Command {
	var (
		projectPath  string
		runs         []int
		dryRun       bool
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "rerun",
		Short: "Replay recorded audits and compare against stored results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			outcome, err := rerun.Run(cmd.Context(), rerun.Options{
				Config:      cfg,
				Logger:      logger,
				ProjectPath: projectPath,
				Runs:        runs,
				DryRun:      dryRun,
			})
			if err != nil {
				return err
			}

			if len(outcome.Entries) == 0 && len(outcome.Plan) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No rerunnable entries found.")
				return nil
			}
			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), report.RerunPlan(outcome))
				return nil
			}
			if outputFormat == "json" {
				return writeJSON(cmd, outcome.Entries)
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Rerun(outcome, shouldColorize(cmd.OutOrStdout())))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "project-path", "", "Project root used to locate transcripts (default: working directory)")
	cmd.Flags().IntSliceVar(&runs, "run", nil, "Specific run number(s) to replay (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List matchable entries without executing")
	cmd.Flags().StringVar(&outputFormat, "format", "text", "Output format: text or json")
	return cmd
}
