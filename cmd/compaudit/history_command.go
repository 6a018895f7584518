package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"compaudit/internal/archive"
	"compaudit/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit        int
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded audit runs and the verification trend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir, ok := archive.FindDir(cfg.Paths.ArchiveDir)
			if !ok {
				return fmt.Errorf("no %s directory near %s", archive.DirName, cfg.Paths.ArchiveDir)
			}
			store := history.NewStore(filepath.Join(dir, history.FileName))
			runs, err := store.Load()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No audit history recorded yet.")
				return nil
			}
			if limit > 0 && len(runs) > limit {
				runs = runs[len(runs)-limit:]
			}

			if outputFormat == "json" {
				return writeJSON(cmd, runs)
			}

			rows := make([]table.Row, 0, len(runs))
			for i, run := range runs {
				number := run.Run
				if number == 0 {
					number = i + 1
				}
				rows = append(rows, table.Row{
					number,
					run.Timestamp,
					fmt.Sprintf("%.0f%%", run.Summary.Rate*100),
					fmt.Sprintf("%.0f%%", run.Summary.SeverityWeightedRate*100),
					strconv.Itoa(run.Summary.Total),
					shortSession(run.SessionID),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderHistoryTable(rows))
			fmt.Fprintf(out, "Trend: %s\n", history.TrendLine(history.Trend(runs, nil)))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Show only the most recent N runs")
	cmd.Flags().StringVar(&outputFormat, "format", "text", "Output format: text or json")
	return cmd
}

func renderHistoryTable(rows []table.Row) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Run", "Timestamp", "Rate", "Weighted", "Claims", "Session"})
	tw.AppendRows(rows)
	return tw.Render()
}

func shortSession(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
