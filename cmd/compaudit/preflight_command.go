package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"compaudit/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check that the archive, ledger, and transcripts are usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cfg, true)
			colorize := shouldColorize(cmd.OutOrStdout())
			for _, result := range results {
				fmt.Fprintln(cmd.OutOrStdout(), renderCheckLine(result, colorize))
			}
			if !preflight.Passed(results) {
				return fmt.Errorf("preflight checks failed")
			}
			return nil
		},
	}
}
