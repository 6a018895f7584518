package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"compaudit/internal/preflight"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderCheckLine(result preflight.Result, colorize bool) string {
	status := "ERROR"
	color := ansiRed
	if result.Passed {
		status = "OK"
		color = ansiGreen
	}
	line := fmt.Sprintf("%s%-*s [%s] %s", statusIndent, statusLabelWidth, result.Name+":", status, result.Detail)
	if colorize {
		return color + line + ansiReset
	}
	return line
}

// writeJSON renders v as indented JSON on the command's stdout for the
// --format json paths.
func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
