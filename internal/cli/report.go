package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/roach88/soundwave/internal/report"
)

// ReportResult is the JSON output of the report command.
type ReportResult struct {
	Status string `json:"status"`
	Report string `json:"report"`
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <results-file>",
		Short: "Render a bisect job report",
		Long: `Render the text report for a bisect job from its results file
(YAML or JSON).

Examples:
  soundwave report results.yaml
  soundwave report results.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runReport(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	results, err := report.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("results file not found: %s", path), err)
		}
		return formatter.Fail(ExitFailure, ErrCodeParse, "failed to load results", err)
	}

	text := report.Render(results)
	if formatter.JSON() {
		return formatter.Success(ReportResult{Status: results.Status, Report: text})
	}

	fmt.Fprintln(formatter.Writer, text)
	return nil
}
