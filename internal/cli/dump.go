package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/soundwave/internal/tables"
)

// DumpOptions holds flags for the dump command.
type DumpOptions struct {
	*RootOptions
	Database string
	Table    string
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print every record of a table",
		Long: `Print every record of a table.

Text output is tab-separated with a header line, one record per line.
NULL prints as an empty cell; backslashes, tabs and newlines inside a
cell are written as \\, \t and \n. JSON output is an array of objects
keyed by column.

Examples:
  soundwave dump --db ./soundwave.db --table alerts
  soundwave dump --table bugs --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().StringVar(&opts.Table, "table", "", "table to dump (required)")
	_ = cmd.MarkFlagRequired("table")

	return cmd
}

func runDump(opts *DumpOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	kind, ok := tables.Lookup(opts.Table)
	if !ok {
		return formatter.Fail(ExitCommandError, ErrCodeUnknownTable, fmt.Sprintf("unknown table %q", opts.Table), nil)
	}

	cfg, err := opts.settings(cmd)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}
	ctx := cmd.Context()
	log := commandLogger(ctx)

	st, err := openStore(ctx, cfg, opts.Database)
	if err != nil {
		exit, code := storeFailure(err)
		return formatter.Fail(exit, code, "failed to open database", err)
	}
	defer st.Close()

	rows := []map[string]any{}
	err = kind.Each(ctx, st, func(fields map[string]any) error {
		rows = append(rows, fields)
		return nil
	})
	if err != nil {
		exit, code := storeFailure(err)
		return formatter.Fail(exit, code, fmt.Sprintf("failed to read %s", kind.Name()), err)
	}

	log.Debug().Str("table", kind.Name()).Int("rows", len(rows)).Msg("dumped")

	if formatter.JSON() {
		return formatter.Success(rows)
	}

	columns := kind.Columns()
	w := formatter.Writer
	fmt.Fprintln(w, strings.Join(columns, "\t"))
	cells := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			cells[i] = formatCell(row[col])
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return nil
}

var cellEscaper = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`)

// formatCell renders one text cell. Escaping keeps a record on one line.
func formatCell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return cellEscaper.Replace(v)
	default:
		return fmt.Sprint(v)
	}
}
