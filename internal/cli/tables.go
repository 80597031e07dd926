package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/soundwave/internal/tables"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tables",
		Short:         "List record kinds and their columns",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(rootOpts, cmd)
		},
	}

	return cmd
}

func runTables(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	kinds := tables.Kinds()
	infos := make([]TableInfo, len(kinds))
	for i, k := range kinds {
		infos[i] = TableInfo{Name: k.Name(), Columns: k.Columns()}
	}

	if formatter.JSON() {
		return formatter.Success(infos)
	}

	for _, info := range infos {
		fmt.Fprintf(formatter.Writer, "%s\n  %s\n", info.Name, strings.Join(info.Columns, ", "))
	}
	return nil
}
