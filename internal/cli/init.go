package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/soundwave/internal/store"
	"github.com/roach88/soundwave/internal/tables"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Database  string
	SchemaOut string
	ConfigOut string
}

// TableInfo describes one table in the store.
type TableInfo struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns,omitempty"`
	Rows    *int64   `json:"rows,omitempty"`
}

// InitResult is the output of the init command.
type InitResult struct {
	Database  string      `json:"database"`
	Driver    string      `json:"driver"`
	Tables    []TableInfo `json:"tables"`
	SchemaOut string      `json:"schema_out,omitempty"`
	ConfigOut string      `json:"config_out,omitempty"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database and apply the schema",
		Long: `Create the database file if needed and apply the schema script.

Running init against an existing database is safe: the schema only
creates what is missing.

Examples:
  soundwave init --db ./soundwave.db
  soundwave init --db ./soundwave.db --schema-out schema.sql
  soundwave init --driver sqlite --config-out soundwave.toml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().StringVar(&opts.SchemaOut, "schema-out", "", "also write the schema script to this file")
	cmd.Flags().StringVar(&opts.ConfigOut, "config-out", "", "also write the effective configuration to this file")

	return cmd
}

func runInit(opts *InitOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

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

	result := InitResult{
		Database: st.Path(),
		Driver:   st.Driver(),
		Tables:   make([]TableInfo, 0, len(tables.Kinds())),
	}
	for _, k := range tables.Kinds() {
		n, err := store.Count(ctx, st, k.Name())
		if err != nil {
			exit, code := storeFailure(err)
			return formatter.Fail(exit, code, fmt.Sprintf("failed to count %s", k.Name()), err)
		}
		result.Tables = append(result.Tables, TableInfo{Name: k.Name(), Rows: &n})
	}

	if opts.SchemaOut != "" {
		if err := os.WriteFile(opts.SchemaOut, []byte(tables.Schema()), 0o644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write schema", err)
		}
		result.SchemaOut = opts.SchemaOut
	}

	if opts.ConfigOut != "" {
		if opts.Database != "" {
			cfg.Database.Path = opts.Database
		}
		data, err := cfg.Encode()
		if err == nil {
			err = os.WriteFile(opts.ConfigOut, data, 0o644)
		}
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write config", err)
		}
		result.ConfigOut = opts.ConfigOut
	}

	log.Debug().Str("db", result.Database).Int("tables", len(result.Tables)).Msg("initialized")

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Initialized %s (%s)\n", result.Database, result.Driver)
	for _, t := range result.Tables {
		fmt.Fprintf(w, "  %-12s %d rows\n", t.Name, *t.Rows)
	}
	if result.SchemaOut != "" {
		fmt.Fprintf(w, "  schema written to %s\n", result.SchemaOut)
	}
	if result.ConfigOut != "" {
		fmt.Fprintf(w, "  config written to %s\n", result.ConfigOut)
	}
	return nil
}
