package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roach88/soundwave/internal/config"
	"github.com/roach88/soundwave/internal/logging"
	"github.com/roach88/soundwave/internal/store"
	"github.com/roach88/soundwave/internal/tables"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // optional TOML file
	Driver  string // overrides database.driver
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the soundwave CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "soundwave",
		Short: "soundwave - perf dashboard record store",
		Long: `Keep alerts, bugs and timeseries points pulled from the perf dashboard
in a local SQLite file, and render bisect job reports.`,
		SilenceErrors: true, // main prints errors once
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to TOML config file")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "SQLite driver (sqlite3|sqlite)")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewPutCommand(opts))
	cmd.AddCommand(NewDumpCommand(opts))
	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// formatter builds the output formatter for a command run.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// settings loads the config file, if any, and applies flag overrides. It
// puts a logger writing to the command's stderr into the command context.
func (o *RootOptions) settings(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if o.Config != "" {
		loaded, err := config.Load(o.Config)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if o.Driver != "" {
		cfg.Database.Driver = o.Driver
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.WithContext(ctx, logging.New(cfg.Log, cmd.ErrOrStderr())))
	return cfg, nil
}

// commandLogger returns the context logger tagged for CLI messages.
func commandLogger(ctx context.Context) zerolog.Logger {
	return logging.Component(*logging.FromContext(ctx), "cli")
}

// openStore opens the record store at dbPath, falling back to the
// configured path when dbPath is empty. The store tags its own log lines.
func openStore(ctx context.Context, cfg config.Config, dbPath string) (*store.Store, error) {
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	opts := append(cfg.Database.StoreOptions(), store.WithLogger(*logging.FromContext(ctx)))
	return tables.Open(dbPath, opts...)
}
