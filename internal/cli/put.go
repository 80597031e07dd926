package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/soundwave/internal/ingest"
	"github.com/roach88/soundwave/internal/store"
	"github.com/roach88/soundwave/internal/tables"
)

// PutOptions holds flags for the put command.
type PutOptions struct {
	*RootOptions
	Database string
}

// FileResult reports what one record file contributed.
type FileResult struct {
	File     string `json:"file"`
	Table    string `json:"table"`
	Records  int    `json:"records"`
	Inserted int64  `json:"inserted"`
}

// PutResult is the output of the put command.
type PutResult struct {
	Files    []FileResult `json:"files"`
	Records  int          `json:"records"`
	Inserted int64        `json:"inserted"`
}

// NewPutCommand creates the put command.
func NewPutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "put <file>...",
		Short: "Store records from YAML, JSON or CUE files",
		Long: `Store the records of each file in the table the file names.

Each file is written in its own transaction: a file either lands
completely or not at all. Records whose primary key is already stored
are skipped, so re-running put with the same files changes nothing.

Exit codes:
  0 - All files stored
  1 - A file could not be decoded or a record does not fit its table
  2 - Command error (file not found, database unavailable, etc.)

Examples:
  soundwave put --db ./soundwave.db alerts.yaml bugs.json
  soundwave put points.cue --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPut(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")

	return cmd
}

func runPut(opts *PutOptions, files []string, cmd *cobra.Command) error {
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

	result := PutResult{Files: make([]FileResult, 0, len(files))}

	for _, file := range files {
		doc, err := ingest.Load(file)
		if err != nil {
			exit, code := ingestFailure(err)
			return formatter.Fail(exit, code, fmt.Sprintf("failed to load %s", file), err)
		}

		kind, ok := tables.Lookup(doc.Table)
		if !ok {
			return formatter.Fail(ExitFailure, ErrCodeUnknownTable,
				fmt.Sprintf("%s: unknown table %q", file, doc.Table), nil)
		}

		fr := FileResult{File: file, Table: doc.Table, Records: len(doc.Records)}
		err = st.Session(ctx, func(tx *store.Tx) error {
			before, err := store.Count(ctx, tx, kind.Name())
			if err != nil {
				return err
			}
			for i, rec := range doc.Records {
				if err := kind.PutFields(ctx, tx, rec); err != nil {
					return fmt.Errorf("record %d: %w", i, err)
				}
			}
			after, err := store.Count(ctx, tx, kind.Name())
			if err != nil {
				return err
			}
			fr.Inserted = after - before
			return nil
		})
		if err != nil {
			exit, code := storeFailure(err)
			return formatter.Fail(exit, code, fmt.Sprintf("failed to store %s", file), err)
		}

		log.Debug().Str("file", file).Str("table", fr.Table).
			Int("records", fr.Records).Int64("inserted", fr.Inserted).Msg("file stored")

		result.Files = append(result.Files, fr)
		result.Records += fr.Records
		result.Inserted += fr.Inserted
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	for _, fr := range result.Files {
		fmt.Fprintf(w, "%s: %d record(s) into %s, %d new\n", fr.File, fr.Records, fr.Table, fr.Inserted)
	}
	fmt.Fprintf(w, "✓ Stored %d record(s) from %d file(s), %d new\n", result.Records, len(result.Files), result.Inserted)
	return nil
}
