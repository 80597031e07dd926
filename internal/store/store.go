package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Driver names accepted by WithDriver.
const (
	DriverCGO    = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPureGo = "sqlite"  // modernc.org/sqlite
)

const defaultBusyTimeout = 5 * time.Second

// Store is a single-file record store backed by SQLite.
//
// A Store owns exactly one connection. It is not safe for concurrent use:
// the insert-statement cache and the connection assume one logical writer,
// so callers that share a Store between goroutines must serialize access
// themselves. Separate processes may open the same file; SQLite's file
// locking (bounded by the busy timeout) coordinates them.
type Store struct {
	db     *sql.DB
	conn   *sql.Conn
	path   string
	driver string
	log    zerolog.Logger

	// put caches the insert statement per table name.
	put map[string]string
}

type options struct {
	driver      string
	schema      string
	schemaFile  string
	busyTimeout time.Duration
	log         zerolog.Logger
}

// Option configures Open.
type Option func(*options)

// WithDriver selects the database/sql driver. Defaults to DriverCGO.
func WithDriver(name string) Option {
	return func(o *options) { o.driver = name }
}

// WithSchema sets the schema script applied at open time.
func WithSchema(script string) Option {
	return func(o *options) { o.schema = script }
}

// WithSchemaFile reads the schema script from path on every Open.
// It takes precedence over WithSchema.
func WithSchemaFile(path string) Option {
	return func(o *options) { o.schemaFile = path }
}

// WithBusyTimeout sets how long a locked database is retried before an
// operation fails with SQLITE_BUSY.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) { o.busyTimeout = d }
}

// WithLogger attaches a logger. The store logs at debug level only.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// Open creates or opens a SQLite database at the given path and applies
// the configured schema script in a single transaction.
//
// The schema script must be idempotent (CREATE ... IF NOT EXISTS), which
// makes repeated Opens against the same file safe.
//
// Errors wrap ErrStorageUnavailable when the file or connection cannot be
// set up, and ErrSchemaApplicationFailed when the script fails. In the
// latter case the transaction is rolled back and nothing is left open.
func Open(path string, opts ...Option) (*Store, error) {
	o := options{
		driver:      DriverCGO,
		busyTimeout: defaultBusyTimeout,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.driver != DriverCGO && o.driver != DriverPureGo {
		return nil, fmt.Errorf("%w: unknown driver %q", ErrStorageUnavailable, o.driver)
	}

	schema := o.schema
	if o.schemaFile != "" {
		data, err := os.ReadFile(o.schemaFile)
		if err != nil {
			return nil, fmt.Errorf("%w: read schema: %w", ErrStorageUnavailable, err)
		}
		schema = string(data)
	}

	ctx := context.Background()

	db, err := sql.Open(o.driver, path)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", ErrStorageUnavailable, err)
	}
	// One connection: the store never needs a second, and SQLite only
	// allows one writer anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connect to database: %w", ErrStorageUnavailable, err)
	}

	s := &Store{
		db:     db,
		conn:   conn,
		path:   path,
		driver: o.driver,
		log:    o.log.With().Str("component", "store").Str("path", path).Logger(),
		put:    make(map[string]string),
	}

	if err := s.applyPragmas(ctx, o.busyTimeout); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if err := s.applySchema(ctx, schema); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %w", ErrSchemaApplicationFailed, err)
	}

	s.log.Debug().Str("driver", o.driver).Msg("store opened")
	return s, nil
}

// With opens a store, hands it to fn and closes it on every exit path,
// including a panic inside fn.
func With(path string, fn func(*Store) error, opts ...Option) (err error) {
	s, err := Open(path, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close store: %w", cerr))
		}
	}()
	return fn(s)
}

// Close releases the connection. Calling Close more than once is safe.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	var errs []error
	if s.conn != nil {
		if err := s.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			errs = append(errs, err)
		}
		s.conn = nil
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, err)
	}
	s.db = nil
	s.log.Debug().Msg("store closed")
	return errors.Join(errs...)
}

// Path returns the database file path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Driver returns the database/sql driver name in use.
func (s *Store) Driver() string {
	return s.driver
}

// applyPragmas sets required SQLite configuration on the store's connection.
func (s *Store) applyPragmas(ctx context.Context, busyTimeout time.Duration) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout.Milliseconds()),
	}

	for _, pragma := range pragmas {
		if _, err := s.conn.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema runs the whole script inside one transaction so a failing
// statement leaves no partial schema behind.
func (s *Store) applySchema(ctx context.Context, script string) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}

	s.log.Debug().Int("bytes", len(script)).Msg("schema applied")
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.conn.QueryRowContext(context.Background(), query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
