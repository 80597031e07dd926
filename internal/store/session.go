package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Handle is something records can be written to and read from: a *Store
// (auto-commit) or a *Tx inside Session.
type Handle interface {
	execContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	queryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	statements() map[string]string
	logger() *zerolog.Logger
}

var (
	_ Handle = (*Store)(nil)
	_ Handle = (*Tx)(nil)
)

func (s *Store) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if s.conn == nil {
		return nil, ErrClosed
	}
	return s.conn.ExecContext(ctx, query, args...)
}

func (s *Store) queryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if s.conn == nil {
		return nil, ErrClosed
	}
	return s.conn.QueryContext(ctx, query, args...)
}

func (s *Store) statements() map[string]string { return s.put }
func (s *Store) logger() *zerolog.Logger       { return &s.log }

// Tx is a write transaction on the store's connection. It is only valid
// inside the Session callback that received it.
type Tx struct {
	tx    *sql.Tx
	store *Store
}

func (t *Tx) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *Tx) queryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, query, args...)
}

func (t *Tx) statements() map[string]string { return t.store.put }
func (t *Tx) logger() *zerolog.Logger       { return &t.store.log }

// Session runs fn inside a transaction. If fn returns nil the transaction is
// committed. If fn returns an error or panics, it is rolled back and the
// store stays usable.
//
// While a session is open the store's only connection belongs to it, so fn
// must use the *Tx it was given rather than the Store.
func (s *Store) Session(ctx context.Context, fn func(*Tx) error) (err error) {
	if s.conn == nil {
		return ErrClosed
	}

	sqlTx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	tx := &Tx{tx: sqlTx, store: s}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			s.log.Debug().Interface("panic", p).Msg("session rolled back")
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rerr := sqlTx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback session: %w", rerr))
		}
		s.log.Debug().Err(err).Msg("session rolled back")
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	s.log.Debug().Msg("session committed")
	return nil
}
