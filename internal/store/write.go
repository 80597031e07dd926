package store

import (
	"context"
	"fmt"
	"strings"
)

// Put inserts rec into its table. A row with the same primary key already
// present is left untouched and Put returns nil: writes are idempotent, and
// the caller cannot tell an insert from an ignored duplicate.
//
// A Table whose ToValues does not return one value per column fails with
// ErrSchemaMismatch before anything is written.
func Put[R any](ctx context.Context, h Handle, t Table[R], rec R) error {
	name := t.Name()
	columns := t.Columns()
	values := t.ToValues(rec)

	if len(values) != len(columns) {
		return fmt.Errorf("put %s: %w: %d values for %d columns",
			name, ErrSchemaMismatch, len(values), len(columns))
	}

	query, err := insertStatement(h, name, len(columns))
	if err != nil {
		return fmt.Errorf("put %s: %w", name, err)
	}

	if _, err := h.execContext(ctx, query, values...); err != nil {
		return fmt.Errorf("put %s: %w", name, err)
	}

	return nil
}

// insertStatement returns the cached INSERT OR IGNORE statement for a
// table, building it on first use.
func insertStatement(h Handle, name string, columns int) (string, error) {
	cache := h.statements()
	if query, ok := cache[name]; ok {
		return query, nil
	}

	if name == "" {
		return "", fmt.Errorf("%w: empty table name", ErrSchemaMismatch)
	}
	if columns == 0 {
		return "", fmt.Errorf("%w: table has no columns", ErrSchemaMismatch)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", columns), ", ")
	query := fmt.Sprintf("INSERT OR IGNORE INTO %s VALUES (%s)", quoteIdent(name), placeholders)
	cache[name] = query

	h.logger().Debug().Str("table", name).Int("columns", columns).Msg("insert statement cached")
	return query, nil
}

// quoteIdent quotes a table name for use in SQL text.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
