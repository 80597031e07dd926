package store

import (
	"context"
	"fmt"
	"iter"
)

// IterItems returns every row of t's table decoded through t.FromValues.
//
// Each call to the returned sequence runs a fresh full-table scan. Rows
// come back in SQLite's natural order and are decoded one at a time, so
// memory use does not grow with the table. Breaking out of the range loop
// closes the cursor. Errors are yielded once, after which the sequence ends.
//
// There is no snapshot guarantee: writes made through the same handle while
// a scan is in progress may or may not be seen by it.
func IterItems[R any](ctx context.Context, h Handle, t Table[R]) iter.Seq2[R, error] {
	return func(yield func(R, error) bool) {
		var zero R
		name := t.Name()

		rows, err := h.queryContext(ctx, "SELECT * FROM "+quoteIdent(name))
		if err != nil {
			yield(zero, fmt.Errorf("iterate %s: %w", name, err))
			return
		}
		defer rows.Close()

		columns, err := rows.Columns()
		if err != nil {
			yield(zero, fmt.Errorf("iterate %s: columns: %w", name, err))
			return
		}
		if want := len(t.Columns()); len(columns) != want {
			yield(zero, fmt.Errorf("iterate %s: %w: row has %d columns, table declares %d",
				name, ErrSchemaMismatch, len(columns), want))
			return
		}

		dest := make([]any, len(columns))
		for rows.Next() {
			values := make([]any, len(columns))
			for i := range values {
				dest[i] = &values[i]
			}
			if err := rows.Scan(dest...); err != nil {
				yield(zero, fmt.Errorf("iterate %s: scan: %w", name, err))
				return
			}

			rec, err := t.FromValues(values)
			if err != nil {
				yield(zero, fmt.Errorf("iterate %s: decode row: %w", name, err))
				return
			}
			if !yield(rec, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(zero, fmt.Errorf("iterate %s: %w", name, err))
		}
	}
}

// ReadAll collects IterItems into a slice. Returns an empty slice (not nil)
// for an empty table.
func ReadAll[R any](ctx context.Context, h Handle, t Table[R]) ([]R, error) {
	items := []R{}
	for rec, err := range IterItems(ctx, h, t) {
		if err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	return items, nil
}

// Count returns the number of rows in the named table.
func Count(ctx context.Context, h Handle, name string) (int64, error) {
	rows, err := h.queryContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(name))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", name, err)
	}
	defer rows.Close()

	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("count %s: %w", name, err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("count %s: %w", name, err)
	}
	return n, nil
}
