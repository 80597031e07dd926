package tables

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/soundwave/internal/store"
)

// Kind is a record kind addressed by table name, for callers that work with
// field maps (record files, dumps) rather than Go types.
type Kind interface {
	Name() string
	Columns() []string

	// PutFields decodes a record from named fields and stores it. Missing
	// fields are NULL. Unknown or undecodable fields fail with
	// store.ErrSchemaMismatch.
	PutFields(ctx context.Context, h store.Handle, fields map[string]any) error

	// Each calls fn with every stored record as a column-to-value map.
	Each(ctx context.Context, h store.Handle, fn func(fields map[string]any) error) error
}

type kind[R any] struct {
	table store.Table[R]

	// prepare fills in derived fields before a record is stored.
	prepare func(R) R
}

func (k *kind[R]) Name() string      { return k.table.Name() }
func (k *kind[R]) Columns() []string { return k.table.Columns() }

func (k *kind[R]) PutFields(ctx context.Context, h store.Handle, fields map[string]any) error {
	columns := k.table.Columns()
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if !slices.Contains(columns, name) {
			return fmt.Errorf("%s: %w: unknown field %q", k.Name(), store.ErrSchemaMismatch, name)
		}
	}

	values := make([]any, len(columns))
	for i, col := range columns {
		values[i] = fields[col]
	}

	rec, err := k.table.FromValues(values)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", k.Name(), store.ErrSchemaMismatch, err)
	}
	if k.prepare != nil {
		rec = k.prepare(rec)
	}
	return store.Put(ctx, h, k.table, rec)
}

func (k *kind[R]) Each(ctx context.Context, h store.Handle, fn func(map[string]any) error) error {
	columns := k.table.Columns()
	for rec, err := range store.IterItems(ctx, h, k.table) {
		if err != nil {
			return err
		}
		values := k.table.ToValues(rec)
		fields := make(map[string]any, len(columns))
		for i, col := range columns {
			fields[col] = values[i]
		}
		if err := fn(fields); err != nil {
			return err
		}
	}
	return nil
}

var registry = []Kind{
	&kind[Alert]{table: Alerts, prepare: withAlertKey},
	&kind[Bug]{table: Bugs},
	&kind[Point]{table: Timeseries},
}

// Kinds returns every registered record kind in schema order.
func Kinds() []Kind {
	return slices.Clone(registry)
}

// Lookup finds a record kind by table name.
func Lookup(name string) (Kind, bool) {
	for _, k := range registry {
		if k.Name() == name {
			return k, true
		}
	}
	return nil, false
}
