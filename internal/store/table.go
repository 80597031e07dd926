package store

import "slices"

// Table describes how one record kind maps onto a relational table.
//
// ToValues must return exactly one value per column, in column order.
// FromValues is its inverse and receives a row in the same order.
type Table[R any] interface {
	Name() string
	Columns() []string
	ToValues(rec R) []any
	FromValues(values []any) (R, error)
}

// NewTable builds a Table from a name, an ordered column list and the two
// mapping functions.
func NewTable[R any](name string, columns []string, to func(R) []any, from func([]any) (R, error)) Table[R] {
	return &funcTable[R]{
		name:    name,
		columns: slices.Clone(columns),
		to:      to,
		from:    from,
	}
}

type funcTable[R any] struct {
	name    string
	columns []string
	to      func(R) []any
	from    func([]any) (R, error)
}

func (t *funcTable[R]) Name() string                       { return t.name }
func (t *funcTable[R]) Columns() []string                  { return slices.Clone(t.columns) }
func (t *funcTable[R]) ToValues(rec R) []any               { return t.to(rec) }
func (t *funcTable[R]) FromValues(values []any) (R, error) { return t.from(values) }
