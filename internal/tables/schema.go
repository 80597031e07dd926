package tables

import (
	_ "embed"

	"github.com/roach88/soundwave/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the script creating the alerts, bugs and timeseries tables.
func Schema() string {
	return schemaSQL
}

// Open opens a store with this package's schema applied. A WithSchemaFile
// option in opts replaces the embedded script.
func Open(path string, opts ...store.Option) (*store.Store, error) {
	return store.Open(path, append([]store.Option{store.WithSchema(schemaSQL)}, opts...)...)
}
