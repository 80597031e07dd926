package store

import "errors"

var (
	// ErrStorageUnavailable means the database file could not be opened,
	// created or configured (permissions, bad path, corrupt file).
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrSchemaApplicationFailed means the schema script failed. The script
	// runs in one transaction, so nothing from it was kept.
	ErrSchemaApplicationFailed = errors.New("schema application failed")

	// ErrSchemaMismatch means a record or row does not have one value per
	// column declared by its Table.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrClosed is returned by operations on a closed Store.
	ErrClosed = errors.New("store is closed")
)
