// Package store provides a single-file, SQLite-backed record store.
//
// A Store applies a schema script when it is opened and then moves typed
// records in and out of tables described by Table values:
//
//   - Put writes a record with INSERT OR IGNORE, so re-submitting a record
//     whose primary key already exists is a silent no-op.
//   - IterItems scans a table and decodes each row back into a record,
//     one row at a time.
//
// The store has no knowledge of concrete record shapes; every record kind
// supplies its own Table (name, ordered columns, and the two mapping
// functions). Table layouts and primary keys come from the schema script.
//
// # Lifecycle
//
// Open acquires the store's single connection and applies the schema in one
// transaction. Close (or With, which guarantees Close) releases it. Session
// groups several operations into one transaction that is committed when the
// callback returns nil and rolled back otherwise.
//
// # Database Configuration
//
//   - WAL mode: readers in other processes do not block on a writer
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout (default 5000ms): wait for locks held by other processes
//
// Two drivers are registered: "sqlite3" (mattn/go-sqlite3, cgo, default) and
// "sqlite" (modernc.org/sqlite, pure Go).
//
// A Store is meant for one goroutine at a time; see Store.
package store
