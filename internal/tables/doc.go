// Package tables defines the perf dashboard record kinds kept in a
// soundwave database (alerts, bugs and timeseries points), the schema
// script that creates their tables, and a name-indexed registry of them for
// code that only knows a table name at run time.
package tables
