package store

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleSchema = `CREATE TABLE IF NOT EXISTS sample (id INTEGER PRIMARY KEY, value TEXT);`

// sample is the record kind used throughout the store tests.
type sample struct {
	ID    int64
	Value string
}

var sampleTable = NewTable("sample", []string{"id", "value"},
	func(r sample) []any { return []any{r.ID, r.Value} },
	func(v []any) (sample, error) {
		id, ok := v[0].(int64)
		if !ok {
			return sample{}, fmt.Errorf("id: unexpected %T", v[0])
		}
		switch value := v[1].(type) {
		case string:
			return sample{ID: id, Value: value}, nil
		case []byte:
			return sample{ID: id, Value: string(value)}, nil
		default:
			return sample{}, fmt.Errorf("value: unexpected %T", v[1])
		}
	},
)

var drivers = []string{DriverCGO, DriverPureGo}

// forEachDriver runs fn as a subtest once per registered SQLite driver.
func forEachDriver(t *testing.T, fn func(t *testing.T, driver string)) {
	t.Helper()
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			fn(t, driver)
		})
	}
}

// createTestStore opens a store with the sample schema in a temp directory.
func createTestStore(t *testing.T, driver string, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	opts = append([]Option{WithDriver(driver), WithSchema(sampleSchema)}, opts...)
	s, err := Open(path, opts...)
	require.NoError(t, err, "Open() failed")
	t.Cleanup(func() { s.Close() })
	return s
}

// tableExists reports whether sqlite_master lists the table.
func tableExists(t *testing.T, s *Store, name string) bool {
	t.Helper()
	var n int
	err := s.conn.QueryRowContext(t.Context(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name,
	).Scan(&n)
	require.NoError(t, err)
	return n > 0
}
