package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		path := filepath.Join(t.TempDir(), "test.db")

		s, err := Open(path, WithDriver(driver), WithSchema(sampleSchema))
		require.NoError(t, err)
		defer s.Close()

		_, err = os.Stat(path)
		assert.NoError(t, err, "database file was not created")
		assert.True(t, tableExists(t, s, "sample"))
		assert.Equal(t, path, s.Path())
		assert.Equal(t, driver, s.Driver())
	})
}

func TestOpen_Idempotent(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		path := filepath.Join(t.TempDir(), "test.db")

		for i := 0; i < 3; i++ {
			s, err := Open(path, WithDriver(driver), WithSchema(sampleSchema))
			require.NoError(t, err, "Open() iteration %d", i)
			require.NoError(t, Put(t.Context(), s, sampleTable, sample{ID: 1, Value: "a"}))
			require.NoError(t, s.Close())
		}

		s, err := Open(path, WithDriver(driver), WithSchema(sampleSchema))
		require.NoError(t, err)
		defer s.Close()

		items, err := ReadAll(t.Context(), s, sampleTable)
		require.NoError(t, err)
		assert.Equal(t, []sample{{ID: 1, Value: "a"}}, items)
	})
}

func TestOpen_TwoHandlesSameFile(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		path := filepath.Join(t.TempDir(), "test.db")
		ctx := t.Context()

		s1, err := Open(path, WithDriver(driver), WithSchema(sampleSchema))
		require.NoError(t, err)
		defer s1.Close()
		s2, err := Open(path, WithDriver(driver), WithSchema(sampleSchema))
		require.NoError(t, err)
		defer s2.Close()

		require.NoError(t, Put(ctx, s1, sampleTable, sample{ID: 1, Value: "a"}))
		require.NoError(t, Put(ctx, s2, sampleTable, sample{ID: 1, Value: "a"}))
		require.NoError(t, Put(ctx, s2, sampleTable, sample{ID: 2, Value: "b"}))

		items1, err := ReadAll(ctx, s1, sampleTable)
		require.NoError(t, err)
		items2, err := ReadAll(ctx, s2, sampleTable)
		require.NoError(t, err)

		assert.ElementsMatch(t, []sample{{1, "a"}, {2, "b"}}, items1)
		assert.ElementsMatch(t, items1, items2)
	})
}

func TestOpen_InvalidPath(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		_, err := Open("/nonexistent/dir/test.db", WithDriver(driver))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrStorageUnavailable)
	})
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "test.db"), WithDriver("postgres"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestOpen_SchemaFile(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.sql")
	require.NoError(t, os.WriteFile(schemaPath, []byte(sampleSchema), 0o644))

	s, err := Open(filepath.Join(dir, "test.db"), WithSchemaFile(schemaPath))
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, tableExists(t, s, "sample"))
}

func TestOpen_MissingSchemaFile(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "test.db"), WithSchemaFile(filepath.Join(dir, "missing.sql")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_SchemaFailureRollsBack(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		path := filepath.Join(t.TempDir(), "test.db")
		broken := sampleSchema + "\nCREATE TABLE other (id INTEGER PRIMARY KEY);\nCREATE TABLE oops (;\n"

		_, err := Open(path, WithDriver(driver), WithSchema(broken))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSchemaApplicationFailed)

		// Reopen without a schema: nothing from the failed script survived.
		s, err := Open(path, WithDriver(driver))
		require.NoError(t, err)
		defer s.Close()

		assert.False(t, tableExists(t, s, "sample"))
		assert.False(t, tableExists(t, s, "other"))
	})
}

func TestOpen_EmptySchema(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), WithSchema("  \n"))
	require.NoError(t, err)
	defer s.Close()

	n, err := Count(t.Context(), s, "sqlite_master")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Close())
}

func TestClose_MultipleCalls(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		s, err := Open(filepath.Join(t.TempDir(), "test.db"), WithDriver(driver))
		require.NoError(t, err)

		assert.NoError(t, s.Close())
		assert.NoError(t, s.Close())
	})
}

func TestClosedStore(t *testing.T) {
	s := createTestStore(t, DriverCGO)
	require.NoError(t, s.Close())

	err := Put(t.Context(), s, sampleTable, sample{ID: 1, Value: "a"})
	assert.ErrorIs(t, err, ErrClosed)

	_, err = ReadAll(t.Context(), s, sampleTable)
	assert.ErrorIs(t, err, ErrClosed)

	err = s.Session(t.Context(), func(*Tx) error { return nil })
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWith_ClosesStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	var held *Store
	err := With(path, func(s *Store) error {
		held = s
		return Put(t.Context(), s, sampleTable, sample{ID: 7, Value: "x"})
	}, WithSchema(sampleSchema))
	require.NoError(t, err)
	assert.Nil(t, held.db, "store left open")

	err = With(path, func(s *Store) error {
		items, err := ReadAll(t.Context(), s, sampleTable)
		require.NoError(t, err)
		assert.Equal(t, []sample{{ID: 7, Value: "x"}}, items)
		return nil
	}, WithSchema(sampleSchema))
	require.NoError(t, err)
}

func TestWith_ClosesOnError(t *testing.T) {
	boom := errors.New("boom")

	var held *Store
	err := With(filepath.Join(t.TempDir(), "test.db"), func(s *Store) error {
		held = s
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, held.db, "store left open")
}

func TestWith_ClosesOnPanic(t *testing.T) {
	var held *Store
	assert.PanicsWithValue(t, "boom", func() {
		_ = With(filepath.Join(t.TempDir(), "test.db"), func(s *Store) error {
			held = s
			panic("boom")
		})
	})
	require.NotNil(t, held)
	assert.Nil(t, held.db, "store left open")
}

func TestWith_OpenError(t *testing.T) {
	called := false
	err := With("/nonexistent/dir/test.db", func(*Store) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.False(t, called)
}

// Pragma tests

func TestPragma_JournalMode(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		s := createTestStore(t, driver)
		assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	})
}

func TestPragma_Synchronous(t *testing.T) {
	s := createTestStore(t, DriverCGO)

	// NORMAL = 1
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
}

func TestPragma_BusyTimeout(t *testing.T) {
	s := createTestStore(t, DriverCGO)
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))

	s = createTestStore(t, DriverPureGo, WithBusyTimeout(2*time.Second))
	assert.NoError(t, s.verifyPragma("busy_timeout", "2000"))
}
