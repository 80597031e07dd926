package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Commit(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		s := createTestStore(t, driver)
		ctx := t.Context()

		err := s.Session(ctx, func(tx *Tx) error {
			for i := int64(1); i <= 3; i++ {
				if err := Put(ctx, tx, sampleTable, sample{ID: i, Value: "v"}); err != nil {
					return err
				}
			}
			// Writes are visible inside the session before commit.
			n, err := Count(ctx, tx, "sample")
			require.NoError(t, err)
			assert.Equal(t, int64(3), n)
			return nil
		})
		require.NoError(t, err)

		n, err := Count(ctx, s, "sample")
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})
}

func TestSession_RollbackOnError(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		s := createTestStore(t, driver)
		ctx := t.Context()
		boom := errors.New("boom")

		err := s.Session(ctx, func(tx *Tx) error {
			require.NoError(t, Put(ctx, tx, sampleTable, sample{ID: 1, Value: "a"}))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		n, err := Count(ctx, s, "sample")
		require.NoError(t, err)
		assert.Zero(t, n)

		// The connection is reusable afterwards.
		require.NoError(t, Put(ctx, s, sampleTable, sample{ID: 2, Value: "b"}))
	})
}

func TestSession_RollbackOnPanic(t *testing.T) {
	s := createTestStore(t, DriverCGO)
	ctx := t.Context()

	assert.PanicsWithValue(t, "boom", func() {
		_ = s.Session(ctx, func(tx *Tx) error {
			_ = Put(ctx, tx, sampleTable, sample{ID: 1, Value: "a"})
			panic("boom")
		})
	})

	n, err := Count(ctx, s, "sample")
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, Put(ctx, s, sampleTable, sample{ID: 2, Value: "b"}))
}

func TestSession_IterateAndWrite(t *testing.T) {
	s := createTestStore(t, DriverCGO)
	ctx := t.Context()
	require.NoError(t, Put(ctx, s, sampleTable, sample{ID: 1, Value: "a"}))

	err := s.Session(ctx, func(tx *Tx) error {
		items, err := ReadAll(ctx, tx, sampleTable)
		if err != nil {
			return err
		}
		for _, it := range items {
			if err := Put(ctx, tx, sampleTable, sample{ID: it.ID + 100, Value: it.Value}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	got, err := ReadAll(ctx, s, sampleTable)
	require.NoError(t, err)
	assert.ElementsMatch(t, []sample{{1, "a"}, {101, "a"}}, got)
}

func TestSession_SharesStatementCache(t *testing.T) {
	s := createTestStore(t, DriverCGO)
	ctx := t.Context()

	err := s.Session(ctx, func(tx *Tx) error {
		return Put(ctx, tx, sampleTable, sample{ID: 1, Value: "a"})
	})
	require.NoError(t, err)
	assert.Contains(t, s.put, "sample")
}
