package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIterItems_Empty(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		s := createTestStore(t, driver)

		n := 0
		for _, err := range IterItems(t.Context(), s, sampleTable) {
			require.NoError(t, err)
			n++
		}
		assert.Zero(t, n)

		items, err := ReadAll(t.Context(), s, sampleTable)
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})
}

func TestIterItems_StopEarlyReleasesCursor(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		s := createTestStore(t, driver)
		ctx := t.Context()

		for i := int64(1); i <= 3; i++ {
			require.NoError(t, Put(ctx, s, sampleTable, sample{ID: i, Value: "v"}))
		}

		seen := 0
		for _, err := range IterItems(ctx, s, sampleTable) {
			require.NoError(t, err)
			seen++
			break
		}
		assert.Equal(t, 1, seen)

		// The connection is free again: writes and fresh scans still work.
		require.NoError(t, Put(ctx, s, sampleTable, sample{ID: 4, Value: "v"}))
		n, err := Count(ctx, s, "sample")
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})
}

func TestIterItems_FreshScanPerCall(t *testing.T) {
	s := createTestStore(t, DriverCGO)
	ctx := t.Context()

	seq := IterItems(ctx, s, sampleTable)
	require.NoError(t, Put(ctx, s, sampleTable, sample{ID: 1, Value: "a"}))

	count := func() int {
		n := 0
		for _, err := range seq {
			require.NoError(t, err)
			n++
		}
		return n
	}
	assert.Equal(t, 1, count())

	require.NoError(t, Put(ctx, s, sampleTable, sample{ID: 2, Value: "b"}))
	assert.Equal(t, 2, count())
}

func TestIterItems_ArityMismatch(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		s := createTestStore(t, driver)
		ctx := t.Context()
		require.NoError(t, Put(ctx, s, sampleTable, sample{ID: 1, Value: "a"}))

		wide := NewTable("sample", []string{"id", "value", "extra"},
			func(r sample) []any { return []any{r.ID, r.Value, nil} },
			sampleTable.FromValues,
		)

		_, err := ReadAll(ctx, s, wide)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSchemaMismatch)
	})
}

func TestIterItems_DecodeError(t *testing.T) {
	s := createTestStore(t, DriverCGO)
	ctx := t.Context()
	require.NoError(t, Put(ctx, s, sampleTable, sample{ID: 1, Value: "a"}))
	require.NoError(t, Put(ctx, s, sampleTable, sample{ID: 2, Value: "b"}))

	bad := errors.New("bad row")
	failing := NewTable("sample", sampleTable.Columns(), sampleTable.ToValues,
		func([]any) (sample, error) { return sample{}, bad },
	)

	errs := 0
	for _, err := range IterItems(ctx, s, failing) {
		require.Error(t, err)
		assert.ErrorIs(t, err, bad)
		errs++
	}
	assert.Equal(t, 1, errs, "sequence should stop after the first error")
}

func TestIterItems_UnknownTable(t *testing.T) {
	s := createTestStore(t, DriverCGO)

	missing := NewTable("missing", sampleTable.Columns(), sampleTable.ToValues, sampleTable.FromValues)
	_, err := ReadAll(t.Context(), s, missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iterate missing")
}

func TestCount(t *testing.T) {
	s := createTestStore(t, DriverPureGo)
	ctx := t.Context()

	n, err := Count(ctx, s, "sample")
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, Put(ctx, s, sampleTable, sample{ID: 1, Value: "a"}))
	n, err = Count(ctx, s, "sample")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = Count(ctx, s, "missing")
	assert.Error(t, err)
}
