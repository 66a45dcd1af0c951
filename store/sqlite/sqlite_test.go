package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/arrear-engine/arrear"
	"github.com/warp/arrear-engine/generic"
	"github.com/warp/arrear-engine/store/sqlite"
	"github.com/warp/arrear-engine/store/storetest"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) arrear.ReportStore { return newStore(t) })
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "arrear.db")

	// GIVEN: a report saved to a file database
	store, err := sqlite.New(path)
	require.NoError(t, err)
	rep := storetest.NewReport(t, arrear.RawInput{InitialGradePay: 6600, InitialBasic: 73700, IncrementMonth: 1, EndMonth: "202101"}, time.Now())
	require.NoError(t, store.Save(ctx, rep))
	require.NoError(t, store.Close())

	// WHEN: the database is reopened
	store, err = sqlite.New(path)
	require.NoError(t, err)
	defer store.Close()

	// THEN: the report is still there with its total
	got, err := store.Get(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, "40124.00", got.Result.TotalArrear.StringFixed(2))
}

func TestSQLiteStore_Reset(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	rep := storetest.NewReport(t, arrear.RawInput{InitialGradePay: 6600, InitialBasic: 73700, IncrementMonth: 1, EndMonth: "202001"}, time.Now())
	require.NoError(t, store.Save(ctx, rep))

	require.NoError(t, store.Reset(ctx))

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.NoError(t, store.Ping(ctx))
}

func TestSQLiteStore_CorruptRowsSurface(t *testing.T) {
	tests := []struct {
		name   string
		update string
		list   bool // whether List reads the damaged column
	}{
		{name: "created_at", update: "UPDATE reports SET created_at = 'yesterday'", list: true},
		{name: "total_arrear", update: "UPDATE reports SET total_arrear = 'lots'", list: true},
		{name: "end_month", update: "UPDATE reports SET end_month = '2026-02'", list: true},
		{name: "increment_timing", update: "UPDATE reports SET increment_timing = 'whenever'"},
		{name: "record arrear", update: "UPDATE report_records SET arrear = 'x' WHERE seq = 3"},
		{name: "record da_rate", update: "UPDATE report_records SET da_rate = ''"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "arrear.db")

			// GIVEN: a saved report whose row is damaged outside the store
			store, err := sqlite.New(path)
			require.NoError(t, err)
			rep := storetest.NewReport(t, arrear.RawInput{InitialGradePay: 6600, InitialBasic: 73700, IncrementMonth: 1, EndMonth: "202012"}, time.Now())
			require.NoError(t, store.Save(ctx, rep))
			require.NoError(t, store.Close())

			db, err := sql.Open("sqlite3", path)
			require.NoError(t, err)
			_, err = db.ExecContext(ctx, tt.update)
			require.NoError(t, err)
			require.NoError(t, db.Close())

			store, err = sqlite.New(path)
			require.NoError(t, err)
			defer store.Close()

			// WHEN: the report is read back
			got, err := store.Get(ctx, rep.ID)

			// THEN: the damage is reported, not replaced by zero values
			require.ErrorIs(t, err, generic.ErrCorruptReport)
			assert.Nil(t, got)
			assert.Contains(t, err.Error(), rep.ID)

			_, err = store.List(ctx, 0)
			if tt.list {
				assert.ErrorIs(t, err, generic.ErrCorruptReport)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
