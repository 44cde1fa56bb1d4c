package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/navdash/internal/common"
	"github.com/bobmcallan/navdash/internal/models"
	tcommon "github.com/bobmcallan/navdash/tests/common"
)

func day(s string) time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// testStore connects to the shared container and clears the table so each
// test starts empty.
func testStore(t *testing.T) *Store {
	t.Helper()

	pc := tcommon.StartPostgres(t)
	ctx := context.Background()

	store, err := Connect(ctx, common.NewSilentLogger(), common.PostgresConfig{DSN: pc.DSN(), MaxConns: 2})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = store.pool.Exec(ctx, "TRUNCATE daily_records")
	require.NoError(t, err)
	return store
}

func TestConnect_RequiresDSN(t *testing.T) {
	_, err := Connect(context.Background(), common.NewSilentLogger(), common.PostgresConfig{})
	assert.Error(t, err)
}

func TestConnect_BadDSN(t *testing.T) {
	_, err := Connect(context.Background(), common.NewSilentLogger(), common.PostgresConfig{DSN: "postgres://%zz"})
	assert.Error(t, err)
}

func TestStore_ListRecords(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []models.DailyRecord{
		{SystemTag: "ZEN_QAW", Date: day("2024-01-03"), NAV: 101, PnL: 10},
		{SystemTag: "ZEN_QAW", Date: day("2024-01-02"), NAV: 100, CapitalInOut: 5000},
		{SystemTag: "ZEN_QMX", Date: day("2024-01-02"), NAV: 100},
	}))

	got, err := store.ListRecords(ctx, "ZEN_QAW", time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-02", models.FormatDate(got[0].Date))
	assert.Equal(t, 5000.0, got[0].CapitalInOut)
	assert.Equal(t, 10.0, got[1].PnL)

	got, err = store.ListRecords(ctx, "ZEN_QAW", day("2024-01-03"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-01-03", models.FormatDate(got[0].Date))
}

func TestStore_UpsertReplacesSameDay(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []models.DailyRecord{{SystemTag: "ZEN_QAW", Date: day("2024-01-02"), NAV: 100}}))
	require.NoError(t, store.Upsert(ctx, []models.DailyRecord{{SystemTag: "ZEN_QAW", Date: day("2024-01-02"), NAV: 100.7}}))

	all, err := store.ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 100.7, all[0].NAV)
}

func TestStore_ScanAllOrdersByTagThenDate(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	var records []models.DailyRecord
	for i := 5; i >= 1; i-- {
		records = append(records,
			models.DailyRecord{SystemTag: "B", Date: day(fmt.Sprintf("2024-01-0%d", i)), NAV: 100},
			models.DailyRecord{SystemTag: "A", Date: day(fmt.Sprintf("2024-01-0%d", i)), NAV: 100},
		)
	}
	require.NoError(t, store.Upsert(ctx, records))

	all, err := store.ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 10)
	assert.Equal(t, "A", all[0].SystemTag)
	assert.Equal(t, "2024-01-01", models.FormatDate(all[0].Date))
	assert.Equal(t, "B", all[9].SystemTag)
	assert.Equal(t, "2024-01-05", models.FormatDate(all[9].Date))
}

func TestStore_UpsertRequiresTag(t *testing.T) {
	store := testStore(t)
	err := store.Upsert(context.Background(), []models.DailyRecord{{Date: day("2024-01-02"), NAV: 1}})
	assert.Error(t, err)
}

func TestStore_SeededFixtures(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	seeded := tcommon.SeedDailyRecords(t, store)

	all, err := store.ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(seeded))

	qaw, err := store.ListRecords(ctx, "ZEN_QAW", day("2024-01-04"))
	require.NoError(t, err)
	require.Len(t, qaw, 2)
	assert.Equal(t, -50000.0, qaw[0].CapitalInOut)
	assert.Equal(t, 320.0, qaw[1].Dividend)

	qmx, err := store.ListRecords(ctx, "ZEN_QMX", time.Time{})
	require.NoError(t, err)
	assert.Len(t, qmx, 2)
}
