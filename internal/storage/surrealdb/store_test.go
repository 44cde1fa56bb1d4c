package surrealdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func TestRecordRow_RoundTrip(t *testing.T) {
	in := models.DailyRecord{
		SystemTag:      "ZEN_QAW",
		Date:           day("2024-02-29"),
		NAV:            101.25,
		PortfolioValue: 5062500,
		CapitalInOut:   -2500,
		PnL:            1250,
		Drawdown:       -0.4,
		Dividend:       12.5,
	}

	row := toRow(in)
	assert.Equal(t, "2024-02-29", row.Date)

	out, err := row.toRecord()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestRecordRow_BadDate(t *testing.T) {
	_, err := recordRow{SystemTag: "X", Date: "29/02/2024"}.toRecord()
	assert.Error(t, err)
}

func TestStore_ListRecords(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []models.DailyRecord{
		{SystemTag: "ZEN_QAW", Date: day("2024-01-03"), NAV: 101},
		{SystemTag: "ZEN_QAW", Date: day("2024-01-02"), NAV: 100, CapitalInOut: 5000},
		{SystemTag: "ZEN_QMX", Date: day("2024-01-02"), NAV: 100},
	}))

	got, err := store.ListRecords(ctx, "ZEN_QAW", time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-02", models.FormatDate(got[0].Date))
	assert.Equal(t, 5000.0, got[0].CapitalInOut)
	assert.Equal(t, "2024-01-03", models.FormatDate(got[1].Date))

	got, err = store.ListRecords(ctx, "ZEN_QAW", day("2024-01-03"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 101.0, got[0].NAV)
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

func TestStore_UnknownTagIsEmpty(t *testing.T) {
	store := testStore(t)

	got, err := store.ListRecords(context.Background(), "NOPE", time.Time{})
	require.NoError(t, err)
	assert.Empty(t, got)
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
	assert.Equal(t, "ZEN_QAW", all[0].SystemTag)
	assert.Equal(t, "ZEN_QMX", all[len(all)-1].SystemTag)

	qaw, err := store.ListRecords(ctx, "ZEN_QAW", day("2024-01-04"))
	require.NoError(t, err)
	require.Len(t, qaw, 2)
	assert.Equal(t, -50000.0, qaw[0].CapitalInOut)
	assert.Equal(t, 320.0, qaw[1].Dividend)
}
