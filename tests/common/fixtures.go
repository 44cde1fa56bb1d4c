package common

import (
	"context"
	"testing"
	"time"

	"github.com/bobmcallan/navdash/internal/interfaces"
	"github.com/bobmcallan/navdash/internal/models"
)

// DailyRecordFixtures is a small two-scheme history shared by the backend
// tests: four ZEN_QAW days with a deposit, a withdrawal and a dividend, and
// two ZEN_QMX days.
func DailyRecordFixtures() []models.DailyRecord {
	d := func(day int) time.Time { return time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC) }
	return []models.DailyRecord{
		{SystemTag: "ZEN_QAW", Date: d(2), NAV: 100, PortfolioValue: 1000000, CapitalInOut: 1000000},
		{SystemTag: "ZEN_QAW", Date: d(3), NAV: 101.5, PortfolioValue: 1015000, PnL: 15000},
		{SystemTag: "ZEN_QAW", Date: d(4), NAV: 100.8, PortfolioValue: 958000, PnL: -7000, CapitalInOut: -50000, Drawdown: -0.69},
		{SystemTag: "ZEN_QAW", Date: d(5), NAV: 102, PortfolioValue: 969400, PnL: 11400, Dividend: 320},
		{SystemTag: "ZEN_QMX", Date: d(2), NAV: 100, PortfolioValue: 250000, CapitalInOut: 250000},
		{SystemTag: "ZEN_QMX", Date: d(3), NAV: 99.2, PortfolioValue: 248000, PnL: -2000, Drawdown: -0.8},
	}
}

// SeedDailyRecords upserts DailyRecordFixtures into store and returns them.
func SeedDailyRecords(t *testing.T, store interfaces.RecordBackend) []models.DailyRecord {
	t.Helper()
	records := DailyRecordFixtures()
	if err := store.Upsert(context.Background(), records); err != nil {
		t.Fatalf("seed daily records: %v", err)
	}
	return records
}
