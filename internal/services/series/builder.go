// Package series builds per-scheme daily series from the record store.
package series

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/bobmcallan/navdash/internal/common"
	"github.com/bobmcallan/navdash/internal/interfaces"
	"github.com/bobmcallan/navdash/internal/models"
)

// Builder turns raw store records into a sorted series with a baseline day.
type Builder struct {
	store  interfaces.RecordStore
	logger *common.Logger
}

// NewBuilder creates a series builder over store
func NewBuilder(store interfaces.RecordStore, logger *common.Logger) *Builder {
	return &Builder{
		store:  store,
		logger: logger,
	}
}

// Build returns the records for systemTag dated on or after cutoff, sorted
// ascending, with a synthetic NAV 100 baseline one day before the first
// record. No records yields an empty series and a nil error. A store
// failure is returned as *models.StoreError.
func (b *Builder) Build(ctx context.Context, systemTag string, cutoff time.Time) (models.Series, error) {
	if !cutoff.IsZero() {
		cutoff = models.Day(cutoff)
	}

	records, err := b.store.ListRecords(ctx, systemTag, cutoff)
	if err != nil {
		var se *models.StoreError
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, &models.StoreError{SystemTag: systemTag, Err: err}
	}

	series := make(models.Series, 0, len(records)+1)
	for _, r := range records {
		r.Date = models.Day(r.Date)
		if !cutoff.IsZero() && r.Date.Before(cutoff) {
			continue
		}
		if math.IsNaN(r.NAV) || math.IsInf(r.NAV, 0) || r.NAV < 0 {
			b.logger.Warn().Str("tag", systemTag).Str("date", models.FormatDate(r.Date)).Float64("nav", r.NAV).Msg("Skipping record with invalid NAV")
			continue
		}
		if fields := zeroNonFinite(&r); len(fields) > 0 {
			b.logger.Warn().Str("tag", systemTag).Str("date", models.FormatDate(r.Date)).Strs("fields", fields).Msg("Zeroed non-finite record fields")
		}
		r.Baseline = false
		series = append(series, r)
	}

	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	series = dedupeDates(series)

	if len(series) == 0 {
		b.logger.Debug().Str("tag", systemTag).Msg("No records in range")
		return models.Series{}, nil
	}

	out := make(models.Series, 0, len(series)+1)
	out = append(out, Baseline(systemTag, series[0].Date))
	out = append(out, series...)

	b.logger.Debug().Str("tag", systemTag).Int("points", len(series)).Msg("Series built")
	return out, nil
}

// zeroNonFinite replaces NaN and Inf in the monetary fields with 0 and
// returns the names of the fields it changed.
func zeroNonFinite(r *models.DailyRecord) []string {
	var changed []string
	for _, f := range []struct {
		name string
		v    *float64
	}{
		{"portfolio_value", &r.PortfolioValue},
		{"capital_in_out", &r.CapitalInOut},
		{"pnl", &r.PnL},
		{"drawdown", &r.Drawdown},
		{"dividend", &r.Dividend},
	} {
		if math.IsNaN(*f.v) || math.IsInf(*f.v, 0) {
			*f.v = 0
			changed = append(changed, f.name)
		}
	}
	return changed
}

// Baseline returns the synthetic day-zero record for a series whose first
// real record is dated first.
func Baseline(systemTag string, first time.Time) models.DailyRecord {
	return models.DailyRecord{
		SystemTag: systemTag,
		Date:      models.Day(first).AddDate(0, 0, -1),
		NAV:       models.BaselineNAV,
		Baseline:  true,
	}
}

// dedupeDates keeps the last record of each run of equal dates in a sorted series.
func dedupeDates(s models.Series) models.Series {
	if len(s) < 2 {
		return s
	}
	out := s[:0]
	for i, r := range s {
		if i+1 < len(s) && s[i+1].Date.Equal(r.Date) {
			continue
		}
		out = append(out, r)
	}
	return out
}
