// Package metrics derives portfolio analytics from a daily NAV series.
// Every function is pure: the same series always yields the same output.
package metrics

import (
	"math"

	"github.com/bobmcallan/navdash/internal/models"
)

// AnnualiseAfterDays is the span at which total return switches from
// cumulative to annualised.
const AnnualiseAfterDays = 365

// Horizon is a trailing look-back measured in series points.
type Horizon struct {
	Key    string
	Points int
}

// Horizons are the trailing windows reported, approximating calendar
// periods in trading days.
var Horizons = []Horizon{
	{"5d", 5},
	{"10d", 10},
	{"15d", 15},
	{"1m", 21},
	{"3m", 63},
	{"6m", 126},
	{"1y", 252},
	{"2y", 504},
	{"5y", 1260},
}

// pctChange returns (to/from - 1) * 100, or nil when from is zero or the
// result is not finite.
func pctChange(from, to float64) *float64 {
	if from == 0 {
		return nil
	}
	v := (to/from - 1) * 100
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// TotalReturn is the return from the first to the last point: cumulative
// when the span is under AnnualiseAfterDays, otherwise CAGR. An empty series
// returns 0; a zero first NAV returns nil.
func TotalReturn(s models.Series) *float64 {
	first, ok := s.First()
	if !ok {
		zero := 0.0
		return &zero
	}
	last, _ := s.Last()
	if first.NAV == 0 {
		return nil
	}

	days := spanDays(first, last)
	if days < AnnualiseAfterDays {
		return pctChange(first.NAV, last.NAV)
	}

	ratio := last.NAV / first.NAV
	v := (math.Pow(ratio, AnnualiseAfterDays/float64(days)) - 1) * 100
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// spanDays counts calendar days between two records.
func spanDays(first, last models.DailyRecord) int {
	return int(math.Round(last.Date.Sub(first.Date).Hours() / 24))
}

// TrailingReturn is the return over the last h points: nil unless the series
// holds at least h+1 points, or when the look-back NAV is zero.
func TrailingReturn(s models.Series, h int) *float64 {
	n := len(s)
	if h <= 0 || n < h+1 {
		return nil
	}
	return pctChange(s[n-1-h].NAV, s[n-1].NAV)
}

// SinceInception is the cumulative return from the very first point.
func SinceInception(s models.Series) *float64 {
	first, ok := s.First()
	if !ok {
		return nil
	}
	last, _ := s.Last()
	return pctChange(first.NAV, last.NAV)
}

// TrailingReturns evaluates every horizon plus since-inception and the
// drawdown figures. All fields are nil for an empty series.
func TrailingReturns(s models.Series) models.TrailingReturns {
	var tr models.TrailingReturns
	if len(s) == 0 {
		return tr
	}

	slots := map[string]**models.Percent{
		"5d":  &tr.FiveDays,
		"10d": &tr.TenDays,
		"15d": &tr.FifteenDays,
		"1m":  &tr.OneMonth,
		"3m":  &tr.ThreeMonths,
		"6m":  &tr.SixMonths,
		"1y":  &tr.OneYear,
		"2y":  &tr.TwoYears,
		"5y":  &tr.FiveYears,
	}
	for _, h := range Horizons {
		*slots[h.Key] = toPercent(TrailingReturn(s, h.Points))
	}
	tr.SinceInception = toPercent(SinceInception(s))

	dd := Drawdowns(s)
	tr.MDD = models.PercentPtr(dd.Max)
	tr.CurrentDD = models.PercentPtr(dd.Current)
	return tr
}

func toPercent(v *float64) *models.Percent {
	if v == nil {
		return nil
	}
	return models.PercentPtr(*v)
}
