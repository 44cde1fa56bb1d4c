package metrics

import (
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/bobmcallan/navdash/internal/models"
)

// bucketKey identifies a month or quarter within a year.
type bucketKey struct {
	year  int
	index int // zero-based position in the period's key list
}

type bucket struct {
	key      bucketKey
	firstNAV float64
	lastNAV  float64
	pnl      []float64
	capital  []float64
}

func monthOf(t time.Time) int   { return int(t.Month()) - 1 }
func quarterOf(t time.Time) int { return (int(t.Month()) - 1) / 3 }

// MonthlyPnL groups the non-baseline points by calendar month.
func MonthlyPnL(s models.Series) models.PeriodTable {
	return periodPnL(s, monthOf, models.MonthKeys)
}

// QuarterlyPnL groups the non-baseline points by calendar quarter.
func QuarterlyPnL(s models.Series) models.PeriodTable {
	return periodPnL(s, quarterOf, models.QuarterKeys)
}

// periodPnL computes each bucket's return from the previous bucket's closing
// NAV (the bucket's own first NAV for the very first bucket), with cash and
// capital summed within the bucket. Years carry every key; buckets without
// points are left empty and render as no-data.
func periodPnL(s models.Series, indexOf func(time.Time) int, keys []string) models.PeriodTable {
	var buckets []*bucket
	var cur *bucket
	for _, r := range s {
		if r.Baseline {
			continue
		}
		k := bucketKey{year: r.Date.Year(), index: indexOf(r.Date)}
		if cur == nil || cur.key != k {
			cur = &bucket{key: k, firstNAV: r.NAV}
			buckets = append(buckets, cur)
		}
		cur.lastNAV = r.NAV
		cur.pnl = append(cur.pnl, r.PnL)
		cur.capital = append(cur.capital, r.CapitalInOut)
	}

	table := models.PeriodTable{}
	for i, b := range buckets {
		start := b.firstNAV
		if i > 0 {
			start = buckets[i-1].lastNAV
		}

		row, ok := table[b.key.year]
		if !ok {
			row = emptyRow(keys)
			table[b.key.year] = row
		}

		cell := row[keys[b.key.index]]
		if cell.HasData {
			// A series out of date order revisits a bucket; accumulate into it.
			cell.Cash += floats.Sum(b.pnl)
			cell.CapitalInOut += floats.Sum(b.capital)
			cell.Percent = addPercent(cell.Percent, pctChange(start, b.lastNAV))
		} else {
			cell = models.PeriodCell{
				HasData:      true,
				Percent:      pctChange(start, b.lastNAV),
				Cash:         floats.Sum(b.pnl),
				CapitalInOut: floats.Sum(b.capital),
			}
		}
		row[keys[b.key.index]] = cell
	}

	for _, row := range table {
		row[models.TotalKey] = totalCell(row, keys)
	}
	return table
}

func emptyRow(keys []string) models.PeriodRow {
	row := make(models.PeriodRow, len(keys)+1)
	for _, k := range keys {
		row[k] = models.PeriodCell{}
	}
	return row
}

// totalCell sums the percentages (not compounded), cash and capital of every
// populated bucket in the row. The percent is nil when no bucket has one.
func totalCell(row models.PeriodRow, keys []string) models.PeriodCell {
	var pcts, cash, capital []float64
	for _, k := range keys {
		c := row[k]
		if !c.HasData {
			continue
		}
		if c.Percent != nil {
			pcts = append(pcts, *c.Percent)
		}
		cash = append(cash, c.Cash)
		capital = append(capital, c.CapitalInOut)
	}
	if len(cash) == 0 {
		return models.PeriodCell{}
	}

	total := models.PeriodCell{
		HasData:      true,
		Cash:         floats.Sum(cash),
		CapitalInOut: floats.Sum(capital),
	}
	if len(pcts) > 0 {
		v := floats.Sum(pcts)
		total.Percent = &v
	}
	return total
}

func addPercent(a, b *float64) *float64 {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		v := *b
		return &v
	case b == nil:
		v := *a
		return &v
	}
	v := *a + *b
	return &v
}

// MergePeriodTables combines the PnL tables of a composite's components. A
// year present in one table is copied as is. A year present in several is
// merged bucket by bucket: cash, capital and percentages are summed, and the
// year total is recomputed from the merged buckets. Percentages are added,
// not recomputed from NAV, since rebasing already makes the combined index
// continuous across the hand-off.
func MergePeriodTables(keys []string, tables ...models.PeriodTable) models.PeriodTable {
	owners := make(map[int][]models.PeriodRow)
	for _, t := range tables {
		for year, row := range t {
			owners[year] = append(owners[year], row)
		}
	}

	out := make(models.PeriodTable, len(owners))
	for year, rows := range owners {
		if len(rows) == 1 {
			out[year] = copyRow(rows[0])
			continue
		}

		merged := emptyRow(keys)
		for _, k := range keys {
			var cell models.PeriodCell
			for _, row := range rows {
				c := row[k]
				if !c.HasData {
					continue
				}
				if !cell.HasData {
					cell = models.PeriodCell{HasData: true, Percent: addPercent(nil, c.Percent)}
				} else {
					cell.Percent = addPercent(cell.Percent, c.Percent)
				}
				cell.Cash += c.Cash
				cell.CapitalInOut += c.CapitalInOut
			}
			merged[k] = cell
		}
		merged[models.TotalKey] = totalCell(merged, keys)
		out[year] = merged
	}
	return out
}

func copyRow(row models.PeriodRow) models.PeriodRow {
	out := make(models.PeriodRow, len(row))
	for k, c := range row {
		if c.Percent != nil {
			v := *c.Percent
			c.Percent = &v
		}
		out[k] = c
	}
	return out
}
