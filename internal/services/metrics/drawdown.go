package metrics

import (
	"gonum.org/v1/gonum/floats"

	"github.com/bobmcallan/navdash/internal/models"
)

// DrawdownStats is the result of one pass over a series.
type DrawdownStats struct {
	Values  []float64 // per point, always <= 0
	Peaks   []float64 // running peak, non-decreasing
	Max     float64   // most negative value (MDD)
	Current float64   // value at the last point
}

// Drawdowns walks the series once tracking the running NAV peak. A point's
// drawdown is (nav - peak) / peak * 100, or 0 while the peak is zero.
func Drawdowns(s models.Series) DrawdownStats {
	st := DrawdownStats{
		Values: make([]float64, len(s)),
		Peaks:  make([]float64, len(s)),
	}
	if len(s) == 0 {
		return st
	}

	peak := s[0].NAV
	for i, r := range s {
		if r.NAV > peak {
			peak = r.NAV
		}
		st.Peaks[i] = peak
		if peak > 0 {
			dd := (r.NAV - peak) / peak * 100
			if dd > 0 {
				dd = 0
			}
			st.Values[i] = dd
		}
	}

	st.Max = floats.Min(st.Values)
	st.Current = st.Values[len(st.Values)-1]
	return st
}

// DrawdownCurve projects Drawdowns onto dated points.
func DrawdownCurve(s models.Series) []models.DrawdownPoint {
	dd := Drawdowns(s)
	out := make([]models.DrawdownPoint, len(s))
	for i, r := range s {
		out[i] = models.DrawdownPoint{Date: models.FormatDate(r.Date), Value: dd.Values[i]}
	}
	return out
}
