package metrics

import (
	"gonum.org/v1/gonum/floats"

	"github.com/bobmcallan/navdash/internal/models"
	"github.com/bobmcallan/navdash/internal/services/combiner"
)

// AmountDeposited is the net capital moved into the scheme.
func AmountDeposited(s models.Series) float64 {
	capital := make([]float64, len(s))
	for i, r := range s {
		capital[i] = r.CapitalInOut
	}
	return floats.Sum(capital)
}

// CurrentExposure is the portfolio value of the latest point.
func CurrentExposure(s models.Series) float64 {
	last, ok := s.Last()
	if !ok {
		return 0
	}
	return last.PortfolioValue
}

// TotalProfit is the realised PnL summed over the series.
func TotalProfit(s models.Series) float64 {
	pnl := make([]float64, len(s))
	for i, r := range s {
		pnl[i] = r.PnL
	}
	return floats.Sum(pnl)
}

// EquityCurve projects the series onto dated NAV points.
func EquityCurve(s models.Series) []models.EquityPoint {
	out := make([]models.EquityPoint, len(s))
	for i, r := range s {
		out[i] = models.EquityPoint{Date: models.FormatDate(r.Date), NAV: r.NAV}
	}
	return out
}

// CashFlows lists every real point with a non-zero capital movement.
func CashFlows(s models.Series) []models.CashFlow {
	out := []models.CashFlow{}
	for _, r := range s {
		if r.Baseline || r.CapitalInOut == 0 {
			continue
		}
		out = append(out, models.CashFlow{
			Date:     models.FormatDate(r.Date),
			Amount:   models.Money(r.CapitalInOut),
			Dividend: models.Money(r.Dividend),
		})
	}
	return out
}

// Compute assembles the full analytics bundle for one series.
func Compute(s models.Series) models.PortfolioAnalytics {
	dd := Drawdowns(s)
	return models.PortfolioAnalytics{
		AmountDeposited: models.Money(AmountDeposited(s)),
		CurrentExposure: models.Money(CurrentExposure(s)),
		TotalProfit:     models.Money(TotalProfit(s)),
		Return:          toPercent(TotalReturn(s)),
		Drawdown:        models.Percent(dd.Max),
		EquityCurve:     EquityCurve(s),
		DrawdownCurve:   DrawdownCurve(s),
		TrailingReturns: TrailingReturns(s),
		MonthlyPnL:      MonthlyPnL(s),
		QuarterlyPnL:    QuarterlyPnL(s),
		CashFlows:       CashFlows(s),
	}
}

// ComputeComposite assembles analytics for a combined view. Curves and
// returns come from the rebased series. Deposits and profit are summed over
// the segments, exposure is the newest non-empty segment's, PnL tables are
// merged and cash flows concatenated. Frozen segments contribute their
// archived figures.
func ComputeComposite(cs *combiner.CombinedSeries) models.PortfolioAnalytics {
	if cs == nil {
		return Compute(nil)
	}

	a := Compute(cs.Series)

	var deposited, profit, exposure []float64
	var monthly, quarterly []models.PeriodTable
	flows := []models.CashFlow{}
	for _, seg := range cs.Segments {
		if seg.Bundle != nil {
			d := seg.Bundle.Data
			deposited = append(deposited, float64(d.AmountDeposited))
			profit = append(profit, float64(d.TotalProfit))
			monthly = append(monthly, d.MonthlyPnL)
			quarterly = append(quarterly, d.QuarterlyPnL)
			flows = append(flows, d.CashFlows...)
			if !seg.Empty() {
				exposure = append(exposure, float64(d.CurrentExposure))
			}
			continue
		}
		if seg.Empty() {
			continue
		}
		deposited = append(deposited, AmountDeposited(seg.Raw))
		profit = append(profit, TotalProfit(seg.Raw))
		exposure = append(exposure, CurrentExposure(seg.Raw))
		monthly = append(monthly, MonthlyPnL(seg.Raw))
		quarterly = append(quarterly, QuarterlyPnL(seg.Raw))
		flows = append(flows, CashFlows(seg.Raw)...)
	}

	a.AmountDeposited = models.Money(floats.Sum(deposited))
	a.TotalProfit = models.Money(floats.Sum(profit))
	a.CurrentExposure = 0
	if n := len(exposure); n > 0 {
		a.CurrentExposure = models.Money(exposure[n-1])
	}
	a.MonthlyPnL = MergePeriodTables(models.MonthKeys, monthly...)
	a.QuarterlyPnL = MergePeriodTables(models.QuarterKeys, quarterly...)
	a.CashFlows = flows
	return a
}
