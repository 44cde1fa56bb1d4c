package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EquityPoint is one point of a scheme's NAV curve.
type EquityPoint struct {
	Date string  `json:"date"`
	NAV  float64 `json:"nav"`
}

// DrawdownPoint is the percentage distance from the running NAV peak (always <= 0).
type DrawdownPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// CashFlow is a non-zero capital movement; positive amounts are inflows.
type CashFlow struct {
	Date     string `json:"date"`
	Amount   Money  `json:"amount"`
	Dividend Money  `json:"dividend"`
}

// TrailingReturns holds look-back returns; a nil horizon means the series is too short.
type TrailingReturns struct {
	FiveDays       *Percent `json:"5d"`
	TenDays        *Percent `json:"10d"`
	FifteenDays    *Percent `json:"15d"`
	OneMonth       *Percent `json:"1m"`
	ThreeMonths    *Percent `json:"3m"`
	SixMonths      *Percent `json:"6m"`
	OneYear        *Percent `json:"1y"`
	TwoYears       *Percent `json:"2y"`
	FiveYears      *Percent `json:"5y"`
	SinceInception *Percent `json:"sinceInception"`
	MDD            *Percent `json:"MDD"`
	CurrentDD      *Percent `json:"currentDD"`
}

// Period bucket keys.
var (
	MonthKeys   = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	QuarterKeys = []string{"Q1", "Q2", "Q3", "Q4"}
)

// TotalKey is the per-year summary column of a PeriodTable.
const TotalKey = "total"

// PeriodCell is one month or quarter of a PnL table.
// Percent is nil when the bucket start NAV was zero.
type PeriodCell struct {
	HasData      bool
	Percent      *float64
	Cash         float64
	CapitalInOut float64
}

type periodCellJSON struct {
	Percent      json.RawMessage `json:"percent"`
	Cash         json.RawMessage `json:"cash"`
	CapitalInOut json.RawMessage `json:"capitalInOut"`
}

var noDataJSON = json.RawMessage(`"-"`)

// MarshalJSON renders absent buckets with the NoData sentinel in every field.
func (c PeriodCell) MarshalJSON() ([]byte, error) {
	if !c.HasData {
		return json.Marshal(periodCellJSON{Percent: noDataJSON, Cash: noDataJSON, CapitalInOut: noDataJSON})
	}
	out := periodCellJSON{
		Percent:      json.RawMessage("null"),
		Cash:         fixedJSON(c.Cash),
		CapitalInOut: fixedJSON(c.CapitalInOut),
	}
	if c.Percent != nil {
		out.Percent = fixedJSON(*c.Percent)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reverses MarshalJSON; a NoData cash field marks the cell empty.
func (c *PeriodCell) UnmarshalJSON(data []byte) error {
	var raw periodCellJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	cash, ok, err := decodeFixed(raw.Cash)
	if err != nil {
		return fmt.Errorf("invalid cash: %w", err)
	}
	if !ok {
		*c = PeriodCell{}
		return nil
	}
	capital, _, err := decodeFixed(raw.CapitalInOut)
	if err != nil {
		return fmt.Errorf("invalid capitalInOut: %w", err)
	}
	cell := PeriodCell{HasData: true, Cash: cash, CapitalInOut: capital}
	if len(raw.Percent) > 0 {
		pct, ok, err := decodeFixed(raw.Percent)
		if err != nil {
			return fmt.Errorf("invalid percent: %w", err)
		}
		if ok {
			cell.Percent = &pct
		}
	}
	*c = cell
	return nil
}

func mustQuote(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

// PeriodRow maps a bucket key (month, quarter or TotalKey) to its cell.
type PeriodRow map[string]PeriodCell

// PeriodTable maps a calendar year to its row.
type PeriodTable map[int]PeriodRow

// PortfolioAnalytics is the full derived bundle for one scheme or view.
type PortfolioAnalytics struct {
	AmountDeposited Money           `json:"amountDeposited"`
	CurrentExposure Money           `json:"currentExposure"`
	TotalProfit     Money           `json:"totalProfit"`
	Return          *Percent        `json:"return"`
	Drawdown        Percent         `json:"drawdown"`
	EquityCurve     []EquityPoint   `json:"equityCurve"`
	DrawdownCurve   []DrawdownPoint `json:"drawdownCurve"`
	TrailingReturns TrailingReturns `json:"trailingReturns"`
	MonthlyPnL      PeriodTable     `json:"monthlyPnl"`
	QuarterlyPnL    PeriodTable     `json:"quarterlyPnl"`
	CashFlows       []CashFlow      `json:"cashFlows"`
}

// FiltersApplied reports the cutoff used to build a live view.
type FiltersApplied struct {
	StartDate string `json:"startDate,omitempty"`
}

// Metadata describes where a scheme's analytics came from.
type Metadata struct {
	SchemeID       string         `json:"schemeId"`
	AccountCount   int            `json:"accountCount"`
	InceptionDate  string         `json:"inceptionDate"`
	DataAsOfDate   string         `json:"dataAsOfDate"`
	LastUpdated    string         `json:"lastUpdated"`
	IsActive       bool           `json:"isActive"`
	FiltersApplied FiltersApplied `json:"filtersApplied"`
}

// SchemeResult is one entry of the aggregation response.
// Data is nil and Error set when that scheme alone failed.
type SchemeResult struct {
	Data     *PortfolioAnalytics `json:"data"`
	Metadata Metadata            `json:"metadata"`
	Error    string              `json:"error,omitempty"`
}

// FrozenBundle is the archived analytics of a closed scheme.
type FrozenBundle struct {
	Name     string             `json:"name"`
	Data     PortfolioAnalytics `json:"data"`
	Metadata Metadata           `json:"metadata"`
}

// SchemeResults is the aggregation response: a JSON object keyed by scheme
// display name whose keys appear in display order.
type SchemeResults struct {
	Order   []string
	Entries map[string]SchemeResult
}

// NewSchemeResults returns an empty result set.
func NewSchemeResults() *SchemeResults {
	return &SchemeResults{Entries: make(map[string]SchemeResult)}
}

// Add appends an entry, keeping the first position of a repeated name.
func (r *SchemeResults) Add(name string, result SchemeResult) {
	if _, seen := r.Entries[name]; !seen {
		r.Order = append(r.Order, name)
	}
	r.Entries[name] = result
}

// Get returns the entry for name.
func (r *SchemeResults) Get(name string) (SchemeResult, bool) {
	res, ok := r.Entries[name]
	return res, ok
}

// MarshalJSON writes the entries as one object in display order.
func (r SchemeResults) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.Order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Entries[name])
		if err != nil {
			return nil, fmt.Errorf("scheme '%s': %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
