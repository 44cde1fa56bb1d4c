// Package models defines the data types shared across navdash.
package models

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// BaselineNAV is the index value every scheme starts from.
const BaselineNAV = 100.0

// DailyRecord is one day of a scheme's time series as held by the record store.
type DailyRecord struct {
	SystemTag      string    `json:"system_tag"`
	Date           time.Time `json:"date"`
	NAV            float64   `json:"nav"`
	PortfolioValue float64   `json:"portfolio_value"`
	CapitalInOut   float64   `json:"capital_in_out"`
	PnL            float64   `json:"pnl"`
	Drawdown       float64   `json:"drawdown"`
	Dividend       float64   `json:"dividend"`

	// Baseline marks the synthetic day-zero record prepended by the series builder.
	Baseline bool `json:"-"`
}

// Series is an ascending run of daily records for one scheme or view.
type Series []DailyRecord

// First returns the first record and false when the series is empty.
func (s Series) First() (DailyRecord, bool) {
	if len(s) == 0 {
		return DailyRecord{}, false
	}
	return s[0], true
}

// Last returns the last record and false when the series is empty.
func (s Series) Last() (DailyRecord, bool) {
	if len(s) == 0 {
		return DailyRecord{}, false
	}
	return s[len(s)-1], true
}

// FirstReal returns the first record that is not a synthetic baseline.
func (s Series) FirstReal() (DailyRecord, bool) {
	for _, r := range s {
		if !r.Baseline {
			return r, true
		}
	}
	return DailyRecord{}, false
}

// Clone returns a copy that can be modified without touching s.
func (s Series) Clone() Series {
	if s == nil {
		return nil
	}
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// FormatDate renders a date in DateLayout, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ErrStoreUnavailable is matched by every error raised because the record
// store itself failed, as opposed to holding no data.
var ErrStoreUnavailable = errors.New("record store unavailable")

// StoreError wraps a record store failure for one system tag.
type StoreError struct {
	SystemTag string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("record store unavailable for '%s': %v", e.SystemTag, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports ErrStoreUnavailable as a match.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}
