package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// NoData is the wire sentinel for a period bucket the scheme had no records for.
const NoData = "-"

// Money is a cash amount rendered on the wire as a fixed 2-decimal string.
type Money float64

// String renders the amount with exactly two decimals.
func (m Money) String() string {
	return fixed2(float64(m))
}

// MarshalJSON renders the amount as a quoted 2-decimal string, or null when
// it is not finite.
func (m Money) MarshalJSON() ([]byte, error) {
	return fixedJSON(float64(m)), nil
}

// UnmarshalJSON accepts a quoted decimal string or a bare number.
func (m *Money) UnmarshalJSON(data []byte) error {
	v, _, err := decodeFixed(data)
	if err != nil {
		return fmt.Errorf("invalid money value: %w", err)
	}
	*m = Money(v)
	return nil
}

// Percent is a percentage rendered on the wire as a fixed 2-decimal string.
// Nullable percentages are carried as *Percent, which encodes nil as null.
type Percent float64

// String renders the percentage with exactly two decimals.
func (p Percent) String() string {
	return fixed2(float64(p))
}

// MarshalJSON renders the percentage as a quoted 2-decimal string, or null
// when it is not finite.
func (p Percent) MarshalJSON() ([]byte, error) {
	return fixedJSON(float64(p)), nil
}

// UnmarshalJSON accepts a quoted decimal string or a bare number.
func (p *Percent) UnmarshalJSON(data []byte) error {
	v, _, err := decodeFixed(data)
	if err != nil {
		return fmt.Errorf("invalid percent value: %w", err)
	}
	*p = Percent(v)
	return nil
}

// PercentPtr returns a pointer to v as a Percent.
func PercentPtr(v float64) *Percent {
	p := Percent(v)
	return &p
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// fixed2 renders v with two decimals. decimal cannot hold NaN or Inf, so
// those fall back to strconv's spelling.
func fixed2(v float64) string {
	if !finite(v) {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// fixedJSON is the wire form of a 2-decimal value: a quoted string, or null
// when v is not finite.
func fixedJSON(v float64) json.RawMessage {
	if !finite(v) {
		return json.RawMessage("null")
	}
	return mustQuote(fixed2(v))
}

// decodeFixed parses a JSON string or number. The bool result is false when
// the value is the NoData sentinel or null.
func decodeFixed(data []byte) (float64, bool, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return 0, false, nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, false, err
		}
		if s == NoData || s == "" {
			return 0, false, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, false, err
		}
		return d.InexactFloat64(), true, nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return 0, false, err
	}
	return f, true, nil
}
