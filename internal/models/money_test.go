package models

import (
	"encoding/json"
	"math"
	"testing"
)

func TestMoney_MarshalJSON(t *testing.T) {
	tests := []struct {
		in   Money
		want string
	}{
		{0, `"0.00"`},
		{5000000, `"5000000.00"`},
		{678500, `"678500.00"`},
		{-5678500, `"-5678500.00"`},
		{12.345, `"12.35"`},
		{0.1 + 0.2, `"0.30"`},
	}
	for _, tt := range tests {
		got, err := json.Marshal(tt.in)
		if err != nil {
			t.Fatalf("Marshal(%v): %v", float64(tt.in), err)
		}
		if string(got) != tt.want {
			t.Errorf("Marshal(%v) = %s, want %s", float64(tt.in), got, tt.want)
		}
	}
}

func TestPercent_NilEncodesNull(t *testing.T) {
	type wrapper struct {
		P *Percent `json:"p"`
	}
	got, err := json.Marshal(wrapper{})
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"p":null}` {
		t.Errorf("got %s, want {\"p\":null}", got)
	}

	got, err = json.Marshal(wrapper{P: PercentPtr(13.57)})
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"p":"13.57"}` {
		t.Errorf("got %s, want {\"p\":\"13.57\"}", got)
	}
}

func TestMoney_UnmarshalAcceptsStringAndNumber(t *testing.T) {
	var m Money
	if err := json.Unmarshal([]byte(`"105000.00"`), &m); err != nil {
		t.Fatal(err)
	}
	if m != 105000 {
		t.Errorf("string form = %v, want 105000", float64(m))
	}
	if err := json.Unmarshal([]byte(`-120000.5`), &m); err != nil {
		t.Fatal(err)
	}
	if m != -120000.5 {
		t.Errorf("number form = %v, want -120000.5", float64(m))
	}
	if err := json.Unmarshal([]byte(`"abc"`), &m); err == nil {
		t.Error("expected error for non-numeric string")
	}
}

func TestPercent_UnmarshalSentinel(t *testing.T) {
	p := Percent(7)
	if err := json.Unmarshal([]byte(`"-"`), &p); err != nil {
		t.Fatal(err)
	}
	if p != 0 {
		t.Errorf("sentinel decoded to %v, want 0", float64(p))
	}
}

func TestMoneyAndPercent_NonFiniteEncodeNull(t *testing.T) {
	type wrapper struct {
		M Money    `json:"m"`
		P Percent  `json:"p"`
		Q *Percent `json:"q"`
	}
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		got, err := json.Marshal(wrapper{M: Money(v), P: Percent(v), Q: PercentPtr(v)})
		if err != nil {
			t.Fatalf("Marshal(%v): %v", v, err)
		}
		if string(got) != `{"m":null,"p":null,"q":null}` {
			t.Errorf("Marshal(%v) = %s", v, got)
		}
	}
}

func TestMoney_StringNonFinite(t *testing.T) {
	if got := Money(math.NaN()).String(); got != "NaN" {
		t.Errorf("String(NaN) = %q, want NaN", got)
	}
	if got := Percent(math.Inf(1)).String(); got != "+Inf" {
		t.Errorf("String(+Inf) = %q, want +Inf", got)
	}
}

func TestPeriodCell_NonFiniteEncodesNull(t *testing.T) {
	pct := math.NaN()
	cell := PeriodCell{HasData: true, Percent: &pct, Cash: math.Inf(1), CapitalInOut: 250}
	got, err := json.Marshal(cell)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"percent":null,"cash":null,"capitalInOut":"250.00"}`
	if string(got) != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}
}
