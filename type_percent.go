package allocation

import (
	"github.com/shopspring/decimal"
)

// Percent is a fraction of the portfolio: 0.13 is displayed as "13.0%".
type Percent struct {
	value decimal.Decimal
}

func P[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](fraction T) Percent {
	return Percent{value: newDecimal(fraction)}
}

func (p Percent) Decimal() decimal.Decimal     { return p.value }
func (p Percent) Float64() float64             { return p.value.InexactFloat64() }
func (p Percent) Add(q Percent) Percent        { return Percent{value: p.value.Add(q.value)} }
func (p Percent) Sub(q Percent) Percent        { return Percent{value: p.value.Sub(q.value)} }
func (p Percent) Abs() Percent                 { return Percent{value: p.value.Abs()} }
func (p Percent) LessThan(q Percent) bool      { return p.value.LessThan(q.value) }
func (p Percent) IsZero() bool                 { return p.value.IsZero() }
func (p Percent) Of(total Money) Money         { return Money{value: total.value.Mul(p.value), cur: total.cur} }
func (p Percent) Equal(q Percent) bool         { return p.value.Equal(q.value) }
func (p Percent) MarshalJSON() ([]byte, error) { return []byte(p.value.String()), nil }

func (p *Percent) UnmarshalJSON(data []byte) error {
	return p.value.UnmarshalJSON(data)
}

func (p Percent) String() string {
	return p.value.Shift(2).StringFixed(1) + "%"
}

func (p Percent) SignedString() string {
	s := p.value.Shift(2).StringFixed(1)
	if s == "0.0" || s == "-0.0" {
		return "-"
	}
	if p.value.IsPositive() {
		return "+" + s + "%"
	}
	return s + "%"
}
