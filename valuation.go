package allocation

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Degradation tells why a holding was valued at zero.
type Degradation int

const (
	NotDegraded Degradation = iota
	// PriceUnavailable is a share with no market price.
	PriceUnavailable
	// RateUnavailable is a TWD amount while the rate is zero.
	RateUnavailable
	// MalformedRow is a holding without a name or a unit.
	MalformedRow
)

func (d Degradation) String() string {
	switch d {
	case NotDegraded:
		return ""
	case PriceUnavailable:
		return "price unavailable"
	case RateUnavailable:
		return "rate unavailable"
	case MalformedRow:
		return "malformed row"
	}
	return fmt.Sprintf("Degradation(%d)", int(d))
}

func (d Degradation) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Valuation is the value of one holding.
type Valuation struct {
	Holding Holding `json:"holding"`
	// Price is the effective unit price, in the instrument's quote currency.
	Price    decimal.Decimal `json:"price"`
	Value    Money           `json:"value"`
	ValueTWD Money           `json:"valueTWD"`
	Fraction Percent         `json:"fraction"`
	Degraded Degradation     `json:"degraded,omitempty"`
}

var one = decimal.NewFromInt(1)

// ValueHolding values h using the default policy.
func ValueHolding(h Holding, prices PriceTable, rate decimal.Decimal) Valuation {
	return DefaultPolicy().ValueHolding(h, prices, rate)
}

// ValueHolding values h in USD, rate being the number of TWD for one USD.
//
// Rules apply in order:
//  1. TWD cash is quantity/rate, its unit price is one TWD.
//  2. A manual price replaces the market price.
//  3. USD amounts and synthetic totals are worth their quantity.
//  4. Shares are worth quantity*price, divided by rate when quoted in TWD.
//
// It never fails: a holding that cannot be valued is worth zero and Degraded
// tells why.
func (p Policy) ValueHolding(h Holding, prices PriceTable, rate decimal.Decimal) Valuation {
	v := Valuation{Holding: h, Value: M(0, USD), ValueTWD: M(0, TWD)}
	if err := h.Validate(); err != nil {
		v.Degraded = MalformedRow
		return v
	}
	qty := h.Quantity.Decimal()

	price, manual := h.manualPrice()
	switch {
	case p.isTWDCash(h):
		v.Price = one
		if !rate.IsPositive() {
			v.Degraded = RateUnavailable
			return v
		}
		v.ValueTWD = M(qty, TWD)
		v.Value = v.ValueTWD.ToUSD(rate)
		return v
	case manual:
	case h.Unit == AmountUSD, h.Unit == SyntheticTotalUSD:
		price = one
	default:
		var ok bool
		if price, ok = prices.Price(h.Name); !ok {
			v.Degraded = PriceUnavailable
		}
	}
	v.Price = price
	amount := qty.Mul(price)

	if h.Unit == Shares && p.isForeign(h) {
		if !rate.IsPositive() {
			v.Degraded = RateUnavailable
			return v
		}
		v.ValueTWD = M(amount, TWD)
		v.Value = v.ValueTWD.ToUSD(rate)
		return v
	}
	v.Value = M(amount, USD)
	if rate.IsPositive() {
		v.ValueTWD = v.Value.ToTWD(rate)
	}
	return v
}

// Aggregate sums values and returns each value's share of the total. All
// fractions are zero when the total is zero.
func Aggregate(values []Money) (total Money, fractions []Percent) {
	total = M(0, USD)
	for _, v := range values {
		total = total.Add(v)
	}
	fractions = make([]Percent, len(values))
	for i, v := range values {
		fractions[i] = v.Ratio(total)
	}
	return total, fractions
}

// Status is the rebalancing advice for a bucket.
type Status int

const (
	OnTarget Status = iota
	NeedsBuy
	NeedsSell
)

func (s Status) String() string {
	switch s {
	case OnTarget:
		return "on target"
	case NeedsBuy:
		return "buy"
	case NeedsSell:
		return "sell"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Drift compares a bucket's current value with its target.
type Drift struct {
	Bucket string `json:"bucket"`
	// Members are the holdings valued in the bucket.
	Members         []string `json:"members"`
	Current         Money    `json:"current"`
	CurrentFraction Percent  `json:"currentFraction"`
	Target          Percent  `json:"target"`
	TargetValue     Money    `json:"targetValue"`
	// Delta is the amount to buy, or to sell when negative.
	Delta  Money  `json:"delta"`
	Status Status `json:"status"`
}

// CompareToTarget compares valuations to targets using the default policy.
func CompareToTarget(total Money, valuations []Valuation, targets TargetAllocation) []Drift {
	return DefaultPolicy().CompareToTarget(total, valuations, targets)
}

// CompareToTarget returns one Drift per target, in target order.
//
// A bucket is worth the holding with exactly its name, or else the sum of all
// the holdings that Target.Matches.
func (p Policy) CompareToTarget(total Money, valuations []Valuation, targets TargetAllocation) []Drift {
	drifts := make([]Drift, 0, len(targets))
	for _, t := range targets {
		members := bucketMembers(t, valuations)
		current := lo.Reduce(members, func(acc Money, v Valuation, _ int) Money { return acc.Add(v.Value) }, M(0, USD))

		d := Drift{
			Bucket:          t.Bucket,
			Members:         lo.Map(members, func(v Valuation, _ int) string { return v.Holding.Name }),
			Current:         current,
			CurrentFraction: current.Ratio(total),
			Target:          t.Fraction,
			TargetValue:     t.Fraction.Of(total),
		}
		d.Delta = d.TargetValue.Sub(current)
		d.Status = p.status(d.CurrentFraction, d.Target, d.Delta)
		drifts = append(drifts, d)
	}
	return drifts
}

func bucketMembers(t Target, valuations []Valuation) []Valuation {
	if len(t.Members) == 0 {
		exact := lo.Filter(valuations, func(v Valuation, _ int) bool { return v.Holding.Name == t.Bucket })
		if len(exact) == 1 {
			return exact
		}
	}
	return lo.Filter(valuations, func(v Valuation, _ int) bool { return t.Matches(v.Holding) })
}

func (p Policy) status(current, target Percent, delta Money) Status {
	if current.Sub(target).Abs().LessThan(p.Tolerance) {
		return OnTarget
	}
	if delta.IsPositive() {
		return NeedsBuy
	}
	return NeedsSell
}
