package allocation

import (
	"maps"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
)

// Report is everything the dashboard displays for one snapshot.
type Report struct {
	AsOf time.Time `json:"asOf"`
	// Rate is the number of TWD for one USD.
	Rate decimal.Decimal `json:"rate"`
	// RateFallback is true when Rate is DefaultRate because no quote was
	// available.
	RateFallback bool                       `json:"rateFallback,omitempty"`
	Total        Money                      `json:"total"`
	TotalTWD     Money                      `json:"totalTWD"`
	Valuations   []Valuation                `json:"valuations"`
	Drifts       []Drift                    `json:"drifts"`
	Unassigned   []string                   `json:"unassigned,omitempty"`
	TargetsSum   Percent                    `json:"targetsSum"`
	Prices       map[string]decimal.Decimal `json:"prices,omitempty"`
	// DriftDistance is the euclidean distance between the current and the
	// target fractions of all buckets.
	DriftDistance float64 `json:"driftDistance"`
	// Policy is the policy the report was evaluated with.
	Policy Policy `json:"-"`
}

// Evaluate values a snapshot using the default policy.
func Evaluate(hs Holdings, prices PriceTable, targets TargetAllocation) *Report {
	return DefaultPolicy().Evaluate(hs, prices, targets)
}

// Evaluate values every holding, aggregates them and compares the result to
// targets. It reads hs and prices without modifying them, and is
// deterministic.
func (p Policy) Evaluate(hs Holdings, prices PriceTable, targets TargetAllocation) *Report {
	rate, fallback := prices.Rate()
	snapshot := hs.Clone()

	valuations := make([]Valuation, len(snapshot))
	values := make([]Money, len(snapshot))
	for i, h := range snapshot {
		valuations[i] = p.ValueHolding(h, prices, rate)
		values[i] = valuations[i].Value
	}
	total, fractions := Aggregate(values)
	for i := range valuations {
		valuations[i].Fraction = fractions[i]
	}
	drifts := p.CompareToTarget(total, valuations, targets)

	return &Report{
		AsOf:          prices.FetchedAt,
		Rate:          rate,
		RateFallback:  fallback,
		Total:         total,
		TotalTWD:      total.ToTWD(rate),
		Valuations:    valuations,
		Drifts:        drifts,
		Unassigned:    unassigned(valuations, drifts),
		TargetsSum:    targets.Sum(),
		Prices:        maps.Clone(prices.Prices),
		DriftDistance: driftDistance(drifts),
		Policy:        p,
	}
}

// unassigned lists holdings that belong to no bucket.
func unassigned(valuations []Valuation, drifts []Drift) []string {
	assigned := lo.FlatMap(drifts, func(d Drift, _ int) []string { return d.Members })
	names := lo.Map(valuations, func(v Valuation, _ int) string { return v.Holding.Name })
	return lo.Without(names, assigned...)
}

func driftDistance(drifts []Drift) float64 {
	current := lo.Map(drifts, func(d Drift, _ int) float64 { return d.CurrentFraction.Float64() })
	target := lo.Map(drifts, func(d Drift, _ int) float64 { return d.Target.Float64() })
	return floats.Distance(current, target, 2)
}

// Quote returns the last price of a displayed symbol, like BTC-USD.
func (r *Report) Quote(symbol string) (decimal.Decimal, bool) {
	v, ok := r.Prices[symbol]
	return v, ok
}

// TWDCash returns the valuation of the TWD cash holdings summed together,
// TWD cash as decided by the report's policy.
func (r *Report) TWDCash() (twd, usd Money, ok bool) {
	p := r.Policy
	twd, usd = M(0, TWD), M(0, USD)
	for _, v := range r.Valuations {
		if v.Degraded == NotDegraded && p.isTWDCash(v.Holding) {
			twd, usd, ok = twd.Add(v.ValueTWD), usd.Add(v.Value), true
		}
	}
	return twd, usd, ok
}
