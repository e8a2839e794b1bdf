package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/allocation"
	"github.com/samber/lo"
)

// BTCSymbol is the quote displayed next to the totals.
const BTCSymbol = "BTC-USD"

// PieWidth is the length of the longest possible bar of the dashboard chart.
const PieWidth = 40

// Dashboard is a Report with every value formatted for display.
type Dashboard struct {
	AsOf         string   `json:"asOf"`
	Total        string   `json:"total"`
	TotalTWD     string   `json:"totalTWD"`
	Rate         string   `json:"rate"`
	RateFallback bool     `json:"rateFallback"`
	BTC          string   `json:"btc"`
	Buckets      []Bucket `json:"buckets"`
	Holdings     []Row    `json:"holdings"`
	Pie          string   `json:"pie"`
	Warnings     []string `json:"warnings"`
	TargetsOff   bool     `json:"targetsOff"`
	TargetsSum   string   `json:"targetsSum"`
	// TWDCash and TWDCashUSD are empty when no TWD cash is held.
	TWDCash    string `json:"twdCash"`
	TWDCashUSD string `json:"twdCashUSD"`
	// Buy and Sell list the buckets out of the tolerance band.
	Buy  string `json:"buy"`
	Sell string `json:"sell"`
}

// Bucket is a line of the allocation table.
type Bucket struct {
	Bucket     string `json:"bucket"`
	Current    string `json:"current"`
	CurrentPct string `json:"currentPct"`
	TargetPct  string `json:"targetPct"`
	Delta      string `json:"delta"`
	Status     string `json:"status"`
}

// Row is a line of the holdings table.
type Row struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
	Price    string `json:"price"`
	Value    string `json:"value"`
	Fraction string `json:"fraction"`
	Note     string `json:"note"`
}

func statusLabel(s allocation.Status) string {
	switch s {
	case allocation.NeedsBuy:
		return "🔼 buy"
	case allocation.NeedsSell:
		return "🔽 sell"
	}
	return "✅ on target"
}

// NewDashboard formats r.
func NewDashboard(r *allocation.Report) *Dashboard {
	d := &Dashboard{
		Total:        r.Total.String(),
		TotalTWD:     r.TotalTWD.String(),
		Rate:         r.Rate.StringFixed(2),
		RateFallback: r.RateFallback,
		TargetsSum:   r.TargetsSum.String(),
		TargetsOff:   len(r.Drifts) > 0 && !r.TargetsSum.Equal(allocation.P(1)),
	}
	if !r.AsOf.IsZero() {
		d.AsOf = r.AsOf.Format("2006-01-02 15:04")
	}
	if btc, ok := r.Quote(BTCSymbol); ok {
		d.BTC = allocation.M(btc, allocation.USD).String()
	}

	for _, v := range r.Valuations {
		row := Row{
			Name:     v.Holding.Name,
			Category: v.Holding.Category,
			Quantity: v.Holding.Quantity.String(),
			Unit:     v.Holding.UnitText(),
			Price:    "-",
			Value:    v.Value.String(),
			Fraction: v.Fraction.String(),
			Note:     v.Degraded.String(),
		}
		if !v.Price.IsZero() {
			row.Price = v.Price.StringFixed(2)
		}
		d.Holdings = append(d.Holdings, row)
		if v.Degraded != allocation.NotDegraded {
			d.Warnings = append(d.Warnings, fmt.Sprintf("%s: %s", v.Holding.Name, v.Degraded))
		}
	}
	if r.RateFallback {
		d.Warnings = append(d.Warnings, fmt.Sprintf("No TWD quote, using the default rate of %s.", d.Rate))
	}
	for _, name := range r.Unassigned {
		d.Warnings = append(d.Warnings, fmt.Sprintf("%s is in no bucket.", name))
	}

	slices := make([]Slice, 0, len(r.Drifts))
	for _, drift := range r.Drifts {
		d.Buckets = append(d.Buckets, Bucket{
			Bucket:     drift.Bucket,
			Current:    drift.Current.String(),
			CurrentPct: drift.CurrentFraction.String(),
			TargetPct:  drift.Target.String(),
			Delta:      drift.Delta.SignedString(),
			Status:     statusLabel(drift.Status),
		})
		slices = append(slices, Slice{Label: drift.Bucket, Value: drift.Current})
	}
	d.Pie = Pie(slices, PieWidth)

	bucketsWith := func(s allocation.Status) string {
		names := lo.FilterMap(r.Drifts, func(d allocation.Drift, _ int) (string, bool) { return d.Bucket, d.Status == s })
		return strings.Join(names, ", ")
	}
	d.Buy, d.Sell = bucketsWith(allocation.NeedsBuy), bucketsWith(allocation.NeedsSell)

	if twd, usd, ok := r.TWDCash(); ok {
		d.TWDCash, d.TWDCashUSD = twd.String(), usd.String()
	}
	return d
}
