package allocation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Policy holds the rules the engine applies. The zero value is not useful,
// start from DefaultPolicy.
type Policy struct {
	// Tolerance is the band around a target fraction considered on target.
	// The bound is exclusive.
	Tolerance Percent
	// TWDCash is the name of the holding always valued as TWD cash.
	TWDCash string
	// ForeignSuffixes mark share names quoted in TWD, like "2330.TW".
	ForeignSuffixes []string
}

// DefaultPolicy returns a 2% tolerance, CASH_TWD as TWD cash and the Taiwan
// exchange suffixes.
func DefaultPolicy() Policy {
	return Policy{
		Tolerance:       Percent{value: decimal.RequireFromString("0.02")},
		TWDCash:         "CASH_TWD",
		ForeignSuffixes: []string{".TW", ".TWO"},
	}
}

// isTWDCash reports whether h is valued as TWD cash.
func (p Policy) isTWDCash(h Holding) bool {
	return h.Unit == AmountTWD || (p.TWDCash != "" && h.Name == p.TWDCash)
}

// isForeign reports whether the share h is quoted in TWD.
func (p Policy) isForeign(h Holding) bool {
	name := strings.ToUpper(h.Name)
	for _, s := range p.ForeignSuffixes {
		if strings.HasSuffix(name, strings.ToUpper(s)) {
			return true
		}
	}
	return false
}
