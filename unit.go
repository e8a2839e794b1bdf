package allocation

import (
	"errors"
	"fmt"
	"strings"
)

// UnitKind tells how a holding's quantity maps to a value.
type UnitKind int

const (
	// InvalidUnit is the zero value, a row that never went through ParseUnit.
	InvalidUnit UnitKind = iota
	// Shares is a number of shares priced by the market.
	Shares
	// AmountUSD is an amount of US dollars.
	AmountUSD
	// AmountTWD is an amount of New Taiwan dollars.
	AmountTWD
	// SyntheticTotalUSD is an already totalled USD value, like an options
	// notional or a crypto basket entered as a single number.
	SyntheticTotalUSD
)

var ErrUnknownUnit = errors.New("unknown unit")

var unitNames = map[UnitKind]string{
	Shares:            "shares",
	AmountUSD:         "usd",
	AmountTWD:         "twd",
	SyntheticTotalUSD: "total_usd",
}

func (u UnitKind) String() string {
	if s, ok := unitNames[u]; ok {
		return s
	}
	return "invalid"
}

// IsValid reports whether u is one of the known units.
func (u UnitKind) IsValid() bool {
	_, ok := unitNames[u]
	return ok
}

// ParseUnit maps a free text unit, as typed by the user, to its UnitKind.
//
// It is the only place where unit strings are interpreted; holdings carry the
// resolved UnitKind afterwards.
func ParseUnit(raw string) (UnitKind, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "":
		return InvalidUnit, fmt.Errorf("%w: empty", ErrUnknownUnit)
	case strings.Contains(s, "twd"), strings.Contains(s, "ntd"), strings.Contains(s, "台幣"):
		return AmountTWD, nil
	case strings.Contains(s, "total"), strings.Contains(s, "synthetic"), strings.Contains(s, "notional"), strings.Contains(s, "總"):
		return SyntheticTotalUSD, nil
	case strings.Contains(s, "usd"), s == "$", strings.Contains(s, "美金"):
		return AmountUSD, nil
	case s == "shares", s == "share", s == "units", s == "股", s == "股數":
		return Shares, nil
	}
	return InvalidUnit, fmt.Errorf("%w: %q", ErrUnknownUnit, raw)
}

func (u UnitKind) MarshalText() ([]byte, error) {
	if !u.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownUnit, int(u))
	}
	return []byte(u.String()), nil
}

func (u *UnitKind) UnmarshalText(text []byte) error {
	v, err := ParseUnit(string(text))
	if err != nil {
		return err
	}
	*u = v
	return nil
}
