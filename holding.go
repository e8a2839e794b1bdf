package allocation

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrDuplicateHolding = errors.New("duplicate holding")
	ErrNoSuchHolding    = errors.New("no such holding")
)

// Holding is a single line of the holdings table.
type Holding struct {
	// Name is a ticker symbol, or a synthetic marker like CASH_TWD or OPTIONS.
	Name string `json:"name"`
	// Category is for display only.
	Category string   `json:"category,omitempty"`
	Quantity Quantity `json:"quantity"`
	Unit     UnitKind `json:"unit"`
	// ManualPrice overrides the market price when valid and positive. It is
	// expressed in the instrument's quote currency.
	ManualPrice decimal.NullDecimal `json:"manualPrice,omitzero"`
	// RawUnit is the unit text read from a file when it is not a known unit.
	// It is written back as is.
	RawUnit string `json:"-"`
}

// UnmarshalJSON reads a holding, keeping a row with a blank or unknown unit
// as InvalidUnit so that it can be reported instead of failing the table.
func (h *Holding) UnmarshalJSON(data []byte) error {
	type plain Holding
	aux := struct {
		*plain
		Unit string `json:"unit"`
	}{plain: (*plain)(h)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	u, err := ParseUnit(aux.Unit)
	h.Unit, h.RawUnit = u, ""
	if err != nil {
		h.RawUnit = aux.Unit
	}
	return nil
}

func (h Holding) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("name", h.Name)
	w.Optional("category", h.Category)
	w.Append("quantity", h.Quantity)
	w.Append("unit", h.UnitText())
	if h.ManualPrice.Valid {
		w.Append("manualPrice", h.ManualPrice.Decimal)
	}
	return w.MarshalJSON()
}

// NewHolding creates a holding, parsing the unit text once.
func NewHolding(name, category string, quantity float64, unit string) (Holding, error) {
	u, err := ParseUnit(unit)
	if err != nil {
		return Holding{}, err
	}
	return Holding{Name: strings.TrimSpace(name), Category: category, Quantity: Q(quantity), Unit: u}, nil
}

// WithManualPrice returns a copy of h with a manual price override.
func (h Holding) WithManualPrice(price float64) Holding {
	h.ManualPrice = decimal.NewNullDecimal(decimal.NewFromFloat(price))
	return h
}

// manualPrice returns the override if it applies.
func (h Holding) manualPrice() (decimal.Decimal, bool) {
	if h.ManualPrice.Valid && h.ManualPrice.Decimal.IsPositive() {
		return h.ManualPrice.Decimal, true
	}
	return decimal.Zero, false
}

// UnitText is the unit as the user wrote it when it is not a known unit.
func (h Holding) UnitText() string {
	if h.Unit.IsValid() {
		return h.Unit.String()
	}
	return h.RawUnit
}

// Validate reports why a row cannot be valued.
func (h Holding) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return errors.New("holding has no name")
	}
	if !h.Unit.IsValid() {
		return fmt.Errorf("holding %s: %w: %q", h.Name, ErrUnknownUnit, h.RawUnit)
	}
	return nil
}

// Holdings is the ordered, user editable holdings table.
type Holdings []Holding

// Get returns the holding named name.
func (hs Holdings) Get(name string) (Holding, bool) {
	i := hs.index(name)
	if i < 0 {
		return Holding{}, false
	}
	return hs[i], true
}

func (hs Holdings) index(name string) int {
	return slices.IndexFunc(hs, func(h Holding) bool { return h.Name == name })
}

// Add appends h, names must be unique.
func (hs *Holdings) Add(h Holding) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if hs.index(h.Name) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateHolding, h.Name)
	}
	*hs = append(*hs, h)
	return nil
}

// Set replaces the holding with the same name in place, or appends it.
func (hs *Holdings) Set(h Holding) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if i := hs.index(h.Name); i >= 0 {
		(*hs)[i] = h
		return nil
	}
	*hs = append(*hs, h)
	return nil
}

// Remove deletes the holding named name, keeping the order of the others.
func (hs *Holdings) Remove(name string) error {
	i := hs.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNoSuchHolding, name)
	}
	*hs = slices.Delete(*hs, i, i+1)
	return nil
}

// Names lists holding names in table order.
func (hs Holdings) Names() []string {
	names := make([]string, len(hs))
	for i, h := range hs {
		names[i] = h.Name
	}
	return names
}

// Clone returns a snapshot that can be valued while the table is edited.
func (hs Holdings) Clone() Holdings { return slices.Clone(hs) }
