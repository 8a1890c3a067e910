// Package pricing turns a resolved quantity into a yen subtotal and decides
// whether that subtotal is final or has to wait for in-store weighing.
//
// IsUndetermined is the only place the undetermined rule lives. Cart,
// checkout, confirmation, admin detail and the printed order sheet all call
// it on the stored values rather than persisting the flag.
package pricing

import (
	"errors"
	"fmt"

	"github.com/maruko-pickup/api/internal/quantity"
	"github.com/shopspring/decimal"
)

// Basis is how a product's base price applies to the canonical quantity.
type Basis string

const (
	// PerWeightUnit prices are per WeightUnit grams.
	PerWeightUnit Basis = "PER_WEIGHT_UNIT"
	// FlatPerUnit prices are per counted unit.
	FlatPerUnit Basis = "FLAT_PER_UNIT"
)

// WeightUnit is the number of grams a PerWeightUnit base price covers.
const WeightUnit = 100

// PieceUnit is the display unit that marks a product as genuinely billed by
// count. PieceCount lines for products with any other unit are billed by
// weight and stay undetermined.
const PieceUnit = "本"

// MaxAmount is the largest subtotal or total accepted, the largest integer a
// JSON number carries exactly.
const MaxAmount int64 = 1<<53 - 1

var (
	// ErrInvalidProduct is returned when a product cannot be priced.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrAmountTooLarge is returned when a line or order amount exceeds
	// MaxAmount. It is a quantity error: only the amount ordered can push a
	// line past the bound.
	ErrAmountTooLarge = fmt.Errorf("%w: amount exceeds %d yen", quantity.ErrInvalidQuantity, MaxAmount)
)

// Valid reports whether b is a known basis.
func (b Basis) Valid() bool {
	return b == PerWeightUnit || b == FlatPerUnit
}

// Product is the pricing view of a catalogue product.
type Product struct {
	Basis     Basis
	BasePrice int64
	Unit      string
}

// Quote is the priced result for a single line.
type Quote struct {
	Subtotal     int64 `json:"subtotal"`
	Undetermined bool  `json:"is_price_undetermined"`
}

// Price computes the subtotal for r under p's price basis.
func Price(p Product, r quantity.Result) (Quote, error) {
	subtotal, err := Subtotal(p, r.Canonical)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Subtotal:     subtotal,
		Undetermined: IsUndetermined(r.Breakdown.Method, p.Unit, subtotal),
	}, nil
}

// Subtotal applies the price basis to a canonical quantity. PerWeightUnit
// results are rounded half-up to the nearest yen.
func Subtotal(p Product, canonical int64) (int64, error) {
	if p.BasePrice < 0 {
		return 0, fmt.Errorf("%w: negative base price", ErrInvalidProduct)
	}
	if canonical <= 0 {
		return 0, fmt.Errorf("%w: canonical quantity must be > 0", quantity.ErrInvalidQuantity)
	}

	var v decimal.Decimal
	switch p.Basis {
	case PerWeightUnit:
		v = decimal.NewFromInt(p.BasePrice).
			Mul(decimal.NewFromInt(canonical)).
			Div(decimal.NewFromInt(WeightUnit)).
			Round(0)
	case FlatPerUnit:
		v = decimal.NewFromInt(p.BasePrice).Mul(decimal.NewFromInt(canonical))
	default:
		return 0, fmt.Errorf("%w: unknown price basis %q", ErrInvalidProduct, p.Basis)
	}
	if v.GreaterThan(decimal.NewFromInt(MaxAmount)) {
		return 0, ErrAmountTooLarge
	}
	return v.IntPart(), nil
}

// IsUndetermined reports whether a line's price can only be fixed in store.
func IsUndetermined(m quantity.Method, unit string, subtotal int64) bool {
	if subtotal == 0 {
		return true
	}
	if m == quantity.PieceBreakdown {
		return true
	}
	return m == quantity.PieceCount && unit != PieceUnit
}

// Line is the minimum a caller needs to summarize an order.
type Line struct {
	Method   quantity.Method
	Unit     string
	Subtotal int64
}

// Undetermined applies IsUndetermined to l.
func (l Line) Undetermined() bool {
	return IsUndetermined(l.Method, l.Unit, l.Subtotal)
}

// Summary is the order-level view of a set of lines.
type Summary struct {
	Total        int64 `json:"total_amount"`
	Undetermined bool  `json:"is_price_undetermined"`
}

// Summarize sums the subtotals exactly and marks the order undetermined when
// the total is zero or any line is undetermined. The flag never changes the
// total.
func Summarize(lines []Line) Summary {
	var s Summary
	for _, l := range lines {
		s.Total += l.Subtotal
		if l.Undetermined() {
			s.Undetermined = true
		}
	}
	if s.Total == 0 {
		s.Undetermined = true
	}
	return s
}

// Total is Summarize for lines being priced now. It fails with
// ErrAmountTooLarge when the sum exceeds MaxAmount.
func Total(lines []Line) (Summary, error) {
	var sum int64
	for _, l := range lines {
		if l.Subtotal > MaxAmount-sum {
			return Summary{}, ErrAmountTooLarge
		}
		sum += l.Subtotal
	}
	return Summarize(lines), nil
}
