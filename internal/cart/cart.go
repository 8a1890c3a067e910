// Package cart keeps unsubmitted order lines in Redis. Only raw inputs and
// the unit-price snapshot are stored; quantities, subtotals and the
// price-undetermined flag are recomputed on every read.
package cart

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/maruko-pickup/api/internal/pricing"
	"github.com/maruko-pickup/api/internal/quantity"
)

var (
	ErrInvalidCartID     = errors.New("invalid cart id")
	ErrLineNotFound      = errors.New("cart line not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrProductNotFound   = errors.New("product not found")
	ErrRemarksNotAllowed = errors.New("remarks are not accepted for this product")
	ErrConflict          = errors.New("cart was modified concurrently")
)

// Line is a stored cart line.
type Line struct {
	ID          string          `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Unit        string          `json:"unit"`
	PriceBasis  pricing.Basis   `json:"price_basis"`
	UnitPrice   int64           `json:"unit_price"`
	Method      quantity.Method `json:"method"`
	Inputs      quantity.Inputs `json:"inputs"`
	Usage       string          `json:"selected_usage,omitempty"`
	Flavor      string          `json:"selected_flavor,omitempty"`
	Remarks     string          `json:"remarks,omitempty"`
	AddedAt     time.Time       `json:"added_at"`
}

func (l Line) resolve() (quantity.Result, error) {
	return quantity.Resolve([]quantity.Method{l.Method}, l.Method, l.Inputs)
}

// mergeKey identifies lines that differ only in pack count.
func mergeKey(l Line, b quantity.Breakdown) string {
	u := b.WithPacks(1)
	return fmt.Sprintf("%s|%s|%d|%d|%d|%d|%s|%s|%s",
		l.ProductID, u.Method, u.Grams, u.GramsPerPiece, u.PieceCount, u.PackCount,
		l.Usage, l.Flavor, l.Remarks)
}

// merge adds l to lines. A line with the same merge key absorbs l's packs
// instead of being duplicated.
func merge(lines []Line, l Line) ([]Line, error) {
	add, err := l.resolve()
	if err != nil {
		return nil, err
	}
	key := mergeKey(l, add.Breakdown)
	for i, existing := range lines {
		cur, err := existing.resolve()
		if err != nil {
			continue
		}
		if mergeKey(existing, cur.Breakdown) != key {
			continue
		}
		merged := cur.Breakdown.WithPacks(cur.Breakdown.Packs() + add.Breakdown.Packs())
		if _, err := quantity.Resolve([]quantity.Method{merged.Method}, merged.Method, merged.Inputs()); err != nil {
			return nil, err
		}
		out := slices.Clone(lines)
		out[i].Inputs = merged.Inputs()
		return out, nil
	}
	return append(slices.Clone(lines), l), nil
}

// LineView is a line with its derived values.
type LineView struct {
	Line
	CanonicalQuantity int64  `json:"canonical_quantity"`
	Quantity          string `json:"quantity"`
	Subtotal          int64  `json:"subtotal"`
	PriceUndetermined bool   `json:"is_price_undetermined"`
}

// Cart is the computed view of a cart.
type Cart struct {
	ID                string     `json:"id"`
	Lines             []LineView `json:"lines"`
	TotalAmount       int64      `json:"total_amount"`
	PriceUndetermined bool       `json:"is_price_undetermined"`
}

// Build recomputes every derived value of the cart from its stored lines.
func Build(id string, lines []Line) (Cart, error) {
	c := Cart{ID: id, Lines: make([]LineView, 0, len(lines))}
	priced := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		res, err := l.resolve()
		if err != nil {
			return Cart{}, fmt.Errorf("line %s: %w", l.ID, err)
		}
		quote, err := pricing.Price(pricing.Product{Basis: l.PriceBasis, BasePrice: l.UnitPrice, Unit: l.Unit}, res)
		if err != nil {
			return Cart{}, fmt.Errorf("line %s: %w", l.ID, err)
		}
		c.Lines = append(c.Lines, LineView{
			Line:              l,
			CanonicalQuantity: res.Canonical,
			Quantity:          quantity.Describe(res.Breakdown),
			Subtotal:          quote.Subtotal,
			PriceUndetermined: quote.Undetermined,
		})
		priced = append(priced, pricing.Line{Method: l.Method, Unit: l.Unit, Subtotal: quote.Subtotal})
	}
	if len(priced) > 0 {
		sum, err := pricing.Total(priced)
		if err != nil {
			return Cart{}, err
		}
		c.TotalAmount = sum.Total
		c.PriceUndetermined = sum.Undetermined
	}
	return c, nil
}

func sortLines(lines []Line) {
	slices.SortFunc(lines, func(a, b Line) int {
		if c := a.AddedAt.Compare(b.AddedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
}
