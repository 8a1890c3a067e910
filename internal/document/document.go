// Package document builds the printable view of an order. The same view
// backs the PDF order sheet, the admin detail response and the confirmation
// mail, so derived values such as quantity text and the price-undetermined
// flag are computed in one place from stored rows.
package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/maruko-pickup/api/internal/database"
	"github.com/maruko-pickup/api/internal/enum"
	"github.com/maruko-pickup/api/internal/jpfmt"
	"github.com/maruko-pickup/api/internal/pricing"
	"github.com/maruko-pickup/api/internal/quantity"
)

// Order is the display model of a persisted order.
type Order struct {
	ID                uuid.UUID `json:"id"`
	OrderNumber       string    `json:"order_number"`
	CustomerName      string    `json:"customer_name"`
	CustomerEmail     string    `json:"customer_email"`
	CustomerPhone     string    `json:"customer_phone"`
	PickupDate        string    `json:"pickup_date"`
	PickupDateLabel   string    `json:"pickup_date_label"`
	PickupTime        string    `json:"pickup_time"`
	Status            string    `json:"status"`
	StatusLabel       string    `json:"status_label"`
	TotalAmount       int64     `json:"total_amount"`
	PriceUndetermined bool      `json:"is_price_undetermined"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	Items             []Item    `json:"items"`
}

// Item is the display model of one order line.
type Item struct {
	ID                uuid.UUID          `json:"id"`
	ProductID         uuid.UUID          `json:"product_id"`
	ProductName       string             `json:"product_name"`
	Unit              string             `json:"unit"`
	Method            quantity.Method    `json:"method"`
	MethodLabel       string             `json:"method_label"`
	Breakdown         quantity.Breakdown `json:"breakdown"`
	CanonicalQuantity int64              `json:"canonical_quantity"`
	Quantity          string             `json:"quantity"`
	TotalQuantity     string             `json:"total_quantity"`
	UnitPrice         int64              `json:"unit_price"`
	Subtotal          int64              `json:"subtotal"`
	PriceUndetermined bool               `json:"is_price_undetermined"`
	Usage             string             `json:"selected_usage,omitempty"`
	Flavor            string             `json:"selected_flavor,omitempty"`
	Remarks           string             `json:"remarks,omitempty"`
}

// Options returns the non-empty usage and flavor of the line.
func (it Item) Options() []string {
	var out []string
	if it.Usage != "" {
		out = append(out, it.Usage)
	}
	if it.Flavor != "" {
		out = append(out, it.Flavor)
	}
	return out
}

// FromRows builds the view of o. items must belong to o, in position order.
func FromRows(o database.Order, items []database.OrderItem) Order {
	doc := Order{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		CustomerPhone: o.CustomerPhone,
		PickupTime:    o.PickupTime,
		Status:        string(o.Status),
		StatusLabel:   enum.OrderStatusLabel(string(o.Status)),
		TotalAmount:   o.TotalAmount,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		Items:         make([]Item, len(items)),
	}
	if o.PickupDate.Valid {
		d := o.PickupDate.Time
		doc.PickupDate = d.Format("2006-01-02")
		doc.PickupDateLabel = jpfmt.Date(d)
	}

	lines := make([]pricing.Line, len(items))
	for i, it := range items {
		doc.Items[i] = itemFromRow(it)
		lines[i] = pricing.Line{Method: quantity.Method(it.Method), Unit: it.ProductUnit, Subtotal: it.Subtotal}
	}

	// The stored total is authoritative; the flag is derived from the lines.
	sum := pricing.Summarize(lines)
	doc.PriceUndetermined = sum.Undetermined || o.TotalAmount == 0
	return doc
}

func itemFromRow(it database.OrderItem) Item {
	b := Breakdown(it)
	return Item{
		ID:                it.ID,
		ProductID:         it.ProductID,
		ProductName:       it.ProductName,
		Unit:              it.ProductUnit,
		Method:            b.Method,
		MethodLabel:       b.Method.Label(),
		Breakdown:         b,
		CanonicalQuantity: it.CanonicalQuantity,
		Quantity:          quantity.Describe(b),
		TotalQuantity:     quantity.DescribeTotal(b),
		UnitPrice:         it.UnitPrice,
		Subtotal:          it.Subtotal,
		PriceUndetermined: pricing.IsUndetermined(b.Method, it.ProductUnit, it.Subtotal),
		Usage:             it.SelectedUsage.String,
		Flavor:            it.SelectedFlavor.String,
		Remarks:           it.Remarks.String,
	}
}

// Breakdown reconstructs the quantity breakdown stored on a line.
func Breakdown(it database.OrderItem) quantity.Breakdown {
	b := quantity.Breakdown{
		Method:         quantity.Method(it.Method),
		Grams:          it.Grams,
		GramsPerPiece:  it.GramsPerPiece,
		PieceCount:     it.PieceCount,
		PackCount:      it.PackCount,
		PackMultiplier: it.PackMultiplier,
	}
	if b.PackMultiplier < 1 {
		b.PackMultiplier = 1
	}
	return b
}

// GroupItems splits a flat item list, ordered by order id, into per-order
// slices keyed by order id.
func GroupItems(items []database.OrderItem) map[uuid.UUID][]database.OrderItem {
	out := make(map[uuid.UUID][]database.OrderItem)
	for _, it := range items {
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out
}
