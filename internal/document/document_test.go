package document

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/maruko-pickup/api/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func sampleRows() (database.Order, []database.OrderItem) {
	orderID := uuid.New()
	order := database.Order{
		ID:            orderID,
		OrderNumber:   "ORD-20261018-0001",
		CustomerName:  "田中",
		CustomerEmail: "tanaka@example.com",
		CustomerPhone: "090-1234-5678",
		PickupDate:    pgtype.Date{Time: time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), Valid: true},
		PickupTime:    "15:00",
		TotalAmount:   2150,
		Status:        database.OrderStatusPENDING,
	}
	items := []database.OrderItem{
		{
			ID: uuid.New(), OrderID: orderID, Position: 0, ProductName: "黒毛和牛カルビ", ProductUnit: "g",
			Method: "WEIGHT", CanonicalQuantity: 300, Grams: 300, PackMultiplier: 1,
			UnitPrice: 500, Subtotal: 1500, SelectedUsage: text("焼肉"), SelectedFlavor: text("塩タレ"),
		},
		{
			ID: uuid.New(), OrderID: orderID, Position: 1, ProductName: "ハンバーグ", ProductUnit: "パック",
			Method: "PACK", CanonicalQuantity: 1, PackCount: 1, PackMultiplier: 1,
			UnitPrice: 650, Subtotal: 650, Remarks: text("焼き加減はおまかせ"),
		},
	}
	return order, items
}

func TestFromRows(t *testing.T) {
	order, items := sampleRows()
	doc := FromRows(order, items)

	assert.Equal(t, "2026-10-18", doc.PickupDate)
	assert.Equal(t, "2026年10月18日(日)", doc.PickupDateLabel)
	assert.Equal(t, "未処理", doc.StatusLabel)
	assert.False(t, doc.PriceUndetermined)
	require.Len(t, doc.Items, 2)
	assert.Equal(t, "300g", doc.Items[0].Quantity)
	assert.Equal(t, []string{"焼肉", "塩タレ"}, doc.Items[0].Options())
	assert.Equal(t, "焼き加減はおまかせ", doc.Items[1].Remarks)
	assert.Empty(t, doc.Items[1].Options())
}

func TestFromRows_UndeterminedRecomputed(t *testing.T) {
	order, items := sampleRows()
	items[1].Method = "PIECE"
	items[1].GramsPerPiece = 100
	items[1].PieceCount = 3
	items[1].CanonicalQuantity = 300

	doc := FromRows(order, items)
	assert.True(t, doc.PriceUndetermined)
	assert.False(t, doc.Items[0].PriceUndetermined)
	assert.True(t, doc.Items[1].PriceUndetermined)
	assert.Equal(t, int64(2150), doc.TotalAmount, "stored total is kept")

	order.TotalAmount = 0
	_, items = sampleRows()
	assert.True(t, FromRows(order, items).PriceUndetermined)
}

func TestBreakdown_DefaultsMultiplier(t *testing.T) {
	b := Breakdown(database.OrderItem{Method: "PACK", PackCount: 2})
	assert.Equal(t, int64(1), b.PackMultiplier)
}

func TestHTML(t *testing.T) {
	order, items := sampleRows()
	order.CustomerName = "<script>"
	html, err := HTML(FromRows(order, items))
	require.NoError(t, err)

	assert.Contains(t, html, "注文書")
	assert.Contains(t, html, "&lt;script&gt;　様")
	assert.Contains(t, html, "受取日時")
	assert.Contains(t, html, "2026年10月18日(日) 15:00")
	assert.Contains(t, html, "ご注文内容")
	assert.Contains(t, html, "焼肉　塩タレ")
	assert.Contains(t, html, "¥2,150")
	assert.False(t, strings.Contains(html, "<script>"))
}

func TestLines(t *testing.T) {
	order, items := sampleRows()
	lines := Lines(FromRows(order, items))
	assert.Equal(t, []string{
		"黒毛和牛カルビ　300g　焼肉　塩タレ",
		"ハンバーグ　1パック",
	}, lines)
}

func TestGroupItems(t *testing.T) {
	_, items := sampleRows()
	other := items[0]
	other.OrderID = uuid.New()
	grouped := GroupItems(append(items, other))
	assert.Len(t, grouped, 2)
	assert.Len(t, grouped[items[0].OrderID], 2)
}
