package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/maruko-pickup/api/internal/database"
	"github.com/maruko-pickup/api/internal/document"
	"github.com/maruko-pickup/api/internal/enum"
	"github.com/maruko-pickup/api/internal/jpfmt"
	"github.com/maruko-pickup/api/internal/metrics"
	"github.com/maruko-pickup/api/internal/notify"
	"github.com/maruko-pickup/api/internal/options"
	"github.com/maruko-pickup/api/internal/pricing"
	"github.com/maruko-pickup/api/internal/quantity"
	"github.com/rs/zerolog/log"
)

const (
	maxOrderNumberRetries = 3
	maxRemarksLength      = 500
)

// Errors returned by the order service. Item-level errors reach callers
// wrapped in a *ValidationError.
var (
	ErrEmptyItems        = errors.New("items are required")
	ErrInvalidProductID  = errors.New("invalid product_id")
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidUnitPrice  = errors.New("unit_price must be >= 0")
	ErrQuantityMismatch  = errors.New("canonical_quantity does not match the submitted inputs")
	ErrSubtotalMismatch  = errors.New("subtotal does not match unit_price and quantity")
	ErrTotalMismatch     = errors.New("total_amount does not equal the sum of subtotals")
	ErrRemarksNotAllowed = errors.New("remarks are not accepted for this product")
	ErrRemarksTooLong    = errors.New("remarks are too long")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetNextOrderSequence(ctx context.Context, prefix string) (int32, error)
	GetProductForOrder(ctx context.Context, id uuid.UUID) (database.Product, error)
	ListProductUsageOptionNames(ctx context.Context, productIds []uuid.UUID) ([]database.ListProductUsageOptionNamesRow, error)
	ListProductFlavorOptionNames(ctx context.Context, productIds []uuid.UUID) ([]database.ListProductFlavorOptionNamesRow, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItems(ctx context.Context, arg []database.CreateOrderItemsParams) (int64, error)
	DecrementProductStock(ctx context.Context, arg database.DecrementProductStockParams) error
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// EventPublisher receives order events after they are committed.
type EventPublisher interface {
	PublishOrderEvent(eventType string, order database.Order)
}

// CreateOrderRequest is the checkout submission.
type CreateOrderRequest struct {
	CustomerName  string `json:"customer_name" validate:"required,max=100"`
	CustomerEmail string `json:"customer_email" validate:"required,email,max=254"`
	CustomerPhone string `json:"customer_phone" validate:"required,max=30"`
	PickupDate    string `json:"pickup_date" validate:"required,datetime=2006-01-02"`
	PickupTime    string `json:"pickup_time" validate:"required,max=20"`
	// TotalAmount, when present, must equal the sum of the computed subtotals.
	TotalAmount *int64                   `json:"total_amount" validate:"-"`
	Items       []CreateOrderItemRequest `json:"items" validate:"-"`
}

// CreateOrderItemRequest is a single line of the submission. The server
// resolves Inputs itself; CanonicalQuantity and Subtotal are cross-checked
// when the client sends them.
type CreateOrderItemRequest struct {
	ProductID         string
	Method            string
	Inputs            quantity.Inputs
	CanonicalQuantity *int64
	UnitPrice         int64
	Subtotal          *int64
	SelectedUsage     string
	SelectedFlavor    string
	Remarks           string
}

// CreateOrderResult is the created order with its items.
type CreateOrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderService handles order business logic.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
	queue    notify.Queue
	events   EventPublisher
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewOrderService creates a new OrderService. queue, events and m may be nil.
func NewOrderService(pool TxBeginner, newStore NewOrderStore, queue notify.Queue, events EventPublisher, m *metrics.Metrics) *OrderService {
	return &OrderService{
		pool:     pool,
		newStore: newStore,
		queue:    queue,
		events:   events,
		metrics:  m,
		now:      time.Now,
	}
}

// CreateOrder validates the submission, prices every line and writes the
// order header and items in one transaction. Retries up to
// maxOrderNumberRetries times on order_number unique constraint violations
// (concurrent transactions reading the same day sequence).
//
// The confirmation notification is queued only after commit, and its failure
// never surfaces here.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	result, err := s.createOrder(ctx, req)
	if err != nil {
		if errors.Is(err, ErrValidationFailed) {
			s.metrics.OrderFailed("validation")
		} else {
			s.metrics.OrderFailed("persistence")
		}
		return nil, err
	}
	s.metrics.OrderCreated()
	s.afterCommit(ctx, result)
	return result, nil
}

func (s *OrderService) createOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	// --- Validate header ---
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	req.PickupDate = strings.TrimSpace(req.PickupDate)
	req.PickupTime = strings.TrimSpace(req.PickupTime)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	pickupDate, err := time.Parse("2006-01-02", req.PickupDate)
	if err != nil {
		return nil, invalid("pickup_date", err)
	}

	// --- Validate items non-empty ---
	if len(req.Items) == 0 {
		return nil, invalid("items", ErrEmptyItems)
	}

	// --- Parse lines before touching the database ---
	lines := make([]parsedLine, len(req.Items))
	for i, item := range req.Items {
		pl, err := parseLine(i, item)
		if err != nil {
			return nil, err
		}
		lines[i] = pl
	}

	// Retry loop: handles order_number unique constraint race condition.
	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err := s.createOrderTx(ctx, req, pickupDate, lines)
		if err == nil {
			return result, nil
		}
		if isOrderNumberConflict(err) {
			log.Warn().Err(err).Int("attempt", attempt+1).Msg("order number conflict, retrying")
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// isOrderNumberConflict checks if the error is a unique constraint violation
// on the order number (pgconn error code 23505).
func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_order_number_key"
	}
	return false
}

type parsedLine struct {
	req       CreateOrderItemRequest
	productID uuid.UUID
	method    quantity.Method
	remarks   string
}

func parseLine(i int, item CreateOrderItemRequest) (parsedLine, error) {
	productID, err := uuid.Parse(item.ProductID)
	if err != nil {
		return parsedLine{}, invalid(itemField(i, "product_id"), ErrInvalidProductID)
	}
	method, err := quantity.ParseMethod(item.Method)
	if err != nil {
		return parsedLine{}, invalid(itemField(i, "method"), err)
	}
	if item.UnitPrice < 0 {
		return parsedLine{}, invalid(itemField(i, "unit_price"), ErrInvalidUnitPrice)
	}
	remarks := strings.TrimSpace(item.Remarks)
	if len([]rune(remarks)) > maxRemarksLength {
		return parsedLine{}, invalid(itemField(i, "remarks"), ErrRemarksTooLong)
	}
	return parsedLine{req: item, productID: productID, method: method, remarks: remarks}, nil
}

// createOrderTx executes the full order creation in a single transaction.
func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest, pickupDate time.Time, lines []parsedLine) (*CreateOrderResult, error) {
	// --- Begin transaction ---
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// --- Load option lists for every product in one round trip each ---
	allowed, err := loadAllowedOptions(ctx, store, lines)
	if err != nil {
		return nil, err
	}

	// --- Process items: resolve quantity + price ---
	items := make([]database.CreateOrderItemsParams, len(lines))
	pricedLines := make([]pricing.Line, len(lines))
	stock := make(map[uuid.UUID]int64)

	for i, line := range lines {
		product, err := store.GetProductForOrder(ctx, line.productID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, invalid(itemField(i, "product_id"), ErrProductNotFound)
			}
			return nil, fmt.Errorf("item[%d]: get product: %w", i, err)
		}

		res, err := quantity.Resolve(productMethods(product), line.method, line.req.Inputs)
		if err != nil {
			return nil, invalid(itemField(i, "quantity"), err)
		}
		if c := line.req.CanonicalQuantity; c != nil && *c != res.Canonical {
			return nil, invalid(itemField(i, "canonical_quantity"), ErrQuantityMismatch)
		}

		if line.req.UnitPrice != product.BasePrice {
			log.Warn().
				Str("product_id", product.ID.String()).
				Int64("unit_price", line.req.UnitPrice).
				Int64("base_price", product.BasePrice).
				Int("item", i).
				Msg("unit price snapshot differs from catalogue price")
		}

		quote, err := pricing.Price(pricing.Product{
			Basis:     pricing.Basis(product.PriceBasis),
			BasePrice: line.req.UnitPrice,
			Unit:      product.Unit,
		}, res)
		if err != nil {
			if errors.Is(err, quantity.ErrInvalidQuantity) {
				return nil, invalid(itemField(i, "quantity"), err)
			}
			return nil, invalid(itemField(i, "product_id"), err)
		}
		if st := line.req.Subtotal; st != nil && *st != quote.Subtotal {
			return nil, invalid(itemField(i, "subtotal"), ErrSubtotalMismatch)
		}

		sel, err := options.Resolve(allowed[product.ID], options.Selection{
			Usage:  strings.TrimSpace(line.req.SelectedUsage),
			Flavor: strings.TrimSpace(line.req.SelectedFlavor),
		})
		if err != nil {
			field := "selected_usage"
			if errors.Is(err, options.ErrFlavorRequired) || errors.Is(err, options.ErrFlavorNotAllowed) {
				field = "selected_flavor"
			}
			return nil, invalid(itemField(i, field), err)
		}

		if line.remarks != "" && !product.HasRemarks {
			return nil, invalid(itemField(i, "remarks"), ErrRemarksNotAllowed)
		}

		if product.HasStock && pricing.Basis(product.PriceBasis) == pricing.FlatPerUnit {
			stock[product.ID] += res.Canonical
		}

		b := res.Breakdown
		items[i] = database.CreateOrderItemsParams{
			ID:                uuid.New(),
			Position:          int32(i),
			ProductID:         product.ID,
			ProductName:       product.Name,
			ProductUnit:       product.Unit,
			Method:            string(b.Method),
			CanonicalQuantity: res.Canonical,
			Grams:             b.Grams,
			GramsPerPiece:     b.GramsPerPiece,
			PieceCount:        b.PieceCount,
			PackCount:         b.PackCount,
			PackMultiplier:    b.PackMultiplier,
			UnitPrice:         line.req.UnitPrice,
			Subtotal:          quote.Subtotal,
			SelectedUsage:     optionalText(sel.Usage),
			SelectedFlavor:    optionalText(sel.Flavor),
			Remarks:           optionalText(line.remarks),
		}
		pricedLines[i] = pricing.Line{Method: b.Method, Unit: product.Unit, Subtotal: quote.Subtotal}
	}

	// --- Calculate total ---
	summary, err := pricing.Total(pricedLines)
	if err != nil {
		return nil, invalid("total_amount", err)
	}
	if req.TotalAmount != nil && *req.TotalAmount != summary.Total {
		return nil, invalid("total_amount", ErrTotalMismatch)
	}

	// --- Generate order number ---
	prefix := "ORD-" + s.now().In(jpfmt.JST).Format("20060102") + "-"
	seq, err := store.GetNextOrderSequence(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("get next order sequence: %w", err)
	}
	orderNumber := fmt.Sprintf("%s%04d", prefix, seq)

	// --- Insert order ---
	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OrderNumber:   orderNumber,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		PickupDate:    pgtype.Date{Time: pickupDate, Valid: true},
		PickupTime:    req.PickupTime,
		TotalAmount:   summary.Total,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// --- Insert items ---
	for i := range items {
		items[i].OrderID = order.ID
	}
	n, err := store.CreateOrderItems(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("create order items: %w", err)
	}
	if n != int64(len(items)) {
		return nil, fmt.Errorf("create order items: copied %d of %d rows", n, len(items))
	}

	// --- Decrement stock ---
	for productID, qty := range stock {
		if err := store.DecrementProductStock(ctx, database.DecrementProductStockParams{
			Quantity: qty,
			ID:       productID,
		}); err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
	}

	// --- Commit ---
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{Order: order, Items: itemRows(items)}, nil
}

// afterCommit queues the confirmation and publishes the created event.
func (s *OrderService) afterCommit(ctx context.Context, result *CreateOrderResult) {
	if s.queue != nil {
		msg := ConfirmationMessage(document.FromRows(result.Order, result.Items))
		if err := s.queue.Enqueue(context.WithoutCancel(ctx), msg); err != nil {
			s.metrics.Notification("enqueue_failed")
			log.Error().Err(err).
				Str("order_number", result.Order.OrderNumber).
				Msg("queue order confirmation")
		}
	}
	if s.events != nil {
		s.events.PublishOrderEvent(enum.EventOrderCreated, result.Order)
	}
}

// --- Helpers ---

func loadAllowedOptions(ctx context.Context, store OrderStore, lines []parsedLine) (map[uuid.UUID]options.Allowed, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, l := range lines {
		if !seen[l.productID] {
			seen[l.productID] = true
			ids = append(ids, l.productID)
		}
	}

	usages, err := store.ListProductUsageOptionNames(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list usage options: %w", err)
	}
	flavors, err := store.ListProductFlavorOptionNames(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list flavor options: %w", err)
	}

	out := make(map[uuid.UUID]options.Allowed, len(ids))
	for _, r := range usages {
		a := out[r.ProductID]
		a.Usages = append(a.Usages, r.Name)
		out[r.ProductID] = a
	}
	for _, r := range flavors {
		a := out[r.ProductID]
		a.Flavors = append(a.Flavors, r.Name)
		out[r.ProductID] = a
	}
	return out, nil
}

// productMethods returns the product's allowed methods, skipping values the
// resolver does not know.
func productMethods(p database.Product) []quantity.Method {
	out := make([]quantity.Method, 0, len(p.QuantityMethods))
	for _, s := range p.QuantityMethods {
		if m := quantity.Method(s); m.Valid() {
			out = append(out, m)
		}
	}
	return out
}

func optionalText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func itemRows(params []database.CreateOrderItemsParams) []database.OrderItem {
	out := make([]database.OrderItem, len(params))
	for i, p := range params {
		out[i] = database.OrderItem(p)
	}
	return out
}
