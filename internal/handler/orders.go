package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/maruko-pickup/api/internal/database"
	"github.com/maruko-pickup/api/internal/document"
	"github.com/maruko-pickup/api/internal/quantity"
	"github.com/maruko-pickup/api/internal/service"
)

// OrderServicer defines the service methods needed by order handlers.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

// OrderLookupStore defines the database methods needed by the public order
// lookup. Satisfied by *database.Queries.
type OrderLookupStore interface {
	GetOrderByNumber(ctx context.Context, orderNumber string) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
}

// OrderHandler handles customer-facing order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderLookupStore
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderLookupStore) *OrderHandler {
	return &OrderHandler{svc: svc, store: store}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/{orderNumber}", h.Get)
}

// --- Request types ---

type createOrderRequest struct {
	CustomerName  string                   `json:"customer_name"`
	CustomerEmail string                   `json:"customer_email"`
	CustomerPhone string                   `json:"customer_phone"`
	PickupDate    string                   `json:"pickup_date"`
	PickupTime    string                   `json:"pickup_time"`
	TotalAmount   *int64                   `json:"total_amount"`
	Items         []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	ProductID         string          `json:"product_id"`
	Method            string          `json:"method"`
	Inputs            quantity.Inputs `json:"inputs"`
	CanonicalQuantity *int64          `json:"canonical_quantity"`
	UnitPrice         *int64          `json:"unit_price"`
	Subtotal          *int64          `json:"subtotal"`
	SelectedUsage     string          `json:"selected_usage"`
	SelectedFlavor    string          `json:"selected_flavor"`
	Remarks           string          `json:"remarks"`
}

// --- Handlers ---

// Create submits an order. The body carries the customer, the pickup slot
// and one entry per cart line; the server recomputes every amount.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items are required")
		return
	}

	svcReq := service.CreateOrderRequest{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		PickupDate:    req.PickupDate,
		PickupTime:    req.PickupTime,
		TotalAmount:   req.TotalAmount,
		Items:         make([]service.CreateOrderItemRequest, len(req.Items)),
	}
	for i, item := range req.Items {
		if item.ProductID == "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("items[%d]: product_id is required", i))
			return
		}
		if strings.TrimSpace(item.Method) == "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("items[%d]: method is required", i))
			return
		}
		if item.UnitPrice == nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("items[%d]: unit_price is required", i))
			return
		}
		svcReq.Items[i] = service.CreateOrderItemRequest{
			ProductID:         item.ProductID,
			Method:            item.Method,
			Inputs:            item.Inputs,
			CanonicalQuantity: item.CanonicalQuantity,
			UnitPrice:         *item.UnitPrice,
			Subtotal:          item.Subtotal,
			SelectedUsage:     item.SelectedUsage,
			SelectedFlavor:    item.SelectedFlavor,
			Remarks:           item.Remarks,
		}
	}

	result, err := h.svc.CreateOrder(r.Context(), svcReq)
	if err != nil {
		if writeValidationError(w, err) {
			return
		}
		writeInternalError(w, err, "create order")
		return
	}

	writeJSON(w, http.StatusCreated, document.FromRows(result.Order, result.Items))
}

// Get returns an order by its order number, for the order-complete page.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")

	order, err := h.store.GetOrderByNumber(r.Context(), orderNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeInternalError(w, err, "get order by number")
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), order.ID)
	if err != nil {
		writeInternalError(w, err, "list order items")
		return
	}

	writeJSON(w, http.StatusOK, document.FromRows(order, items))
}
