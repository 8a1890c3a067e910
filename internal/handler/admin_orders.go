package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/maruko-pickup/api/internal/database"
	"github.com/maruko-pickup/api/internal/document"
	"github.com/maruko-pickup/api/internal/export"
	"github.com/maruko-pickup/api/internal/jpfmt"
	"github.com/maruko-pickup/api/internal/service"
	"github.com/rs/zerolog/log"
)

// AdminOrderStore defines the database methods needed by admin order
// handlers. Satisfied by *database.Queries.
type AdminOrderStore interface {
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	ListOrderItemsByOrderIDs(ctx context.Context, orderIds []uuid.UUID) ([]database.OrderItem, error)
}

// StatusUpdater changes an order's status.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (database.Order, error)
}

// Exporter renders order sheets.
type Exporter interface {
	Export(ctx context.Context, ids []uuid.UUID) (*export.Archive, error)
	RenderOrder(ctx context.Context, id uuid.UUID) (*export.File, error)
}

// AdminOrderHandler handles staff order endpoints.
type AdminOrderHandler struct {
	store    AdminOrderStore
	status   StatusUpdater
	exporter Exporter
	now      func() time.Time
}

// NewAdminOrderHandler creates a new AdminOrderHandler.
func NewAdminOrderHandler(store AdminOrderStore, status StatusUpdater, exporter Exporter) *AdminOrderHandler {
	return &AdminOrderHandler{store: store, status: status, exporter: exporter, now: time.Now}
}

// RegisterRoutes registers admin order endpoints on the given Chi router.
// Expected to be mounted at /admin/orders.
func (h *AdminOrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/export", h.Export)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Get("/{id}/pdf", h.PDF)
}

// --- Request / Response types ---

type updateStatusRequest struct {
	Status string `json:"status"`
}

type exportRequest struct {
	OrderIDs []string `json:"order_ids"`
}

type orderListResponse struct {
	Orders []document.Order `json:"orders"`
	Limit  int32            `json:"limit"`
	Offset int32            `json:"offset"`
}

// --- Handlers ---

// List returns orders, newest first, optionally filtered by status and
// pickup date.
func (h *AdminOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	params := database.ListOrdersParams{}

	if s := r.URL.Query().Get("status"); s != "" {
		if !service.ValidStatus(s) {
			writeError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		params.Status = database.NullOrderStatus{OrderStatus: database.OrderStatus(s), Valid: true}
	}

	if d := r.URL.Query().Get("pickup_date"); d != "" {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid pickup_date, expected YYYY-MM-DD")
			return
		}
		params.PickupDate = pgtype.Date{Time: t, Valid: true}
	}

	limit, offset, msg := pagination(r)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	params.RowLimit = limit
	params.RowOffset = offset

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		writeInternalError(w, err, "list orders")
		return
	}

	resp := orderListResponse{Orders: make([]document.Order, 0, len(orders)), Limit: limit, Offset: offset}
	if len(orders) > 0 {
		ids := make([]uuid.UUID, len(orders))
		for i, o := range orders {
			ids[i] = o.ID
		}
		items, err := h.store.ListOrderItemsByOrderIDs(r.Context(), ids)
		if err != nil {
			writeInternalError(w, err, "list order items")
			return
		}
		byOrder := document.GroupItems(items)
		for _, o := range orders {
			resp.Orders = append(resp.Orders, document.FromRows(o, byOrder[o.ID]))
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns one order with its items and price-undetermined flags.
func (h *AdminOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeInternalError(w, err, "get order")
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), id)
	if err != nil {
		writeInternalError(w, err, "list order items")
		return
	}

	writeJSON(w, http.StatusOK, document.FromRows(order, items))
}

// UpdateStatus sets an order's status.
func (h *AdminOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	order, err := h.status.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOrderNotFound):
			writeError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrInvalidTransition):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrStatusConflict):
			writeError(w, http.StatusConflict, "order status changed, please retry")
		default:
			writeInternalError(w, err, "update order status")
		}
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), id)
	if err != nil {
		writeInternalError(w, err, "list order items")
		return
	}

	writeJSON(w, http.StatusOK, document.FromRows(order, items))
}

// PDF renders a single order sheet.
func (h *AdminOrderHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	file, err := h.exporter.RenderOrder(r.Context(), id)
	if err != nil {
		h.writeExportError(w, err)
		return
	}

	writeAttachment(w, "application/pdf", file.Name, file.Data)
}

// Export renders the selected orders into one ZIP archive.
func (h *AdminOrderHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ids := make([]uuid.UUID, 0, len(req.OrderIDs))
	for i, s := range req.OrderIDs {
		id, err := uuid.Parse(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("order_ids[%d]: invalid id", i))
			return
		}
		ids = append(ids, id)
	}

	archive, err := h.exporter.Export(r.Context(), ids)
	if err != nil {
		h.writeExportError(w, err)
		return
	}

	name := "orders-" + h.now().In(jpfmt.JST).Format("2006-01-02") + ".zip"
	w.Header().Set("X-Export-Count", strconv.Itoa(len(archive.Files)))
	writeAttachment(w, "application/zip", name, archive.Data)
}

// --- Helpers ---

func (h *AdminOrderHandler) writeExportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, export.ErrNoIDs):
		writeError(w, http.StatusBadRequest, "order_ids are required")
	case errors.Is(err, export.ErrNoOrdersFound):
		writeError(w, http.StatusNotFound, "no orders found")
	case errors.Is(err, export.ErrRenderFailed):
		writeInternalError(w, err, "render order documents")
	default:
		writeInternalError(w, err, "export orders")
	}
}

func orderIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return uuid.Nil, false
	}
	return id, true
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Warn().Err(err).Str("filename", filename).Msg("write attachment")
	}
}
