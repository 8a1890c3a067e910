package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/maruko-pickup/api/internal/cart"
	"github.com/maruko-pickup/api/internal/document"
	"github.com/maruko-pickup/api/internal/service"
)

// CartIDHeader carries the caller's cart id.
const CartIDHeader = "X-Cart-ID"

// CartServicer defines the cart operations used by cart handlers.
type CartServicer interface {
	Get(ctx context.Context, cartID string) (cart.Cart, error)
	Add(ctx context.Context, cartID string, req cart.AddRequest) (cart.Cart, error)
	SetPacks(ctx context.Context, cartID, lineID string, packs int64) (cart.Cart, error)
	Remove(ctx context.Context, cartID, lineID string) (cart.Cart, error)
	Clear(ctx context.Context, cartID string) error
	Checkout(ctx context.Context, cartID string, req cart.CheckoutRequest) (*service.CreateOrderResult, error)
}

// CartHandler handles cart endpoints.
type CartHandler struct {
	svc CartServicer
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(svc CartServicer) *CartHandler {
	return &CartHandler{svc: svc}
}

// RegisterRoutes registers cart endpoints on the given Chi router.
// Expected to be mounted at /cart.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Delete("/", h.Clear)
	r.Post("/items", h.AddItem)
	r.Patch("/items/{lineID}", h.UpdateItem)
	r.Delete("/items/{lineID}", h.RemoveItem)
	r.Post("/checkout", h.Checkout)
}

type updateCartItemRequest struct {
	Packs *int64 `json:"packs"`
}

// --- Handlers ---

// Get returns the cart with recomputed subtotals. An unknown id is an
// empty cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cartID, ok := requireCartID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Get(r.Context(), cartID)
	if err != nil {
		h.writeCartError(w, err, "get cart")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// AddItem adds a line, merging it into an identical existing line. A
// request without a cart id starts a new cart whose id is returned in the
// X-Cart-ID response header.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	cartID := r.Header.Get(CartIDHeader)
	if cartID == "" {
		cartID = uuid.NewString()
	}

	var req cart.AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.svc.Add(r.Context(), cartID, req)
	if err != nil {
		h.writeCartError(w, err, "add cart item")
		return
	}
	w.Header().Set(CartIDHeader, cartID)
	writeJSON(w, http.StatusOK, c)
}

// UpdateItem sets the pack count of a line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := requireCartID(w, r)
	if !ok {
		return
	}

	var req updateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Packs == nil {
		writeError(w, http.StatusBadRequest, "packs is required")
		return
	}

	c, err := h.svc.SetPacks(r.Context(), cartID, chi.URLParam(r, "lineID"), *req.Packs)
	if err != nil {
		h.writeCartError(w, err, "update cart item")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// RemoveItem deletes a line.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := requireCartID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Remove(r.Context(), cartID, chi.URLParam(r, "lineID"))
	if err != nil {
		h.writeCartError(w, err, "remove cart item")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Clear empties the cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	cartID, ok := requireCartID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Clear(r.Context(), cartID); err != nil {
		h.writeCartError(w, err, "clear cart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Checkout turns the cart into an order.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	cartID, ok := requireCartID(w, r)
	if !ok {
		return
	}

	var req cart.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Checkout(r.Context(), cartID, req)
	if err != nil {
		h.writeCartError(w, err, "checkout cart")
		return
	}
	writeJSON(w, http.StatusCreated, document.FromRows(result.Order, result.Items))
}

// --- Helpers ---

func requireCartID(w http.ResponseWriter, r *http.Request) (string, bool) {
	cartID := r.Header.Get(CartIDHeader)
	if cartID == "" {
		writeError(w, http.StatusBadRequest, "X-Cart-ID header is required")
		return "", false
	}
	return cartID, true
}

func (h *CartHandler) writeCartError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, cart.ErrLineNotFound):
		writeError(w, http.StatusNotFound, "cart line not found")
	case errors.Is(err, cart.ErrConflict):
		writeError(w, http.StatusConflict, "cart was modified concurrently, please retry")
	default:
		if !writeValidationError(w, err) {
			writeInternalError(w, err, op)
		}
	}
}
