package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/maruko-pickup/api/internal/auth"
	"github.com/maruko-pickup/api/internal/database"
	"github.com/maruko-pickup/api/internal/enum"
	"github.com/maruko-pickup/api/internal/export"
	"github.com/maruko-pickup/api/internal/handler"
	"github.com/maruko-pickup/api/internal/middleware"
	"github.com/maruko-pickup/api/internal/service"
)

// --- Mock StatusUpdater ---

type mockStatusUpdater struct {
	updateFn func(ctx context.Context, id uuid.UUID, status string) (database.Order, error)
}

func (m *mockStatusUpdater) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (database.Order, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, status)
	}
	return database.Order{}, service.ErrOrderNotFound
}

// --- Mock Exporter ---

type mockExporter struct {
	exportFn func(ctx context.Context, ids []uuid.UUID) (*export.Archive, error)
	renderFn func(ctx context.Context, id uuid.UUID) (*export.File, error)
}

func (m *mockExporter) Export(ctx context.Context, ids []uuid.UUID) (*export.Archive, error) {
	if m.exportFn != nil {
		return m.exportFn(ctx, ids)
	}
	return nil, export.ErrNoOrdersFound
}

func (m *mockExporter) RenderOrder(ctx context.Context, id uuid.UUID) (*export.File, error) {
	if m.renderFn != nil {
		return m.renderFn(ctx, id)
	}
	return nil, export.ErrNoOrdersFound
}

// --- Test helpers ---

func setupAdminOrderRouter(store *mockOrderStore, status *mockStatusUpdater, exp *mockExporter) *chi.Mux {
	if store == nil {
		store = &mockOrderStore{}
	}
	if status == nil {
		status = &mockStatusUpdater{}
	}
	if exp == nil {
		exp = &mockExporter{}
	}
	h := handler.NewAdminOrderHandler(store, status, exp)
	r := chi.NewRouter()
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Authenticate(testSecret))
		r.Use(middleware.RequireRole(enum.UserRoleAdmin))
		r.Route("/orders", h.RegisterRoutes)
	})
	return r
}

// --- Auth ---

func TestAdminOrders_RequiresAdmin(t *testing.T) {
	router := setupAdminOrderRouter(nil, nil, nil)

	rr := doRequest(t, router, "GET", "/admin/orders", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("no token: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	staff := &auth.Claims{UserID: uuid.New(), Role: enum.UserRoleStaff}
	rr = doAuthRequest(t, router, "GET", "/admin/orders", nil, staff)
	if rr.Code != http.StatusForbidden {
		t.Errorf("staff token: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}

// --- List ---

func TestAdminOrderList_FiltersAndFlags(t *testing.T) {
	a := testOrder("ORD-20261018-0001")
	b := testOrder("ORD-20261018-0002")
	b.TotalAmount = 900

	store := &mockOrderStore{
		listOrdersFn: func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
			if !arg.Status.Valid || arg.Status.OrderStatus != database.OrderStatusPENDING {
				t.Errorf("status filter: got %+v", arg.Status)
			}
			if !arg.PickupDate.Valid || arg.PickupDate.Time.Format("2006-01-02") != "2026-10-20" {
				t.Errorf("pickup_date filter: got %+v", arg.PickupDate)
			}
			if arg.RowLimit != 50 || arg.RowOffset != 10 {
				t.Errorf("pagination: got limit=%d offset=%d", arg.RowLimit, arg.RowOffset)
			}
			return []database.Order{a, b}, nil
		},
		listOrderItemsByOrderIDsFn: func(ctx context.Context, ids []uuid.UUID) ([]database.OrderItem, error) {
			if len(ids) != 2 {
				t.Errorf("ids: got %d, want 2", len(ids))
			}
			return []database.OrderItem{weightItem(a.ID, 0), pieceItem(b.ID, 0)}, nil
		},
	}

	rr := doAuthRequest(t, setupAdminOrderRouter(store, nil, nil), "GET",
		"/admin/orders?status=PENDING&pickup_date=2026-10-20&limit=50&offset=10", nil, adminClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeOrderResponse(t, rr)
	orders := resp["orders"].([]interface{})
	if len(orders) != 2 {
		t.Fatalf("orders: got %d, want 2", len(orders))
	}
	if orders[0].(map[string]interface{})["is_price_undetermined"] != false {
		t.Error("weight-only order should be determined")
	}
	if orders[1].(map[string]interface{})["is_price_undetermined"] != true {
		t.Error("piece order should be undetermined")
	}
}

func TestAdminOrderList_LimitCapped(t *testing.T) {
	store := &mockOrderStore{
		listOrdersFn: func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
			if arg.RowLimit != 100 {
				t.Errorf("limit: got %d, want 100", arg.RowLimit)
			}
			return []database.Order{}, nil
		},
	}

	rr := doAuthRequest(t, setupAdminOrderRouter(store, nil, nil), "GET", "/admin/orders?limit=500", nil, adminClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeOrderResponse(t, rr)
	if orders, ok := resp["orders"].([]interface{}); !ok || len(orders) != 0 {
		t.Errorf("orders: got %v, want empty array", resp["orders"])
	}
}

func TestAdminOrderList_BadQuery(t *testing.T) {
	for _, q := range []string{"status=SHIPPED", "pickup_date=20261020", "limit=abc", "offset=-1"} {
		t.Run(q, func(t *testing.T) {
			rr := doAuthRequest(t, setupAdminOrderRouter(nil, nil, nil), "GET", "/admin/orders?"+q, nil, adminClaims())
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
			}
		})
	}
}

// --- Get ---

func TestAdminOrderGet(t *testing.T) {
	o := testOrder("ORD-20261018-0003")
	store := &mockOrderStore{
		getOrderFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			return o, nil
		},
		listOrderItemsByOrderFn: func(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
			return []database.OrderItem{weightItem(o.ID, 0)}, nil
		},
	}

	rr := doAuthRequest(t, setupAdminOrderRouter(store, nil, nil), "GET", "/admin/orders/"+o.ID.String(), nil, adminClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeOrderResponse(t, rr)
	if resp["status_label"] != "未処理" {
		t.Errorf("status_label: got %v", resp["status_label"])
	}
	if resp["customer_email"] != "tanaka@example.com" {
		t.Errorf("customer_email: got %v", resp["customer_email"])
	}
}

func TestAdminOrderGet_InvalidAndMissing(t *testing.T) {
	router := setupAdminOrderRouter(nil, nil, nil)

	rr := doAuthRequest(t, router, "GET", "/admin/orders/not-a-uuid", nil, adminClaims())
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid id: got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	rr = doAuthRequest(t, router, "GET", "/admin/orders/"+uuid.New().String(), nil, adminClaims())
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing order: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

// --- UpdateStatus ---

func TestAdminOrderUpdateStatus(t *testing.T) {
	o := testOrder("ORD-20261018-0004")
	status := &mockStatusUpdater{
		updateFn: func(ctx context.Context, id uuid.UUID, s string) (database.Order, error) {
			if id != o.ID {
				t.Errorf("id: got %v, want %v", id, o.ID)
			}
			if s != "READY" {
				t.Errorf("status: got %q, want READY", s)
			}
			o.Status = database.OrderStatusREADY
			return o, nil
		},
	}

	rr := doAuthRequest(t, setupAdminOrderRouter(nil, status, nil), "PATCH",
		"/admin/orders/"+o.ID.String()+"/status", map[string]string{"status": "READY"}, adminClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeOrderResponse(t, rr)
	if resp["status"] != "READY" {
		t.Errorf("status: got %v, want READY", resp["status"])
	}
}

func TestAdminOrderUpdateStatus_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid status", service.ErrInvalidStatus, http.StatusBadRequest},
		{"not found", service.ErrOrderNotFound, http.StatusNotFound},
		{"transition", fmt.Errorf("%w: COMPLETED -> PENDING", service.ErrInvalidTransition), http.StatusConflict},
		{"conflict", service.ErrStatusConflict, http.StatusConflict},
		{"internal", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := &mockStatusUpdater{
				updateFn: func(ctx context.Context, id uuid.UUID, s string) (database.Order, error) {
					return database.Order{}, tt.err
				},
			}
			rr := doAuthRequest(t, setupAdminOrderRouter(nil, status, nil), "PATCH",
				"/admin/orders/"+uuid.New().String()+"/status", map[string]string{"status": "PENDING"}, adminClaims())
			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestAdminOrderUpdateStatus_MissingStatus(t *testing.T) {
	rr := doAuthRequest(t, setupAdminOrderRouter(nil, nil, nil), "PATCH",
		"/admin/orders/"+uuid.New().String()+"/status", map[string]string{}, adminClaims())

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- PDF ---

func TestAdminOrderPDF(t *testing.T) {
	id := uuid.New()
	exp := &mockExporter{
		renderFn: func(ctx context.Context, got uuid.UUID) (*export.File, error) {
			if got != id {
				t.Errorf("id: got %v, want %v", got, id)
			}
			return &export.File{Name: "田中太郎.pdf", OrderID: id, Data: []byte("%PDF-1.4")}, nil
		},
	}

	rr := doAuthRequest(t, setupAdminOrderRouter(nil, nil, exp), "GET", "/admin/orders/"+id.String()+"/pdf", nil, adminClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type: got %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") || !strings.Contains(cd, "filename*=utf-8''") {
		t.Errorf("content disposition: got %q", cd)
	}
	if rr.Body.String() != "%PDF-1.4" {
		t.Errorf("body: got %q", rr.Body.String())
	}
}

func TestAdminOrderPDF_NotFound(t *testing.T) {
	rr := doAuthRequest(t, setupAdminOrderRouter(nil, nil, &mockExporter{}), "GET", "/admin/orders/"+uuid.New().String()+"/pdf", nil, adminClaims())

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

// --- Export ---

func TestAdminOrderExport(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	exp := &mockExporter{
		exportFn: func(ctx context.Context, got []uuid.UUID) (*export.Archive, error) {
			if len(got) != 2 || got[0] != ids[0] || got[1] != ids[1] {
				t.Errorf("ids: got %v", got)
			}
			return &export.Archive{Data: []byte("PK"), Files: []string{"a.pdf", "b.pdf"}, Chunks: []int{2}}, nil
		},
	}

	rr := doAuthRequest(t, setupAdminOrderRouter(nil, nil, exp), "POST", "/admin/orders/export",
		map[string]interface{}{"order_ids": []string{ids[0].String(), ids[1].String()}}, adminClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("content type: got %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename=orders-`) || !strings.HasSuffix(cd, `.zip`) {
		t.Errorf("content disposition: got %q", cd)
	}
	if n := rr.Header().Get("X-Export-Count"); n != "2" {
		t.Errorf("export count: got %q", n)
	}
}

func TestAdminOrderExport_Errors(t *testing.T) {
	tests := []struct {
		name string
		body interface{}
		err  error
		want int
	}{
		{"invalid id", map[string]interface{}{"order_ids": []string{"nope"}}, nil, http.StatusBadRequest},
		{"no ids", map[string]interface{}{"order_ids": []string{}}, export.ErrNoIDs, http.StatusBadRequest},
		{"none found", map[string]interface{}{"order_ids": []string{uuid.NewString()}}, export.ErrNoOrdersFound, http.StatusNotFound},
		{"render failed", map[string]interface{}{"order_ids": []string{uuid.NewString()}}, fmt.Errorf("%w: boom", export.ErrRenderFailed), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := &mockExporter{
				exportFn: func(ctx context.Context, ids []uuid.UUID) (*export.Archive, error) {
					if tt.err == nil {
						t.Fatal("exporter should not be called")
					}
					return nil, tt.err
				},
			}
			rr := doAuthRequest(t, setupAdminOrderRouter(nil, nil, exp), "POST", "/admin/orders/export", tt.body, adminClaims())
			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d", rr.Code, tt.want)
			}
		})
	}
}
