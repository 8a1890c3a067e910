//go:build integration

package handler_test

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/maruko-pickup/api/internal/config"
	"github.com/maruko-pickup/api/internal/database"
	"github.com/maruko-pickup/api/internal/enum"
	"github.com/maruko-pickup/api/internal/handler"
	"github.com/maruko-pickup/api/internal/metrics"
	"github.com/maruko-pickup/api/internal/quantity"
	"github.com/maruko-pickup/api/internal/render"
	"github.com/maruko-pickup/api/internal/router"
	"github.com/maruko-pickup/api/internal/service"
	"github.com/maruko-pickup/api/internal/ws"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
)

// fakeEngine renders every document as a tiny PDF-looking blob so the
// export path runs without a Chrome binary.
type fakeEngine struct{}

func (fakeEngine) Acquire(ctx context.Context) (render.Browser, error) { return fakeBrowser{}, nil }

type fakeBrowser struct{}

func (fakeBrowser) Render(ctx context.Context, html string) ([]byte, error) {
	return []byte("%PDF-1.4\n" + fmt.Sprint(len(html))), nil
}

func (fakeBrowser) Close() error { return nil }

// TestIntegrationFlow exercises the storefront and back office against a
// real PostgreSQL and Redis.
func TestIntegrationFlow(t *testing.T) {
	ctx := context.Background()

	connStr := setupPostgresContainer(t, ctx)
	runMigrations(t, connStr)
	redisURL := setupRedisContainer(t, ctx)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	cfg := &config.Config{
		Port:              "8081",
		DatabaseURL:       connStr,
		JWTSecret:         "integration-test-secret",
		AllowedOrigins:    []string{"http://localhost:3000"},
		CartTTL:           time.Hour,
		ExportConcurrency: 2,
	}
	queries := database.New(pool)

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	hub := ws.NewHub()
	go hub.Run(hubCtx)

	r := router.New(cfg, queries, pool, hub, router.Deps{
		Metrics:  metrics.New(),
		Redis:    rdb,
		Renderer: fakeEngine{},
	})
	server := httptest.NewServer(r)
	defer server.Close()

	// --- 1. Bootstrap admin and options directly ---
	createAdminUser(t, ctx, queries)
	grill, err := queries.UpsertUsageOption(ctx, database.UpsertUsageOptionParams{Name: "焼肉", SortOrder: 1})
	if err != nil {
		t.Fatalf("upsert usage: %v", err)
	}
	tare, err := queries.UpsertFlavorOption(ctx, database.UpsertFlavorOptionParams{Name: "自社特製タレ", SortOrder: 1})
	if err != nil {
		t.Fatalf("upsert flavor: %v", err)
	}

	// --- 2. Login ---
	token := login(t, server, "admin@test.com", "password123")

	// --- 3. Create products through the admin API ---
	beef := apiJSON(t, server, "POST", "/admin/products", token, nil, map[string]interface{}{
		"name":              "牛サガリ",
		"price_basis":       "PER_WEIGHT_UNIT",
		"base_price":        500,
		"unit":              "g",
		"quantity_methods":  []string{"WEIGHT", "PIECE"},
		"usage_option_ids":  []string{grill.ID.String()},
		"flavor_option_ids": []string{tare.ID.String()},
	}, http.StatusCreated)
	beefID := beef["id"].(string)

	hamburg := apiJSON(t, server, "POST", "/admin/products", token, nil, map[string]interface{}{
		"name":             "手ごねハンバーグ",
		"price_basis":      "FLAT_PER_UNIT",
		"base_price":       680,
		"unit":             "パック",
		"quantity_methods": []string{"PACK"},
		"has_stock":        true,
		"stock":            10,
	}, http.StatusCreated)
	hamburgID := hamburg["id"].(string)

	// --- 4. Public catalogue ---
	var catalogue []map[string]interface{}
	resp := do(t, server, "GET", "/products", "", nil, nil)
	mustStatus(t, resp, http.StatusOK)
	decodeBody(t, resp, &catalogue)
	if len(catalogue) != 2 {
		t.Fatalf("catalogue: got %d products, want 2", len(catalogue))
	}

	// --- 5. Direct order: 250g sagari with grill + tare ---
	pickup := time.Now().AddDate(0, 0, 3).Format("2006-01-02")
	direct := apiJSON(t, server, "POST", "/orders", "", nil, map[string]interface{}{
		"customer_name":  "田中太郎",
		"customer_email": "tanaka@example.com",
		"customer_phone": "090-1234-5678",
		"pickup_date":    pickup,
		"pickup_time":    "14:00",
		"total_amount":   1250,
		"items": []map[string]interface{}{{
			"product_id":         beefID,
			"method":             "WEIGHT",
			"inputs":             map[string]interface{}{"grams": 250},
			"canonical_quantity": 250,
			"unit_price":         500,
			"subtotal":           1250,
			"selected_usage":     "焼肉",
			"selected_flavor":    "自社特製タレ",
		}},
	}, http.StatusCreated)
	if direct["total_amount"] != float64(1250) {
		t.Fatalf("direct order total: got %v, want 1250", direct["total_amount"])
	}
	directID := direct["id"].(string)
	directNumber := direct["order_number"].(string)

	// --- 6. Cart checkout: 2 packs of hamburg, merged from two adds ---
	addBody := map[string]interface{}{
		"product_id": hamburgID,
		"method":     "PACK",
		"inputs":     map[string]interface{}{"pack_count": 1},
	}
	resp = do(t, server, "POST", "/cart/items", "", nil, addBody)
	mustStatus(t, resp, http.StatusOK)
	cartID := resp.Header.Get(handler.CartIDHeader)
	resp.Body.Close()
	if cartID == "" {
		t.Fatal("expected a cart id")
	}
	cartHdr := map[string]string{handler.CartIDHeader: cartID}
	c := apiJSON(t, server, "POST", "/cart/items", "", cartHdr, addBody, http.StatusOK)
	if lines := c["lines"].([]interface{}); len(lines) != 1 {
		t.Fatalf("identical lines should merge: got %d lines", len(lines))
	}
	if c["total_amount"] != float64(1360) {
		t.Fatalf("cart total: got %v, want 1360", c["total_amount"])
	}

	checkout := apiJSON(t, server, "POST", "/cart/checkout", "", cartHdr, map[string]interface{}{
		"customer_name":  "佐藤花子",
		"customer_email": "sato@example.com",
		"customer_phone": "080-0000-1111",
		"pickup_date":    pickup,
		"pickup_time":    "16:30",
	}, http.StatusCreated)
	checkoutID := checkout["id"].(string)
	if checkout["order_number"] == directNumber {
		t.Fatal("order numbers must be unique")
	}

	var stock int32
	if err := pool.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, hamburgID).Scan(&stock); err != nil {
		t.Fatalf("read stock: %v", err)
	}
	if stock != 8 {
		t.Errorf("stock after checkout: got %d, want 8", stock)
	}

	// Cart is emptied by checkout
	emptied := apiJSON(t, server, "GET", "/cart", "", cartHdr, nil, http.StatusOK)
	if lines := emptied["lines"].([]interface{}); len(lines) != 0 {
		t.Errorf("cart should be empty after checkout, got %d lines", len(lines))
	}

	// --- 7. Public lookup by order number ---
	lookup := apiJSON(t, server, "GET", "/orders/"+directNumber, "", nil, nil, http.StatusOK)
	if lookup["id"] != directID {
		t.Errorf("lookup id: got %v, want %s", lookup["id"], directID)
	}

	// --- 8. Admin list and status update ---
	list := apiJSON(t, server, "GET", "/admin/orders?pickup_date="+pickup, token, nil, nil, http.StatusOK)
	if orders := list["orders"].([]interface{}); len(orders) != 2 {
		t.Fatalf("admin list: got %d orders, want 2", len(orders))
	}
	updated := apiJSON(t, server, "PATCH", "/admin/orders/"+directID+"/status", token, nil,
		map[string]string{"status": "PREPARING"}, http.StatusOK)
	if updated["status"] != "PREPARING" {
		t.Errorf("status: got %v, want PREPARING", updated["status"])
	}

	// --- 9. Single PDF and bulk export ---
	resp = do(t, server, "GET", "/admin/orders/"+checkoutID+"/pdf", token, nil, nil)
	mustStatus(t, resp, http.StatusOK)
	pdf, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("pdf body: got %q", pdf)
	}

	resp = do(t, server, "POST", "/admin/orders/export", token, nil, map[string]interface{}{
		"order_ids": []string{directID, checkoutID},
	})
	mustStatus(t, resp, http.StatusOK)
	archive, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("read zip: %v", err)
	}
	if len(zr.File) != 2 {
		t.Errorf("zip entries: got %d, want 2", len(zr.File))
	}

	// --- 10. Pickup summary counts both orders ---
	summary := apiJSON(t, server, "GET", "/admin/reports/pickup-summary?date="+pickup, token, nil, nil, http.StatusOK)
	if summary["order_count"] != float64(2) || summary["total_amount"] != float64(2610) {
		t.Errorf("summary: got count=%v total=%v, want 2 and 2610", summary["order_count"], summary["total_amount"])
	}
}

// failingItemsStore fails after the order header is written.
type failingItemsStore struct {
	service.OrderStore
}

func (failingItemsStore) CreateOrderItems(ctx context.Context, arg []database.CreateOrderItemsParams) (int64, error) {
	return 0, errors.New("injected failure")
}

// TestIntegrationOrderAtomicity checks that a failure after the header
// insert leaves no order behind and that sequence numbers are not burned.
func TestIntegrationOrderAtomicity(t *testing.T) {
	ctx := context.Background()

	connStr := setupPostgresContainer(t, ctx)
	runMigrations(t, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	defer pool.Close()
	queries := database.New(pool)

	product, err := queries.CreateProduct(ctx, database.CreateProductParams{
		Name:            "豚バラ",
		PriceBasis:      "PER_WEIGHT_UNIT",
		BasePrice:       198,
		Unit:            "g",
		QuantityMethods: []string{"WEIGHT"},
		IsActive:        true,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	req := service.CreateOrderRequest{
		CustomerName:  "田中太郎",
		CustomerEmail: "tanaka@example.com",
		CustomerPhone: "090-1234-5678",
		PickupDate:    time.Now().AddDate(0, 0, 2).Format("2006-01-02"),
		PickupTime:    "11:00",
		Items: []service.CreateOrderItemRequest{{
			ProductID: product.ID.String(),
			Method:    "WEIGHT",
			Inputs:    quantity.Inputs{Grams: 300},
			UnitPrice: 198,
		}},
	}

	failing := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
		return failingItemsStore{OrderStore: database.New(db)}
	}, nil, nil, nil)
	if _, err := failing.CreateOrder(ctx, req); err == nil {
		t.Fatal("expected injected failure")
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if count != 0 {
		t.Fatalf("orders after failed create: got %d, want 0", count)
	}

	ok := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}, nil, nil, nil)
	first, err := ok.CreateOrder(ctx, req)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	second, err := ok.CreateOrder(ctx, req)
	if err != nil {
		t.Fatalf("create second order: %v", err)
	}
	if first.Order.OrderNumber[len(first.Order.OrderNumber)-4:] != "0001" {
		t.Errorf("first order number: got %s, want suffix 0001", first.Order.OrderNumber)
	}
	if second.Order.OrderNumber[len(second.Order.OrderNumber)-4:] != "0002" {
		t.Errorf("second order number: got %s, want suffix 0002", second.Order.OrderNumber)
	}
	if first.Order.TotalAmount != 594 {
		t.Errorf("total: got %d, want 594", first.Order.TotalAmount)
	}
}

// --- Helpers ---

func setupPostgresContainer(t *testing.T, ctx context.Context) string {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("maruko_test"),
		tcpostgres.WithUsername("maruko"),
		tcpostgres.WithPassword("maruko"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}
	return connStr
}

func setupRedisContainer(t *testing.T, ctx context.Context) string {
	t.Helper()

	c, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Terminate(ctx); err != nil {
			t.Logf("terminate redis: %v", err)
		}
	})

	url, err := c.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("redis connection string: %v", err)
	}
	return url
}

func runMigrations(t *testing.T, connStr string) {
	t.Helper()

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("open db for migrations: %v", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		t.Fatalf("create migrate driver: %v", err)
	}

	// Go test runs in the package directory.
	m, err := migrate.NewWithDatabaseInstance("file://../../migrations", "postgres", driver)
	if err != nil {
		t.Fatalf("create migrate instance: %v", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("run migrations: %v", err)
	}
}

func createAdminUser(t *testing.T, ctx context.Context, q *database.Queries) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if _, err := q.UpsertUser(ctx, database.UpsertUserParams{
		Email:          "admin@test.com",
		HashedPassword: string(hashed),
		FullName:       "管理者",
		Role:           enum.UserRoleAdmin,
	}); err != nil {
		t.Fatalf("create admin: %v", err)
	}
}

func login(t *testing.T, server *httptest.Server, email, password string) string {
	t.Helper()
	resp := apiJSON(t, server, "POST", "/auth/login", "", nil, map[string]string{
		"email":    email,
		"password": password,
	}, http.StatusOK)
	return resp["access_token"].(string)
}

func do(t *testing.T, server *httptest.Server, method, path, token string, headers map[string]string, body interface{}) *http.Response {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, server.URL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func apiJSON(t *testing.T, server *httptest.Server, method, path, token string, headers map[string]string, body interface{}, want int) map[string]interface{} {
	t.Helper()
	resp := do(t, server, method, path, token, headers, body)
	mustStatus(t, resp, want)
	var out map[string]interface{}
	decodeBody(t, resp, &out)
	return out
}

func mustStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("%s %s: status %d, want %d; body: %s", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, b)
	}
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
