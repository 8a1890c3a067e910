package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/maruko-pickup/api/internal/database"
	"github.com/maruko-pickup/api/internal/pricing"
	"github.com/maruko-pickup/api/internal/quantity"
	"github.com/maruko-pickup/api/internal/service"
)

// ProductStore defines the database methods needed to read products.
// Satisfied by *database.Queries; narrow interface for testability.
type ProductStore interface {
	ListProducts(ctx context.Context, includeInactive bool) ([]database.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
	ListProductUsageOptionNames(ctx context.Context, productIds []uuid.UUID) ([]database.ListProductUsageOptionNamesRow, error)
	ListProductFlavorOptionNames(ctx context.Context, productIds []uuid.UUID) ([]database.ListProductFlavorOptionNamesRow, error)
}

// ProductWriteStore defines the methods used inside the create/update
// transaction.
type ProductWriteStore interface {
	CreateProduct(ctx context.Context, arg database.CreateProductParams) (database.Product, error)
	UpdateProduct(ctx context.Context, arg database.UpdateProductParams) (database.Product, error)
	DeleteProductUsageOptions(ctx context.Context, productID uuid.UUID) error
	DeleteProductFlavorOptions(ctx context.Context, productID uuid.UUID) error
	AddProductUsageOption(ctx context.Context, arg database.AddProductUsageOptionParams) error
	AddProductFlavorOption(ctx context.Context, arg database.AddProductFlavorOptionParams) error
	ListProductUsageOptionNames(ctx context.Context, productIds []uuid.UUID) ([]database.ListProductUsageOptionNamesRow, error)
	ListProductFlavorOptionNames(ctx context.Context, productIds []uuid.UUID) ([]database.ListProductFlavorOptionNamesRow, error)
}

// NewProductWriteStore builds a ProductWriteStore on a transaction.
type NewProductWriteStore func(db database.DBTX) ProductWriteStore

// ProductHandler handles catalogue endpoints.
type ProductHandler struct {
	store    ProductStore
	pool     service.TxBeginner
	newStore NewProductWriteStore
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(store ProductStore, pool service.TxBeginner, newStore NewProductWriteStore) *ProductHandler {
	return &ProductHandler{store: store, pool: pool, newStore: newStore}
}

// RegisterRoutes registers the public catalogue on the given Chi router.
// Expected to be mounted at /products.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// RegisterAdminRoutes registers catalogue management endpoints.
// Expected to be mounted at /admin/products.
func (h *ProductHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.AdminList)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
}

// --- Request / Response types ---

type productRequest struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	PriceBasis      string   `json:"price_basis"`
	BasePrice       *int64   `json:"base_price"`
	Unit            string   `json:"unit"`
	QuantityMethods []string `json:"quantity_methods"`
	HasRemarks      bool     `json:"has_remarks"`
	HasStock        bool     `json:"has_stock"`
	Stock           *int32   `json:"stock"`
	IsActive        *bool    `json:"is_active"`
	UsageOptionIDs  []string `json:"usage_option_ids"`
	FlavorOptionIDs []string `json:"flavor_option_ids"`
}

type quantityMethodResponse struct {
	Method string `json:"method"`
	Label  string `json:"label"`
}

type productResponse struct {
	ID              uuid.UUID                `json:"id"`
	Name            string                   `json:"name"`
	Description     string                   `json:"description"`
	PriceBasis      string                   `json:"price_basis"`
	BasePrice       int64                    `json:"base_price"`
	Unit            string                   `json:"unit"`
	QuantityMethods []quantityMethodResponse `json:"quantity_methods"`
	HasRemarks      bool                     `json:"has_remarks"`
	HasStock        bool                     `json:"has_stock"`
	Stock           *int32                   `json:"stock"`
	IsActive        bool                     `json:"is_active"`
	UsageOptions    []string                 `json:"usage_options"`
	FlavorOptions   []string                 `json:"flavor_options"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

type productOptionNames struct {
	usages  map[uuid.UUID][]string
	flavors map[uuid.UUID][]string
}

func toProductResponse(p database.Product, names productOptionNames) productResponse {
	resp := productResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		PriceBasis:      p.PriceBasis,
		BasePrice:       p.BasePrice,
		Unit:            p.Unit,
		QuantityMethods: make([]quantityMethodResponse, 0, len(p.QuantityMethods)),
		HasRemarks:      p.HasRemarks,
		HasStock:        p.HasStock,
		IsActive:        p.IsActive,
		UsageOptions:    names.usages[p.ID],
		FlavorOptions:   names.flavors[p.ID],
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	for _, m := range p.QuantityMethods {
		resp.QuantityMethods = append(resp.QuantityMethods, quantityMethodResponse{
			Method: m,
			Label:  quantity.Method(m).Label(),
		})
	}
	if p.Stock.Valid {
		s := p.Stock.Int32
		resp.Stock = &s
	}
	if resp.UsageOptions == nil {
		resp.UsageOptions = []string{}
	}
	if resp.FlavorOptions == nil {
		resp.FlavorOptions = []string{}
	}
	return resp
}

type optionNameLister interface {
	ListProductUsageOptionNames(ctx context.Context, productIds []uuid.UUID) ([]database.ListProductUsageOptionNamesRow, error)
	ListProductFlavorOptionNames(ctx context.Context, productIds []uuid.UUID) ([]database.ListProductFlavorOptionNamesRow, error)
}

func loadOptionNames(ctx context.Context, store optionNameLister, ids []uuid.UUID) (productOptionNames, error) {
	names := productOptionNames{usages: map[uuid.UUID][]string{}, flavors: map[uuid.UUID][]string{}}
	if len(ids) == 0 {
		return names, nil
	}
	usages, err := store.ListProductUsageOptionNames(ctx, ids)
	if err != nil {
		return names, fmt.Errorf("list usage options: %w", err)
	}
	for _, u := range usages {
		names.usages[u.ProductID] = append(names.usages[u.ProductID], u.Name)
	}
	flavors, err := store.ListProductFlavorOptionNames(ctx, ids)
	if err != nil {
		return names, fmt.Errorf("list flavor options: %w", err)
	}
	for _, f := range flavors {
		names.flavors[f.ProductID] = append(names.flavors[f.ProductID], f.Name)
	}
	return names, nil
}

// --- Helpers ---

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

type validatedProduct struct {
	params  database.CreateProductParams
	usages  []uuid.UUID
	flavors []uuid.UUID
}

func validateProductRequest(req productRequest) (validatedProduct, string) {
	var v validatedProduct

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return v, "name is required"
	}
	basis := pricing.Basis(req.PriceBasis)
	if !basis.Valid() {
		return v, "price_basis must be PER_WEIGHT_UNIT or FLAT_PER_UNIT"
	}
	if req.BasePrice == nil || *req.BasePrice < 0 {
		return v, "base_price must be >= 0"
	}
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		return v, "unit is required"
	}
	if len(req.QuantityMethods) == 0 {
		return v, "quantity_methods are required"
	}
	methods := make([]string, 0, len(req.QuantityMethods))
	seen := make(map[quantity.Method]bool)
	for _, s := range req.QuantityMethods {
		m, err := quantity.ParseMethod(s)
		if err != nil {
			return v, fmt.Sprintf("invalid quantity method %q", s)
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		methods = append(methods, string(m))
	}

	var stock pgtype.Int4
	if req.HasStock {
		if req.Stock == nil || *req.Stock < 0 {
			return v, "stock must be >= 0 when has_stock is set"
		}
		stock = pgtype.Int4{Int32: *req.Stock, Valid: true}
	}

	usages, err := parseOptionIDs(req.UsageOptionIDs)
	if err != nil {
		return v, "usage_option_ids: " + err.Error()
	}
	flavors, err := parseOptionIDs(req.FlavorOptionIDs)
	if err != nil {
		return v, "flavor_option_ids: " + err.Error()
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	v.params = database.CreateProductParams{
		Name:            name,
		Description:     strings.TrimSpace(req.Description),
		PriceBasis:      string(basis),
		BasePrice:       *req.BasePrice,
		Unit:            unit,
		QuantityMethods: methods,
		HasRemarks:      req.HasRemarks,
		HasStock:        req.HasStock,
		Stock:           stock,
		IsActive:        active,
	}
	v.usages = usages
	v.flavors = flavors
	return v, ""
}

func parseOptionIDs(in []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(in))
	seen := make(map[uuid.UUID]bool, len(in))
	for i, s := range in {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("[%d] is not a valid id", i)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// replaceOptions rewrites a product's usage/flavor associations in list
// order.
func replaceOptions(ctx context.Context, store ProductWriteStore, productID uuid.UUID, usages, flavors []uuid.UUID) error {
	if err := store.DeleteProductUsageOptions(ctx, productID); err != nil {
		return fmt.Errorf("delete usage options: %w", err)
	}
	if err := store.DeleteProductFlavorOptions(ctx, productID); err != nil {
		return fmt.Errorf("delete flavor options: %w", err)
	}
	for i, id := range usages {
		if err := store.AddProductUsageOption(ctx, database.AddProductUsageOptionParams{
			ProductID:     productID,
			UsageOptionID: id,
			Position:      int32(i),
		}); err != nil {
			return fmt.Errorf("add usage option: %w", err)
		}
	}
	for i, id := range flavors {
		if err := store.AddProductFlavorOption(ctx, database.AddProductFlavorOptionParams{
			ProductID:      productID,
			FlavorOptionID: id,
			Position:       int32(i),
		}); err != nil {
			return fmt.Errorf("add flavor option: %w", err)
		}
	}
	return nil
}

// --- Handlers ---

// List returns all active products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// AdminList returns every product including inactive ones.
func (h *ProductHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request, includeInactive bool) {
	products, err := h.store.ListProducts(r.Context(), includeInactive)
	if err != nil {
		writeInternalError(w, err, "list products")
		return
	}

	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	names, err := loadOptionNames(r.Context(), h.store, ids)
	if err != nil {
		writeInternalError(w, err, "load product options")
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p, names)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single active product by ID.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeInternalError(w, err, "get product")
		return
	}
	if !product.IsActive {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	names, err := loadOptionNames(r.Context(), h.store, []uuid.UUID{id})
	if err != nil {
		writeInternalError(w, err, "load product options")
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product, names))
}

// Create adds a product and its option associations atomically.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	v, msg := validateProductRequest(req)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	resp, err := h.write(r.Context(), func(ctx context.Context, store ProductWriteStore) (database.Product, error) {
		return store.CreateProduct(ctx, v.params)
	}, v)
	if err != nil {
		h.writeWriteError(w, err, "create product")
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Update replaces a product and its option associations atomically.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	v, msg := validateProductRequest(req)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	resp, err := h.write(r.Context(), func(ctx context.Context, store ProductWriteStore) (database.Product, error) {
		p := v.params
		return store.UpdateProduct(ctx, database.UpdateProductParams{
			ID:              id,
			Name:            p.Name,
			Description:     p.Description,
			PriceBasis:      p.PriceBasis,
			BasePrice:       p.BasePrice,
			Unit:            p.Unit,
			QuantityMethods: p.QuantityMethods,
			HasRemarks:      p.HasRemarks,
			HasStock:        p.HasStock,
			Stock:           p.Stock,
			IsActive:        p.IsActive,
		})
	}, v)
	if err != nil {
		h.writeWriteError(w, err, "update product")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ProductHandler) write(ctx context.Context, upsert func(context.Context, ProductWriteStore) (database.Product, error), v validatedProduct) (productResponse, error) {
	tx, err := h.pool.Begin(ctx)
	if err != nil {
		return productResponse{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := h.newStore(tx)

	product, err := upsert(ctx, store)
	if err != nil {
		return productResponse{}, err
	}
	if err := replaceOptions(ctx, store, product.ID, v.usages, v.flavors); err != nil {
		return productResponse{}, err
	}
	names, err := loadOptionNames(ctx, store, []uuid.UUID{product.ID})
	if err != nil {
		return productResponse{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return productResponse{}, fmt.Errorf("commit tx: %w", err)
	}
	return toProductResponse(product, names), nil
}

func (h *ProductHandler) writeWriteError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		writeError(w, http.StatusNotFound, "product not found")
	case isForeignKeyViolation(err):
		writeError(w, http.StatusBadRequest, "unknown usage or flavor option")
	default:
		writeInternalError(w, err, op)
	}
}
