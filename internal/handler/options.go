package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/maruko-pickup/api/internal/database"
)

// OptionStore defines the database methods needed by option handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OptionStore interface {
	ListUsageOptions(ctx context.Context) ([]database.UsageOption, error)
	ListFlavorOptions(ctx context.Context) ([]database.FlavorOption, error)
	UpsertUsageOption(ctx context.Context, arg database.UpsertUsageOptionParams) (database.UsageOption, error)
	UpsertFlavorOption(ctx context.Context, arg database.UpsertFlavorOptionParams) (database.FlavorOption, error)
}

// OptionHandler handles the usage and flavor option lists.
type OptionHandler struct {
	store OptionStore
}

// NewOptionHandler creates a new OptionHandler.
func NewOptionHandler(store OptionStore) *OptionHandler {
	return &OptionHandler{store: store}
}

// RegisterRoutes registers option endpoints on the given Chi router.
// Expected to be mounted at /admin/options.
func (h *OptionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Put("/usages", h.UpsertUsage)
	r.Put("/flavors", h.UpsertFlavor)
}

// --- Request / Response types ---

type upsertOptionRequest struct {
	Name      string `json:"name"`
	SortOrder int32  `json:"sort_order"`
}

type optionResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SortOrder int32     `json:"sort_order"`
}

type optionListResponse struct {
	Usages  []optionResponse `json:"usages"`
	Flavors []optionResponse `json:"flavors"`
}

// --- Handlers ---

// List returns the active usage and flavor options, each sorted by
// sort_order then name.
func (h *OptionHandler) List(w http.ResponseWriter, r *http.Request) {
	usages, err := h.store.ListUsageOptions(r.Context())
	if err != nil {
		writeInternalError(w, err, "list usage options")
		return
	}
	flavors, err := h.store.ListFlavorOptions(r.Context())
	if err != nil {
		writeInternalError(w, err, "list flavor options")
		return
	}

	resp := optionListResponse{
		Usages:  make([]optionResponse, len(usages)),
		Flavors: make([]optionResponse, len(flavors)),
	}
	for i, u := range usages {
		resp.Usages[i] = optionResponse{ID: u.ID, Name: u.Name, SortOrder: u.SortOrder}
	}
	for i, f := range flavors {
		resp.Flavors[i] = optionResponse{ID: f.ID, Name: f.Name, SortOrder: f.SortOrder}
	}

	writeJSON(w, http.StatusOK, resp)
}

// UpsertUsage creates a usage option or updates its sort order.
func (h *OptionHandler) UpsertUsage(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeOptionRequest(w, r)
	if !ok {
		return
	}

	u, err := h.store.UpsertUsageOption(r.Context(), database.UpsertUsageOptionParams{
		Name:      req.Name,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		writeInternalError(w, err, "upsert usage option")
		return
	}

	writeJSON(w, http.StatusOK, optionResponse{ID: u.ID, Name: u.Name, SortOrder: u.SortOrder})
}

// UpsertFlavor creates a flavor option or updates its sort order.
func (h *OptionHandler) UpsertFlavor(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeOptionRequest(w, r)
	if !ok {
		return
	}

	f, err := h.store.UpsertFlavorOption(r.Context(), database.UpsertFlavorOptionParams{
		Name:      req.Name,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		writeInternalError(w, err, "upsert flavor option")
		return
	}

	writeJSON(w, http.StatusOK, optionResponse{ID: f.ID, Name: f.Name, SortOrder: f.SortOrder})
}

func decodeOptionRequest(w http.ResponseWriter, r *http.Request) (upsertOptionRequest, bool) {
	var req upsertOptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return req, false
	}
	return req, true
}
