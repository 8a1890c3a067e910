package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/maruko-pickup/api/internal/database"
	"github.com/maruko-pickup/api/internal/enum"
	"github.com/maruko-pickup/api/internal/jpfmt"
	"github.com/maruko-pickup/api/internal/quantity"
)

const dateLayout = "2006-01-02"

// maxReportDays bounds the daily-sales range.
const maxReportDays = 366

// ReportsStore defines the database methods needed by report handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ReportsStore interface {
	GetPickupStatusCounts(ctx context.Context, pickupDate pgtype.Date) ([]database.GetPickupStatusCountsRow, error)
	GetPickupProductTotals(ctx context.Context, pickupDate pgtype.Date) ([]database.GetPickupProductTotalsRow, error)
	GetDailySales(ctx context.Context, arg database.GetDailySalesParams) ([]database.GetDailySalesRow, error)
}

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	store ReportsStore
	now   func() time.Time
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(store ReportsStore) *ReportsHandler {
	return &ReportsHandler{store: store, now: time.Now}
}

// RegisterRoutes registers report endpoints on the given Chi router.
// Expected to be mounted at /admin/reports.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/pickup-summary", h.PickupSummary)
	r.Get("/daily-sales", h.DailySales)
}

// --- Response types ---

type statusCountResponse struct {
	Status      string `json:"status"`
	StatusLabel string `json:"status_label"`
	OrderCount  int64  `json:"order_count"`
	TotalAmount int64  `json:"total_amount"`
}

type productTotalResponse struct {
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	Unit          string    `json:"unit"`
	Method        string    `json:"method"`
	MethodLabel   string    `json:"method_label"`
	TotalQuantity int64     `json:"total_quantity"`
	Display       string    `json:"display"`
	LineCount     int64     `json:"line_count"`
}

type pickupSummaryResponse struct {
	Date        string                 `json:"date"`
	OrderCount  int64                  `json:"order_count"`
	TotalAmount int64                  `json:"total_amount"`
	Statuses    []statusCountResponse  `json:"statuses"`
	Products    []productTotalResponse `json:"products"`
}

type dailySalesResponse struct {
	Date         string `json:"date"`
	OrderCount   int64  `json:"order_count"`
	TotalRevenue int64  `json:"total_revenue"`
}

// --- Handlers ---

// PickupSummary returns the preparation list for one pickup date: order
// counts per status and the summed quantity of every product and method.
// Cancelled orders are counted in statuses but excluded from totals.
func (h *ReportsHandler) PickupSummary(w http.ResponseWriter, r *http.Request) {
	day := h.today()
	if s := r.URL.Query().Get("date"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		day = t
	}
	date := pgtype.Date{Time: day, Valid: true}

	counts, err := h.store.GetPickupStatusCounts(r.Context(), date)
	if err != nil {
		writeInternalError(w, err, "get pickup status counts")
		return
	}
	totals, err := h.store.GetPickupProductTotals(r.Context(), date)
	if err != nil {
		writeInternalError(w, err, "get pickup product totals")
		return
	}

	resp := pickupSummaryResponse{
		Date:     day.Format(dateLayout),
		Statuses: make([]statusCountResponse, len(counts)),
		Products: make([]productTotalResponse, len(totals)),
	}
	for i, c := range counts {
		resp.Statuses[i] = statusCountResponse{
			Status:      string(c.Status),
			StatusLabel: enum.OrderStatusLabel(string(c.Status)),
			OrderCount:  c.OrderCount,
			TotalAmount: c.TotalAmount,
		}
		if c.Status == database.OrderStatusCANCELLED {
			continue
		}
		resp.OrderCount += c.OrderCount
		resp.TotalAmount += c.TotalAmount
	}
	for i, t := range totals {
		m := quantity.Method(t.Method)
		resp.Products[i] = productTotalResponse{
			ProductID:     t.ProductID,
			ProductName:   t.ProductName,
			Unit:          t.ProductUnit,
			Method:        t.Method,
			MethodLabel:   m.Label(),
			TotalQuantity: t.TotalQuantity,
			Display:       quantity.DescribeCanonical(m, t.TotalQuantity),
			LineCount:     t.LineCount,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// DailySales returns non-cancelled order totals per pickup date. Defaults
// to the last 30 days.
func (h *ReportsHandler) DailySales(w http.ResponseWriter, r *http.Request) {
	start, end, err := h.parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.store.GetDailySales(r.Context(), database.GetDailySalesParams{
		StartDate: pgtype.Date{Time: start, Valid: true},
		EndDate:   pgtype.Date{Time: end, Valid: true},
	})
	if err != nil {
		writeInternalError(w, err, "get daily sales")
		return
	}

	resp := make([]dailySalesResponse, len(rows))
	for i, row := range rows {
		resp[i] = dailySalesResponse{
			Date:         row.PickupDate.Time.Format(dateLayout),
			OrderCount:   row.OrderCount,
			TotalRevenue: row.TotalRevenue,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

// today is the current shop date as a UTC midnight, the form pgtype.Date
// round-trips.
func (h *ReportsHandler) today() time.Time {
	n := h.now().In(jpfmt.JST)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// parseDateRange reads inclusive start_date and end_date query params.
func (h *ReportsHandler) parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	end := h.today()
	start := end.AddDate(0, 0, -30)

	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid start_date, expected YYYY-MM-DD")
		}
		start = t
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid end_date, expected YYYY-MM-DD")
		}
		end = t
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, errors.New("start_date must not be after end_date")
	}
	if end.Sub(start) > maxReportDays*24*time.Hour {
		return time.Time{}, time.Time{}, errors.New("date range is too long")
	}
	return start, end, nil
}
