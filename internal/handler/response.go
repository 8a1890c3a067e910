package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/maruko-pickup/api/internal/cart"
	"github.com/maruko-pickup/api/internal/options"
	"github.com/maruko-pickup/api/internal/pricing"
	"github.com/maruko-pickup/api/internal/quantity"
	"github.com/maruko-pickup/api/internal/service"
	"github.com/rs/zerolog/log"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type errorResponse struct {
	Error   string               `json:"error"`
	Details []service.FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeInternalError(w http.ResponseWriter, err error, msg string) {
	log.Error().Err(err).Msg(msg)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// writeValidationError writes a 400 for err and reports whether err was a
// client error at all.
func writeValidationError(w http.ResponseWriter, err error) bool {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   service.ErrValidationFailed.Error(),
			Details: verr.Fields,
		})
		return true
	}
	if isValidationError(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return true
	}
	return false
}

func isValidationError(err error) bool {
	return errors.Is(err, service.ErrValidationFailed) ||
		errors.Is(err, service.ErrInvalidProductID) ||
		errors.Is(err, quantity.ErrInvalidQuantity) ||
		errors.Is(err, pricing.ErrInvalidProduct) ||
		options.IsValidation(err) ||
		errors.Is(err, cart.ErrInvalidCartID) ||
		errors.Is(err, cart.ErrProductNotFound) ||
		errors.Is(err, cart.ErrRemarksNotAllowed) ||
		errors.Is(err, cart.ErrEmptyCart)
}

// pagination reads limit/offset query params. msg is non-empty when either
// is malformed.
func pagination(r *http.Request) (limit, offset int32, msg string) {
	limit = defaultPageLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, "invalid limit"
		}
		if n > maxPageLimit {
			n = maxPageLimit
		}
		limit = int32(n)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, "invalid offset"
		}
		offset = int32(n)
	}
	return limit, offset, ""
}
