package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"inventory-engine/internal/config"
	"inventory-engine/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type stockShortage struct {
	Entity    string `json:"entity"`
	EntityID  int    `json:"entity_id"`
	Name      string `json:"name"`
	Available string `json:"available"`
	Required  string `json:"required"`
	Shortfall string `json:"shortfall"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorDetails(w, r, message, code, status, nil)
}

func writeErrorDetails(w http.ResponseWriter, r *http.Request, message, code string, status int, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// serviceError maps engine error kinds to HTTP statuses. Anything unrecognised is
// logged and reported as a bare 500 so internals never leak to clients.
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var stockErr *core.InsufficientStockError
	var validationErr *core.ValidationError
	switch {
	case errors.As(err, &stockErr):
		writeErrorDetails(w, r, stockErr.Error(), "INSUFFICIENT_STOCK", http.StatusConflict, stockShortage{
			Entity:    stockErr.Entity,
			EntityID:  stockErr.EntityID,
			Name:      stockErr.Name,
			Available: stockErr.Available.String(),
			Required:  stockErr.Required.String(),
			Shortfall: stockErr.Shortfall().String(),
		})
	case errors.As(err, &validationErr):
		var details map[string]string
		if validationErr.Field != "" {
			details = map[string]string{"field": validationErr.Field}
		}
		writeErrorDetails(w, r, validationErr.Error(), "VALIDATION_ERROR", http.StatusBadRequest, details)
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrInvalidTransition):
		writeError(w, r, err.Error(), "INVALID_STATE_TRANSITION", http.StatusConflict)
	default:
		config.LogError(h.logger, "web", "serviceError", r.Method+" "+r.URL.Path,
			map[string]any{"request_id": requestIDFromContext(r.Context())}, err)
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
