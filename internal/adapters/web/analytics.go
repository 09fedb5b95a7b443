package web

import (
	"net/http"

	"inventory-engine/internal/app"
)

// apiRecordDelivery handles POST /api/sales/deliveries.
func (h *Handler) apiRecordDelivery(w http.ResponseWriter, r *http.Request) {
	var req app.DeliveryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.RecordDelivery(r.Context(), req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

// apiListSales handles GET /api/products/{id}/sales?from=&to=.
func (h *Handler) apiListSales(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	result, err := h.svc.ListSales(r.Context(), id, q.Get("from"), q.Get("to"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiForecast handles POST /api/products/{id}/forecasts.
func (h *Handler) apiForecast(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req app.ForecastRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ProductID = id
	f, err := h.svc.Forecast(r.Context(), req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, f)
}

// apiListForecasts handles GET /api/products/{id}/forecasts.
func (h *Handler) apiListForecasts(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	result, err := h.svc.ListForecasts(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiForecastError handles GET /api/products/{id}/forecast-error?from=&to=.
func (h *Handler) apiForecastError(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	acc, err := h.svc.ForecastError(r.Context(), id, app.DateRange{From: q.Get("from"), To: q.Get("to")})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, acc)
}

// apiComputeEOQ handles POST /api/products/{id}/eoq.
func (h *Handler) apiComputeEOQ(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req app.EOQRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ProductID = id
	result, err := h.svc.ComputeEOQ(r.Context(), req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

// apiListEOQ handles GET /api/products/{id}/eoq.
func (h *Handler) apiListEOQ(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	result, err := h.svc.ListEOQHistory(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiClassifyABC handles POST /api/analytics/abc with {"from": ..., "to": ...}.
func (h *Handler) apiClassifyABC(w http.ResponseWriter, r *http.Request) {
	var period app.DateRange
	if !decodeJSON(w, r, &period) {
		return
	}
	result, err := h.svc.ClassifyABC(r.Context(), period)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiListABC handles GET /api/analytics/abc.
func (h *Handler) apiListABC(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListABC(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
