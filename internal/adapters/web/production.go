package web

import (
	"context"
	"net/http"

	"inventory-engine/internal/app"
	"inventory-engine/internal/core"
)

// apiListProductionOrders handles GET /api/production-orders?status=S.
func (h *Handler) apiListProductionOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListProductionOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiCreateProductionOrder handles POST /api/production-orders.
func (h *Handler) apiCreateProductionOrder(w http.ResponseWriter, r *http.Request) {
	var req app.CreateProductionOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.svc.CreateProductionOrder(r.Context(), req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, order)
}

// apiGetProductionOrder handles GET /api/production-orders/{id}.
func (h *Handler) apiGetProductionOrder(w http.ResponseWriter, r *http.Request) {
	h.orderAction(w, r, h.svc.GetProductionOrder)
}

// apiStartProductionOrder handles POST /api/production-orders/{id}/start.
func (h *Handler) apiStartProductionOrder(w http.ResponseWriter, r *http.Request) {
	h.orderAction(w, r, h.svc.StartProductionOrder)
}

// apiCancelProductionOrder handles POST /api/production-orders/{id}/cancel.
func (h *Handler) apiCancelProductionOrder(w http.ResponseWriter, r *http.Request) {
	h.orderAction(w, r, h.svc.CancelProductionOrder)
}

// apiCompleteProductionOrder handles POST /api/production-orders/{id}/complete.
// The body is optional: {"actor": "..."}.
func (h *Handler) apiCompleteProductionOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var body struct {
		Actor string `json:"actor"`
	}
	if !decodeOptionalJSON(w, r, &body) {
		return
	}
	order, err := h.svc.CompleteProductionOrder(r.Context(), id, body.Actor)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, order)
}

func (h *Handler) orderAction(w http.ResponseWriter, r *http.Request,
	action func(ctx context.Context, id int) (*core.ProductionOrder, error)) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	order, err := action(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, order)
}
