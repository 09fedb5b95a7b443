package web

import (
	"net/http"

	"inventory-engine/internal/app"
)

// apiListMaterials handles GET /api/materials.
func (h *Handler) apiListMaterials(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListMaterials(r.Context(), activeOnly(r))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiCreateMaterial handles POST /api/materials.
func (h *Handler) apiCreateMaterial(w http.ResponseWriter, r *http.Request) {
	var req app.MaterialRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := h.svc.CreateMaterial(r.Context(), req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, m)
}

// apiGetMaterial handles GET /api/materials/{id}.
func (h *Handler) apiGetMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	m, err := h.svc.GetMaterial(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, m)
}

// apiUpdateMaterial handles PUT /api/materials/{id}.
func (h *Handler) apiUpdateMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req app.MaterialRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := h.svc.UpdateMaterial(r.Context(), id, req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, m)
}

// apiListLots handles GET /api/materials/{id}/lots.
func (h *Handler) apiListLots(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	result, err := h.svc.ListLots(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiAddLot handles POST /api/materials/{id}/lots.
func (h *Handler) apiAddLot(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req app.AddLotRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.MaterialID = id
	lot, err := h.svc.AddLot(r.Context(), req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, lot)
}

// apiConsumeMaterial handles POST /api/materials/{id}/consume.
func (h *Handler) apiConsumeMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req app.ConsumeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.MaterialID = id
	result, err := h.svc.ConsumeMaterial(r.Context(), req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiExpiringLots handles GET /api/lots/expiring?days=N.
func (h *Handler) apiExpiringLots(w http.ResponseWriter, r *http.Request) {
	days, ok := queryInt(w, r, "days", 0)
	if !ok {
		return
	}
	result, err := h.svc.ExpiringLots(r.Context(), days)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
