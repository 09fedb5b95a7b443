package web

import "net/http"

// apiListAlerts handles GET /api/alerts.
func (h *Handler) apiListAlerts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListAlerts(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiAcknowledgeAlert handles POST /api/alerts/{id}/ack.
func (h *Handler) apiAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	a, err := h.svc.AcknowledgeAlert(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, a)
}

// apiCheckLowStock handles POST /api/alerts/checks/low-stock.
func (h *Handler) apiCheckLowStock(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.CheckLowStock(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiCheckExpiringLots handles POST /api/alerts/checks/expiring-lots.
func (h *Handler) apiCheckExpiringLots(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.CheckExpiringLots(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiDashboard handles GET /api/dashboard.
func (h *Handler) apiDashboard(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.svc.GetDashboard(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, metrics)
}

// apiVerifyIntegrity handles GET /api/integrity.
func (h *Handler) apiVerifyIntegrity(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.VerifyIntegrity(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
