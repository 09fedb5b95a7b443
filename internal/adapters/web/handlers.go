package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"inventory-engine/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	logger logrus.FieldLogger
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, logger logrus.FieldLogger, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	r.Get("/api/health", h.health)

	// ── Materials & lots ──────────────────────────────────────────────────────
	r.Get("/api/materials", h.apiListMaterials)
	r.Post("/api/materials", h.apiCreateMaterial)
	r.Get("/api/materials/{id}", h.apiGetMaterial)
	r.Put("/api/materials/{id}", h.apiUpdateMaterial)
	r.Get("/api/materials/{id}/lots", h.apiListLots)
	r.Post("/api/materials/{id}/lots", h.apiAddLot)
	r.Post("/api/materials/{id}/consume", h.apiConsumeMaterial)
	r.Get("/api/lots/expiring", h.apiExpiringLots)

	// ── Products & finished goods ─────────────────────────────────────────────
	r.Get("/api/products", h.apiListProducts)
	r.Post("/api/products", h.apiCreateProduct)
	r.Get("/api/products/{id}", h.apiGetProduct)
	r.Put("/api/products/{id}", h.apiUpdateProduct)
	r.Delete("/api/products/{id}", h.apiDeactivateProduct)
	r.Get("/api/products/{id}/recipe", h.apiGetRecipe)
	r.Put("/api/products/{id}/recipe", h.apiSetRecipe)
	r.Get("/api/products/{id}/inventory", h.apiGetInventory)
	r.Get("/api/products/{id}/movements", h.apiListMovements)
	r.Post("/api/products/{id}/movements", h.apiRecordMovement)
	r.Get("/api/inventory", h.apiListInventory)
	r.Get("/api/inventory/low-stock", h.apiLowStock)

	// ── Production ────────────────────────────────────────────────────────────
	r.Get("/api/production-orders", h.apiListProductionOrders)
	r.Post("/api/production-orders", h.apiCreateProductionOrder)
	r.Get("/api/production-orders/{id}", h.apiGetProductionOrder)
	r.Post("/api/production-orders/{id}/start", h.apiStartProductionOrder)
	r.Post("/api/production-orders/{id}/complete", h.apiCompleteProductionOrder)
	r.Post("/api/production-orders/{id}/cancel", h.apiCancelProductionOrder)

	// ── Sales & analytics ─────────────────────────────────────────────────────
	r.Post("/api/sales/deliveries", h.apiRecordDelivery)
	r.Get("/api/products/{id}/sales", h.apiListSales)
	r.Post("/api/products/{id}/forecasts", h.apiForecast)
	r.Get("/api/products/{id}/forecasts", h.apiListForecasts)
	r.Get("/api/products/{id}/forecast-error", h.apiForecastError)
	r.Post("/api/products/{id}/eoq", h.apiComputeEOQ)
	r.Get("/api/products/{id}/eoq", h.apiListEOQ)
	r.Post("/api/analytics/abc", h.apiClassifyABC)
	r.Get("/api/analytics/abc", h.apiListABC)

	// ── Alerts & operations ───────────────────────────────────────────────────
	r.Get("/api/alerts", h.apiListAlerts)
	r.Post("/api/alerts/{id}/ack", h.apiAcknowledgeAlert)
	r.Post("/api/alerts/checks/low-stock", h.apiCheckLowStock)
	r.Post("/api/alerts/checks/expiring-lots", h.apiCheckExpiringLots)
	r.Get("/api/dashboard", h.apiDashboard)
	r.Get("/api/integrity", h.apiVerifyIntegrity)

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	return decodeBody(w, r, v, false)
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be omitted.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	return decodeBody(w, r, v, true)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// idParam parses the {id} URL parameter, writing a 400 when it is not a positive integer.
func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid id "+strconv.Quote(chi.URLParam(r, "id")), "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter; absent means def.
func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, r, name+" must be an integer", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

// activeOnly is true unless ?all=true is given.
func activeOnly(r *http.Request) bool {
	return r.URL.Query().Get("all") != "true"
}
