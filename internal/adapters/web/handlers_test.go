package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inventory-engine/internal/adapters/web"
	"inventory-engine/internal/app"
	"inventory-engine/internal/core"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// fakeService embeds the interface; only the methods a test exercises are overridden.
type fakeService struct {
	app.ApplicationService
	orderErr   error
	lastActor  string
	lastOrder  int
	lastRecipe app.SetRecipeRequest
}

func (f *fakeService) CompleteProductionOrder(_ context.Context, id int, actor string) (*core.ProductionOrder, error) {
	f.lastOrder, f.lastActor = id, actor
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return &core.ProductionOrder{ID: id, Status: core.OrderCompleted}, nil
}

func (f *fakeService) GetProductionOrder(_ context.Context, id int) (*core.ProductionOrder, error) {
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return &core.ProductionOrder{ID: id, Status: core.OrderPlanned}, nil
}

func (f *fakeService) SetRecipe(_ context.Context, req app.SetRecipeRequest) (*app.RecipeResult, error) {
	f.lastRecipe = req
	return &app.RecipeResult{ProductID: req.ProductID}, nil
}

func (f *fakeService) ListAlerts(context.Context) (*app.AlertListResult, error) {
	panic("boom")
}

func newServer(svc app.ApplicationService) http.Handler {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return web.NewHandler(svc, logger, "https://ops.example.com")
}

type errorBody struct {
	Error     string         `json:"error"`
	Code      string         `json:"code"`
	Details   map[string]any `json:"details"`
	RequestID string         `json:"request_id"`
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, errorBody) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var eb errorBody
	if rec.Code >= 400 {
		if err := json.Unmarshal(rec.Body.Bytes(), &eb); err != nil {
			t.Fatalf("Expected JSON error body, got %q", rec.Body.String())
		}
	}
	return rec, eb
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", &core.NotFoundError{Entity: "production order", ID: 7}, http.StatusNotFound, "NOT_FOUND"},
		{"validation", &core.ValidationError{Field: "planned_quantity", Reason: "must be positive"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"insufficient stock", &core.InsufficientStockError{
			Entity: "material", EntityID: 3, Name: "Sugar",
			Available: decimal.NewFromInt(15), Required: decimal.NewFromInt(20),
		}, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"invalid transition", &core.InvalidStateTransitionError{OrderID: 7, From: core.OrderPlanned, To: core.OrderCompleted}, http.StatusConflict, "INVALID_STATE_TRANSITION"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(&fakeService{orderErr: tt.err})
			rec, body := do(t, srv, http.MethodPost, "/api/production-orders/7/complete", "")
			if rec.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, rec.Code)
			}
			if body.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, body.Code)
			}
			if body.RequestID == "" {
				t.Error("Expected request_id in error body")
			}
		})
	}
}

func TestInsufficientStockDetails(t *testing.T) {
	srv := newServer(&fakeService{orderErr: &core.InsufficientStockError{
		Entity: "material", EntityID: 3, Name: "Sugar",
		Available: decimal.NewFromInt(15), Required: decimal.NewFromInt(20),
	}})
	_, body := do(t, srv, http.MethodPost, "/api/production-orders/7/complete", "")
	if body.Details["name"] != "Sugar" || body.Details["shortfall"] != "5" {
		t.Errorf("Expected shortage details naming Sugar short by 5, got %v", body.Details)
	}
}

func TestUnexpectedErrorIsNotLeaked(t *testing.T) {
	srv := newServer(&fakeService{orderErr: errors.New("pq: password authentication failed")})
	_, body := do(t, srv, http.MethodGet, "/api/production-orders/1", "")
	if strings.Contains(body.Error, "password") {
		t.Errorf("Expected internal error text hidden, got %q", body.Error)
	}
}

func TestCompleteProductionOrder_OptionalBody(t *testing.T) {
	svc := &fakeService{}
	srv := newServer(svc)

	rec, _ := do(t, srv, http.MethodPost, "/api/production-orders/4/complete", "")
	if rec.Code != http.StatusOK || svc.lastOrder != 4 || svc.lastActor != "" {
		t.Errorf("Expected completion without body, got %d actor=%q", rec.Code, svc.lastActor)
	}

	rec, _ = do(t, srv, http.MethodPost, "/api/production-orders/4/complete", `{"actor":"line-2"}`)
	if rec.Code != http.StatusOK || svc.lastActor != "line-2" {
		t.Errorf("Expected actor line-2, got %d actor=%q", rec.Code, svc.lastActor)
	}

	rec, body := do(t, srv, http.MethodPost, "/api/production-orders/4/complete", `{"actor":`)
	if rec.Code != http.StatusBadRequest || body.Code != "BAD_REQUEST" {
		t.Errorf("Expected 400 for malformed JSON, got %d %s", rec.Code, body.Code)
	}
}

func TestInvalidIDParam(t *testing.T) {
	srv := newServer(&fakeService{})
	for _, path := range []string{"/api/production-orders/abc", "/api/production-orders/0", "/api/production-orders/-2"} {
		rec, body := do(t, srv, http.MethodGet, path, "")
		if rec.Code != http.StatusBadRequest || body.Code != "BAD_REQUEST" {
			t.Errorf("%s: expected 400 BAD_REQUEST, got %d %s", path, rec.Code, body.Code)
		}
	}
}

func TestSetRecipe_PathOverridesBody(t *testing.T) {
	svc := &fakeService{}
	srv := newServer(svc)

	rec, _ := do(t, srv, http.MethodPut, "/api/products/9/recipe",
		`{"product_id": 1, "items": [{"material_id": 2, "quantity_per_unit": "0.25"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastRecipe.ProductID != 9 {
		t.Errorf("Expected product id from path, got %d", svc.lastRecipe.ProductID)
	}
	if len(svc.lastRecipe.Items) != 1 || !svc.lastRecipe.Items[0].QuantityPerUnit.Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("Unexpected items: %+v", svc.lastRecipe.Items)
	}
}

func TestRequestBodyLimit(t *testing.T) {
	srv := newServer(&fakeService{})
	big := `{"items": [` + strings.Repeat(`{"material_id": 1},`, 60000) + `{"material_id": 1}]}`
	rec, body := do(t, srv, http.MethodPut, "/api/products/9/recipe", big)
	if rec.Code != http.StatusRequestEntityTooLarge || body.Code != "REQUEST_TOO_LARGE" {
		t.Errorf("Expected 413, got %d %s", rec.Code, body.Code)
	}
}

func TestRecovererReturnsJSON500(t *testing.T) {
	srv := newServer(&fakeService{})
	rec, body := do(t, srv, http.MethodGet, "/api/alerts", "")
	if rec.Code != http.StatusInternalServerError || body.Code != "INTERNAL_ERROR" {
		t.Errorf("Expected recovered 500, got %d %s", rec.Code, body.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv := newServer(&fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "trace-123" {
		t.Errorf("Expected caller request id echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "bad id with spaces")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got == "bad id with spaces" || got == "" {
		t.Errorf("Expected unsafe request id replaced, got %q", got)
	}
}

func TestCORS(t *testing.T) {
	srv := newServer(&fakeService{})

	req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	req.Header.Set("Origin", "https://ops.example.com")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "https://ops.example.com" {
		t.Errorf("Expected preflight allowed, got %d %q", rec.Code, rec.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("Expected no CORS header for unknown origin")
	}
}
