package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"inventory-engine/internal/app"
	"inventory-engine/internal/core"

	"github.com/shopspring/decimal"
)

// Fakes embed the interface so unexercised methods panic if reached.

type fakeProduction struct {
	core.ProductionOrderManager
	created []core.CreateProductionOrderInput
	listed  []*core.OrderStatus
}

func (f *fakeProduction) Create(_ context.Context, in core.CreateProductionOrderInput) (*core.ProductionOrder, error) {
	f.created = append(f.created, in)
	return &core.ProductionOrder{ID: 1, ProductID: in.ProductID, PlannedQuantity: in.PlannedQuantity, Status: core.OrderPlanned}, nil
}

func (f *fakeProduction) List(_ context.Context, status *core.OrderStatus) ([]core.ProductionOrder, error) {
	f.listed = append(f.listed, status)
	return nil, nil
}

type fakeSales struct {
	core.SalesHistory
	deliveries []core.DeliveryInput
}

func (f *fakeSales) RecordDelivery(_ context.Context, in core.DeliveryInput) ([]core.SalesRecord, error) {
	f.deliveries = append(f.deliveries, in)
	return []core.SalesRecord{{ID: 1, OrderRef: in.OrderRef}}, nil
}

type fakeForecasts struct {
	core.ForecastEngine
	target time.Time
}

func (f *fakeForecasts) Forecast(_ context.Context, productID int, method core.ForecastMethod, target time.Time) (*core.Forecast, error) {
	f.target = target
	return &core.Forecast{ProductID: productID, Method: method, TargetDate: target}, nil
}

type fakeLedger struct {
	core.StockLedger
	expiryDays int
}

func (f *fakeLedger) ExpiringLots(_ context.Context, days int) ([]core.ExpiringLot, error) {
	f.expiryDays = days
	return nil, nil
}

type fakeReplenishment struct {
	core.ReplenishmentAnalytics
	from, to time.Time
}

func (f *fakeReplenishment) ClassifyABC(_ context.Context, from, to time.Time) ([]core.ABCClassification, error) {
	f.from, f.to = from, to
	return []core.ABCClassification{{ProductID: 1, Category: core.CategoryA}}, nil
}

type fixture struct {
	svc           app.ApplicationService
	ledger        *fakeLedger
	production    *fakeProduction
	sales         *fakeSales
	forecasts     *fakeForecasts
	replenishment *fakeReplenishment
}

func newFixture() *fixture {
	f := &fixture{
		ledger:        &fakeLedger{},
		production:    &fakeProduction{},
		sales:         &fakeSales{},
		forecasts:     &fakeForecasts{},
		replenishment: &fakeReplenishment{},
	}
	f.svc = app.NewAppService(app.Dependencies{
		Ledger:           f.ledger,
		Production:       f.production,
		Sales:            f.sales,
		Forecasts:        f.forecasts,
		Replenishment:    f.replenishment,
		ExpiryWindowDays: 14,
	})
	return f
}

func assertValidationField(t *testing.T, err error, field string) {
	t.Helper()
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Expected *core.ValidationError, got %v", err)
	}
	if ve.Field != field {
		t.Errorf("Expected failing field %q, got %q (%s)", field, ve.Field, ve.Reason)
	}
}

func TestCreateProductionOrder_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   app.CreateProductionOrderRequest
		field string
	}{
		{"missing product", app.CreateProductionOrderRequest{PlannedQuantity: 5}, "product_id"},
		{"zero quantity", app.CreateProductionOrderRequest{ProductID: 1}, "planned_quantity"},
		{"negative quantity", app.CreateProductionOrderRequest{ProductID: 1, PlannedQuantity: -3}, "planned_quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.CreateProductionOrder(context.Background(), tt.req)
			assertValidationField(t, err, tt.field)
			if len(f.production.created) != 0 {
				t.Error("Expected invalid request not to reach the order manager")
			}
		})
	}

	f := newFixture()
	order, err := f.svc.CreateProductionOrder(context.Background(), app.CreateProductionOrderRequest{ProductID: 3, PlannedQuantity: 10})
	if err != nil {
		t.Fatalf("Expected valid request to pass, got %v", err)
	}
	if order.Status != core.OrderPlanned || f.production.created[0].PlannedQuantity != 10 {
		t.Errorf("Unexpected order %+v", order)
	}
}

func TestRecordDelivery_ValidatesLines(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.RecordDelivery(ctx, app.DeliveryRequest{OrderRef: "SO-1"})
	assertValidationField(t, err, "lines")

	_, err = f.svc.RecordDelivery(ctx, app.DeliveryRequest{
		OrderRef: "SO-1",
		Lines:    []app.DeliveryLine{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 0}},
	})
	assertValidationField(t, err, "lines[1].quantity")

	_, err = f.svc.RecordDelivery(ctx, app.DeliveryRequest{
		OrderRef: "SO-1",
		SoldOn:   "18/10/2026",
		Lines:    []app.DeliveryLine{{ProductID: 1, Quantity: 2}},
	})
	assertValidationField(t, err, "sold_on")

	res, err := f.svc.RecordDelivery(ctx, app.DeliveryRequest{
		OrderRef: "SO-1",
		SoldOn:   "2026-10-18",
		Lines:    []app.DeliveryLine{{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(3)}},
	})
	if err != nil {
		t.Fatalf("Expected valid delivery to pass, got %v", err)
	}
	if len(res.Sales) != 1 || f.sales.deliveries[0].SoldOn == nil || f.sales.deliveries[0].SoldOn.Day() != 18 {
		t.Errorf("Unexpected delivery forwarded: %+v", f.sales.deliveries)
	}
}

func TestForecast_ParsesMethodAndDate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Forecast(ctx, app.ForecastRequest{ProductID: 1, Method: "NAIVE", TargetDate: "2026-11-01"})
	assertValidationField(t, err, "method")

	_, err = f.svc.Forecast(ctx, app.ForecastRequest{ProductID: 1, Method: "MOVING_AVERAGE"})
	assertValidationField(t, err, "target_date")

	got, err := f.svc.Forecast(ctx, app.ForecastRequest{ProductID: 1, Method: "LINEAR_REGRESSION", TargetDate: "2026-11-01"})
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if got.Method != core.MethodLinearRegression || f.forecasts.target.Month() != time.November {
		t.Errorf("Unexpected forecast call: %+v", got)
	}
}

func TestClassifyABC_RequiresBothDates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.ClassifyABC(ctx, app.DateRange{From: "2026-01-01"})
	assertValidationField(t, err, "to")

	res, err := f.svc.ClassifyABC(ctx, app.DateRange{From: "2026-01-01", To: "2026-03-31"})
	if err != nil {
		t.Fatalf("ClassifyABC failed: %v", err)
	}
	if len(res.Classifications) != 1 || f.replenishment.to.Month() != time.March {
		t.Errorf("Unexpected classification call: %+v", res)
	}
}

func TestListProductionOrders_StatusFilter(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.ListProductionOrders(ctx, ""); err != nil {
		t.Fatalf("List without filter failed: %v", err)
	}
	if _, err := f.svc.ListProductionOrders(ctx, "IN_PROGRESS"); err != nil {
		t.Fatalf("List with filter failed: %v", err)
	}
	if f.production.listed[0] != nil || *f.production.listed[1] != core.OrderInProgress {
		t.Errorf("Unexpected filters: %v", f.production.listed)
	}

	_, err := f.svc.ListProductionOrders(ctx, "SHIPPED")
	if !errors.Is(err, core.ErrValidation) {
		t.Errorf("Expected ValidationError for unknown status, got %v", err)
	}
}

func TestExpiringLots_DefaultsToConfiguredWindow(t *testing.T) {
	f := newFixture()
	res, err := f.svc.ExpiringLots(context.Background(), 0)
	if err != nil {
		t.Fatalf("ExpiringLots failed: %v", err)
	}
	if f.ledger.expiryDays != 14 || res.WithinDays != 14 {
		t.Errorf("Expected window 14, got %d", f.ledger.expiryDays)
	}
}

func TestCreateProduct_FieldLimits(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'x'
	}
	_, err := f.svc.CreateProduct(ctx, app.ProductRequest{Name: string(long)})
	assertValidationField(t, err, "name")

	_, err = f.svc.CreateProduct(ctx, app.ProductRequest{Name: "Gummies", MinStock: -1})
	assertValidationField(t, err, "min_stock")
}
