package core_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"inventory-engine/internal/core"
)

// setupGummyRecipe seeds one product needing 2 units of material A per unit produced.
func setupGummyRecipe(t *testing.T, e *testEngine, stockA string) (*core.Product, *core.Material) {
	t.Helper()
	p := e.mustProduct(t, "Gummy bears", 0)
	a := e.mustMaterial(t, "Material A", "0")
	if stockA != "0" {
		e.mustLot(t, a.ID, stockA, intPtr(30))
	}
	if _, err := e.recipes.SetRecipe(e.ctx, p.ID, []core.RecipeItemInput{{MaterialID: a.ID, QuantityPerUnit: dec("2")}}); err != nil {
		t.Fatalf("SetRecipe failed: %v", err)
	}
	return p, a
}

func TestRecipeCatalog_SetRecipeReplaces(t *testing.T) {
	e := setupTestDB(t)
	p := e.mustProduct(t, "Sour worms", 0)
	a := e.mustMaterial(t, "Sugar", "0")
	b := e.mustMaterial(t, "Acid", "0")

	if _, err := e.recipes.SetRecipe(e.ctx, p.ID, []core.RecipeItemInput{
		{MaterialID: a.ID, QuantityPerUnit: dec("1")},
		{MaterialID: b.ID, QuantityPerUnit: dec("0.1")},
	}); err != nil {
		t.Fatalf("SetRecipe failed: %v", err)
	}
	items, err := e.recipes.SetRecipe(e.ctx, p.ID, []core.RecipeItemInput{{MaterialID: b.ID, QuantityPerUnit: dec("0.2")}})
	if err != nil {
		t.Fatalf("SetRecipe replace failed: %v", err)
	}
	if len(items) != 1 || items[0].MaterialID != b.ID || !items[0].QuantityPerUnit.Equal(dec("0.2")) {
		t.Errorf("Expected recipe replaced by single Acid line, got %+v", items)
	}

	_, err = e.recipes.SetRecipe(e.ctx, p.ID, []core.RecipeItemInput{{MaterialID: 9999, QuantityPerUnit: dec("1")}})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected NotFound for unknown material, got %v", err)
	}
	got, _ := e.recipes.GetRecipe(e.ctx, p.ID)
	if len(got) != 1 {
		t.Errorf("Expected failed replace to keep previous recipe, got %d lines", len(got))
	}
}

func TestProductionOrder_CreateChecksCoverage(t *testing.T) {
	e := setupTestDB(t)
	p, _ := setupGummyRecipe(t, e, "15")

	_, err := e.production.Create(e.ctx, core.CreateProductionOrderInput{ProductID: p.ID, PlannedQuantity: 10})
	var stockErr *core.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("Expected InsufficientStockError with 15 on hand for 20 required, got %v", err)
	}
	if !stockErr.Required.Equal(dec("20")) || stockErr.Name != "Material A" {
		t.Errorf("Unexpected error detail: %v", stockErr)
	}
	orders, _ := e.production.List(e.ctx, nil)
	if len(orders) != 0 {
		t.Errorf("Expected no order stored, got %d", len(orders))
	}
}

func TestProductionOrder_CreateRequiresRecipe(t *testing.T) {
	e := setupTestDB(t)
	p := e.mustProduct(t, "Bare product", 0)

	_, err := e.production.Create(e.ctx, core.CreateProductionOrderInput{ProductID: p.ID, PlannedQuantity: 1})
	if !errors.Is(err, core.ErrValidation) {
		t.Errorf("Expected ValidationError, got %v", err)
	}
	_, err = e.production.Create(e.ctx, core.CreateProductionOrderInput{ProductID: p.ID, PlannedQuantity: 0})
	if !errors.Is(err, core.ErrValidation) {
		t.Errorf("Expected ValidationError for zero quantity, got %v", err)
	}
}

func TestProductionOrder_FullLifecycle(t *testing.T) {
	e := setupTestDB(t)
	p, a := setupGummyRecipe(t, e, "25")

	order, err := e.production.Create(e.ctx, core.CreateProductionOrderInput{ProductID: p.ID, PlannedQuantity: 10, RequestedBy: "planner"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if order.Status != core.OrderPlanned || !strings.HasPrefix(order.OrderNumber, "OP-") {
		t.Errorf("Unexpected new order: %+v", order)
	}
	if len(order.Details) != 1 || !order.Details[0].RequiredQuantity.Equal(dec("20")) || !order.Details[0].ConsumedQuantity.IsZero() {
		t.Fatalf("Unexpected details: %+v", order.Details)
	}

	if _, err := e.production.Complete(e.ctx, order.ID, "op"); !errors.Is(err, core.ErrInvalidTransition) {
		t.Fatalf("Expected InvalidStateTransition completing a PLANNED order, got %v", err)
	}

	if _, err := e.production.Start(e.ctx, order.ID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	done, err := e.production.Complete(e.ctx, order.ID, "op")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if done.Status != core.OrderCompleted || done.ProducedQuantity != 10 || done.FinishedAt == nil {
		t.Errorf("Unexpected completed order: %+v", done)
	}
	if !done.Details[0].ConsumedQuantity.Equal(dec("20")) {
		t.Errorf("Expected consumed 20, got %s", done.Details[0].ConsumedQuantity)
	}

	total, _ := e.ledger.TotalStock(e.ctx, a.ID)
	if !total.Equal(dec("5")) {
		t.Errorf("Expected 5 of Material A left, got %s", total)
	}
	inv, _ := e.ledger.GetInventory(e.ctx, p.ID)
	if inv.Quantity != 10 {
		t.Errorf("Expected 10 finished units, got %d", inv.Quantity)
	}
	movements, _ := e.ledger.ListMovements(e.ctx, p.ID, 10)
	if len(movements) != 1 || movements[0].Type != core.MovementEntry || !strings.Contains(movements[0].Reason, "production") {
		t.Errorf("Expected one production ENTRY, got %+v", movements)
	}

	if _, err := e.production.Cancel(e.ctx, order.ID); !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("Expected completed order to reject cancel, got %v", err)
	}
}

func TestProductionOrder_CompleteRevalidatesStock(t *testing.T) {
	e := setupTestDB(t)
	p, a := setupGummyRecipe(t, e, "20")

	order, err := e.production.Create(e.ctx, core.CreateProductionOrderInput{ProductID: p.ID, PlannedQuantity: 10})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := e.production.Start(e.ctx, order.ID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	// Stock drawn elsewhere after planning.
	if _, err := e.ledger.ConsumeFEFO(e.ctx, a.ID, dec("1")); err != nil {
		t.Fatalf("ConsumeFEFO failed: %v", err)
	}

	_, err = e.production.Complete(e.ctx, order.ID, "op")
	if !errors.Is(err, core.ErrInsufficientStock) {
		t.Fatalf("Expected InsufficientStock, got %v", err)
	}
	got, _ := e.production.Get(e.ctx, order.ID)
	if got.Status != core.OrderInProgress || !got.Details[0].ConsumedQuantity.IsZero() {
		t.Errorf("Expected order untouched, got %+v", got)
	}
	inv, _ := e.ledger.GetInventory(e.ctx, p.ID)
	if inv.Quantity != 0 {
		t.Errorf("Expected no finished goods, got %d", inv.Quantity)
	}
}

func TestProductionOrder_CancelPlanned(t *testing.T) {
	e := setupTestDB(t)
	p, a := setupGummyRecipe(t, e, "20")

	order, err := e.production.Create(e.ctx, core.CreateProductionOrderInput{ProductID: p.ID, PlannedQuantity: 5})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	cancelled, err := e.production.Cancel(e.ctx, order.ID)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if cancelled.Status != core.OrderCancelled {
		t.Errorf("Expected CANCELLED, got %s", cancelled.Status)
	}
	total, _ := e.ledger.TotalStock(e.ctx, a.ID)
	if !total.Equal(dec("20")) {
		t.Errorf("Expected stock untouched at 20, got %s", total)
	}
	if _, err := e.production.Start(e.ctx, order.ID); !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("Expected cancelled order to reject start, got %v", err)
	}

	status := core.OrderCancelled
	list, _ := e.production.List(e.ctx, &status)
	if len(list) != 1 {
		t.Errorf("Expected 1 cancelled order, got %d", len(list))
	}
}

func TestProductionOrder_ConcurrentCompletionsNeverOverdraw(t *testing.T) {
	e := setupTestDB(t)
	p, a := setupGummyRecipe(t, e, "40")

	// Creation does not reserve stock, so both 30-unit orders pass the coverage check.
	var ids []int
	for i := 0; i < 2; i++ {
		o, err := e.production.Create(e.ctx, core.CreateProductionOrderInput{ProductID: p.ID, PlannedQuantity: 15})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		ids = append(ids, o.ID)
	}
	for _, id := range ids {
		if _, err := e.production.Start(e.ctx, id); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
	}

	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			_, errs[i] = e.production.Complete(e.ctx, id, "op")
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, core.ErrInsufficientStock) {
			t.Errorf("Unexpected completion error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("Expected exactly one completion, got %d", succeeded)
	}
	total, _ := e.ledger.TotalStock(e.ctx, a.ID)
	if !total.Equal(dec("10")) {
		t.Errorf("Expected 10 left after one 30-unit draw, got %s", total)
	}
}
