package core_test

import (
	"testing"

	"inventory-engine/internal/core"

	"github.com/shopspring/decimal"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to core.OrderStatus
		want     bool
	}{
		{core.OrderPlanned, core.OrderInProgress, true},
		{core.OrderPlanned, core.OrderCancelled, true},
		{core.OrderInProgress, core.OrderCompleted, true},
		{core.OrderPlanned, core.OrderCompleted, false},
		{core.OrderInProgress, core.OrderCancelled, false},
		{core.OrderInProgress, core.OrderPlanned, false},
		{core.OrderCompleted, core.OrderInProgress, false},
		{core.OrderCompleted, core.OrderCancelled, false},
		{core.OrderCancelled, core.OrderPlanned, false},
		{core.OrderCancelled, core.OrderInProgress, false},
	}
	for _, tt := range tests {
		if got := core.CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, expected %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	s, err := core.ParseOrderStatus("IN_PROGRESS")
	if err != nil || s != core.OrderInProgress {
		t.Errorf("Expected IN_PROGRESS, got %q (%v)", s, err)
	}
	if _, err := core.ParseOrderStatus("SHIPPED"); err == nil {
		t.Error("Expected error for unknown status")
	}
}

func TestRequiredQuantity(t *testing.T) {
	got := core.RequiredQuantity(decimal.RequireFromString("2"), 10)
	if !got.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Expected 20, got %s", got)
	}
	got = core.RequiredQuantity(decimal.RequireFromString("0.125"), 3)
	if !got.Equal(decimal.RequireFromString("0.375")) {
		t.Errorf("Expected 0.375, got %s", got)
	}
}

func TestFormatDocumentNumber(t *testing.T) {
	if got := core.FormatDocumentNumber("OP", 2026, 42); got != "OP-2026-00042" {
		t.Errorf("Expected OP-2026-00042, got %s", got)
	}
}

func TestValidateRecipe(t *testing.T) {
	one := decimal.NewFromInt(1)
	tests := []struct {
		name    string
		items   []core.RecipeItemInput
		wantErr bool
	}{
		{"valid", []core.RecipeItemInput{{MaterialID: 1, QuantityPerUnit: one}, {MaterialID: 2, QuantityPerUnit: one}}, false},
		{"empty", nil, true},
		{"zero quantity", []core.RecipeItemInput{{MaterialID: 1, QuantityPerUnit: decimal.Zero}}, true},
		{"negative quantity", []core.RecipeItemInput{{MaterialID: 1, QuantityPerUnit: one.Neg()}}, true},
		{"finer than four places", []core.RecipeItemInput{{MaterialID: 1, QuantityPerUnit: decimal.RequireFromString("0.00001")}}, true},
		{"four places", []core.RecipeItemInput{{MaterialID: 1, QuantityPerUnit: decimal.RequireFromString("0.0001")}}, false},
		{"duplicate material", []core.RecipeItemInput{{MaterialID: 1, QuantityPerUnit: one}, {MaterialID: 1, QuantityPerUnit: one}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := core.ValidateRecipe(tt.items)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRecipe() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
