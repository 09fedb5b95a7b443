package core_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"inventory-engine/internal/core"

	"github.com/shopspring/decimal"
)

func TestErrors_KindsAreInspectable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"not found", &core.NotFoundError{Entity: "product", ID: 7}, core.ErrNotFound},
		{"validation", &core.ValidationError{Field: "quantity", Reason: "must be positive"}, core.ErrValidation},
		{"insufficient", &core.InsufficientStockError{Entity: "material", EntityID: 1}, core.ErrInsufficientStock},
		{"transition", &core.InvalidStateTransitionError{OrderID: 3, From: core.OrderPlanned, To: core.OrderCompleted}, core.ErrInvalidTransition},
	}
	kinds := []error{core.ErrNotFound, core.ErrValidation, core.ErrInsufficientStock, core.ErrInvalidTransition}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("failed to do thing: %w", tt.err)
			for _, k := range kinds {
				if got := errors.Is(wrapped, k); got != (k == tt.kind) {
					t.Errorf("errors.Is(%v, %v) = %v", wrapped, k, got)
				}
			}
		})
	}
}

func TestInsufficientStockError_NamesShortfall(t *testing.T) {
	err := &core.InsufficientStockError{
		Entity:    "material",
		EntityID:  4,
		Name:      "Sugar",
		Available: decimal.NewFromInt(15),
		Required:  decimal.NewFromInt(20),
	}
	if !err.Shortfall().Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected shortfall 5, got %s", err.Shortfall())
	}
	msg := err.Error()
	if !strings.Contains(msg, "Sugar") || !strings.Contains(msg, "short by 5") {
		t.Errorf("Expected message to name entity and shortfall, got %q", msg)
	}

	var target *core.InsufficientStockError
	if !errors.As(fmt.Errorf("wrap: %w", err), &target) || target.EntityID != 4 {
		t.Errorf("errors.As did not recover InsufficientStockError")
	}
}
