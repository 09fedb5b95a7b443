package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecipeItem is one material line of a product's bill of materials.
type RecipeItem struct {
	ProductID       int             `json:"product_id"`
	MaterialID      int             `json:"material_id"`
	MaterialName    string          `json:"material_name"` // joined from materials
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
	Unit            string          `json:"unit"`
}

// RecipeItemInput is a single line passed to RecipeCatalog.SetRecipe.
type RecipeItemInput struct {
	MaterialID      int
	QuantityPerUnit decimal.Decimal
	Unit            string
}

// OrderStatus is a production order state.
type OrderStatus string

const (
	OrderPlanned    OrderStatus = "PLANNED"
	OrderInProgress OrderStatus = "IN_PROGRESS"
	OrderCompleted  OrderStatus = "COMPLETED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// ProductionOrder represents a production run. Status progresses through the state machine:
//
//	PLANNED → IN_PROGRESS → COMPLETED
//	PLANNED → CANCELLED
type ProductionOrder struct {
	ID               int                `json:"id"`
	OrderNumber      string             `json:"order_number"`
	ProductID        int                `json:"product_id"`
	ProductName      string             `json:"product_name"` // joined from products
	PlannedQuantity  int                `json:"planned_quantity"`
	ProducedQuantity int                `json:"produced_quantity"`
	Status           OrderStatus        `json:"status"`
	RequestedBy      string             `json:"requested_by"`
	Notes            string             `json:"notes"`
	Details          []ProductionDetail `json:"details"`
	CreatedAt        time.Time          `json:"created_at"`
	StartedAt        *time.Time         `json:"started_at,omitempty"`
	FinishedAt       *time.Time         `json:"finished_at,omitempty"`
}

// ProductionDetail is the per-material requirement of an order.
// ConsumedQuantity stays zero until the order completes.
type ProductionDetail struct {
	ID               int             `json:"id"`
	OrderID          int             `json:"order_id"`
	MaterialID       int             `json:"material_id"`
	MaterialName     string          `json:"material_name"`
	RequiredQuantity decimal.Decimal `json:"required_quantity"`
	ConsumedQuantity decimal.Decimal `json:"consumed_quantity"`
}

// CreateProductionOrderInput is the input for ProductionOrderManager.Create.
type CreateProductionOrderInput struct {
	ProductID       int
	PlannedQuantity int
	RequestedBy     string
	Notes           string
}

// validTransitions lists every permitted status change.
var validTransitions = map[OrderStatus][]OrderStatus{
	OrderPlanned:    {OrderInProgress, OrderCancelled},
	OrderInProgress: {OrderCompleted},
}

// CanTransition reports whether an order in status from may move to status to.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ParseOrderStatus validates a status filter string.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case OrderPlanned, OrderInProgress, OrderCompleted, OrderCancelled:
		return st, nil
	}
	return "", invalid("status", "unknown production order status "+s)
}
