package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material is a raw input tracked by lot. TotalStock is computed from its lots on read.
type Material struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	MinStock    decimal.Decimal `json:"min_stock"`
	Supplier    string          `json:"supplier"`
	IsActive    bool            `json:"is_active"`
	TotalStock  decimal.Decimal `json:"total_stock"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Lot is one received batch of a material. Quantity only decreases through FEFO consumption.
type Lot struct {
	ID         int             `json:"id"`
	MaterialID int             `json:"material_id"`
	LotCode    *string         `json:"lot_code,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	ReceivedOn time.Time       `json:"received_on"`
	ExpiresOn  *time.Time      `json:"expires_on,omitempty"`
}

// ExpiringLot is a Lot joined with its material name for expiry reports and alerts.
type ExpiringLot struct {
	Lot
	MaterialName string `json:"material_name"`
}

// LotDraw records how much a FEFO consumption took from one lot.
type LotDraw struct {
	LotID     int             `json:"lot_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Remaining decimal.Decimal `json:"remaining"`
}

// Product is a finished good. Soft-deleted products keep IsActive = false.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	MinStock    int             `json:"min_stock"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ProductInventory is the on-hand counter of a product.
type ProductInventory struct {
	ProductID   int       `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	MinStock    int       `json:"min_stock"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MovementType classifies a StockMovement.
type MovementType string

const (
	MovementEntry      MovementType = "ENTRY"
	MovementExit       MovementType = "EXIT"
	MovementAdjustment MovementType = "ADJUSTMENT"
)

// StockMovement is an immutable snapshot of one change to a product's on-hand quantity.
type StockMovement struct {
	ID               int          `json:"id"`
	ProductID        int          `json:"product_id"`
	Type             MovementType `json:"movement_type"`
	Quantity         int          `json:"quantity"`
	PreviousQuantity int          `json:"previous_quantity"`
	NewQuantity      int          `json:"new_quantity"`
	Delta            int          `json:"delta"`
	Reason           string       `json:"reason"`
	Actor            string       `json:"actor"`
	CreatedAt        time.Time    `json:"created_at"`
}

// MaterialInput creates or updates a material. InitialQuantity > 0 also receives a first lot.
type MaterialInput struct {
	Name            string
	Description     string
	Unit            string
	MinStock        decimal.Decimal
	Supplier        string
	InitialQuantity decimal.Decimal
	UnitCost        decimal.Decimal
	ExpiresOn       *time.Time
	LotCode         *string
}

// LotInput receives a new lot. ReceivedOn defaults to today.
type LotInput struct {
	MaterialID int
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	ReceivedOn *time.Time
	ExpiresOn  *time.Time
	LotCode    *string
}

// ProductInput creates or updates a product.
type ProductInput struct {
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	MinStock    int
}

// MovementInput records a change to a product's inventory.
type MovementInput struct {
	ProductID int
	Type      MovementType
	Quantity  int
	Reason    string
	Actor     string
}
