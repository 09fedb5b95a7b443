package app

import "github.com/shopspring/decimal"

// Dates in requests are YYYY-MM-DD strings; decimals accept JSON strings or numbers.

// MaterialRequest creates or updates a material. The initial lot fields are only
// honoured on create and are ignored when InitialQuantity is zero.
type MaterialRequest struct {
	Name            string          `json:"name" validate:"required,max=100"`
	Description     string          `json:"description" validate:"max=500"`
	Unit            string          `json:"unit" validate:"required,max=20"`
	MinStock        decimal.Decimal `json:"min_stock"`
	Supplier        string          `json:"supplier" validate:"max=100"`
	InitialQuantity decimal.Decimal `json:"initial_quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	ExpiresOn       string          `json:"expires_on" validate:"omitempty,datetime=2006-01-02"`
	LotCode         string          `json:"lot_code" validate:"max=50"`
}

// AddLotRequest receives a new lot of a material.
type AddLotRequest struct {
	MaterialID int             `json:"material_id" validate:"gt=0"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	ReceivedOn string          `json:"received_on" validate:"omitempty,datetime=2006-01-02"`
	ExpiresOn  string          `json:"expires_on" validate:"omitempty,datetime=2006-01-02"`
	LotCode    string          `json:"lot_code" validate:"max=50"`
}

// ConsumeRequest draws a quantity of a material across lots in FEFO order.
type ConsumeRequest struct {
	MaterialID int             `json:"material_id" validate:"gt=0"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// ProductRequest creates or updates a finished product.
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=500"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	MinStock    int             `json:"min_stock" validate:"gte=0"`
}

// MovementRequest records an ENTRY, EXIT or ADJUSTMENT of finished goods.
// For ADJUSTMENT, Quantity is the new absolute count.
type MovementRequest struct {
	ProductID int    `json:"product_id" validate:"gt=0"`
	Type      string `json:"movement_type" validate:"required,oneof=ENTRY EXIT ADJUSTMENT"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
	Reason    string `json:"reason" validate:"max=255"`
	Actor     string `json:"actor" validate:"max=100"`
}

// SetRecipeRequest replaces the whole bill of materials of a product.
type SetRecipeRequest struct {
	ProductID int          `json:"product_id" validate:"gt=0"`
	Items     []RecipeLine `json:"items" validate:"required,min=1,dive"`
}

type RecipeLine struct {
	MaterialID      int             `json:"material_id" validate:"gt=0"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
	Unit            string          `json:"unit" validate:"max=20"`
}

// CreateProductionOrderRequest plans a production run.
type CreateProductionOrderRequest struct {
	ProductID       int    `json:"product_id" validate:"gt=0"`
	PlannedQuantity int    `json:"planned_quantity" validate:"gt=0"`
	RequestedBy     string `json:"requested_by" validate:"max=100"`
	Notes           string `json:"notes" validate:"max=500"`
}

// DeliveryRequest reports a delivered customer order to the sales history.
type DeliveryRequest struct {
	OrderRef string         `json:"order_ref" validate:"required,max=50"`
	SoldOn   string         `json:"sold_on" validate:"omitempty,datetime=2006-01-02"`
	Lines    []DeliveryLine `json:"lines" validate:"required,min=1,dive"`
}

type DeliveryLine struct {
	ProductID int             `json:"product_id" validate:"gt=0"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// ForecastRequest asks for a demand estimate for one product and date.
type ForecastRequest struct {
	ProductID  int    `json:"product_id" validate:"gt=0"`
	Method     string `json:"method" validate:"required,oneof=MOVING_AVERAGE WEIGHTED_AVERAGE EXPONENTIAL_SMOOTHING LINEAR_REGRESSION"`
	TargetDate string `json:"target_date" validate:"required,datetime=2006-01-02"`
}

// DateRange is an inclusive [From, To] period.
type DateRange struct {
	From string `json:"from" validate:"required,datetime=2006-01-02"`
	To   string `json:"to" validate:"required,datetime=2006-01-02"`
}

// EOQRequest carries annual figures for the economic order quantity.
type EOQRequest struct {
	ProductID    int             `json:"product_id" validate:"gt=0"`
	AnnualDemand decimal.Decimal `json:"annual_demand"`
	OrderCost    decimal.Decimal `json:"order_cost"`
	HoldingCost  decimal.Decimal `json:"holding_cost"`
	LeadTimeDays int             `json:"lead_time_days" validate:"gte=0"`
}
