package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type SalesRecord struct {
	ID        int             `json:"id"`
	ProductID int             `json:"product_id"`
	SoldOn    time.Time       `json:"sold_on"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	OrderRef  string          `json:"order_ref"`
}

type DeliveryLine struct {
	ProductID int
	Quantity  int
	UnitPrice decimal.Decimal
}

// DeliveryInput is the sales-history write triggered when an order is delivered.
// SoldOn defaults to today.
type DeliveryInput struct {
	OrderRef string
	SoldOn   *time.Time
	Lines    []DeliveryLine
}

type ForecastMethod string

const (
	MethodMovingAverage        ForecastMethod = "MOVING_AVERAGE"
	MethodWeightedAverage      ForecastMethod = "WEIGHTED_AVERAGE"
	MethodExponentialSmoothing ForecastMethod = "EXPONENTIAL_SMOOTHING"
	MethodLinearRegression     ForecastMethod = "LINEAR_REGRESSION"
)

type Forecast struct {
	ID                int            `json:"id"`
	ProductID         int            `json:"product_id"`
	TargetDate        time.Time      `json:"target_date"`
	EstimatedQuantity int            `json:"estimated_quantity"`
	Method            ForecastMethod `json:"method"`
	ComputedAt        time.Time      `json:"computed_at"`
}

// ForecastAccuracy compares stored forecasts with actual sales on matching dates.
// MAPE is averaged over MAPEPoints, the matched dates with non-zero actuals.
type ForecastAccuracy struct {
	ProductID     int     `json:"product_id"`
	MAD           float64 `json:"mad"`
	MSE           float64 `json:"mse"`
	MAPE          float64 `json:"mape"`
	MatchedPoints int     `json:"matched_points"`
	MAPEPoints    int     `json:"mape_points"`
}

// EOQInput parameters are annual figures. LeadTimeDays = 0 leaves the reorder point at 0.
type EOQInput struct {
	ProductID    int
	AnnualDemand decimal.Decimal
	OrderCost    decimal.Decimal
	HoldingCost  decimal.Decimal
	LeadTimeDays int
}

type EOQResult struct {
	ID           int             `json:"id"`
	ProductID    int             `json:"product_id"`
	AnnualDemand decimal.Decimal `json:"annual_demand"`
	OrderCost    decimal.Decimal `json:"order_cost"`
	HoldingCost  decimal.Decimal `json:"holding_cost"`
	EOQ          decimal.Decimal `json:"eoq"`
	ReorderPoint int             `json:"reorder_point"`
	ComputedAt   time.Time       `json:"computed_at"`
}

type ABCCategory string

const (
	CategoryA ABCCategory = "A"
	CategoryB ABCCategory = "B"
	CategoryC ABCCategory = "C"
)

type ABCClassification struct {
	ID            int             `json:"id"`
	ProductID     int             `json:"product_id"`
	ProductName   string          `json:"product_name"`
	SalesValue    decimal.Decimal `json:"sales_value"`
	CumulativePct decimal.Decimal `json:"cumulative_pct"`
	Category      ABCCategory     `json:"category"`
	PeriodFrom    time.Time       `json:"period_from"`
	PeriodTo      time.Time       `json:"period_to"`
	ComputedAt    time.Time       `json:"computed_at"`
}

// DashboardMetrics is the KPI snapshot served to operators.
type DashboardMetrics struct {
	PlannedOrders    int                `json:"planned_orders"`
	InProgressOrders int                `json:"in_progress_orders"`
	ActiveAlerts     int                `json:"active_alerts"`
	LowStockProducts int                `json:"low_stock_products"`
	ExpiringLots     int                `json:"expiring_lots"`
	ActiveProducts   int                `json:"active_products"`
	ActiveMaterials  int                `json:"active_materials"`
	DailySales       []DailySalesStat   `json:"daily_sales"`
	TopProducts      []ProductSalesStat `json:"top_products"`
}

type DailySalesStat struct {
	Day      time.Time       `json:"day"`
	Quantity int             `json:"quantity"`
	Value    decimal.Decimal `json:"value"`
}

// ProductSalesStat is a product's all-time units sold.
type ProductSalesStat struct {
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Value       decimal.Decimal `json:"value"`
}

type IntegrityIssue struct {
	Check    string `json:"check"`
	EntityID int    `json:"entity_id"`
	Detail   string `json:"detail"`
}
