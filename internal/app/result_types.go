package app

import "inventory-engine/internal/core"

// MaterialListResult is returned by ListMaterials.
type MaterialListResult struct {
	Materials []core.Material `json:"materials"`
}

// LotListResult is returned by ListLots.
type LotListResult struct {
	MaterialID int        `json:"material_id"`
	Lots       []core.Lot `json:"lots"`
}

// ConsumeResult lists the lot draws made by ConsumeMaterial.
type ConsumeResult struct {
	MaterialID int            `json:"material_id"`
	Draws      []core.LotDraw `json:"draws"`
}

// ExpiringLotsResult is returned by ExpiringLots.
type ExpiringLotsResult struct {
	WithinDays int                `json:"within_days"`
	Lots       []core.ExpiringLot `json:"lots"`
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product `json:"products"`
}

// InventoryListResult is returned by ListInventory and LowStockProducts.
type InventoryListResult struct {
	Inventory []core.ProductInventory `json:"inventory"`
}

// MovementListResult is returned by ListMovements.
type MovementListResult struct {
	ProductID int                  `json:"product_id"`
	Movements []core.StockMovement `json:"movements"`
}

// RecipeResult is returned by GetRecipe and SetRecipe.
type RecipeResult struct {
	ProductID int               `json:"product_id"`
	Items     []core.RecipeItem `json:"items"`
}

// OrderListResult is returned by ListProductionOrders.
type OrderListResult struct {
	Orders []core.ProductionOrder `json:"orders"`
}

// SalesListResult is returned by RecordDelivery and ListSales.
type SalesListResult struct {
	Sales []core.SalesRecord `json:"sales"`
}

// ForecastListResult is returned by ListForecasts.
type ForecastListResult struct {
	ProductID int             `json:"product_id"`
	Forecasts []core.Forecast `json:"forecasts"`
}

// EOQHistoryResult is returned by ListEOQHistory.
type EOQHistoryResult struct {
	ProductID int              `json:"product_id"`
	History   []core.EOQResult `json:"history"`
}

// ABCResult is returned by ClassifyABC and ListABC.
type ABCResult struct {
	Classifications []core.ABCClassification `json:"classifications"`
}

// AlertListResult is returned by ListAlerts.
type AlertListResult struct {
	Alerts []core.Alert `json:"alerts"`
}

// CheckResult reports how many alerts a scan created.
type CheckResult struct {
	Check   string `json:"check"`
	Created int    `json:"created"`
}

// IntegrityResult is returned by VerifyIntegrity.
type IntegrityResult struct {
	OK     bool                  `json:"ok"`
	Issues []core.IntegrityIssue `json:"issues"`
}
