package app

import (
	"context"

	"inventory-engine/internal/core"
)

// ApplicationService is the single interface all UI adapters (CLI, Web, scheduler) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println and no display logic of any kind.
type ApplicationService interface {
	// ── Materials & lots ──────────────────────────────────────────────────────

	// CreateMaterial registers a material, optionally receiving its first lot.
	CreateMaterial(ctx context.Context, req MaterialRequest) (*core.Material, error)
	UpdateMaterial(ctx context.Context, id int, req MaterialRequest) (*core.Material, error)
	GetMaterial(ctx context.Context, id int) (*core.Material, error)
	ListMaterials(ctx context.Context, activeOnly bool) (*MaterialListResult, error)
	AddLot(ctx context.Context, req AddLotRequest) (*core.Lot, error)
	ListLots(ctx context.Context, materialID int) (*LotListResult, error)
	// ConsumeMaterial draws stock outside production, earliest expiry first.
	ConsumeMaterial(ctx context.Context, req ConsumeRequest) (*ConsumeResult, error)
	// ExpiringLots lists lots with stock expiring within days. days <= 0 uses the configured window.
	ExpiringLots(ctx context.Context, days int) (*ExpiringLotsResult, error)

	// ── Products & finished goods ─────────────────────────────────────────────

	CreateProduct(ctx context.Context, req ProductRequest) (*core.Product, error)
	UpdateProduct(ctx context.Context, id int, req ProductRequest) (*core.Product, error)
	GetProduct(ctx context.Context, id int) (*core.Product, error)
	ListProducts(ctx context.Context, activeOnly bool) (*ProductListResult, error)
	// DeactivateProduct soft-deletes a product; its history is kept.
	DeactivateProduct(ctx context.Context, id int) error
	GetInventory(ctx context.Context, productID int) (*core.ProductInventory, error)
	ListInventory(ctx context.Context) (*InventoryListResult, error)
	LowStockProducts(ctx context.Context) (*InventoryListResult, error)
	RecordMovement(ctx context.Context, req MovementRequest) (*core.StockMovement, error)
	ListMovements(ctx context.Context, productID, limit int) (*MovementListResult, error)

	// ── Recipes & production ──────────────────────────────────────────────────

	GetRecipe(ctx context.Context, productID int) (*RecipeResult, error)
	SetRecipe(ctx context.Context, req SetRecipeRequest) (*RecipeResult, error)
	CreateProductionOrder(ctx context.Context, req CreateProductionOrderRequest) (*core.ProductionOrder, error)
	StartProductionOrder(ctx context.Context, id int) (*core.ProductionOrder, error)
	// CompleteProductionOrder consumes materials and receives finished goods atomically.
	CompleteProductionOrder(ctx context.Context, id int, actor string) (*core.ProductionOrder, error)
	CancelProductionOrder(ctx context.Context, id int) (*core.ProductionOrder, error)
	GetProductionOrder(ctx context.Context, id int) (*core.ProductionOrder, error)
	// ListProductionOrders filters by status when status is non-empty.
	ListProductionOrders(ctx context.Context, status string) (*OrderListResult, error)

	// ── Sales & analytics ─────────────────────────────────────────────────────

	RecordDelivery(ctx context.Context, req DeliveryRequest) (*SalesListResult, error)
	// ListSales returns sales most recent first. Empty from/to leave the range open.
	ListSales(ctx context.Context, productID int, from, to string) (*SalesListResult, error)
	Forecast(ctx context.Context, req ForecastRequest) (*core.Forecast, error)
	ListForecasts(ctx context.Context, productID int) (*ForecastListResult, error)
	ForecastError(ctx context.Context, productID int, period DateRange) (*core.ForecastAccuracy, error)
	ComputeEOQ(ctx context.Context, req EOQRequest) (*core.EOQResult, error)
	ListEOQHistory(ctx context.Context, productID int) (*EOQHistoryResult, error)
	// ClassifyABC replaces the stored classification with one computed over period.
	ClassifyABC(ctx context.Context, period DateRange) (*ABCResult, error)
	ListABC(ctx context.Context) (*ABCResult, error)

	// ── Alerts & operations ───────────────────────────────────────────────────

	ListAlerts(ctx context.Context) (*AlertListResult, error)
	AcknowledgeAlert(ctx context.Context, id int) (*core.Alert, error)
	CheckLowStock(ctx context.Context) (*CheckResult, error)
	CheckExpiringLots(ctx context.Context) (*CheckResult, error)
	GetDashboard(ctx context.Context) (*core.DashboardMetrics, error)
	VerifyIntegrity(ctx context.Context) (*IntegrityResult, error)
}
