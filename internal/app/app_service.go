package app

import (
	"context"
	"time"

	"inventory-engine/internal/core"
)

// Dependencies are the engine services the application facade delegates to.
type Dependencies struct {
	Ledger           core.StockLedger
	Recipes          core.RecipeCatalog
	Production       core.ProductionOrderManager
	Sales            core.SalesHistory
	Forecasts        core.ForecastEngine
	Replenishment    core.ReplenishmentAnalytics
	Alerts           core.AlertCenter
	Dashboard        core.DashboardService
	Integrity        core.IntegrityChecker
	ExpiryWindowDays int
}

type appService struct {
	ledger           core.StockLedger
	recipes          core.RecipeCatalog
	production       core.ProductionOrderManager
	sales            core.SalesHistory
	forecasts        core.ForecastEngine
	replenishment    core.ReplenishmentAnalytics
	alerts           core.AlertCenter
	dashboard        core.DashboardService
	integrity        core.IntegrityChecker
	expiryWindowDays int
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(deps Dependencies) ApplicationService {
	window := deps.ExpiryWindowDays
	if window <= 0 {
		window = 7
	}
	return &appService{
		ledger:           deps.Ledger,
		recipes:          deps.Recipes,
		production:       deps.Production,
		sales:            deps.Sales,
		forecasts:        deps.Forecasts,
		replenishment:    deps.Replenishment,
		alerts:           deps.Alerts,
		dashboard:        deps.Dashboard,
		integrity:        deps.Integrity,
		expiryWindowDays: window,
	}
}

// ── Materials & lots ──────────────────────────────────────────────────────────

func materialInput(req MaterialRequest) (core.MaterialInput, error) {
	expires, err := parseOptionalDate("expires_on", req.ExpiresOn)
	if err != nil {
		return core.MaterialInput{}, err
	}
	return core.MaterialInput{
		Name:            req.Name,
		Description:     req.Description,
		Unit:            req.Unit,
		MinStock:        req.MinStock,
		Supplier:        req.Supplier,
		InitialQuantity: req.InitialQuantity,
		UnitCost:        req.UnitCost,
		ExpiresOn:       expires,
		LotCode:         optionalString(req.LotCode),
	}, nil
}

func (s *appService) CreateMaterial(ctx context.Context, req MaterialRequest) (*core.Material, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	in, err := materialInput(req)
	if err != nil {
		return nil, err
	}
	return s.ledger.CreateMaterial(ctx, in)
}

func (s *appService) UpdateMaterial(ctx context.Context, id int, req MaterialRequest) (*core.Material, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	in, err := materialInput(req)
	if err != nil {
		return nil, err
	}
	return s.ledger.UpdateMaterial(ctx, id, in)
}

func (s *appService) GetMaterial(ctx context.Context, id int) (*core.Material, error) {
	return s.ledger.GetMaterial(ctx, id)
}

func (s *appService) ListMaterials(ctx context.Context, activeOnly bool) (*MaterialListResult, error) {
	materials, err := s.ledger.ListMaterials(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	return &MaterialListResult{Materials: materials}, nil
}

func (s *appService) AddLot(ctx context.Context, req AddLotRequest) (*core.Lot, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	received, err := parseOptionalDate("received_on", req.ReceivedOn)
	if err != nil {
		return nil, err
	}
	expires, err := parseOptionalDate("expires_on", req.ExpiresOn)
	if err != nil {
		return nil, err
	}
	return s.ledger.AddLot(ctx, core.LotInput{
		MaterialID: req.MaterialID,
		Quantity:   req.Quantity,
		UnitCost:   req.UnitCost,
		ReceivedOn: received,
		ExpiresOn:  expires,
		LotCode:    optionalString(req.LotCode),
	})
}

func (s *appService) ListLots(ctx context.Context, materialID int) (*LotListResult, error) {
	lots, err := s.ledger.ListLots(ctx, materialID)
	if err != nil {
		return nil, err
	}
	return &LotListResult{MaterialID: materialID, Lots: lots}, nil
}

func (s *appService) ConsumeMaterial(ctx context.Context, req ConsumeRequest) (*ConsumeResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	draws, err := s.ledger.ConsumeFEFO(ctx, req.MaterialID, req.Quantity)
	if err != nil {
		return nil, err
	}
	return &ConsumeResult{MaterialID: req.MaterialID, Draws: draws}, nil
}

func (s *appService) ExpiringLots(ctx context.Context, days int) (*ExpiringLotsResult, error) {
	if days <= 0 {
		days = s.expiryWindowDays
	}
	lots, err := s.ledger.ExpiringLots(ctx, days)
	if err != nil {
		return nil, err
	}
	return &ExpiringLotsResult{WithinDays: days, Lots: lots}, nil
}

// ── Products & finished goods ─────────────────────────────────────────────────

func productInput(req ProductRequest) core.ProductInput {
	return core.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		MinStock:    req.MinStock,
	}
}

func (s *appService) CreateProduct(ctx context.Context, req ProductRequest) (*core.Product, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.ledger.CreateProduct(ctx, productInput(req))
}

func (s *appService) UpdateProduct(ctx context.Context, id int, req ProductRequest) (*core.Product, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.ledger.UpdateProduct(ctx, id, productInput(req))
}

func (s *appService) GetProduct(ctx context.Context, id int) (*core.Product, error) {
	return s.ledger.GetProduct(ctx, id)
}

func (s *appService) ListProducts(ctx context.Context, activeOnly bool) (*ProductListResult, error) {
	products, err := s.ledger.ListProducts(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) DeactivateProduct(ctx context.Context, id int) error {
	return s.ledger.DeactivateProduct(ctx, id)
}

func (s *appService) GetInventory(ctx context.Context, productID int) (*core.ProductInventory, error) {
	return s.ledger.GetInventory(ctx, productID)
}

func (s *appService) ListInventory(ctx context.Context) (*InventoryListResult, error) {
	inv, err := s.ledger.ListInventory(ctx)
	if err != nil {
		return nil, err
	}
	return &InventoryListResult{Inventory: inv}, nil
}

func (s *appService) LowStockProducts(ctx context.Context) (*InventoryListResult, error) {
	inv, err := s.ledger.LowStockProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &InventoryListResult{Inventory: inv}, nil
}

func (s *appService) RecordMovement(ctx context.Context, req MovementRequest) (*core.StockMovement, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.ledger.RecordMovement(ctx, core.MovementInput{
		ProductID: req.ProductID,
		Type:      core.MovementType(req.Type),
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		Actor:     req.Actor,
	})
}

func (s *appService) ListMovements(ctx context.Context, productID, limit int) (*MovementListResult, error) {
	movements, err := s.ledger.ListMovements(ctx, productID, limit)
	if err != nil {
		return nil, err
	}
	return &MovementListResult{ProductID: productID, Movements: movements}, nil
}

// ── Recipes & production ──────────────────────────────────────────────────────

func (s *appService) GetRecipe(ctx context.Context, productID int) (*RecipeResult, error) {
	items, err := s.recipes.GetRecipe(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &RecipeResult{ProductID: productID, Items: items}, nil
}

func (s *appService) SetRecipe(ctx context.Context, req SetRecipeRequest) (*RecipeResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	items := make([]core.RecipeItemInput, len(req.Items))
	for i, l := range req.Items {
		items[i] = core.RecipeItemInput{
			MaterialID:      l.MaterialID,
			QuantityPerUnit: l.QuantityPerUnit,
			Unit:            l.Unit,
		}
	}
	saved, err := s.recipes.SetRecipe(ctx, req.ProductID, items)
	if err != nil {
		return nil, err
	}
	return &RecipeResult{ProductID: req.ProductID, Items: saved}, nil
}

func (s *appService) CreateProductionOrder(ctx context.Context, req CreateProductionOrderRequest) (*core.ProductionOrder, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.production.Create(ctx, core.CreateProductionOrderInput{
		ProductID:       req.ProductID,
		PlannedQuantity: req.PlannedQuantity,
		RequestedBy:     req.RequestedBy,
		Notes:           req.Notes,
	})
}

func (s *appService) StartProductionOrder(ctx context.Context, id int) (*core.ProductionOrder, error) {
	return s.production.Start(ctx, id)
}

func (s *appService) CompleteProductionOrder(ctx context.Context, id int, actor string) (*core.ProductionOrder, error) {
	return s.production.Complete(ctx, id, actor)
}

func (s *appService) CancelProductionOrder(ctx context.Context, id int) (*core.ProductionOrder, error) {
	return s.production.Cancel(ctx, id)
}

func (s *appService) GetProductionOrder(ctx context.Context, id int) (*core.ProductionOrder, error) {
	return s.production.Get(ctx, id)
}

func (s *appService) ListProductionOrders(ctx context.Context, status string) (*OrderListResult, error) {
	var filter *core.OrderStatus
	if status != "" {
		st, err := core.ParseOrderStatus(status)
		if err != nil {
			return nil, err
		}
		filter = &st
	}
	orders, err := s.production.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &OrderListResult{Orders: orders}, nil
}

// ── Sales & analytics ─────────────────────────────────────────────────────────

func (s *appService) RecordDelivery(ctx context.Context, req DeliveryRequest) (*SalesListResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	soldOn, err := parseOptionalDate("sold_on", req.SoldOn)
	if err != nil {
		return nil, err
	}
	lines := make([]core.DeliveryLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.DeliveryLine{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}
	records, err := s.sales.RecordDelivery(ctx, core.DeliveryInput{OrderRef: req.OrderRef, SoldOn: soldOn, Lines: lines})
	if err != nil {
		return nil, err
	}
	return &SalesListResult{Sales: records}, nil
}

func (s *appService) ListSales(ctx context.Context, productID int, from, to string) (*SalesListResult, error) {
	fromDate, err := parseOptionalDate("from", from)
	if err != nil {
		return nil, err
	}
	toDate, err := parseOptionalDate("to", to)
	if err != nil {
		return nil, err
	}
	records, err := s.sales.ListSales(ctx, productID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	return &SalesListResult{Sales: records}, nil
}

func (s *appService) Forecast(ctx context.Context, req ForecastRequest) (*core.Forecast, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	target, err := parseDate("target_date", req.TargetDate)
	if err != nil {
		return nil, err
	}
	return s.forecasts.Forecast(ctx, req.ProductID, core.ForecastMethod(req.Method), target)
}

func (s *appService) ListForecasts(ctx context.Context, productID int) (*ForecastListResult, error) {
	forecasts, err := s.forecasts.ListForecasts(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &ForecastListResult{ProductID: productID, Forecasts: forecasts}, nil
}

func (s *appService) ForecastError(ctx context.Context, productID int, period DateRange) (*core.ForecastAccuracy, error) {
	from, to, err := parseRange(period)
	if err != nil {
		return nil, err
	}
	return s.forecasts.ForecastError(ctx, productID, from, to)
}

func (s *appService) ComputeEOQ(ctx context.Context, req EOQRequest) (*core.EOQResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.replenishment.ComputeEOQ(ctx, core.EOQInput{
		ProductID:    req.ProductID,
		AnnualDemand: req.AnnualDemand,
		OrderCost:    req.OrderCost,
		HoldingCost:  req.HoldingCost,
		LeadTimeDays: req.LeadTimeDays,
	})
}

func (s *appService) ListEOQHistory(ctx context.Context, productID int) (*EOQHistoryResult, error) {
	history, err := s.replenishment.ListEOQHistory(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &EOQHistoryResult{ProductID: productID, History: history}, nil
}

func (s *appService) ClassifyABC(ctx context.Context, period DateRange) (*ABCResult, error) {
	from, to, err := parseRange(period)
	if err != nil {
		return nil, err
	}
	classified, err := s.replenishment.ClassifyABC(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &ABCResult{Classifications: classified}, nil
}

func (s *appService) ListABC(ctx context.Context) (*ABCResult, error) {
	classified, err := s.replenishment.ListABC(ctx)
	if err != nil {
		return nil, err
	}
	return &ABCResult{Classifications: classified}, nil
}

// ── Alerts & operations ───────────────────────────────────────────────────────

func (s *appService) ListAlerts(ctx context.Context) (*AlertListResult, error) {
	alerts, err := s.alerts.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return &AlertListResult{Alerts: alerts}, nil
}

func (s *appService) AcknowledgeAlert(ctx context.Context, id int) (*core.Alert, error) {
	return s.alerts.Acknowledge(ctx, id)
}

func (s *appService) CheckLowStock(ctx context.Context) (*CheckResult, error) {
	n, err := s.alerts.CheckLowStock(ctx)
	if err != nil {
		return nil, err
	}
	return &CheckResult{Check: "low-stock", Created: n}, nil
}

func (s *appService) CheckExpiringLots(ctx context.Context) (*CheckResult, error) {
	n, err := s.alerts.CheckExpiringLots(ctx)
	if err != nil {
		return nil, err
	}
	return &CheckResult{Check: "expiring-lots", Created: n}, nil
}

func (s *appService) GetDashboard(ctx context.Context) (*core.DashboardMetrics, error) {
	return s.dashboard.Metrics(ctx)
}

func (s *appService) VerifyIntegrity(ctx context.Context) (*IntegrityResult, error) {
	issues, err := s.integrity.Verify(ctx)
	if err != nil {
		return nil, err
	}
	return &IntegrityResult{OK: len(issues) == 0, Issues: issues}, nil
}

func parseRange(period DateRange) (time.Time, time.Time, error) {
	if err := validateRequest(period); err != nil {
		return time.Time{}, time.Time{}, err
	}
	from, err := parseDate("from", period.From)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDate("to", period.To)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
