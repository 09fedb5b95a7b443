package app

import (
	"inventory-engine/internal/config"
	"inventory-engine/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
)

// New wires every engine service over pool and returns the application facade.
func New(pool *pgxpool.Pool, cfg *config.Config) ApplicationService {
	alerts := core.NewAlertCenter(pool, core.AlertOptions{
		Deduplicate:      cfg.AlertDeduplicate,
		ExpiryWindowDays: cfg.ExpiryWindowDays,
	})
	ledger := core.NewStockLedger(pool, alerts)

	return NewAppService(Dependencies{
		Ledger:           ledger,
		Recipes:          core.NewRecipeCatalog(pool),
		Production:       core.NewProductionOrderManager(pool, ledger),
		Sales:            core.NewSalesHistory(pool),
		Forecasts:        core.NewForecastEngine(pool),
		Replenishment:    core.NewReplenishmentAnalytics(pool),
		Alerts:           alerts,
		Dashboard:        core.NewDashboardService(pool, cfg.ExpiryWindowDays),
		Integrity:        core.NewIntegrityChecker(pool),
		ExpiryWindowDays: cfg.ExpiryWindowDays,
	})
}
