package core_test

import (
	"context"
	"io"
	"os"
	"testing"

	"inventory-engine/internal/core"
	"inventory-engine/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// testEngine bundles the services under test around one truncated database.
type testEngine struct {
	pool       *pgxpool.Pool
	ctx        context.Context
	alerts     core.AlertCenter
	ledger     core.StockLedger
	recipes    core.RecipeCatalog
	production core.ProductionOrderManager
	sales      core.SalesHistory
	forecasts  core.ForecastEngine
	analytics  core.ReplenishmentAnalytics
	dashboard  core.DashboardService
	integrity  core.IntegrityChecker
}

func setupTestDB(t *testing.T) *testEngine {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test to protect live database")
	}

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	if err := db.MigrateUp(dbURL, quiet); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE alerts, abc_classifications, eoq_parameters, forecasts, sales_history,
		               production_details, production_orders, document_sequences, recipe_items,
		               stock_movements, product_inventory, products, material_lots, materials
		RESTART IDENTITY CASCADE;
	`)
	if err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}

	alerts := core.NewAlertCenter(pool, core.AlertOptions{ExpiryWindowDays: 7})
	ledger := core.NewStockLedger(pool, alerts)
	return &testEngine{
		pool:       pool,
		ctx:        ctx,
		alerts:     alerts,
		ledger:     ledger,
		recipes:    core.NewRecipeCatalog(pool),
		production: core.NewProductionOrderManager(pool, ledger),
		sales:      core.NewSalesHistory(pool),
		forecasts:  core.NewForecastEngine(pool),
		analytics:  core.NewReplenishmentAnalytics(pool),
		dashboard:  core.NewDashboardService(pool, 7),
		integrity:  core.NewIntegrityChecker(pool),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (e *testEngine) mustMaterial(t *testing.T, name, minStock string) *core.Material {
	t.Helper()
	m, err := e.ledger.CreateMaterial(e.ctx, core.MaterialInput{Name: name, Unit: "kg", MinStock: dec(minStock)})
	if err != nil {
		t.Fatalf("CreateMaterial(%s) failed: %v", name, err)
	}
	return m
}

func (e *testEngine) mustLot(t *testing.T, materialID int, qty string, expiresInDays *int) *core.Lot {
	t.Helper()
	in := core.LotInput{MaterialID: materialID, Quantity: dec(qty), UnitCost: dec("1.50")}
	if expiresInDays != nil {
		exp := today().AddDate(0, 0, *expiresInDays)
		in.ExpiresOn = &exp
	}
	lot, err := e.ledger.AddLot(e.ctx, in)
	if err != nil {
		t.Fatalf("AddLot failed: %v", err)
	}
	return lot
}

func (e *testEngine) mustProduct(t *testing.T, name string, minStock int) *core.Product {
	t.Helper()
	p, err := e.ledger.CreateProduct(e.ctx, core.ProductInput{Name: name, UnitPrice: dec("10.00"), MinStock: minStock})
	if err != nil {
		t.Fatalf("CreateProduct(%s) failed: %v", name, err)
	}
	return p
}

func intPtr(i int) *int { return &i }
