package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	// dashboardSalesDays is the length of the daily sales series on the dashboard.
	dashboardSalesDays   = 30
	dashboardTopProducts = 5
)

// DashboardService aggregates read-only KPIs for operators.
type DashboardService interface {
	Metrics(ctx context.Context) (*DashboardMetrics, error)
}

type dashboardService struct {
	pool             *pgxpool.Pool
	expiryWindowDays int
}

func NewDashboardService(pool *pgxpool.Pool, expiryWindowDays int) DashboardService {
	return &dashboardService{pool: pool, expiryWindowDays: expiryWindowDays}
}

func (s *dashboardService) Metrics(ctx context.Context) (*DashboardMetrics, error) {
	var m DashboardMetrics
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM production_orders WHERE status = 'PLANNED'),
			(SELECT COUNT(*) FROM production_orders WHERE status = 'IN_PROGRESS'),
			(SELECT COUNT(*) FROM alerts WHERE NOT is_read),
			(SELECT COUNT(*) FROM product_inventory i JOIN products p ON p.id = i.product_id
			  WHERE p.is_active AND i.quantity < p.min_stock),
			(SELECT COUNT(*) FROM material_lots
			  WHERE quantity > 0 AND expires_on IS NOT NULL AND expires_on <= CURRENT_DATE + $1::int),
			(SELECT COUNT(*) FROM products WHERE is_active),
			(SELECT COUNT(*) FROM materials WHERE is_active)
	`, s.expiryWindowDays).Scan(
		&m.PlannedOrders, &m.InProgressOrders, &m.ActiveAlerts, &m.LowStockProducts,
		&m.ExpiringLots, &m.ActiveProducts, &m.ActiveMaterials,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute dashboard counters: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT d::date, COALESCE(SUM(sh.quantity), 0), COALESCE(SUM(sh.quantity * sh.unit_price), 0)
		FROM generate_series(CURRENT_DATE - ($1::int - 1), CURRENT_DATE, INTERVAL '1 day') AS d
		LEFT JOIN sales_history sh ON sh.sold_on = d::date
		GROUP BY d
		ORDER BY d
	`, dashboardSalesDays)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily sales: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day time.Time
		var qty int
		var value decimal.Decimal
		if err := rows.Scan(&day, &qty, &value); err != nil {
			return nil, fmt.Errorf("failed to scan daily sales: %w", err)
		}
		m.DailySales = append(m.DailySales, DailySalesStat{Day: day, Quantity: qty, Value: value})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily sales: %w", err)
	}

	top, err := s.topProducts(ctx, dashboardTopProducts)
	if err != nil {
		return nil, err
	}
	m.TopProducts = top
	return &m, nil
}

// topProducts ranks products by all-time units sold. Ties go to the lower product id.
func (s *dashboardService) topProducts(ctx context.Context, limit int) ([]ProductSalesStat, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.name, SUM(sh.quantity), SUM(sh.quantity * sh.unit_price)
		FROM sales_history sh
		JOIN products p ON p.id = sh.product_id
		GROUP BY p.id, p.name
		ORDER BY SUM(sh.quantity) DESC, p.id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	defer rows.Close()

	stats := []ProductSalesStat{}
	for rows.Next() {
		var st ProductSalesStat
		if err := rows.Scan(&st.ProductID, &st.ProductName, &st.Quantity, &st.Value); err != nil {
			return nil, fmt.Errorf("failed to scan top product: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top products: %w", err)
	}
	return stats, nil
}
