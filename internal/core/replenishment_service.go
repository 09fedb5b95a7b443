package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReplenishmentAnalytics computes EOQ parameters and the ABC classification.
type ReplenishmentAnalytics interface {
	// ComputeEOQ calculates and appends a new EOQ parameter row for the product.
	ComputeEOQ(ctx context.Context, in EOQInput) (*EOQResult, error)
	ListEOQHistory(ctx context.Context, productID int) ([]EOQResult, error)
	// ClassifyABC replaces the whole classification with one computed from sales in [from, to].
	ClassifyABC(ctx context.Context, from, to time.Time) ([]ABCClassification, error)
	ListABC(ctx context.Context) ([]ABCClassification, error)
}

type replenishmentAnalytics struct {
	pool *pgxpool.Pool
}

func NewReplenishmentAnalytics(pool *pgxpool.Pool) ReplenishmentAnalytics {
	return &replenishmentAnalytics{pool: pool}
}

const eoqColumns = "id, product_id, annual_demand, order_cost, holding_cost, eoq, reorder_point, computed_at"

func scanEOQ(row rowScanner) (*EOQResult, error) {
	var r EOQResult
	if err := row.Scan(&r.ID, &r.ProductID, &r.AnnualDemand, &r.OrderCost, &r.HoldingCost,
		&r.EOQ, &r.ReorderPoint, &r.ComputedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *replenishmentAnalytics) ComputeEOQ(ctx context.Context, in EOQInput) (*EOQResult, error) {
	eoq, err := EconomicOrderQuantity(in.AnnualDemand, in.OrderCost, in.HoldingCost)
	if err != nil {
		return nil, err
	}
	reorderPoint, err := ReorderPoint(in.AnnualDemand, in.LeadTimeDays)
	if err != nil {
		return nil, err
	}
	if _, err := getProduct(ctx, s.pool, in.ProductID); err != nil {
		return nil, err
	}

	r, err := scanEOQ(s.pool.QueryRow(ctx, `
		INSERT INTO eoq_parameters (product_id, annual_demand, order_cost, holding_cost, eoq, reorder_point)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+eoqColumns,
		in.ProductID, in.AnnualDemand, in.OrderCost, in.HoldingCost, eoq, reorderPoint))
	if err != nil {
		return nil, fmt.Errorf("failed to store EOQ parameters: %w", err)
	}
	return r, nil
}

func (s *replenishmentAnalytics) ListEOQHistory(ctx context.Context, productID int) ([]EOQResult, error) {
	if _, err := getProduct(ctx, s.pool, productID); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+eoqColumns+`
		FROM eoq_parameters
		WHERE product_id = $1
		ORDER BY computed_at DESC, id DESC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query EOQ history: %w", err)
	}
	defer rows.Close()

	var history []EOQResult
	for rows.Next() {
		r, err := scanEOQ(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan EOQ row: %w", err)
		}
		history = append(history, *r)
	}
	return history, rows.Err()
}

func (s *replenishmentAnalytics) ClassifyABC(ctx context.Context, from, to time.Time) ([]ABCClassification, error) {
	if to.Before(from) {
		return nil, invalid("to", "end date precedes start date")
	}

	rows, err := s.pool.Query(ctx, `
		SELECT sh.product_id, p.name, SUM(sh.unit_price * sh.quantity)
		FROM sales_history sh
		JOIN products p ON p.id = sh.product_id
		WHERE sh.sold_on BETWEEN $1 AND $2
		GROUP BY sh.product_id, p.name
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales values: %w", err)
	}
	var values []ProductSalesValue
	for rows.Next() {
		var v ProductSalesValue
		if err := rows.Scan(&v.ProductID, &v.ProductName, &v.Value); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan sales value: %w", err)
		}
		values = append(values, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales values: %w", err)
	}

	classified, err := ClassifyByValue(values)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// EXCLUSIVE mode blocks concurrent writers but lets readers see the previous set until commit.
	if _, err := tx.Exec(ctx, "LOCK TABLE abc_classifications IN EXCLUSIVE MODE"); err != nil {
		return nil, fmt.Errorf("failed to lock ABC classification: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM abc_classifications"); err != nil {
		return nil, fmt.Errorf("failed to clear ABC classification: %w", err)
	}

	for i := range classified {
		c := &classified[i]
		c.PeriodFrom, c.PeriodTo = from, to
		err := tx.QueryRow(ctx, `
			INSERT INTO abc_classifications (product_id, sales_value, cumulative_pct, category, period_from, period_to)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, computed_at
		`, c.ProductID, c.SalesValue, c.CumulativePct, c.Category, from, to).Scan(&c.ID, &c.ComputedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert ABC row for product %d: %w", c.ProductID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit ABC classification: %w", err)
	}
	return classified, nil
}

func (s *replenishmentAnalytics) ListABC(ctx context.Context) ([]ABCClassification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, a.product_id, p.name, a.sales_value, a.cumulative_pct, a.category,
		       a.period_from, a.period_to, a.computed_at
		FROM abc_classifications a
		JOIN products p ON p.id = a.product_id
		ORDER BY a.cumulative_pct, a.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ABC classification: %w", err)
	}
	defer rows.Close()

	var out []ABCClassification
	for rows.Next() {
		var c ABCClassification
		if err := rows.Scan(&c.ID, &c.ProductID, &c.ProductName, &c.SalesValue, &c.CumulativePct,
			&c.Category, &c.PeriodFrom, &c.PeriodTo, &c.ComputedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ABC row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
