package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// IntegrityChecker runs read-only consistency checks over the ledger tables.
type IntegrityChecker interface {
	Verify(ctx context.Context) ([]IntegrityIssue, error)
}

type integrityChecker struct {
	pool *pgxpool.Pool
}

func NewIntegrityChecker(pool *pgxpool.Pool) IntegrityChecker {
	return &integrityChecker{pool: pool}
}

type integrityCheck struct {
	name  string
	query string
}

// Each query returns (entity id, detail) for every offending row.
var integrityChecks = []integrityCheck{
	{"negative_lot", `
		SELECT id, 'lot quantity ' || quantity::text
		FROM material_lots WHERE quantity < 0`},
	{"negative_inventory", `
		SELECT product_id, 'inventory quantity ' || quantity::text
		FROM product_inventory WHERE quantity < 0`},
	{"inventory_movement_mismatch", `
		SELECT i.product_id, 'inventory ' || i.quantity::text || ' but last movement left ' || m.new_quantity::text
		FROM product_inventory i
		JOIN LATERAL (
			SELECT new_quantity FROM stock_movements sm
			WHERE sm.product_id = i.product_id
			ORDER BY sm.id DESC LIMIT 1
		) m ON true
		WHERE m.new_quantity <> i.quantity`},
	{"movement_chain_broken", `
		SELECT id, 'previous quantity ' || previous_quantity::text || ' does not match prior movement ' || prior::text
		FROM (
			SELECT id, previous_quantity,
			       LAG(new_quantity) OVER (PARTITION BY product_id ORDER BY id) AS prior
			FROM stock_movements
		) chain
		WHERE prior IS NOT NULL AND prior <> previous_quantity`},
	{"completed_order_unconsumed", `
		SELECT d.order_id, 'material ' || d.material_id::text || ' consumed ' || d.consumed_quantity::text ||
		       ' of ' || d.required_quantity::text
		FROM production_details d
		JOIN production_orders o ON o.id = d.order_id
		WHERE o.status = 'COMPLETED' AND d.consumed_quantity <> d.required_quantity`},
	{"open_order_consumed", `
		SELECT d.order_id, 'material ' || d.material_id::text || ' consumed before completion'
		FROM production_details d
		JOIN production_orders o ON o.id = d.order_id
		WHERE o.status <> 'COMPLETED' AND d.consumed_quantity <> 0`},
}

func (c *integrityChecker) Verify(ctx context.Context) ([]IntegrityIssue, error) {
	var issues []IntegrityIssue
	for _, check := range integrityChecks {
		rows, err := c.pool.Query(ctx, check.query)
		if err != nil {
			return nil, fmt.Errorf("failed to run integrity check %s: %w", check.name, err)
		}
		for rows.Next() {
			issue := IntegrityIssue{Check: check.name}
			if err := rows.Scan(&issue.EntityID, &issue.Detail); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan %s result: %w", check.name, err)
			}
			issues = append(issues, issue)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error iterating %s results: %w", check.name, err)
		}
	}
	return issues, nil
}
