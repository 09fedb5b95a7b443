package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SalesHistory is the append-only record of delivered quantities that feeds forecasting and ABC.
type SalesHistory interface {
	// RecordDelivery writes one sales record per line of an order that was just delivered.
	RecordDelivery(ctx context.Context, in DeliveryInput) ([]SalesRecord, error)
	// ListSales returns a product's sales, most recent first. Nil bounds are open.
	ListSales(ctx context.Context, productID int, from, to *time.Time) ([]SalesRecord, error)
}

type salesHistory struct {
	pool *pgxpool.Pool
}

func NewSalesHistory(pool *pgxpool.Pool) SalesHistory {
	return &salesHistory{pool: pool}
}

const uniqueViolation = "23505"

func (s *salesHistory) RecordDelivery(ctx context.Context, in DeliveryInput) ([]SalesRecord, error) {
	if strings.TrimSpace(in.OrderRef) == "" {
		return nil, invalid("order_ref", "order reference is required")
	}
	if len(in.Lines) == 0 {
		return nil, invalid("lines", "delivery must contain at least one line")
	}
	for i, l := range in.Lines {
		if l.Quantity <= 0 {
			return nil, invalid(fmt.Sprintf("lines[%d].quantity", i), "quantity must be positive")
		}
		if l.UnitPrice.IsNegative() {
			return nil, invalid(fmt.Sprintf("lines[%d].unit_price", i), "unit price cannot be negative")
		}
		if err := checkPlaces(fmt.Sprintf("lines[%d].unit_price", i), l.UnitPrice, pricePlaces); err != nil {
			return nil, err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var records []SalesRecord
	for _, l := range in.Lines {
		if _, err := getProduct(ctx, tx, l.ProductID); err != nil {
			return nil, err
		}
		var r SalesRecord
		err := tx.QueryRow(ctx, `
			INSERT INTO sales_history (product_id, sold_on, quantity, unit_price, order_ref)
			VALUES ($1, COALESCE($2::date, CURRENT_DATE), $3, $4, $5)
			RETURNING id, product_id, sold_on, quantity, unit_price, order_ref
		`, l.ProductID, in.SoldOn, l.Quantity, l.UnitPrice, in.OrderRef).Scan(
			&r.ID, &r.ProductID, &r.SoldOn, &r.Quantity, &r.UnitPrice, &r.OrderRef,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return nil, invalid("order_ref", fmt.Sprintf("order %s already recorded for product %d", in.OrderRef, l.ProductID))
			}
			return nil, fmt.Errorf("failed to insert sales record: %w", err)
		}
		records = append(records, r)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit delivery: %w", err)
	}
	return records, nil
}

func (s *salesHistory) ListSales(ctx context.Context, productID int, from, to *time.Time) ([]SalesRecord, error) {
	if _, err := getProduct(ctx, s.pool, productID); err != nil {
		return nil, err
	}
	return listSales(ctx, s.pool, productID, from, to)
}

func listSales(ctx context.Context, q pgxQuerier, productID int, from, to *time.Time) ([]SalesRecord, error) {
	rows, err := q.Query(ctx, `
		SELECT id, product_id, sold_on, quantity, unit_price, order_ref
		FROM sales_history
		WHERE product_id = $1
		  AND ($2::date IS NULL OR sold_on >= $2::date)
		  AND ($3::date IS NULL OR sold_on <= $3::date)
		ORDER BY sold_on DESC, id DESC
	`, productID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales history: %w", err)
	}
	defer rows.Close()

	var records []SalesRecord
	for rows.Next() {
		var r SalesRecord
		if err := rows.Scan(&r.ID, &r.ProductID, &r.SoldOn, &r.Quantity, &r.UnitPrice, &r.OrderRef); err != nil {
			return nil, fmt.Errorf("failed to scan sales record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
