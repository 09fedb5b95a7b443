package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// AlertCenter scans stock for threshold breaches and keeps the operator alert list.
type AlertCenter interface {
	// CheckLowStock raises LOW_STOCK alerts for products (HIGH) and materials (MEDIUM)
	// below their minimum. Returns the number of alerts created.
	CheckLowStock(ctx context.Context) (int, error)
	// CheckExpiringLots raises EXPIRING_LOT alerts for lots with stock inside the expiry window.
	CheckExpiringLots(ctx context.Context) (int, error)
	ListActive(ctx context.Context) ([]Alert, error)
	// Acknowledge marks an alert read. Acknowledging twice keeps the first read time.
	Acknowledge(ctx context.Context, id int) (*Alert, error)
	// RaiseTx appends an alert inside the caller's transaction. It returns nil, nil when
	// de-duplication is enabled and an unread alert for the same subject already exists.
	RaiseTx(ctx context.Context, tx pgx.Tx, a Alert) (*Alert, error)
}

// AlertOptions tunes AlertCenter behaviour.
type AlertOptions struct {
	Deduplicate      bool
	ExpiryWindowDays int
}

type alertCenter struct {
	pool *pgxpool.Pool
	opts AlertOptions
}

func NewAlertCenter(pool *pgxpool.Pool, opts AlertOptions) AlertCenter {
	if opts.ExpiryWindowDays <= 0 {
		opts.ExpiryWindowDays = 7
	}
	return &alertCenter{pool: pool, opts: opts}
}

const alertColumns = "id, alert_type, entity_kind, entity_id, message, severity, is_read, read_at, created_at"

func scanAlert(row rowScanner) (*Alert, error) {
	var a Alert
	if err := row.Scan(&a.ID, &a.Type, &a.EntityKind, &a.EntityID, &a.Message, &a.Severity,
		&a.IsRead, &a.ReadAt, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *alertCenter) CheckLowStock(ctx context.Context) (int, error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var pending []Alert

	products, err := queryInventory(ctx, tx, inventorySelect+" WHERE p.is_active AND i.quantity < p.min_stock ORDER BY p.id")
	if err != nil {
		return 0, err
	}
	for _, p := range products {
		pending = append(pending, Alert{
			Type:       AlertLowStock,
			EntityKind: EntityProduct,
			EntityID:   p.ProductID,
			Severity:   SeverityHigh,
			Message:    fmt.Sprintf("Low stock for product %s: %d on hand, minimum %d", p.ProductName, p.Quantity, p.MinStock),
		})
	}

	rows, err := tx.Query(ctx, `
		SELECT m.id, m.name, m.min_stock,
		       COALESCE((SELECT SUM(l.quantity) FROM material_lots l WHERE l.material_id = m.id AND l.quantity > 0), 0) AS total
		FROM materials m
		WHERE m.is_active AND m.min_stock > 0
		ORDER BY m.id
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to query material stock: %w", err)
	}
	for rows.Next() {
		var id int
		var name string
		var minStock, total decimal.Decimal
		if err := rows.Scan(&id, &name, &minStock, &total); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan material stock: %w", err)
		}
		if total.LessThan(minStock) {
			pending = append(pending, Alert{
				Type:       AlertLowStock,
				EntityKind: EntityMaterial,
				EntityID:   id,
				Severity:   SeverityMedium,
				Message:    fmt.Sprintf("Low stock for material %s: %s remaining, minimum %s", name, total.String(), minStock.String()),
			})
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating material stock: %w", err)
	}

	created, err := c.raiseAll(ctx, tx, pending)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit low-stock alerts: %w", err)
	}
	return created, nil
}

func (c *alertCenter) CheckExpiringLots(ctx context.Context) (int, error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	lots, err := expiringLots(ctx, tx, c.opts.ExpiryWindowDays)
	if err != nil {
		return 0, err
	}

	pending := make([]Alert, 0, len(lots))
	for _, l := range lots {
		label := fmt.Sprintf("#%d", l.ID)
		if l.LotCode != nil && *l.LotCode != "" {
			label = *l.LotCode
		}
		pending = append(pending, Alert{
			Type:       AlertExpiringLot,
			EntityKind: EntityLot,
			EntityID:   l.ID,
			Severity:   SeverityMedium,
			Message: fmt.Sprintf("Lot %s of %s expires on %s with %s remaining",
				label, l.MaterialName, l.ExpiresOn.Format("2006-01-02"), l.Quantity.String()),
		})
	}

	created, err := c.raiseAll(ctx, tx, pending)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit expiring-lot alerts: %w", err)
	}
	return created, nil
}

func (c *alertCenter) raiseAll(ctx context.Context, tx pgx.Tx, alerts []Alert) (int, error) {
	created := 0
	for _, a := range alerts {
		got, err := c.RaiseTx(ctx, tx, a)
		if err != nil {
			return 0, err
		}
		if got != nil {
			created++
		}
	}
	return created, nil
}

func (c *alertCenter) RaiseTx(ctx context.Context, tx pgx.Tx, a Alert) (*Alert, error) {
	if c.opts.Deduplicate {
		var exists bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM alerts
				WHERE alert_type = $1 AND entity_kind = $2 AND entity_id = $3 AND NOT is_read
			)
		`, a.Type, a.EntityKind, a.EntityID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("failed to check for open alert: %w", err)
		}
		if exists {
			return nil, nil
		}
	}

	created, err := scanAlert(tx.QueryRow(ctx, `
		INSERT INTO alerts (alert_type, entity_kind, entity_id, message, severity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+alertColumns,
		a.Type, a.EntityKind, a.EntityID, a.Message, a.Severity))
	if err != nil {
		return nil, fmt.Errorf("failed to insert %s alert: %w", a.Type, err)
	}
	return created, nil
}

func (c *alertCenter) ListActive(ctx context.Context) ([]Alert, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE NOT is_read
		ORDER BY CASE severity WHEN 'HIGH' THEN 0 WHEN 'MEDIUM' THEN 1 ELSE 2 END, created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

func (c *alertCenter) Acknowledge(ctx context.Context, id int) (*Alert, error) {
	a, err := scanAlert(c.pool.QueryRow(ctx, `
		UPDATE alerts SET is_read = true, read_at = COALESCE(read_at, NOW())
		WHERE id = $1
		RETURNING `+alertColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("alert", id)
		}
		return nil, fmt.Errorf("failed to acknowledge alert %d: %w", id, err)
	}
	return a, nil
}
