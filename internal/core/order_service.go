package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ProductionOrderManager runs the production order lifecycle and drives the StockLedger
// at completion. It never touches lots or inventory rows directly.
type ProductionOrderManager interface {
	// Create validates recipe and stock coverage and stores a PLANNED order with its details.
	Create(ctx context.Context, in CreateProductionOrderInput) (*ProductionOrder, error)
	// Start transitions PLANNED → IN_PROGRESS.
	Start(ctx context.Context, orderID int) (*ProductionOrder, error)
	// Complete transitions IN_PROGRESS → COMPLETED, consuming materials FEFO and
	// receiving the finished goods in a single transaction.
	Complete(ctx context.Context, orderID int, actor string) (*ProductionOrder, error)
	// Cancel transitions PLANNED → CANCELLED.
	Cancel(ctx context.Context, orderID int) (*ProductionOrder, error)

	Get(ctx context.Context, orderID int) (*ProductionOrder, error)
	List(ctx context.Context, status *OrderStatus) ([]ProductionOrder, error)
}

type productionOrderManager struct {
	pool   *pgxpool.Pool
	ledger StockLedger
}

func NewProductionOrderManager(pool *pgxpool.Pool, ledger StockLedger) ProductionOrderManager {
	return &productionOrderManager{pool: pool, ledger: ledger}
}

// RequiredQuantity is the material needed for planned units at qtyPerUnit each.
func RequiredQuantity(qtyPerUnit decimal.Decimal, planned int) decimal.Decimal {
	return qtyPerUnit.Mul(decimal.NewFromInt(int64(planned)))
}

// ── Lifecycle ─────────────────────────────────────────────────────────────────

func (s *productionOrderManager) Create(ctx context.Context, in CreateProductionOrderInput) (*ProductionOrder, error) {
	if in.PlannedQuantity <= 0 {
		return nil, invalid("planned_quantity", fmt.Sprintf("planned quantity must be positive, got %d", in.PlannedQuantity))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := getProduct(ctx, tx, in.ProductID); err != nil {
		return nil, err
	}

	recipe, err := loadRecipe(ctx, tx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if len(recipe) == 0 {
		return nil, invalid("product_id", fmt.Sprintf("product %d has no recipe", in.ProductID))
	}

	// Coverage check against current totals; Complete re-checks under lock.
	for _, item := range recipe {
		m, err := getMaterial(ctx, tx, item.MaterialID)
		if err != nil {
			return nil, err
		}
		required := RequiredQuantity(item.QuantityPerUnit, in.PlannedQuantity)
		if m.TotalStock.LessThan(required) {
			return nil, &InsufficientStockError{
				Entity:    "material",
				EntityID:  m.ID,
				Name:      m.Name,
				Available: m.TotalStock,
				Required:  required,
			}
		}
	}

	orderNumber, err := nextDocumentNumber(ctx, tx, productionOrderTypeCode, time.Now())
	if err != nil {
		return nil, err
	}

	var orderID int
	err = tx.QueryRow(ctx, `
		INSERT INTO production_orders (order_number, product_id, planned_quantity, status, requested_by, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, orderNumber, in.ProductID, in.PlannedQuantity, OrderPlanned, in.RequestedBy, in.Notes).Scan(&orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert production order: %w", err)
	}

	for _, item := range recipe {
		_, err := tx.Exec(ctx, `
			INSERT INTO production_details (order_id, material_id, required_quantity, consumed_quantity)
			VALUES ($1, $2, $3, 0)
		`, orderID, item.MaterialID, RequiredQuantity(item.QuantityPerUnit, in.PlannedQuantity))
		if err != nil {
			return nil, fmt.Errorf("failed to insert production detail for material %d: %w", item.MaterialID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit production order: %w", err)
	}
	return s.Get(ctx, orderID)
}

func (s *productionOrderManager) Start(ctx context.Context, orderID int) (*ProductionOrder, error) {
	return s.transition(ctx, orderID, OrderInProgress, "started_at = NOW()")
}

func (s *productionOrderManager) Cancel(ctx context.Context, orderID int) (*ProductionOrder, error) {
	return s.transition(ctx, orderID, OrderCancelled, "finished_at = NOW()")
}

// transition handles the status changes that carry no stock effect.
func (s *productionOrderManager) transition(ctx context.Context, orderID int, to OrderStatus, stamp string) (*ProductionOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := lockOrderForTransition(ctx, tx, orderID, to); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		"UPDATE production_orders SET status = $1, "+stamp+" WHERE id = $2",
		to, orderID,
	); err != nil {
		return nil, fmt.Errorf("failed to move production order %d to %s: %w", orderID, to, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit production order %d: %w", orderID, err)
	}
	return s.Get(ctx, orderID)
}

type lockedOrder struct {
	productID int
	planned   int
	status    OrderStatus
}

// lockOrderForTransition row-locks the order and verifies the move to status to is allowed.
func lockOrderForTransition(ctx context.Context, tx pgx.Tx, orderID int, to OrderStatus) (*lockedOrder, error) {
	var o lockedOrder
	err := tx.QueryRow(ctx,
		"SELECT product_id, planned_quantity, status FROM production_orders WHERE id = $1 FOR UPDATE",
		orderID,
	).Scan(&o.productID, &o.planned, &o.status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("production order", orderID)
		}
		return nil, fmt.Errorf("failed to lock production order %d: %w", orderID, err)
	}
	if !CanTransition(o.status, to) {
		return nil, &InvalidStateTransitionError{OrderID: orderID, From: o.status, To: to}
	}
	return &o, nil
}

func (s *productionOrderManager) Complete(ctx context.Context, orderID int, actor string) (*ProductionOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	order, err := lockOrderForTransition(ctx, tx, orderID, OrderCompleted)
	if err != nil {
		return nil, err
	}

	// Details come back ordered by material id, so concurrent completions lock lots in the same order.
	details, err := fetchDetails(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	// Re-validate every material under lock before the first lot is touched.
	for _, d := range details {
		name, available, err := s.ledger.LockMaterialStockTx(ctx, tx, d.MaterialID)
		if err != nil {
			return nil, err
		}
		if available.LessThan(d.RequiredQuantity) {
			return nil, &InsufficientStockError{
				Entity:    "material",
				EntityID:  d.MaterialID,
				Name:      name,
				Available: available,
				Required:  d.RequiredQuantity,
			}
		}
	}

	for _, d := range details {
		if _, err := s.ledger.ConsumeFEFOTx(ctx, tx, d.MaterialID, d.RequiredQuantity); err != nil {
			return nil, fmt.Errorf("failed to consume material %d for production order %d: %w", d.MaterialID, orderID, err)
		}
		if _, err := tx.Exec(ctx,
			"UPDATE production_details SET consumed_quantity = required_quantity WHERE id = $1",
			d.ID,
		); err != nil {
			return nil, fmt.Errorf("failed to record consumption for detail %d: %w", d.ID, err)
		}
	}

	if _, err := s.ledger.RecordMovementTx(ctx, tx, MovementInput{
		ProductID: order.productID,
		Type:      MovementEntry,
		Quantity:  order.planned,
		Reason:    fmt.Sprintf("production #%d", orderID),
		Actor:     actor,
	}); err != nil {
		return nil, fmt.Errorf("failed to receive output of production order %d: %w", orderID, err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE production_orders
		SET status = $1, produced_quantity = planned_quantity, finished_at = NOW()
		WHERE id = $2
	`, OrderCompleted, orderID); err != nil {
		return nil, fmt.Errorf("failed to complete production order %d: %w", orderID, err)
	}

	// Single commit: lot draws, inventory entry, details and order status land together.
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit production order completion: %w", err)
	}
	return s.Get(ctx, orderID)
}

// ── Queries ───────────────────────────────────────────────────────────────────

const orderSelect = `
	SELECT o.id, o.order_number, o.product_id, p.name, o.planned_quantity, o.produced_quantity,
	       o.status, o.requested_by, o.notes, o.created_at, o.started_at, o.finished_at
	FROM production_orders o
	JOIN products p ON p.id = o.product_id`

func scanOrder(row rowScanner) (*ProductionOrder, error) {
	var o ProductionOrder
	if err := row.Scan(&o.ID, &o.OrderNumber, &o.ProductID, &o.ProductName, &o.PlannedQuantity,
		&o.ProducedQuantity, &o.Status, &o.RequestedBy, &o.Notes, &o.CreatedAt, &o.StartedAt, &o.FinishedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *productionOrderManager) Get(ctx context.Context, orderID int) (*ProductionOrder, error) {
	o, err := scanOrder(s.pool.QueryRow(ctx, orderSelect+" WHERE o.id = $1", orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("production order", orderID)
		}
		return nil, fmt.Errorf("failed to fetch production order %d: %w", orderID, err)
	}
	o.Details, err = fetchDetails(ctx, s.pool, orderID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *productionOrderManager) List(ctx context.Context, status *OrderStatus) ([]ProductionOrder, error) {
	query := orderSelect
	var args []any
	if status != nil {
		query += " WHERE o.status = $1"
		args = append(args, *status)
	}
	query += " ORDER BY o.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query production orders: %w", err)
	}
	var orders []ProductionOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan production order: %w", err)
		}
		orders = append(orders, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating production orders: %w", err)
	}

	for i := range orders {
		orders[i].Details, err = fetchDetails(ctx, s.pool, orders[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func fetchDetails(ctx context.Context, q pgxQuerier, orderID int) ([]ProductionDetail, error) {
	rows, err := q.Query(ctx, `
		SELECT d.id, d.order_id, d.material_id, m.name, d.required_quantity, d.consumed_quantity
		FROM production_details d
		JOIN materials m ON m.id = d.material_id
		WHERE d.order_id = $1
		ORDER BY d.material_id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query details of production order %d: %w", orderID, err)
	}
	defer rows.Close()

	var details []ProductionDetail
	for rows.Next() {
		var d ProductionDetail
		if err := rows.Scan(&d.ID, &d.OrderID, &d.MaterialID, &d.MaterialName, &d.RequiredQuantity, &d.ConsumedQuantity); err != nil {
			return nil, fmt.Errorf("failed to scan production detail: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
