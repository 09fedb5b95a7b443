package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// StockLedger is the single writer of material lots, product inventory and stock movements.
// Every mutating call is one transaction; the Tx variants run inside a caller's transaction
// so ProductionOrderManager can keep consumption and output atomic with the order update.
type StockLedger interface {
	// Materials and lots.
	CreateMaterial(ctx context.Context, in MaterialInput) (*Material, error)
	UpdateMaterial(ctx context.Context, id int, in MaterialInput) (*Material, error)
	GetMaterial(ctx context.Context, id int) (*Material, error)
	ListMaterials(ctx context.Context, activeOnly bool) ([]Material, error)
	AddLot(ctx context.Context, in LotInput) (*Lot, error)
	ListLots(ctx context.Context, materialID int) ([]Lot, error)
	TotalStock(ctx context.Context, materialID int) (decimal.Decimal, error)
	// ConsumeFEFO draws qty from the material's lots, earliest expiry first.
	ConsumeFEFO(ctx context.Context, materialID int, qty decimal.Decimal) ([]LotDraw, error)
	IsMaterialLowStock(ctx context.Context, materialID int) (bool, error)
	// ExpiringLots lists lots with stock that expire within withinDays of today, expired ones included.
	ExpiringLots(ctx context.Context, withinDays int) ([]ExpiringLot, error)

	// Products and finished-goods inventory.
	CreateProduct(ctx context.Context, in ProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, id int, in ProductInput) (*Product, error)
	GetProduct(ctx context.Context, id int) (*Product, error)
	ListProducts(ctx context.Context, activeOnly bool) ([]Product, error)
	DeactivateProduct(ctx context.Context, id int) error
	GetInventory(ctx context.Context, productID int) (*ProductInventory, error)
	ListInventory(ctx context.Context) ([]ProductInventory, error)
	LowStockProducts(ctx context.Context) ([]ProductInventory, error)
	RecordMovement(ctx context.Context, in MovementInput) (*StockMovement, error)
	ListMovements(ctx context.Context, productID, limit int) ([]StockMovement, error)
	IsProductLowStock(ctx context.Context, productID int) (bool, error)

	// TX-scoped operations: work within a caller-provided transaction.

	// LockMaterialStockTx locks every lot of the material and returns its name and available total.
	LockMaterialStockTx(ctx context.Context, tx pgx.Tx, materialID int) (string, decimal.Decimal, error)
	ConsumeFEFOTx(ctx context.Context, tx pgx.Tx, materialID int, qty decimal.Decimal) ([]LotDraw, error)
	RecordMovementTx(ctx context.Context, tx pgx.Tx, in MovementInput) (*StockMovement, error)
}

type stockLedger struct {
	pool   *pgxpool.Pool
	alerts AlertCenter
}

// NewStockLedger wires the ledger to the alert center used for threshold side effects.
// alerts may be nil, in which case no alerts are raised.
func NewStockLedger(pool *pgxpool.Pool, alerts AlertCenter) StockLedger {
	return &stockLedger{pool: pool, alerts: alerts}
}

const materialColumns = `
	m.id, m.name, m.description, m.unit, m.min_stock, m.supplier, m.is_active, m.created_at,
	COALESCE((SELECT SUM(l.quantity) FROM material_lots l WHERE l.material_id = m.id AND l.quantity > 0), 0)`

func scanMaterial(row rowScanner) (*Material, error) {
	var m Material
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Unit, &m.MinStock, &m.Supplier,
		&m.IsActive, &m.CreatedAt, &m.TotalStock)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const lotColumns = "id, material_id, lot_code, quantity, unit_cost, received_on, expires_on"

func scanLot(row rowScanner) (*Lot, error) {
	var l Lot
	if err := row.Scan(&l.ID, &l.MaterialID, &l.LotCode, &l.Quantity, &l.UnitCost, &l.ReceivedOn, &l.ExpiresOn); err != nil {
		return nil, err
	}
	return &l, nil
}

const productColumns = "id, name, description, unit_price, min_stock, is_active, created_at"

func scanProduct(row rowScanner) (*Product, error) {
	var p Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.UnitPrice, &p.MinStock, &p.IsActive, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

const movementColumns = "id, product_id, movement_type, quantity, previous_quantity, new_quantity, delta, reason, actor, created_at"

func scanMovement(row rowScanner) (*StockMovement, error) {
	var m StockMovement
	if err := row.Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity, &m.PreviousQuantity,
		&m.NewQuantity, &m.Delta, &m.Reason, &m.Actor, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func validateMaterialInput(in MaterialInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", "material name is required")
	}
	if strings.TrimSpace(in.Unit) == "" {
		return invalid("unit", "unit of measure is required")
	}
	if in.MinStock.IsNegative() {
		return invalid("min_stock", "minimum stock cannot be negative")
	}
	return checkPlaces("min_stock", in.MinStock, quantityPlaces)
}

func validateLotQuantities(qty, unitCost decimal.Decimal) error {
	if !qty.IsPositive() {
		return invalid("quantity", fmt.Sprintf("lot quantity must be positive, got %s", qty))
	}
	if !unitCost.IsPositive() {
		return invalid("unit_cost", fmt.Sprintf("lot unit cost must be positive, got %s", unitCost))
	}
	if err := checkPlaces("quantity", qty, quantityPlaces); err != nil {
		return err
	}
	return checkPlaces("unit_cost", unitCost, quantityPlaces)
}

func validateProductInput(in ProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", "product name is required")
	}
	if in.UnitPrice.IsNegative() {
		return invalid("unit_price", "unit price cannot be negative")
	}
	if err := checkPlaces("unit_price", in.UnitPrice, pricePlaces); err != nil {
		return err
	}
	if in.MinStock < 0 {
		return invalid("min_stock", "minimum stock cannot be negative")
	}
	return nil
}

// ── Materials & lots ─────────────────────────────────────────────────────────

// CreateMaterial inserts the material and, when InitialQuantity is positive, its first lot.
func (s *stockLedger) CreateMaterial(ctx context.Context, in MaterialInput) (*Material, error) {
	if err := validateMaterialInput(in); err != nil {
		return nil, err
	}
	if in.InitialQuantity.IsNegative() {
		return nil, invalid("initial_quantity", "initial quantity cannot be negative")
	}
	if in.InitialQuantity.IsPositive() {
		if err := validateLotQuantities(in.InitialQuantity, in.UnitCost); err != nil {
			return nil, err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int
	err = tx.QueryRow(ctx, `
		INSERT INTO materials (name, description, unit, min_stock, supplier)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, in.Name, in.Description, in.Unit, in.MinStock, in.Supplier).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}

	if in.InitialQuantity.IsPositive() {
		if _, err := insertLot(ctx, tx, LotInput{
			MaterialID: id,
			Quantity:   in.InitialQuantity,
			UnitCost:   in.UnitCost,
			ExpiresOn:  in.ExpiresOn,
			LotCode:    in.LotCode,
		}); err != nil {
			return nil, err
		}
	}

	m, err := getMaterial(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit material: %w", err)
	}
	return m, nil
}

func (s *stockLedger) UpdateMaterial(ctx context.Context, id int, in MaterialInput) (*Material, error) {
	if err := validateMaterialInput(in); err != nil {
		return nil, err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE materials SET name = $1, description = $2, unit = $3, min_stock = $4, supplier = $5
		WHERE id = $6
	`, in.Name, in.Description, in.Unit, in.MinStock, in.Supplier, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update material %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, notFound("material", id)
	}
	return getMaterial(ctx, s.pool, id)
}

func (s *stockLedger) GetMaterial(ctx context.Context, id int) (*Material, error) {
	return getMaterial(ctx, s.pool, id)
}

func getMaterial(ctx context.Context, q pgxQuerier, id int) (*Material, error) {
	m, err := scanMaterial(q.QueryRow(ctx, "SELECT "+materialColumns+" FROM materials m WHERE m.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("material", id)
		}
		return nil, fmt.Errorf("failed to fetch material %d: %w", id, err)
	}
	return m, nil
}

func (s *stockLedger) ListMaterials(ctx context.Context, activeOnly bool) ([]Material, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+materialColumns+`
		FROM materials m
		WHERE ($1 = false OR m.is_active)
		ORDER BY m.name, m.id
	`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to query materials: %w", err)
	}
	defer rows.Close()

	var materials []Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		materials = append(materials, *m)
	}
	return materials, rows.Err()
}

// AddLot receives a new lot for an existing material.
func (s *stockLedger) AddLot(ctx context.Context, in LotInput) (*Lot, error) {
	if err := validateLotQuantities(in.Quantity, in.UnitCost); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM materials WHERE id = $1)", in.MaterialID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to resolve material: %w", err)
	}
	if !exists {
		return nil, notFound("material", in.MaterialID)
	}

	lot, err := insertLot(ctx, tx, in)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit lot: %w", err)
	}
	return lot, nil
}

func insertLot(ctx context.Context, tx pgx.Tx, in LotInput) (*Lot, error) {
	lot, err := scanLot(tx.QueryRow(ctx, `
		INSERT INTO material_lots (material_id, lot_code, quantity, unit_cost, received_on, expires_on)
		VALUES ($1, $2, $3, $4, COALESCE($5::date, CURRENT_DATE), $6)
		RETURNING `+lotColumns,
		in.MaterialID, in.LotCode, in.Quantity, in.UnitCost, in.ReceivedOn, in.ExpiresOn))
	if err != nil {
		return nil, fmt.Errorf("failed to insert lot for material %d: %w", in.MaterialID, err)
	}
	return lot, nil
}

func (s *stockLedger) ListLots(ctx context.Context, materialID int) ([]Lot, error) {
	if _, err := getMaterial(ctx, s.pool, materialID); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+lotColumns+`
		FROM material_lots
		WHERE material_id = $1
		ORDER BY expires_on ASC NULLS LAST, received_on, id
	`, materialID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lots: %w", err)
	}
	defer rows.Close()

	var lots []Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lot: %w", err)
		}
		lots = append(lots, *l)
	}
	return lots, rows.Err()
}

func (s *stockLedger) TotalStock(ctx context.Context, materialID int) (decimal.Decimal, error) {
	m, err := getMaterial(ctx, s.pool, materialID)
	if err != nil {
		return decimal.Zero, err
	}
	return m.TotalStock, nil
}

func (s *stockLedger) ConsumeFEFO(ctx context.Context, materialID int, qty decimal.Decimal) ([]LotDraw, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	draws, err := s.ConsumeFEFOTx(ctx, tx, materialID, qty)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit consumption: %w", err)
	}
	return draws, nil
}

func (s *stockLedger) IsMaterialLowStock(ctx context.Context, materialID int) (bool, error) {
	m, err := getMaterial(ctx, s.pool, materialID)
	if err != nil {
		return false, err
	}
	return m.TotalStock.LessThan(m.MinStock), nil
}

func (s *stockLedger) ExpiringLots(ctx context.Context, withinDays int) ([]ExpiringLot, error) {
	if withinDays < 0 {
		return nil, invalid("days", "expiry window cannot be negative")
	}
	return expiringLots(ctx, s.pool, withinDays)
}

func expiringLots(ctx context.Context, q pgxQuerier, withinDays int) ([]ExpiringLot, error) {
	rows, err := q.Query(ctx, `
		SELECT l.id, l.material_id, l.lot_code, l.quantity, l.unit_cost, l.received_on, l.expires_on, m.name
		FROM material_lots l
		JOIN materials m ON m.id = l.material_id
		WHERE l.quantity > 0
		  AND l.expires_on IS NOT NULL
		  AND l.expires_on <= CURRENT_DATE + $1::int
		ORDER BY l.expires_on, l.id
	`, withinDays)
	if err != nil {
		return nil, fmt.Errorf("failed to query expiring lots: %w", err)
	}
	defer rows.Close()

	var lots []ExpiringLot
	for rows.Next() {
		var e ExpiringLot
		if err := rows.Scan(&e.ID, &e.MaterialID, &e.LotCode, &e.Quantity, &e.UnitCost,
			&e.ReceivedOn, &e.ExpiresOn, &e.MaterialName); err != nil {
			return nil, fmt.Errorf("failed to scan expiring lot: %w", err)
		}
		lots = append(lots, e)
	}
	return lots, rows.Err()
}

// ── Products & inventory ─────────────────────────────────────────────────────

// CreateProduct inserts the product together with its inventory counter at zero.
func (s *stockLedger) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := scanProduct(tx.QueryRow(ctx, `
		INSERT INTO products (name, description, unit_price, min_stock)
		VALUES ($1, $2, $3, $4)
		RETURNING `+productColumns,
		in.Name, in.Description, in.UnitPrice, in.MinStock))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	if _, err := tx.Exec(ctx, "INSERT INTO product_inventory (product_id, quantity) VALUES ($1, 0)", p.ID); err != nil {
		return nil, fmt.Errorf("failed to create inventory for product %d: %w", p.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit product: %w", err)
	}
	return p, nil
}

func (s *stockLedger) UpdateProduct(ctx context.Context, id int, in ProductInput) (*Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}
	p, err := scanProduct(s.pool.QueryRow(ctx, `
		UPDATE products SET name = $1, description = $2, unit_price = $3, min_stock = $4
		WHERE id = $5
		RETURNING `+productColumns,
		in.Name, in.Description, in.UnitPrice, in.MinStock, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("product", id)
		}
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return p, nil
}

func (s *stockLedger) GetProduct(ctx context.Context, id int) (*Product, error) {
	return getProduct(ctx, s.pool, id)
}

func getProduct(ctx context.Context, q pgxQuerier, id int) (*Product, error) {
	p, err := scanProduct(q.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("product", id)
		}
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	return p, nil
}

func (s *stockLedger) ListProducts(ctx context.Context, activeOnly bool) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE ($1 = false OR is_active)
		ORDER BY name, id
	`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// DeactivateProduct soft-deletes a product. History rows keep referencing it.
func (s *stockLedger) DeactivateProduct(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, "UPDATE products SET is_active = false WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to deactivate product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("product", id)
	}
	return nil
}

const inventorySelect = `
	SELECT i.product_id, p.name, i.quantity, p.min_stock, i.updated_at
	FROM product_inventory i
	JOIN products p ON p.id = i.product_id`

func scanInventory(row rowScanner) (*ProductInventory, error) {
	var inv ProductInventory
	if err := row.Scan(&inv.ProductID, &inv.ProductName, &inv.Quantity, &inv.MinStock, &inv.UpdatedAt); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *stockLedger) GetInventory(ctx context.Context, productID int) (*ProductInventory, error) {
	inv, err := scanInventory(s.pool.QueryRow(ctx, inventorySelect+" WHERE i.product_id = $1", productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("product inventory", productID)
		}
		return nil, fmt.Errorf("failed to fetch inventory for product %d: %w", productID, err)
	}
	return inv, nil
}

func (s *stockLedger) ListInventory(ctx context.Context) ([]ProductInventory, error) {
	return queryInventory(ctx, s.pool, inventorySelect+" WHERE p.is_active ORDER BY p.name")
}

func (s *stockLedger) LowStockProducts(ctx context.Context) ([]ProductInventory, error) {
	return queryInventory(ctx, s.pool, inventorySelect+" WHERE p.is_active AND i.quantity < p.min_stock ORDER BY p.name")
}

func queryInventory(ctx context.Context, q pgxQuerier, sql string, args ...any) ([]ProductInventory, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	var out []ProductInventory
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory: %w", err)
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

func (s *stockLedger) RecordMovement(ctx context.Context, in MovementInput) (*StockMovement, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	mv, err := s.RecordMovementTx(ctx, tx, in)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit stock movement: %w", err)
	}
	return mv, nil
}

func (s *stockLedger) ListMovements(ctx context.Context, productID, limit int) ([]StockMovement, error) {
	if _, err := getProduct(ctx, s.pool, productID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+movementColumns+`
		FROM stock_movements
		WHERE product_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock movements: %w", err)
	}
	defer rows.Close()

	var movements []StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		movements = append(movements, *m)
	}
	return movements, rows.Err()
}

func (s *stockLedger) IsProductLowStock(ctx context.Context, productID int) (bool, error) {
	inv, err := s.GetInventory(ctx, productID)
	if err != nil {
		return false, err
	}
	return inv.Quantity < inv.MinStock, nil
}

// ── TX-scoped operations ──────────────────────────────────────────────────────

func (s *stockLedger) LockMaterialStockTx(ctx context.Context, tx pgx.Tx, materialID int) (string, decimal.Decimal, error) {
	var name string
	err := tx.QueryRow(ctx, "SELECT name FROM materials WHERE id = $1", materialID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", decimal.Zero, notFound("material", materialID)
		}
		return "", decimal.Zero, fmt.Errorf("failed to resolve material %d: %w", materialID, err)
	}

	lots, err := lockLots(ctx, tx, materialID)
	if err != nil {
		return "", decimal.Zero, err
	}
	total := decimal.Zero
	for _, l := range lots {
		total = total.Add(l.Quantity)
	}
	return name, total, nil
}

// lockLots row-locks the material's lots that still hold stock, in FEFO order.
func lockLots(ctx context.Context, tx pgx.Tx, materialID int) ([]Lot, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+lotColumns+`
		FROM material_lots
		WHERE material_id = $1 AND quantity > 0
		ORDER BY expires_on ASC NULLS LAST, received_on, id
		FOR UPDATE
	`, materialID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock lots for material %d: %w", materialID, err)
	}
	defer rows.Close()

	var lots []Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lot: %w", err)
		}
		lots = append(lots, *l)
	}
	return lots, rows.Err()
}

// ConsumeFEFOTx plans the full draw against locked lots before writing anything,
// then applies each draw. A shortfall returns InsufficientStockError with no lot changed.
func (s *stockLedger) ConsumeFEFOTx(ctx context.Context, tx pgx.Tx, materialID int, qty decimal.Decimal) ([]LotDraw, error) {
	if !qty.IsPositive() {
		return nil, invalid("quantity", "consumption quantity must be positive")
	}
	if err := checkPlaces("quantity", qty, quantityPlaces); err != nil {
		return nil, err
	}

	var name string
	var minStock decimal.Decimal
	err := tx.QueryRow(ctx, "SELECT name, min_stock FROM materials WHERE id = $1", materialID).Scan(&name, &minStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("material", materialID)
		}
		return nil, fmt.Errorf("failed to resolve material %d: %w", materialID, err)
	}

	lots, err := lockLots(ctx, tx, materialID)
	if err != nil {
		return nil, err
	}

	draws, err := PlanFEFO(materialID, lots, qty)
	if err != nil {
		var stockErr *InsufficientStockError
		if errors.As(err, &stockErr) {
			stockErr.Name = name
		}
		return nil, err
	}

	before := decimal.Zero
	for _, l := range lots {
		before = before.Add(l.Quantity)
	}

	for _, d := range draws {
		if _, err := tx.Exec(ctx,
			"UPDATE material_lots SET quantity = quantity - $1 WHERE id = $2",
			d.Quantity, d.LotID,
		); err != nil {
			return nil, fmt.Errorf("failed to draw from lot %d: %w", d.LotID, err)
		}
	}

	after := before.Sub(qty)
	if s.alerts != nil && !before.LessThan(minStock) && after.LessThan(minStock) {
		if _, err := s.alerts.RaiseTx(ctx, tx, Alert{
			Type:       AlertLowStock,
			EntityKind: EntityMaterial,
			EntityID:   materialID,
			Severity:   SeverityMedium,
			Message: fmt.Sprintf("Low stock for material %s: %s remaining, minimum %s",
				name, after.String(), minStock.String()),
		}); err != nil {
			return nil, err
		}
	}
	return draws, nil
}

// RecordMovementTx locks the product's inventory row, writes the movement snapshot and
// updates the counter. EXIT beyond the on-hand quantity fails with the counter unchanged.
func (s *stockLedger) RecordMovementTx(ctx context.Context, tx pgx.Tx, in MovementInput) (*StockMovement, error) {
	switch in.Type {
	case MovementEntry, MovementExit:
		if in.Quantity <= 0 {
			return nil, invalid("quantity", fmt.Sprintf("%s quantity must be positive, got %d", in.Type, in.Quantity))
		}
	case MovementAdjustment:
		if in.Quantity < 0 {
			return nil, invalid("quantity", fmt.Sprintf("adjusted quantity cannot be negative, got %d", in.Quantity))
		}
	default:
		return nil, invalid("movement_type", fmt.Sprintf("unknown movement type %q", in.Type))
	}

	var oldQty, minStock int
	var name string
	err := tx.QueryRow(ctx, `
		SELECT i.quantity, p.min_stock, p.name
		FROM product_inventory i
		JOIN products p ON p.id = i.product_id
		WHERE i.product_id = $1
		FOR UPDATE OF i
	`, in.ProductID).Scan(&oldQty, &minStock, &name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("product inventory", in.ProductID)
		}
		return nil, fmt.Errorf("failed to lock inventory for product %d: %w", in.ProductID, err)
	}

	var newQty int
	switch in.Type {
	case MovementEntry:
		newQty = oldQty + in.Quantity
	case MovementExit:
		if oldQty < in.Quantity {
			return nil, &InsufficientStockError{
				Entity:    "product",
				EntityID:  in.ProductID,
				Name:      name,
				Available: decimal.NewFromInt(int64(oldQty)),
				Required:  decimal.NewFromInt(int64(in.Quantity)),
			}
		}
		newQty = oldQty - in.Quantity
	case MovementAdjustment:
		newQty = in.Quantity
	}

	mv, err := scanMovement(tx.QueryRow(ctx, `
		INSERT INTO stock_movements (product_id, movement_type, quantity, previous_quantity, new_quantity, delta, reason, actor)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+movementColumns,
		in.ProductID, in.Type, in.Quantity, oldQty, newQty, newQty-oldQty, in.Reason, in.Actor))
	if err != nil {
		return nil, fmt.Errorf("failed to insert stock movement: %w", err)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE product_inventory SET quantity = $1, updated_at = NOW() WHERE product_id = $2",
		newQty, in.ProductID,
	); err != nil {
		return nil, fmt.Errorf("failed to update inventory for product %d: %w", in.ProductID, err)
	}

	if in.Type == MovementExit && s.alerts != nil && oldQty >= minStock && newQty < minStock {
		if err := s.raiseProductShortage(ctx, tx, in.ProductID, name, newQty, minStock); err != nil {
			return nil, err
		}
	}
	return mv, nil
}

// raiseProductShortage asks for production when the product has a recipe, otherwise flags low stock.
func (s *stockLedger) raiseProductShortage(ctx context.Context, tx pgx.Tx, productID int, name string, qty, minStock int) error {
	var hasRecipe bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM recipe_items WHERE product_id = $1)", productID).Scan(&hasRecipe); err != nil {
		return fmt.Errorf("failed to check recipe for product %d: %w", productID, err)
	}

	alert := Alert{
		Type:       AlertLowStock,
		EntityKind: EntityProduct,
		EntityID:   productID,
		Severity:   SeverityHigh,
		Message:    fmt.Sprintf("Low stock for product %s: %d on hand, minimum %d", name, qty, minStock),
	}
	if hasRecipe {
		alert.Type = AlertProductionNeeded
		alert.Message = fmt.Sprintf("Production needed for %s: %d on hand, minimum %d", name, qty, minStock)
	}
	_, err := s.alerts.RaiseTx(ctx, tx, alert)
	return err
}
