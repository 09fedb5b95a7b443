package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RecipeCatalog holds each product's bill of materials.
type RecipeCatalog interface {
	GetRecipe(ctx context.Context, productID int) ([]RecipeItem, error)
	// SetRecipe replaces the product's recipe atomically.
	SetRecipe(ctx context.Context, productID int, items []RecipeItemInput) ([]RecipeItem, error)
}

type recipeCatalog struct {
	pool *pgxpool.Pool
}

func NewRecipeCatalog(pool *pgxpool.Pool) RecipeCatalog {
	return &recipeCatalog{pool: pool}
}

func (s *recipeCatalog) GetRecipe(ctx context.Context, productID int) ([]RecipeItem, error) {
	if _, err := getProduct(ctx, s.pool, productID); err != nil {
		return nil, err
	}
	return loadRecipe(ctx, s.pool, productID)
}

func loadRecipe(ctx context.Context, q pgxQuerier, productID int) ([]RecipeItem, error) {
	rows, err := q.Query(ctx, `
		SELECT r.product_id, r.material_id, m.name, r.quantity_per_unit, r.unit
		FROM recipe_items r
		JOIN materials m ON m.id = r.material_id
		WHERE r.product_id = $1
		ORDER BY r.material_id
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe for product %d: %w", productID, err)
	}
	defer rows.Close()

	var items []RecipeItem
	for rows.Next() {
		var it RecipeItem
		if err := rows.Scan(&it.ProductID, &it.MaterialID, &it.MaterialName, &it.QuantityPerUnit, &it.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan recipe item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ValidateRecipe checks recipe lines without touching storage.
func ValidateRecipe(items []RecipeItemInput) error {
	if len(items) == 0 {
		return invalid("items", "recipe must contain at least one material")
	}
	seen := make(map[int]bool, len(items))
	for i, it := range items {
		if !it.QuantityPerUnit.IsPositive() {
			return invalid(fmt.Sprintf("items[%d].quantity_per_unit", i), "quantity per unit must be positive")
		}
		if err := checkPlaces(fmt.Sprintf("items[%d].quantity_per_unit", i), it.QuantityPerUnit, quantityPlaces); err != nil {
			return err
		}
		if seen[it.MaterialID] {
			return invalid(fmt.Sprintf("items[%d].material_id", i), fmt.Sprintf("material %d listed more than once", it.MaterialID))
		}
		seen[it.MaterialID] = true
	}
	return nil
}

func (s *recipeCatalog) SetRecipe(ctx context.Context, productID int, items []RecipeItemInput) ([]RecipeItem, error) {
	if err := ValidateRecipe(items); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialise concurrent replacements of the same recipe.
	var locked int
	if err := tx.QueryRow(ctx, "SELECT id FROM products WHERE id = $1 FOR UPDATE", productID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("product", productID)
		}
		return nil, fmt.Errorf("failed to lock product %d: %w", productID, err)
	}

	for _, it := range items {
		var exists bool
		if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM materials WHERE id = $1)", it.MaterialID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to resolve material %d: %w", it.MaterialID, err)
		}
		if !exists {
			return nil, notFound("material", it.MaterialID)
		}
	}

	if _, err := tx.Exec(ctx, "DELETE FROM recipe_items WHERE product_id = $1", productID); err != nil {
		return nil, fmt.Errorf("failed to clear recipe for product %d: %w", productID, err)
	}
	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO recipe_items (product_id, material_id, quantity_per_unit, unit)
			VALUES ($1, $2, $3, $4)
		`, productID, it.MaterialID, it.QuantityPerUnit, it.Unit); err != nil {
			return nil, fmt.Errorf("failed to insert recipe item for material %d: %w", it.MaterialID, err)
		}
	}

	recipe, err := loadRecipe(ctx, tx, productID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit recipe: %w", err)
	}
	return recipe, nil
}
