package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

//go:embed seeds/demo.sql
var demoSeed string

// ErrAlreadySeeded is returned when the catalog already holds data.
var ErrAlreadySeeded = errors.New("database already contains materials or products")

// Seed loads the demo catalog, stock and sales history in one transaction.
// It refuses to run against a database that already has materials or products.
func Seed(ctx context.Context, pool *pgxpool.Pool, logger logrus.FieldLogger) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var populated bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM materials) OR EXISTS (SELECT 1 FROM products)",
	).Scan(&populated); err != nil {
		return fmt.Errorf("failed to inspect database: %w", err)
	}
	if populated {
		return ErrAlreadySeeded
	}

	if _, err := tx.Exec(ctx, demoSeed); err != nil {
		return fmt.Errorf("failed to load demo data: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit demo data: %w", err)
	}
	logger.Info("demo data loaded")
	return nil
}
