package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ForecastEngine estimates demand from sales history and scores stored forecasts.
type ForecastEngine interface {
	// Forecast computes, persists and returns a demand estimate for targetDate.
	Forecast(ctx context.Context, productID int, method ForecastMethod, targetDate time.Time) (*Forecast, error)
	// ForecastError compares forecasts targeting [from, to] with the actual sales on those dates.
	ForecastError(ctx context.Context, productID int, from, to time.Time) (*ForecastAccuracy, error)
	ListForecasts(ctx context.Context, productID int) ([]Forecast, error)
}

type forecastEngine struct {
	pool *pgxpool.Pool
}

func NewForecastEngine(pool *pgxpool.Pool) ForecastEngine {
	return &forecastEngine{pool: pool}
}

const forecastColumns = "id, product_id, target_date, estimated_quantity, method, computed_at"

func scanForecast(row rowScanner) (*Forecast, error) {
	var f Forecast
	if err := row.Scan(&f.ID, &f.ProductID, &f.TargetDate, &f.EstimatedQuantity, &f.Method, &f.ComputedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *forecastEngine) Forecast(ctx context.Context, productID int, method ForecastMethod, targetDate time.Time) (*Forecast, error) {
	if _, err := ParseForecastMethod(string(method)); err != nil {
		return nil, err
	}
	if _, err := getProduct(ctx, s.pool, productID); err != nil {
		return nil, err
	}

	sales, err := listSales(ctx, s.pool, productID, nil, nil)
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return nil, invalid("sales", fmt.Sprintf("product %d has no sales history", productID))
	}

	history := make([]float64, len(sales))
	for i, r := range sales {
		history[i] = float64(r.Quantity)
	}

	estimate, err := EstimateDemand(method, history)
	if err != nil {
		return nil, err
	}

	f, err := scanForecast(s.pool.QueryRow(ctx, `
		INSERT INTO forecasts (product_id, target_date, estimated_quantity, method)
		VALUES ($1, $2, $3, $4)
		RETURNING `+forecastColumns,
		productID, targetDate, estimate, method))
	if err != nil {
		return nil, fmt.Errorf("failed to store forecast: %w", err)
	}
	return f, nil
}

func (s *forecastEngine) ForecastError(ctx context.Context, productID int, from, to time.Time) (*ForecastAccuracy, error) {
	if to.Before(from) {
		return nil, invalid("to", "end date precedes start date")
	}
	if _, err := getProduct(ctx, s.pool, productID); err != nil {
		return nil, err
	}

	forecasts, err := s.queryForecasts(ctx, productID, &from, &to)
	if err != nil {
		return nil, err
	}
	if len(forecasts) == 0 {
		return nil, invalid("forecasts", "no forecasts in the requested range")
	}

	sales, err := listSales(ctx, s.pool, productID, &from, &to)
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return nil, invalid("sales", "no sales in the requested range")
	}

	acc, err := AccuracyMetrics(MatchForecasts(forecasts, sales))
	if err != nil {
		return nil, err
	}
	acc.ProductID = productID
	return &acc, nil
}

func (s *forecastEngine) ListForecasts(ctx context.Context, productID int) ([]Forecast, error) {
	if _, err := getProduct(ctx, s.pool, productID); err != nil {
		return nil, err
	}
	return s.queryForecasts(ctx, productID, nil, nil)
}

func (s *forecastEngine) queryForecasts(ctx context.Context, productID int, from, to *time.Time) ([]Forecast, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+forecastColumns+`
		FROM forecasts
		WHERE product_id = $1
		  AND ($2::date IS NULL OR target_date >= $2::date)
		  AND ($3::date IS NULL OR target_date <= $3::date)
		ORDER BY target_date DESC, computed_at DESC, id DESC
	`, productID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query forecasts: %w", err)
	}
	defer rows.Close()

	var forecasts []Forecast
	for rows.Next() {
		f, err := scanForecast(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan forecast: %w", err)
		}
		forecasts = append(forecasts, *f)
	}
	return forecasts, rows.Err()
}
