package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// productionOrderTypeCode prefixes production order numbers: OP-2026-00001.
const productionOrderTypeCode = "OP"

// nextDocumentNumber allocates the next gapless number for typeCode in the given year
// inside the caller's transaction. The sequence row stays locked until commit, so a
// rolled-back allocation leaves no gap.
func nextDocumentNumber(ctx context.Context, tx pgx.Tx, typeCode string, at time.Time) (string, error) {
	year := at.Year()
	var lastNumber int64
	err := tx.QueryRow(ctx, `
		INSERT INTO document_sequences (type_code, year, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (type_code, year)
		DO UPDATE SET last_number = document_sequences.last_number + 1
		RETURNING last_number
	`, typeCode, year).Scan(&lastNumber)
	if err != nil {
		return "", fmt.Errorf("failed to generate gapless sequence number: %w", err)
	}
	return FormatDocumentNumber(typeCode, year, lastNumber), nil
}

// FormatDocumentNumber renders TYPE-YEAR-NNNNN.
func FormatDocumentNumber(typeCode string, year int, n int64) string {
	return fmt.Sprintf("%s-%d-%05d", typeCode, year, n)
}
