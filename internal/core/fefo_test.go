package core_test

import (
	"errors"
	"testing"
	"time"

	"inventory-engine/internal/core"

	"github.com/shopspring/decimal"
)

func day(offset int) *time.Time {
	d := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	return &d
}

func TestPlanFEFO_EarliestExpiryFirst(t *testing.T) {
	lots := []core.Lot{
		{ID: 2, Quantity: decimal.NewFromInt(5), ExpiresOn: day(10), ReceivedOn: *day(0)},
		{ID: 1, Quantity: decimal.NewFromInt(5), ExpiresOn: day(1), ReceivedOn: *day(0)},
	}

	draws, err := core.PlanFEFO(1, lots, decimal.NewFromInt(7))
	if err != nil {
		t.Fatalf("PlanFEFO failed: %v", err)
	}
	if len(draws) != 2 {
		t.Fatalf("Expected 2 draws, got %d", len(draws))
	}
	if draws[0].LotID != 1 || !draws[0].Remaining.IsZero() {
		t.Errorf("Expected lot 1 drained first, got %+v", draws[0])
	}
	if draws[1].LotID != 2 || !draws[1].Remaining.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected lot 2 left with 3, got %+v", draws[1])
	}
}

func TestPlanFEFO_NoExpiryLast(t *testing.T) {
	lots := []core.Lot{
		{ID: 1, Quantity: decimal.NewFromInt(4), ReceivedOn: *day(-30)},
		{ID: 2, Quantity: decimal.NewFromInt(4), ExpiresOn: day(90), ReceivedOn: *day(0)},
	}

	draws, err := core.PlanFEFO(1, lots, decimal.NewFromInt(3))
	if err != nil {
		t.Fatalf("PlanFEFO failed: %v", err)
	}
	if len(draws) != 1 || draws[0].LotID != 2 {
		t.Errorf("Expected only the dated lot to be drawn, got %+v", draws)
	}
}

func TestPlanFEFO_TieBrokenByReceipt(t *testing.T) {
	lots := []core.Lot{
		{ID: 5, Quantity: decimal.NewFromInt(2), ExpiresOn: day(5), ReceivedOn: *day(2)},
		{ID: 9, Quantity: decimal.NewFromInt(2), ExpiresOn: day(5), ReceivedOn: *day(1)},
	}

	draws, err := core.PlanFEFO(1, lots, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("PlanFEFO failed: %v", err)
	}
	if draws[0].LotID != 9 {
		t.Errorf("Expected earlier-received lot 9 first, got %d", draws[0].LotID)
	}
}

func TestPlanFEFO_SkipsEmptyLots(t *testing.T) {
	lots := []core.Lot{
		{ID: 1, Quantity: decimal.Zero, ExpiresOn: day(1)},
		{ID: 2, Quantity: decimal.NewFromInt(3), ExpiresOn: day(2)},
	}

	draws, err := core.PlanFEFO(1, lots, decimal.NewFromInt(3))
	if err != nil {
		t.Fatalf("PlanFEFO failed: %v", err)
	}
	if len(draws) != 1 || draws[0].LotID != 2 {
		t.Errorf("Expected empty lot skipped, got %+v", draws)
	}
}

func TestPlanFEFO_Insufficient(t *testing.T) {
	lots := []core.Lot{
		{ID: 1, Quantity: decimal.NewFromInt(5), ExpiresOn: day(1)},
		{ID: 2, Quantity: decimal.NewFromInt(5), ExpiresOn: day(10)},
	}

	_, err := core.PlanFEFO(42, lots, decimal.NewFromInt(11))
	var stockErr *core.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("Expected InsufficientStockError, got %v", err)
	}
	if stockErr.EntityID != 42 || !stockErr.Shortfall().Equal(decimal.NewFromInt(1)) {
		t.Errorf("Unexpected error detail: %+v", stockErr)
	}
	if !lots[0].Quantity.Equal(decimal.NewFromInt(5)) {
		t.Errorf("PlanFEFO must not mutate input lots")
	}
}

func TestPlanFEFO_RejectsNonPositive(t *testing.T) {
	for _, q := range []int64{0, -3} {
		if _, err := core.PlanFEFO(1, nil, decimal.NewFromInt(q)); !errors.Is(err, core.ErrValidation) {
			t.Errorf("qty %d: expected ValidationError, got %v", q, err)
		}
	}
}

func TestPlanFEFO_RejectsFinerThanStoredScale(t *testing.T) {
	lots := []core.Lot{{ID: 1, Quantity: decimal.NewFromInt(5), ReceivedOn: *day(0)}}

	_, err := core.PlanFEFO(1, lots, decimal.RequireFromString("0.00001"))
	var ve *core.ValidationError
	if !errors.As(err, &ve) || ve.Field != "quantity" {
		t.Fatalf("Expected ValidationError on quantity, got %v", err)
	}

	draws, err := core.PlanFEFO(1, lots, decimal.RequireFromString("0.25000"))
	if err != nil {
		t.Fatalf("Expected trailing zeros to be accepted, got %v", err)
	}
	if !draws[0].Remaining.Equal(decimal.RequireFromString("4.75")) {
		t.Errorf("Expected 4.75 left, got %s", draws[0].Remaining)
	}
}

func TestPlanFEFO_ConservesQuantity(t *testing.T) {
	lots := []core.Lot{
		{ID: 1, Quantity: decimal.RequireFromString("2.5"), ExpiresOn: day(3)},
		{ID: 2, Quantity: decimal.RequireFromString("4.25"), ExpiresOn: day(1)},
		{ID: 3, Quantity: decimal.RequireFromString("1"), ExpiresOn: nil},
	}
	qty := decimal.RequireFromString("6")

	draws, err := core.PlanFEFO(1, lots, qty)
	if err != nil {
		t.Fatalf("PlanFEFO failed: %v", err)
	}
	total := decimal.Zero
	for _, d := range draws {
		total = total.Add(d.Quantity)
		if d.Remaining.IsNegative() {
			t.Errorf("lot %d would go negative", d.LotID)
		}
	}
	if !total.Equal(qty) {
		t.Errorf("Expected draws to sum to %s, got %s", qty, total)
	}
}
