package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// SortFEFO orders lots first-expiry-first-out: earliest expiry first, lots without an
// expiry date last, ties broken by receipt date and then id.
func SortFEFO(lots []Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]
		switch {
		case a.ExpiresOn == nil && b.ExpiresOn != nil:
			return false
		case a.ExpiresOn != nil && b.ExpiresOn == nil:
			return true
		case a.ExpiresOn != nil && b.ExpiresOn != nil && !a.ExpiresOn.Equal(*b.ExpiresOn):
			return a.ExpiresOn.Before(*b.ExpiresOn)
		}
		if !a.ReceivedOn.Equal(b.ReceivedOn) {
			return a.ReceivedOn.Before(b.ReceivedOn)
		}
		return a.ID < b.ID
	})
}

// PlanFEFO decides how much to draw from each lot to consume qty of a material.
// It never mutates lots. Availability is checked in full before any draw is planned,
// so a failing plan is all-or-nothing.
func PlanFEFO(materialID int, lots []Lot, qty decimal.Decimal) ([]LotDraw, error) {
	if !qty.IsPositive() {
		return nil, invalid("quantity", "consumption quantity must be positive")
	}
	if err := checkPlaces("quantity", qty, quantityPlaces); err != nil {
		return nil, err
	}

	candidates := make([]Lot, 0, len(lots))
	available := decimal.Zero
	for _, l := range lots {
		if l.Quantity.IsPositive() {
			candidates = append(candidates, l)
			available = available.Add(l.Quantity)
		}
	}
	if available.LessThan(qty) {
		return nil, &InsufficientStockError{
			Entity:    "material",
			EntityID:  materialID,
			Available: available,
			Required:  qty,
		}
	}

	SortFEFO(candidates)

	remaining := qty
	var draws []LotDraw
	for _, l := range candidates {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(l.Quantity, remaining)
		draws = append(draws, LotDraw{
			LotID:     l.ID,
			Quantity:  take,
			Remaining: l.Quantity.Sub(take),
		})
		remaining = remaining.Sub(take)
	}
	return draws, nil
}
