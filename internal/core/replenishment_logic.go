package core

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	thresholdA = decimal.NewFromInt(80)
	thresholdB = decimal.NewFromInt(95)
	hundred    = decimal.NewFromInt(100)
	daysInYear = decimal.NewFromInt(365)
)

// EconomicOrderQuantity returns sqrt(2·D·S/H) rounded to four places.
func EconomicOrderQuantity(annualDemand, orderCost, holdingCost decimal.Decimal) (decimal.Decimal, error) {
	if !holdingCost.IsPositive() {
		return decimal.Zero, invalid("holding_cost", fmt.Sprintf("holding cost must be positive, got %s", holdingCost))
	}
	if annualDemand.IsNegative() {
		return decimal.Zero, invalid("annual_demand", "annual demand cannot be negative")
	}
	if orderCost.IsNegative() {
		return decimal.Zero, invalid("order_cost", "order cost cannot be negative")
	}
	if err := checkPlaces("annual_demand", annualDemand, quantityPlaces); err != nil {
		return decimal.Zero, err
	}
	if err := checkPlaces("order_cost", orderCost, quantityPlaces); err != nil {
		return decimal.Zero, err
	}
	if err := checkPlaces("holding_cost", holdingCost, quantityPlaces); err != nil {
		return decimal.Zero, err
	}

	ratio := decimal.NewFromInt(2).Mul(annualDemand).Mul(orderCost).Div(holdingCost)
	eoq := math.Sqrt(ratio.InexactFloat64())
	return decimal.NewFromFloat(eoq).Round(4), nil
}

// ReorderPoint is the demand expected during the lead time, rounded up. A zero lead time gives 0.
func ReorderPoint(annualDemand decimal.Decimal, leadTimeDays int) (int, error) {
	if leadTimeDays < 0 {
		return 0, invalid("lead_time_days", "lead time cannot be negative")
	}
	if leadTimeDays == 0 {
		return 0, nil
	}
	daily := annualDemand.Div(daysInYear)
	return int(daily.Mul(decimal.NewFromInt(int64(leadTimeDays))).Ceil().IntPart()), nil
}

// ProductSalesValue is one product's sales value over an ABC period.
type ProductSalesValue struct {
	ProductID   int
	ProductName string
	Value       decimal.Decimal
}

// ClassifyByValue ranks products by sales value and assigns A (cumulative share ≤ 80%),
// B (≤ 95%) or C. Ties keep product id order.
func ClassifyByValue(values []ProductSalesValue) ([]ABCClassification, error) {
	if len(values) == 0 {
		return nil, invalid("sales", "no sales in the requested period")
	}
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v.Value)
	}
	if !total.IsPositive() {
		return nil, invalid("sales", "total sales value in the requested period is zero")
	}

	ranked := make([]ProductSalesValue, len(values))
	copy(ranked, values)
	sort.SliceStable(ranked, func(i, j int) bool {
		if !ranked[i].Value.Equal(ranked[j].Value) {
			return ranked[i].Value.GreaterThan(ranked[j].Value)
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})

	out := make([]ABCClassification, 0, len(ranked))
	cumulative := decimal.Zero
	for _, v := range ranked {
		cumulative = cumulative.Add(v.Value)
		pct := cumulative.Div(total).Mul(hundred)

		category := CategoryC
		switch {
		case pct.LessThanOrEqual(thresholdA):
			category = CategoryA
		case pct.LessThanOrEqual(thresholdB):
			category = CategoryB
		}

		out = append(out, ABCClassification{
			ProductID:     v.ProductID,
			ProductName:   v.ProductName,
			SalesValue:    v.Value,
			CumulativePct: pct.Round(4),
			Category:      category,
		})
	}
	return out, nil
}
