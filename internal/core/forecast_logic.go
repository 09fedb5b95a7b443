package core

import (
	"fmt"
	"math"
	"sort"
)

const (
	movingAverageWindow = 3
	smoothingAlpha      = 0.3
	dateKeyLayout       = "2006-01-02"
)

var weightedAverageWeights = []float64{0.5, 0.3, 0.2}

// ParseForecastMethod validates a method name.
func ParseForecastMethod(s string) (ForecastMethod, error) {
	switch m := ForecastMethod(s); m {
	case MethodMovingAverage, MethodWeightedAverage, MethodExponentialSmoothing, MethodLinearRegression:
		return m, nil
	}
	return "", invalid("method", fmt.Sprintf("unknown forecast method %q", s))
}

// EstimateDemand projects the next period's quantity from a history ordered most recent first.
// The result is rounded half away from zero.
func EstimateDemand(method ForecastMethod, recentFirst []float64) (int, error) {
	if len(recentFirst) == 0 {
		return 0, invalid("sales", "no sales history to forecast from")
	}

	var estimate float64
	switch method {
	case MethodMovingAverage:
		estimate = movingAverage(recentFirst, movingAverageWindow)
	case MethodWeightedAverage:
		estimate = weightedAverage(recentFirst)
	case MethodExponentialSmoothing:
		estimate = exponentialSmoothing(recentFirst, smoothingAlpha)
	case MethodLinearRegression:
		estimate = linearTrend(recentFirst)
	default:
		return 0, invalid("method", fmt.Sprintf("unknown forecast method %q", method))
	}
	return int(math.Round(estimate)), nil
}

// movingAverage averages the n most recent values, or all of them when fewer exist.
func movingAverage(recentFirst []float64, n int) float64 {
	if len(recentFirst) < n {
		n = len(recentFirst)
	}
	sum := 0.0
	for _, v := range recentFirst[:n] {
		sum += v
	}
	return sum / float64(n)
}

// weightedAverage falls back to a plain average when there are fewer values than weights.
func weightedAverage(recentFirst []float64) float64 {
	if len(recentFirst) < len(weightedAverageWeights) {
		return movingAverage(recentFirst, len(recentFirst))
	}
	sum := 0.0
	for i, w := range weightedAverageWeights {
		sum += w * recentFirst[i]
	}
	return sum
}

// exponentialSmoothing seeds with the oldest value and walks forward in time.
func exponentialSmoothing(recentFirst []float64, alpha float64) float64 {
	last := len(recentFirst) - 1
	s := recentFirst[last]
	for i := last - 1; i >= 0; i-- {
		s = alpha*recentFirst[i] + (1-alpha)*s
	}
	return s
}

// linearTrend fits quantity against period index (oldest = 0) by least squares and
// projects one period ahead. Fewer than two points yields the plain average; a
// negative projection is clamped to zero.
func linearTrend(recentFirst []float64) float64 {
	n := len(recentFirst)
	if n < 2 {
		return movingAverage(recentFirst, n)
	}

	var sumX, sumY, sumXY, sumXX float64
	for i := 0; i < n; i++ {
		x := float64(i)
		y := recentFirst[n-1-i]
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return sumY / fn
	}
	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn
	return math.Max(0, intercept+slope*fn)
}

// ForecastPair is one date on which both a forecast and actual sales exist.
type ForecastPair struct {
	Date     string
	Forecast float64
	Actual   float64
}

// MatchForecasts joins forecasts to sales by exact date. When several forecasts target the
// same date the latest computed one wins; sales on the same date are summed.
func MatchForecasts(forecasts []Forecast, sales []SalesRecord) []ForecastPair {
	latest := make(map[string]Forecast)
	for _, f := range forecasts {
		key := f.TargetDate.Format(dateKeyLayout)
		cur, ok := latest[key]
		if !ok || f.ComputedAt.After(cur.ComputedAt) || (f.ComputedAt.Equal(cur.ComputedAt) && f.ID > cur.ID) {
			latest[key] = f
		}
	}

	actual := make(map[string]float64)
	for _, s := range sales {
		actual[s.SoldOn.Format(dateKeyLayout)] += float64(s.Quantity)
	}

	var pairs []ForecastPair
	for key, f := range latest {
		if a, ok := actual[key]; ok {
			pairs = append(pairs, ForecastPair{Date: key, Forecast: float64(f.EstimatedQuantity), Actual: a})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Date < pairs[j].Date })
	return pairs
}

// AccuracyMetrics computes MAD, MSE and MAPE over matched pairs. MAPE averages only the
// pairs with a non-zero actual and is 0 when there are none.
func AccuracyMetrics(pairs []ForecastPair) (ForecastAccuracy, error) {
	if len(pairs) == 0 {
		return ForecastAccuracy{}, invalid("dates", "no forecast dates coincide with sales dates")
	}

	var absSum, sqSum, pctSum float64
	pctPoints := 0
	for _, p := range pairs {
		diff := p.Actual - p.Forecast
		absSum += math.Abs(diff)
		sqSum += diff * diff
		if p.Actual != 0 {
			pctSum += math.Abs(diff / p.Actual)
			pctPoints++
		}
	}

	n := float64(len(pairs))
	acc := ForecastAccuracy{
		MAD:           absSum / n,
		MSE:           sqSum / n,
		MatchedPoints: len(pairs),
		MAPEPoints:    pctPoints,
	}
	if pctPoints > 0 {
		acc.MAPE = pctSum / float64(pctPoints) * 100
	}
	return acc, nil
}
