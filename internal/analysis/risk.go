package analysis

import (
	"math"
	"slices"

	"brewmetrics/internal/models"
)

// DefaultVaRWindow is the rolling window used by the historical VaR chart.
const DefaultVaRWindow = 30

// ValueAtRisk is the linear-interpolation quantile of the Monetary column at
// probability 1-confidence. An empty table yields NaN; callers surface that as
// a no-data state rather than serializing it.
func ValueAtRisk(customers []models.CustomerRFM, confidence float64) float64 {
	return Quantile(monetaryValues(customers), 1-confidence)
}

// RollingValueAtRisk computes the same quantile over a trailing window of the
// Monetary column, in the table's customer-id order. Positions before the
// window fills are NaN, matching a trailing rolling statistic.
func RollingValueAtRisk(customers []models.CustomerRFM, confidence float64, window int) []float64 {
	values := monetaryValues(customers)
	out := make([]float64, len(values))
	for i := range values {
		if i+1 < window {
			out[i] = math.NaN()
			continue
		}
		out[i] = Quantile(values[i+1-window:i+1], 1-confidence)
	}
	return out
}

// Quantile returns the q-th quantile (0 ≤ q ≤ 1) of values using linear
// interpolation between closest ranks. Empty input yields NaN.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	frac := pos - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func monetaryValues(customers []models.CustomerRFM) []float64 {
	values := make([]float64, len(customers))
	for i, c := range customers {
		values[i] = c.Monetary
	}
	return values
}
