package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewmetrics/internal/models"
)

func customersWithMonetary(values ...float64) []models.CustomerRFM {
	out := make([]models.CustomerRFM, len(values))
	for i, v := range values {
		out[i] = models.CustomerRFM{Monetary: v}
	}
	return out
}

func TestQuantile_LinearInterpolation(t *testing.T) {
	values := []float64{10, 20, 30, 40}

	assert.Equal(t, 10.0, Quantile(values, 0))
	assert.Equal(t, 40.0, Quantile(values, 1))
	assert.InDelta(t, 25.0, Quantile(values, 0.5), 1e-9)
	assert.InDelta(t, 11.5, Quantile(values, 0.05), 1e-9)
}

func TestQuantile_UnsortedInputAndSingleValue(t *testing.T) {
	assert.InDelta(t, 25.0, Quantile([]float64{40, 10, 30, 20}, 0.5), 1e-9)
	assert.Equal(t, 7.0, Quantile([]float64{7}, 0.5))
}

func TestQuantile_Empty(t *testing.T) {
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestValueAtRisk(t *testing.T) {
	customers := customersWithMonetary(10, 20, 30, 40)

	// confidence 0.95 -> 0.05 quantile of [10,20,30,40] = 11.5
	assert.InDelta(t, 11.5, ValueAtRisk(customers, 0.95), 1e-9)
	// confidence 0.90 -> 0.10 quantile = 13
	assert.InDelta(t, 13.0, ValueAtRisk(customers, 0.90), 1e-9)
}

func TestRollingValueAtRisk_WindowFills(t *testing.T) {
	customers := customersWithMonetary(5, 10, 15, 20, 25)

	rolling := RollingValueAtRisk(customers, 0.95, 3)
	require.Len(t, rolling, 5)

	assert.True(t, math.IsNaN(rolling[0]))
	assert.True(t, math.IsNaN(rolling[1]))
	// window [5,10,15], 0.05 quantile = 5 + 0.1*5 = 5.5
	assert.InDelta(t, 5.5, rolling[2], 1e-9)
	assert.InDelta(t, 10.5, rolling[3], 1e-9)
	assert.InDelta(t, 15.5, rolling[4], 1e-9)
}

func TestRollingValueAtRisk_ShorterThanWindow(t *testing.T) {
	rolling := RollingValueAtRisk(customersWithMonetary(1, 2), 0.95, DefaultVaRWindow)
	require.Len(t, rolling, 2)
	for _, v := range rolling {
		assert.True(t, math.IsNaN(v), "positions before the window fills are NaN")
	}
}
