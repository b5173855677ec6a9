package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewmetrics/internal/models"
)

func tx(product string, revenue float64) models.Transaction {
	return models.Transaction{ProductID: product, Revenue: revenue}
}

func TestClassifyABC_BoundaryScenario(t *testing.T) {
	// A sells 2×10 and 1×10 (30 total), B sells 1×100. Sorted descending:
	// B at 100/130 = 76.9% -> above 70, within 90 -> tier B;
	// A at 130/130 = 100%  -> above 90 -> tier C.
	rows := []models.Transaction{tx("A", 20), tx("B", 100), tx("A", 10)}

	products := ClassifyABC(rows)
	require.Len(t, products, 2)

	assert.Equal(t, "B", products[0].ProductID)
	assert.Equal(t, 100.0, products[0].Revenue)
	assert.InDelta(t, 76.923, products[0].CumulativePct, 0.01)
	assert.Equal(t, "B", products[0].Tier)

	assert.Equal(t, "A", products[1].ProductID)
	assert.Equal(t, 30.0, products[1].Revenue)
	assert.InDelta(t, 100.0, products[1].CumulativePct, 1e-9)
	assert.Equal(t, "C", products[1].Tier)
}

func TestClassifyABC_ExactThresholdsAreInclusive(t *testing.T) {
	// Revenues 70, 20, 10: cumulative 70%, 90%, 100%.
	rows := []models.Transaction{tx("p1", 70), tx("p2", 20), tx("p3", 10)}

	products := ClassifyABC(rows)
	require.Len(t, products, 3)
	assert.Equal(t, "A", products[0].Tier, "exactly 70%% is tier A")
	assert.Equal(t, "B", products[1].Tier, "exactly 90%% is tier B")
	assert.Equal(t, "C", products[2].Tier)
}

func TestClassifyABC_CumulativeIsNonDecreasingAndEndsAt100(t *testing.T) {
	rows := []models.Transaction{
		tx("a", 5), tx("b", 100), tx("c", 3), tx("a", 7), tx("d", 42), tx("e", 1),
	}

	products := ClassifyABC(rows)
	require.NotEmpty(t, products)

	prev := 0.0
	for _, p := range products {
		assert.GreaterOrEqual(t, p.CumulativePct, prev)
		prev = p.CumulativePct
	}
	assert.InDelta(t, 100.0, products[len(products)-1].CumulativePct, 1e-9)
}

func TestClassifyABC_ZeroTotalRevenue(t *testing.T) {
	rows := []models.Transaction{tx("a", 0), tx("b", 0)}

	products := ClassifyABC(rows)
	require.Len(t, products, 2)
	for _, p := range products {
		assert.Equal(t, 0.0, p.CumulativePct, "zero grand total defines every share as 0")
		assert.Equal(t, "A", p.Tier)
	}
}

func TestClassifyABC_TiesKeepFirstSeenOrder(t *testing.T) {
	rows := []models.Transaction{tx("late", 50), tx("early", 50)}

	products := ClassifyABC(rows)
	require.Len(t, products, 2)
	assert.Equal(t, "late", products[0].ProductID, "equal revenue keeps first-seen order")
	assert.Equal(t, "early", products[1].ProductID)
}

func TestClassifyABC_EmptyTable(t *testing.T) {
	assert.Empty(t, ClassifyABC(nil))
}

func TestTierDistribution(t *testing.T) {
	products := []models.ProductRevenue{
		{Tier: "A"}, {Tier: "A"}, {Tier: "C"},
	}
	dist := TierDistribution(products)
	require.Len(t, dist, 2)
	assert.Equal(t, models.GroupCount{Group: "A", Count: 2}, dist[0])
	assert.Equal(t, models.GroupCount{Group: "C", Count: 1}, dist[1])
}
