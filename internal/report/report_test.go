package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewmetrics/internal/models"
)

func reportRows() []models.Transaction {
	base := time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)
	tx := func(product, customer string, dayOffset int, revenue float64) models.Transaction {
		return models.Transaction{
			ProductID:  product,
			CustomerID: customer,
			Date:       base.AddDate(0, 0, dayOffset),
			DateValid:  true,
			Revenue:    revenue,
		}
	}
	return []models.Transaction{
		tx("espresso", "big-spender", 0, 700),
		tx("latte", "big-spender", 3, 100),
		tx("latte", "regular", 3, 40),
		tx("mocha", "regular", 4, 30),
		tx("scone", "walk-in", 5, 10),
	}
}

func TestCompose(t *testing.T) {
	r := Compose(reportRows(), nil)

	assert.NotEmpty(t, r.Overview)
	assert.Len(t, r.Recommendations, 4)

	assert.Equal(t, 4, r.ABC.TotalProducts)
	assert.NotEmpty(t, r.ABC.TierDistribution)
	assert.NotEmpty(t, r.ABC.TopTier)
	require.NotEmpty(t, r.ABC.TopProducts)
	assert.Equal(t, "espresso", r.ABC.TopProducts[0].ProductID, "top products ranked by revenue")
	assert.LessOrEqual(t, len(r.ABC.TopProducts), 5)

	assert.Equal(t, 3, r.RFM.TotalCustomers)
	assert.Equal(t, 1, r.RFM.HighValueCustomers, "only big-spender exceeds 500")
	require.Len(t, r.RFM.TopCustomers, 1)
	assert.Equal(t, "big-spender", r.RFM.TopCustomers[0].CustomerID)
	assert.NotEmpty(t, r.RFM.RecencyGroups)
	assert.NotEmpty(t, r.RFM.FrequencyGroups)
	assert.NotEmpty(t, r.RFM.MonetaryGroups)
}

func TestCompose_TopCustomersRankedByMonetary(t *testing.T) {
	rows := reportRows()
	rows = append(rows,
		models.Transaction{ProductID: "beans", CustomerID: "whale", Date: time.Date(2023, 7, 2, 0, 0, 0, 0, time.UTC), DateValid: true, Revenue: 2000},
	)

	r := Compose(rows, nil)
	require.Len(t, r.RFM.TopCustomers, 2)
	assert.Equal(t, "whale", r.RFM.TopCustomers[0].CustomerID)
	assert.Equal(t, "big-spender", r.RFM.TopCustomers[1].CustomerID)
}

func TestCompose_EmptyTable(t *testing.T) {
	r := Compose(nil, nil)

	assert.Zero(t, r.ABC.TotalProducts)
	assert.Zero(t, r.RFM.TotalCustomers)
	assert.Zero(t, r.RFM.HighValueCustomers)
	assert.Empty(t, r.ABC.TopProducts)
	assert.NotEmpty(t, r.Recommendations, "the narrative scaffolding is always present")
}
