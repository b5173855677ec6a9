// Package analysis holds the pure analytical transforms of the dashboard:
// ABC classification, RFM segmentation, trend aggregation, descriptive
// statistics, and risk quantiles. Every function re-derives its output from
// the rows it is given; nothing is cached between calls.
package analysis

import (
	"slices"

	"brewmetrics/internal/models"
)

// ABC tier thresholds on cumulative revenue percentage, boundary inclusive.
const (
	tierAThreshold = 70.0
	tierBThreshold = 90.0
)

// ClassifyABC sums revenue per product, ranks descending, and assigns tiers by
// cumulative revenue share: A up to 70%, B up to 90%, C beyond. Products with
// equal revenue keep first-seen input order (stable sort). When total revenue
// is zero the share is defined as 0 for every product, so all classify as A.
func ClassifyABC(rows []models.Transaction) []models.ProductRevenue {
	totals := make(map[string]float64)
	var order []string
	for _, tx := range rows {
		if _, seen := totals[tx.ProductID]; !seen {
			order = append(order, tx.ProductID)
		}
		totals[tx.ProductID] += tx.Revenue
	}

	products := make([]models.ProductRevenue, 0, len(order))
	var grand float64
	for _, id := range order {
		products = append(products, models.ProductRevenue{ProductID: id, Revenue: totals[id]})
		grand += totals[id]
	}

	slices.SortStableFunc(products, func(a, b models.ProductRevenue) int {
		if a.Revenue > b.Revenue {
			return -1
		}
		if a.Revenue < b.Revenue {
			return 1
		}
		return 0
	})

	var running float64
	for i := range products {
		running += products[i].Revenue
		if grand > 0 {
			products[i].CumulativePct = running / grand * 100
		}
		products[i].Tier = tierFor(products[i].CumulativePct)
	}
	return products
}

func tierFor(cumulativePct float64) string {
	switch {
	case cumulativePct <= tierAThreshold:
		return "A"
	case cumulativePct <= tierBThreshold:
		return "B"
	default:
		return "C"
	}
}

// TierDistribution counts products per tier, in A, B, C order. Tiers with no
// products are omitted.
func TierDistribution(products []models.ProductRevenue) []models.GroupCount {
	counts := make(map[string]int)
	for _, p := range products {
		counts[p.Tier]++
	}
	var out []models.GroupCount
	for _, tier := range []string{"A", "B", "C"} {
		if counts[tier] > 0 {
			out = append(out, models.GroupCount{Group: tier, Count: counts[tier]})
		}
	}
	return out
}
