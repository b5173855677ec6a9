// Package report composes the narrative analysis report: it runs the product
// classification and customer segmentation over the session table and formats
// their outputs into chart-ready summaries plus fixed recommendations.
package report

import (
	"slices"

	"brewmetrics/internal/analysis"
	"brewmetrics/internal/models"
)

// Customers with monetary totals above this are called out as high-value.
const highValueThreshold = 500.0

type Report struct {
	Overview        string     `json:"overview"`
	ABC             ABCSummary `json:"abc"`
	RFM             RFMSummary `json:"rfm"`
	Recommendations []string   `json:"recommendations"`
}

type ABCSummary struct {
	TopTier          string                  `json:"top_tier"`
	TotalProducts    int                     `json:"total_products"`
	TierDistribution []models.GroupCount     `json:"tier_distribution"`
	TopProducts      []models.ProductRevenue `json:"top_products"`
}

type RFMSummary struct {
	TotalCustomers     int                  `json:"total_customers"`
	HighValueCustomers int                  `json:"high_value_customers"`
	TopCustomers       []models.CustomerRFM `json:"top_customers"`
	RecencyGroups      []models.GroupCount  `json:"recency_groups"`
	FrequencyGroups    []models.GroupCount  `json:"frequency_groups"`
	MonetaryGroups     []models.GroupCount  `json:"monetary_groups"`
}

const overviewText = "This report provides an in-depth analysis of sales performance (ABC analysis) " +
	"and customer behavior (RFM analysis). The goal is to optimize inventory, boost revenue, " +
	"and enhance customer retention strategies."

var recommendations = []string{
	"Focus on high-revenue tier A products and reduce overstocking of tier C products.",
	"Retain high-value customers through loyalty rewards.",
	"Use targeted campaigns for customers in the Very Recent and Very High frequency groups.",
	"Regularly update ABC and RFM analyses to adapt to dynamic business needs.",
}

// Compose runs both analyses over the table and assembles the report. Like
// every other analysis it works from scratch on each call.
func Compose(rows []models.Transaction, schema models.ColumnSet) Report {
	products := analysis.ClassifyABC(rows)
	customers := analysis.SegmentRFM(rows, schema)

	tiers := analysis.TierDistribution(products)
	topTier := ""
	best := 0
	for _, t := range tiers {
		if t.Count > best {
			best = t.Count
			topTier = t.Group
		}
	}

	highValue := make([]models.CustomerRFM, 0)
	for _, c := range customers {
		if c.Monetary > highValueThreshold {
			highValue = append(highValue, c)
		}
	}
	slices.SortStableFunc(highValue, func(a, b models.CustomerRFM) int {
		if a.Monetary > b.Monetary {
			return -1
		}
		if a.Monetary < b.Monetary {
			return 1
		}
		return 0
	})

	return Report{
		Overview: overviewText,
		ABC: ABCSummary{
			TopTier:          topTier,
			TotalProducts:    len(products),
			TierDistribution: tiers,
			TopProducts:      topN(products, 5),
		},
		RFM: RFMSummary{
			TotalCustomers:     len(customers),
			HighValueCustomers: len(highValue),
			TopCustomers:       topN(highValue, 5),
			RecencyGroups:      analysis.GroupDistribution(customers, analysis.DimRecency),
			FrequencyGroups:    analysis.GroupDistribution(customers, analysis.DimFrequency),
			MonetaryGroups:     analysis.GroupDistribution(customers, analysis.DimMonetary),
		},
		Recommendations: recommendations,
	}
}

func topN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
