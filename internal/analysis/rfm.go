package analysis

import (
	"slices"
	"strings"
	"time"

	"brewmetrics/internal/models"
)

// RFM bucket labels, ordered.
var (
	RecencyLabels   = []string{"Very Recent", "Recent", "Less Recent", "Old"}
	FrequencyLabels = []string{"Low", "Medium", "High", "Very High"}
	MonetaryLabels  = []string{"Low", "Medium", "High", "Very High"}
)

// SegmentRFM groups valid-date rows by customer and computes Recency (whole
// days since the customer's last purchase, relative to the dataset's latest
// date), Frequency (transaction-id count when the input carried that column,
// else row count), and Monetary (revenue sum), then buckets each dimension
// into half-open lower-inclusive ranges. Rows whose date failed coercion are
// dropped before grouping. Output is ordered by customer id ascending.
func SegmentRFM(rows []models.Transaction, schema models.ColumnSet) []models.CustomerRFM {
	var reference time.Time
	valid := rows[:0:0]
	for _, tx := range rows {
		if !tx.DateValid {
			continue
		}
		valid = append(valid, tx)
		if tx.Date.After(reference) {
			reference = tx.Date
		}
	}
	if len(valid) == 0 {
		return nil
	}

	countTxnIDs := schema.Has(models.ColTransactionID)

	type acc struct {
		last      time.Time
		frequency int
		monetary  float64
	}
	groups := make(map[string]*acc)
	for _, tx := range valid {
		g := groups[tx.CustomerID]
		if g == nil {
			g = &acc{}
			groups[tx.CustomerID] = g
		}
		if tx.Date.After(g.last) {
			g.last = tx.Date
		}
		if countTxnIDs {
			if tx.TransactionID != "" {
				g.frequency++
			}
		} else {
			g.frequency++
		}
		g.monetary += tx.Revenue
	}

	customers := make([]models.CustomerRFM, 0, len(groups))
	for id, g := range groups {
		recency := int(reference.Sub(g.last) / (24 * time.Hour))
		customers = append(customers, models.CustomerRFM{
			CustomerID: id,
			Recency:    recency,
			Frequency:  g.frequency,
			Monetary:   g.monetary,
		})
	}

	for i := range customers {
		customers[i].RecencyGroup = bucketRecency(customers[i].Recency)
		customers[i].FrequencyGroup = bucketFrequency(customers[i].Frequency)
		customers[i].MonetaryGroup = bucketMonetary(customers[i].Monetary)
	}

	slices.SortFunc(customers, func(a, b models.CustomerRFM) int {
		return strings.Compare(a.CustomerID, b.CustomerID)
	})
	return customers
}

// Recency bins are [0,1), [1,7), [7,30), [30, max+1). The recency of every
// customer is bounded by the global maximum, so the final bin always catches
// the rest; no explicit upper edge is needed here.
func bucketRecency(days int) string {
	switch {
	case days < 1:
		return "Very Recent"
	case days < 7:
		return "Recent"
	case days < 30:
		return "Less Recent"
	default:
		return "Old"
	}
}

func bucketFrequency(count int) string {
	switch {
	case count < 1:
		return "Low"
	case count < 2:
		return "Medium"
	case count < 5:
		return "High"
	default:
		return "Very High"
	}
}

func bucketMonetary(total float64) string {
	switch {
	case total < 50:
		return "Low"
	case total < 100:
		return "Medium"
	case total < 500:
		return "High"
	default:
		return "Very High"
	}
}

// RFMDimension selects which group column GroupDistribution counts.
type RFMDimension int

const (
	DimRecency RFMDimension = iota
	DimFrequency
	DimMonetary
)

// GroupDistribution counts customers per bucket of one RFM dimension, in
// bucket order. Buckets with no customers are omitted.
func GroupDistribution(customers []models.CustomerRFM, dim RFMDimension) []models.GroupCount {
	labels := RecencyLabels
	pick := func(c models.CustomerRFM) string { return c.RecencyGroup }
	switch dim {
	case DimFrequency:
		labels = FrequencyLabels
		pick = func(c models.CustomerRFM) string { return c.FrequencyGroup }
	case DimMonetary:
		labels = MonetaryLabels
		pick = func(c models.CustomerRFM) string { return c.MonetaryGroup }
	}

	counts := make(map[string]int)
	for _, c := range customers {
		counts[pick(c)]++
	}
	var out []models.GroupCount
	for _, label := range labels {
		if counts[label] > 0 {
			out = append(out, models.GroupCount{Group: label, Count: counts[label]})
		}
	}
	return out
}
