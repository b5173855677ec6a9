package analysis

import (
	"slices"
	"time"

	"brewmetrics/internal/models"
)

// AggregateTrend buckets revenue by calendar period and returns the buckets in
// ascending date order. Rows with invalid dates are dropped first. Only
// periods containing at least one transaction appear: gaps are intentional,
// not zero-filled. Weekly buckets start on Monday, monthly buckets on the
// first of the month.
func AggregateTrend(rows []models.Transaction, period models.Period) []models.TrendPoint {
	buckets := make(map[time.Time]float64)
	for _, tx := range rows {
		if !tx.DateValid {
			continue
		}
		buckets[periodStart(tx.Date, period)] += tx.Revenue
	}

	out := make([]models.TrendPoint, 0, len(buckets))
	for start, revenue := range buckets {
		out = append(out, models.TrendPoint{PeriodStart: start, Revenue: revenue})
	}
	slices.SortFunc(out, func(a, b models.TrendPoint) int {
		return a.PeriodStart.Compare(b.PeriodStart)
	})
	return out
}

func periodStart(t time.Time, period models.Period) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	switch period {
	case models.PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7 // days since Monday
		return day.AddDate(0, 0, -offset)
	case models.PeriodMonthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}
