package analysis

import (
	"math"
	"strconv"

	"brewmetrics/internal/models"
)

// Describe computes count/mean/std/min/quartiles/max for the numeric columns
// of the table. Std is the sample standard deviation; with fewer than two rows
// it is reported as 0 so degenerate inputs stay well-defined (and encodable).
func Describe(rows []models.Transaction) []models.ColumnStats {
	qty := make([]float64, len(rows))
	price := make([]float64, len(rows))
	revenue := make([]float64, len(rows))
	for i, tx := range rows {
		qty[i] = float64(tx.Quantity)
		price[i] = tx.UnitPrice
		revenue[i] = tx.Revenue
	}
	return []models.ColumnStats{
		describeColumn(string(models.ColQuantity), qty),
		describeColumn(string(models.ColUnitPrice), price),
		describeColumn(string(models.ColRevenue), revenue),
	}
}

func describeColumn(name string, values []float64) models.ColumnStats {
	stats := models.ColumnStats{Column: name, Count: len(values)}
	if len(values) == 0 {
		return stats
	}

	var sum float64
	stats.Min = values[0]
	stats.Max = values[0]
	for _, v := range values {
		sum += v
		stats.Min = math.Min(stats.Min, v)
		stats.Max = math.Max(stats.Max, v)
	}
	stats.Mean = sum / float64(len(values))

	if len(values) > 1 {
		var ss float64
		for _, v := range values {
			d := v - stats.Mean
			ss += d * d
		}
		stats.Std = math.Sqrt(ss / float64(len(values)-1))
	}

	stats.P25 = Quantile(values, 0.25)
	stats.P50 = Quantile(values, 0.50)
	stats.P75 = Quantile(values, 0.75)
	return stats
}

// Head returns the first n rows without copying row data.
func Head(rows []models.Transaction, n int) []models.Transaction {
	if len(rows) <= n {
		return rows
	}
	return rows[:n]
}

// FilterEqual keeps rows whose rendering of the given column equals value.
// An empty result is an empty table, not an error.
func FilterEqual(rows []models.Transaction, col models.Column, value string) []models.Transaction {
	var out []models.Transaction
	for _, tx := range rows {
		if cellString(tx, col) == value {
			out = append(out, tx)
		}
	}
	return out
}

// UniqueValues lists the distinct rendered values of a column in first-seen
// order, for the overview filter selector.
func UniqueValues(rows []models.Transaction, col models.Column) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tx := range rows {
		v := cellString(tx, col)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func cellString(tx models.Transaction, col models.Column) string {
	switch col {
	case models.ColTransactionID:
		return tx.TransactionID
	case models.ColDate:
		if !tx.DateValid {
			return ""
		}
		return tx.Date.Format("2006-01-02")
	case models.ColQuantity:
		return strconv.Itoa(tx.Quantity)
	case models.ColUnitPrice:
		return strconv.FormatFloat(tx.UnitPrice, 'f', -1, 64)
	case models.ColRevenue:
		return strconv.FormatFloat(tx.Revenue, 'f', -1, 64)
	case models.ColProductID:
		return tx.ProductID
	case models.ColCustomerID:
		return tx.CustomerID
	case models.ColCustomerName:
		return tx.CustomerName
	default:
		return ""
	}
}
