package models

import "time"

// Column names the canonical transaction columns. A dataset may arrive with any
// subset of them; the normalizer synthesizes the rest.
type Column string

const (
	ColTransactionID Column = "transaction_id"
	ColDate          Column = "transaction_date"
	ColQuantity      Column = "transaction_qty"
	ColUnitPrice     Column = "unit_price"
	ColRevenue       Column = "revenue"
	ColProductID     Column = "product_id"
	ColCustomerID    Column = "customer_id"
	ColCustomerName  Column = "customer_name"
)

// ColumnSet records which canonical columns were present in the uploaded file.
type ColumnSet map[Column]bool

func (s ColumnSet) Has(c Column) bool { return s[c] }

func (s ColumnSet) Clone() ColumnSet {
	out := make(ColumnSet, len(s))
	for c, ok := range s {
		out[c] = ok
	}
	return out
}

// Transaction is one purchase event after normalization. Date carries a
// validity flag: unparseable input dates stay in the row but are excluded from
// date-dependent aggregations.
type Transaction struct {
	TransactionID string    `json:"transaction_id,omitempty"`
	Date          time.Time `json:"transaction_date"`
	DateValid     bool      `json:"date_valid"`
	Quantity      int       `json:"transaction_qty"`
	UnitPrice     float64   `json:"unit_price"`
	Revenue       float64   `json:"revenue"`
	ProductID     string    `json:"product_id"`
	CustomerID    string    `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
}

// ProductRevenue is one classifier output row: a product's total revenue, its
// cumulative share of revenue in descending-revenue order, and its ABC tier.
type ProductRevenue struct {
	ProductID     string  `json:"product_id"`
	Revenue       float64 `json:"revenue"`
	CumulativePct float64 `json:"cumulative_pct"`
	Tier          string  `json:"tier"`
}

// CustomerRFM is one segmenter output row.
type CustomerRFM struct {
	CustomerID     string  `json:"customer_id"`
	Recency        int     `json:"recency"`
	Frequency      int     `json:"frequency"`
	Monetary       float64 `json:"monetary"`
	RecencyGroup   string  `json:"recency_group"`
	FrequencyGroup string  `json:"frequency_group"`
	MonetaryGroup  string  `json:"monetary_group"`
}

// TrendPoint is one time-series bucket: the period start and the summed
// revenue of transactions falling inside it.
type TrendPoint struct {
	PeriodStart time.Time `json:"period_start"`
	Revenue     float64   `json:"revenue"`
}

// Period selects the trend bucket width.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ColumnStats holds descriptive statistics for one numeric column.
type ColumnStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	P25    float64 `json:"p25"`
	P50    float64 `json:"p50"`
	P75    float64 `json:"p75"`
	Max    float64 `json:"max"`
}

// GroupCount is one bar of a categorical distribution chart.
type GroupCount struct {
	Group string `json:"group"`
	Count int    `json:"count"`
}
