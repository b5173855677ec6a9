package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"brewmetrics/internal/models"
)

var (
	// ErrEmptyFile means the reader produced no CSV records at all.
	ErrEmptyFile = errors.New("dataset: empty file")
	// ErrNoRows means the file had a header but no data rows.
	ErrNoRows = errors.New("dataset: no data rows")
)

// Date layouts accepted for transaction_date cells, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"2006/01/02",
}

// headerAliases maps lowercased header cells to canonical columns. Matching is
// case-insensitive so files with "Revenue" or "Transaction_Date" still bind.
var headerAliases = map[string]models.Column{
	"transaction_id":   models.ColTransactionID,
	"transaction_date": models.ColDate,
	"date":             models.ColDate,
	"transaction_qty":  models.ColQuantity,
	"quantity":         models.ColQuantity,
	"unit_price":       models.ColUnitPrice,
	"price":            models.ColUnitPrice,
	"revenue":          models.ColRevenue,
	"product_id":       models.ColProductID,
	"customer_id":      models.ColCustomerID,
	"customer_name":    models.ColCustomerName,
}

// DecodeCSV reads a delimited file into transaction rows, binding whatever
// canonical columns its header carries. Missing columns are not an error; the
// returned ColumnSet records what was present so the normalizer can backfill
// the rest. Malformed numeric cells decode as zero; malformed date cells mark
// the row's date invalid rather than failing.
func DecodeCSV(r io.Reader) ([]models.Transaction, models.ColumnSet, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, ErrEmptyFile
	}

	index, schema := HeaderIndex(records[0])

	if len(records) == 1 {
		return nil, schema, ErrNoRows
	}

	rows := make([]models.Transaction, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, ParseRow(record, index, schema))
	}
	return rows, schema, nil
}

// ParseRow decodes one pre-split record against a header index. It is also
// the unit the batched loader hands to its workers.
func ParseRow(record []string, index map[models.Column]int, schema models.ColumnSet) models.Transaction {
	cell := func(col models.Column) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var tx models.Transaction
	if schema.Has(models.ColTransactionID) {
		tx.TransactionID = cell(models.ColTransactionID)
	}
	if schema.Has(models.ColQuantity) {
		tx.Quantity, _ = strconv.Atoi(cell(models.ColQuantity))
	}
	if schema.Has(models.ColUnitPrice) {
		tx.UnitPrice, _ = strconv.ParseFloat(cell(models.ColUnitPrice), 64)
	}
	if schema.Has(models.ColRevenue) {
		tx.Revenue, _ = strconv.ParseFloat(cell(models.ColRevenue), 64)
	}
	if schema.Has(models.ColProductID) {
		tx.ProductID = cell(models.ColProductID)
	}
	if schema.Has(models.ColCustomerID) {
		tx.CustomerID = cell(models.ColCustomerID)
	}
	if schema.Has(models.ColCustomerName) {
		tx.CustomerName = cell(models.ColCustomerName)
	}
	if schema.Has(models.ColDate) {
		tx.Date, tx.DateValid = CoerceDate(cell(models.ColDate))
	}
	return tx
}

// HeaderIndex binds a raw header line to canonical columns.
func HeaderIndex(header []string) (map[models.Column]int, models.ColumnSet) {
	index := make(map[models.Column]int)
	schema := make(models.ColumnSet)
	for i, cell := range header {
		if col, ok := headerAliases[strings.ToLower(strings.TrimSpace(cell))]; ok {
			if _, dup := index[col]; !dup {
				index[col] = i
				schema[col] = true
			}
		}
	}
	return index, schema
}

// CoerceDate parses a date cell against the accepted layouts. Failure is not
// an error: the row keeps a zero time with valid=false and surfaces later,
// when date-dependent aggregations exclude it.
func CoerceDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
