package dataset

import (
	"fmt"
	"math/rand/v2"
	"time"

	"brewmetrics/internal/models"
)

// Synthetic customer names are drawn independently per row from these fixed
// sets, so at most 50 distinct combinations exist and duplicates are expected.
var (
	firstNames = []string{"Alice", "Bob", "Charlie", "David", "Eve", "Fay", "Grace", "Hank", "Ivy", "Jack"}
	lastNames  = []string{"Smith", "Johnson", "Williams", "Brown", "Jones"}
)

// syntheticDateStart anchors the contiguous daily sequence assigned when the
// input has no date column.
var syntheticDateStart = time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)

// synthesisOrder fixes the order in which missing columns are backfilled:
// later rules consume earlier ones (revenue reads quantity and price).
var synthesisOrder = []models.Column{
	models.ColQuantity,
	models.ColUnitPrice,
	models.ColRevenue,
	models.ColProductID,
	models.ColDate,
	models.ColCustomerID,
	models.ColCustomerName,
}

// MissingColumns is the schema diff: the canonical columns the input lacked,
// in synthesis order.
func MissingColumns(schema models.ColumnSet) []models.Column {
	var missing []models.Column
	for _, col := range synthesisOrder {
		if !schema.Has(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// Normalize backfills every canonical column absent from the input schema and
// returns the widened rows plus the now-complete schema. Present columns are
// never overwritten, so a pre-existing revenue column is trusted as-is even
// when it disagrees with quantity × price. Missing columns never error; this
// is best-effort backfill, not validation. Randomness comes from the caller's
// source so tests can pin the sequence.
func Normalize(rows []models.Transaction, schema models.ColumnSet, rng *rand.Rand) ([]models.Transaction, models.ColumnSet) {
	out := make([]models.Transaction, len(rows))
	copy(out, rows)
	full := schema.Clone()

	for _, col := range MissingColumns(schema) {
		synthesize(out, col, rng)
		full[col] = true
	}
	return out, full
}

func synthesize(rows []models.Transaction, col models.Column, rng *rand.Rand) {
	for i := range rows {
		switch col {
		case models.ColQuantity:
			rows[i].Quantity = 1 + rng.IntN(9)
		case models.ColUnitPrice:
			rows[i].UnitPrice = float64(10 + rng.IntN(90))
		case models.ColRevenue:
			rows[i].Revenue = float64(rows[i].Quantity) * rows[i].UnitPrice
		case models.ColProductID:
			rows[i].ProductID = fmt.Sprintf("P%03d", i)
		case models.ColDate:
			rows[i].Date = syntheticDateStart.AddDate(0, 0, i)
			rows[i].DateValid = true
		case models.ColCustomerID:
			rows[i].CustomerID = fmt.Sprintf("CUST-%03d", i)
		case models.ColCustomerName:
			rows[i].CustomerName = firstNames[rng.IntN(len(firstNames))] + " " + lastNames[rng.IntN(len(lastNames))]
		}
	}
}
