package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"brewmetrics/internal/analysis"
	"brewmetrics/internal/dataset"
	"brewmetrics/internal/models"
	"brewmetrics/internal/observability"
	"brewmetrics/internal/report"
	"golang.org/x/sync/errgroup"
)

const (
	batchSize  = 10000
	maxWorkers = 10
)

// Analytics holds one normalized transaction table for the session. Every
// analysis accessor re-derives its output from the table on each call; there
// is no caching, so repeated identical requests repeat the computation. The
// table itself is immutable between loads and guarded by the RWMutex.
type Analytics struct {
	mu               sync.RWMutex
	rows             []models.Transaction
	schema           models.ColumnSet
	inputSchema      models.ColumnSet
	loadedAt         time.Time
	seed             uint64
	recordsProcessed atomic.Int64
	logger           *slog.Logger
}

// NewAnalytics builds an empty session. The seed drives the normalizer's
// synthetic values; a fixed seed makes backfill reproducible.
func NewAnalytics(seed uint64) *Analytics {
	return &Analytics{
		schema: make(models.ColumnSet),
		seed:   seed,
		logger: slog.Default(),
	}
}

// SetData replaces the session table with the given rows, normalizing against
// the given input schema. Used by tests and by callers that already hold
// decoded rows.
func (a *Analytics) SetData(rows []models.Transaction, schema models.ColumnSet) {
	normalized, full := dataset.Normalize(rows, schema, a.rng())

	a.mu.Lock()
	a.rows = normalized
	a.schema = full
	a.inputSchema = schema.Clone()
	a.loadedAt = time.Now()
	a.mu.Unlock()

	a.recordsProcessed.Store(int64(len(normalized)))
}

// LoadFromCSV streams a CSV file into the session table.
func (a *Analytics) LoadFromCSV(ctx context.Context, filename string) error {
	ctx, span := observability.StartSpan(ctx, "dataset.load")
	defer span.Finish()
	span.SetTag("filename", filename)

	file, err := os.Open(filename)
	if err != nil {
		span.SetError(err)
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	a.logger.Info("processing CSV file", "filename", filename)

	if err := a.LoadFromReader(ctx, file); err != nil {
		span.SetError(err)
		return err
	}

	count := a.recordsProcessed.Load()
	duration := span.Elapsed()
	a.logger.Info("csv processing complete",
		"records", count,
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(count)/duration.Seconds()),
		"span", span)
	return nil
}

// LoadFromReader streams CSV content in batches, decodes rows on a bounded
// worker pool, then normalizes the whole table once. This backs both the
// startup preload and the upload endpoint.
func (a *Analytics) LoadFromReader(ctx context.Context, r io.Reader) error {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return dataset.ErrEmptyFile
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	index, schema := dataset.HeaderIndex(header)

	var rows []models.Transaction
	batch := make([][]string, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		decoded, err := a.decodeBatch(ctx, batch, index, schema)
		if err != nil {
			return err
		}
		rows = append(rows, decoded...)
		batch = batch[:0]
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read csv: %w", err)
		}
		batch = append(batch, record)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	if len(rows) == 0 {
		return dataset.ErrNoRows
	}

	a.SetData(rows, schema)
	return nil
}

// decodeBatch parses a batch of raw records concurrently, preserving input
// order by writing into a pre-sized slice.
func (a *Analytics) decodeBatch(ctx context.Context, batch [][]string, index map[models.Column]int, schema models.ColumnSet) ([]models.Transaction, error) {
	decoded := make([]models.Transaction, len(batch))

	var wg errgroup.Group
	wg.SetLimit(maxWorkers)
	for i, record := range batch {
		wg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			decoded[i] = dataset.ParseRow(record, index, schema)
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return nil, err
	}
	return decoded, nil
}

func (a *Analytics) rng() *rand.Rand {
	return rand.New(rand.NewPCG(a.seed, a.seed))
}

// snapshot returns the current table and schema. Rows are never mutated after
// SetData, so sharing the slice with readers is safe.
func (a *Analytics) snapshot() ([]models.Transaction, models.ColumnSet) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rows, a.schema
}

// Loaded reports whether the session holds any rows.
func (a *Analytics) Loaded() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.rows) > 0
}

// ABC classifies products into revenue tiers.
func (a *Analytics) ABC() []models.ProductRevenue {
	rows, _ := a.snapshot()
	return analysis.ClassifyABC(rows)
}

// RFM segments customers by recency, frequency, and monetary value.
func (a *Analytics) RFM() []models.CustomerRFM {
	rows, schema := a.snapshot()
	return analysis.SegmentRFM(rows, schema)
}

// Trend buckets revenue by calendar period.
func (a *Analytics) Trend(period models.Period) []models.TrendPoint {
	rows, _ := a.snapshot()
	return analysis.AggregateTrend(rows, period)
}

// ValueAtRisk is the monetary quantile at 1-confidence over the RFM table.
func (a *Analytics) ValueAtRisk(confidence float64) float64 {
	return analysis.ValueAtRisk(a.RFM(), confidence)
}

// RollingValueAtRisk is the trailing-window monetary quantile over the RFM table.
func (a *Analytics) RollingValueAtRisk(confidence float64, window int) []float64 {
	return analysis.RollingValueAtRisk(a.RFM(), confidence, window)
}

// Describe computes descriptive statistics for the numeric columns.
func (a *Analytics) Describe() []models.ColumnStats {
	rows, _ := a.snapshot()
	return analysis.Describe(rows)
}

// Head returns the first n rows of the table.
func (a *Analytics) Head(n int) []models.Transaction {
	rows, _ := a.snapshot()
	return analysis.Head(rows, n)
}

// Filter keeps rows whose column renders equal to value.
func (a *Analytics) Filter(col models.Column, value string) []models.Transaction {
	rows, _ := a.snapshot()
	return analysis.FilterEqual(rows, col, value)
}

// UniqueValues lists a column's distinct values for the filter selector.
func (a *Analytics) UniqueValues(col models.Column) []string {
	rows, _ := a.snapshot()
	return analysis.UniqueValues(rows, col)
}

// Report composes the narrative report from the current table.
func (a *Analytics) Report() report.Report {
	rows, schema := a.snapshot()
	return report.Compose(rows, schema)
}

// Stats summarizes the session for the admin endpoint, including which
// columns the normalizer had to synthesize.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	rows := a.rows
	input := a.inputSchema
	loadedAt := a.loadedAt
	a.mu.RUnlock()

	products := make(map[string]bool)
	customers := make(map[string]bool)
	for _, tx := range rows {
		products[tx.ProductID] = true
		customers[tx.CustomerID] = true
	}

	synthesized := make([]string, 0)
	for _, col := range dataset.MissingColumns(input) {
		synthesized = append(synthesized, string(col))
	}

	return map[string]any{
		"record_count":        len(rows),
		"products":            len(products),
		"customers":           len(customers),
		"synthesized_columns": synthesized,
		"loaded_at":           loadedAt,
	}
}
