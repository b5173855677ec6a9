package services

import (
	"context"
	"os"
	"testing"
	"time"

	"brewmetrics/internal/models"
)

func createTempCSV(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp("", "test*.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	return f.Name()
}

func fullSchema() models.ColumnSet {
	return models.ColumnSet{
		models.ColDate:         true,
		models.ColQuantity:     true,
		models.ColUnitPrice:    true,
		models.ColRevenue:      true,
		models.ColProductID:    true,
		models.ColCustomerID:   true,
		models.ColCustomerName: true,
	}
}

func testRows() []models.Transaction {
	return []models.Transaction{
		{
			Date:         time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
			DateValid:    true,
			Quantity:     2,
			UnitPrice:    10,
			Revenue:      20,
			ProductID:    "espresso",
			CustomerID:   "C1",
			CustomerName: "Alice Smith",
		},
		{
			Date:         time.Date(2023, 1, 16, 0, 0, 0, 0, time.UTC),
			DateValid:    true,
			Quantity:     1,
			UnitPrice:    100,
			Revenue:      100,
			ProductID:    "beans",
			CustomerID:   "C2",
			CustomerName: "Bob Jones",
		},
	}
}

func TestNewAnalytics(t *testing.T) {
	a := NewAnalytics(1)
	if a == nil {
		t.Fatal("NewAnalytics() returned nil")
	}
	if a.logger == nil {
		t.Error("logger should be initialized")
	}
	if a.Loaded() {
		t.Error("a fresh session should not report data")
	}
}

func TestAnalytics_SetData(t *testing.T) {
	a := NewAnalytics(1)
	a.SetData(testRows(), fullSchema())

	if !a.Loaded() {
		t.Error("Loaded() should be true after SetData")
	}

	products := a.ABC()
	if len(products) != 2 {
		t.Fatalf("ABC() should return 2 products, got %d", len(products))
	}
	if products[0].ProductID != "beans" {
		t.Errorf("expected beans ranked first, got %s", products[0].ProductID)
	}

	customers := a.RFM()
	if len(customers) != 2 {
		t.Fatalf("RFM() should return 2 customers, got %d", len(customers))
	}

	trend := a.Trend(models.PeriodDaily)
	if len(trend) != 2 {
		t.Errorf("Trend() should return 2 daily buckets, got %d", len(trend))
	}
}

func TestAnalytics_SetDataNormalizesMissingColumns(t *testing.T) {
	a := NewAnalytics(7)

	// Only revenue is present; everything else must be synthesized.
	rows := []models.Transaction{{Revenue: 50}, {Revenue: 70}}
	a.SetData(rows, models.ColumnSet{models.ColRevenue: true})

	head := a.Head(10)
	if len(head) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(head))
	}
	if head[0].ProductID != "P000" || head[1].ProductID != "P001" {
		t.Errorf("positional product labels expected, got %q %q", head[0].ProductID, head[1].ProductID)
	}
	if head[0].Revenue != 50 {
		t.Errorf("present revenue must pass through, got %v", head[0].Revenue)
	}
	if !head[0].DateValid {
		t.Error("synthesized dates should be valid")
	}
}

func TestAnalytics_SeedReproducibility(t *testing.T) {
	rows := []models.Transaction{{}, {}, {}}

	a := NewAnalytics(99)
	a.SetData(rows, models.ColumnSet{})
	b := NewAnalytics(99)
	b.SetData(rows, models.ColumnSet{})

	ah, bh := a.Head(3), b.Head(3)
	for i := range ah {
		if ah[i] != bh[i] {
			t.Errorf("row %d differs across sessions with the same seed", i)
		}
	}
}

func TestAnalytics_LoadFromCSV_ValidData(t *testing.T) {
	validCSV := `transaction_date,transaction_qty,unit_price,revenue,product_id,customer_id
2023-01-15,2,10,20,espresso,C1
2023-01-16,1,100,100,beans,C2`

	f := createTempCSV(t, validCSV)
	defer os.Remove(f)

	a := NewAnalytics(1)
	if err := a.LoadFromCSV(context.Background(), f); err != nil {
		t.Fatalf("LoadFromCSV() with valid data should not error, got: %v", err)
	}

	products := a.ABC()
	if len(products) != 2 {
		t.Errorf("expected 2 products after load, got %d", len(products))
	}
}

func TestAnalytics_LoadFromCSV_InvalidData(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr bool
	}{
		{
			name:    "empty file",
			csv:     "",
			wantErr: true,
		},
		{
			name:    "header only",
			csv:     "product_id,revenue",
			wantErr: true,
		},
		{
			name:    "unknown columns are synthesized, not an error",
			csv:     "foo,bar\n1,2",
			wantErr: false,
		},
		{
			name:    "invalid date is coerced, not an error",
			csv:     "product_id,revenue,transaction_date\np1,10,not-a-date",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createTempCSV(t, tt.csv)
			defer os.Remove(f)

			a := NewAnalytics(1)
			err := a.LoadFromCSV(context.Background(), f)

			if (err != nil) != tt.wantErr {
				t.Errorf("LoadFromCSV() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAnalytics_LoadFromCSV_MissingFile(t *testing.T) {
	a := NewAnalytics(1)
	if err := a.LoadFromCSV(context.Background(), "/nonexistent/data.csv"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestAnalytics_ValueAtRisk(t *testing.T) {
	a := NewAnalytics(1)
	a.SetData(testRows(), fullSchema())

	v := a.ValueAtRisk(0.95)
	// Monetary values are [20, 100]; the 0.05 quantile is 24.
	if v < 23.9 || v > 24.1 {
		t.Errorf("ValueAtRisk(0.95) = %v, want ~24", v)
	}

	rolling := a.RollingValueAtRisk(0.95, 2)
	if len(rolling) != 2 {
		t.Fatalf("rolling series length = %d, want 2", len(rolling))
	}
}

func TestAnalytics_FilterAndUniqueValues(t *testing.T) {
	a := NewAnalytics(1)
	a.SetData(testRows(), fullSchema())

	rows := a.Filter(models.ColProductID, "espresso")
	if len(rows) != 1 {
		t.Errorf("Filter() returned %d rows, want 1", len(rows))
	}

	values := a.UniqueValues(models.ColProductID)
	if len(values) != 2 {
		t.Errorf("UniqueValues() returned %d values, want 2", len(values))
	}

	if got := a.Filter(models.ColProductID, "tea"); len(got) != 0 {
		t.Errorf("filter with no match should be empty, got %d rows", len(got))
	}
}

func TestAnalytics_Report(t *testing.T) {
	a := NewAnalytics(1)
	a.SetData(testRows(), fullSchema())

	r := a.Report()
	if r.ABC.TotalProducts != 2 {
		t.Errorf("report products = %d, want 2", r.ABC.TotalProducts)
	}
	if r.RFM.TotalCustomers != 2 {
		t.Errorf("report customers = %d, want 2", r.RFM.TotalCustomers)
	}
}

func TestAnalytics_Stats(t *testing.T) {
	a := NewAnalytics(1)

	rows := []models.Transaction{{Revenue: 10}}
	a.SetData(rows, models.ColumnSet{models.ColRevenue: true})

	stats := a.Stats()
	if stats["record_count"] != 1 {
		t.Errorf("record_count = %v, want 1", stats["record_count"])
	}
	synthesized, ok := stats["synthesized_columns"].([]string)
	if !ok {
		t.Fatalf("synthesized_columns missing from stats")
	}
	if len(synthesized) != 6 {
		t.Errorf("expected 6 synthesized columns, got %v", synthesized)
	}
}

func TestAnalytics_ConcurrentAccess(t *testing.T) {
	a := NewAnalytics(1)
	a.SetData(testRows(), fullSchema())

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- true }()

			_ = a.ABC()
			_ = a.RFM()
			_ = a.Trend(models.PeriodMonthly)
			_ = a.Describe()
			_ = a.Report()
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestAnalytics_EmptySession(t *testing.T) {
	a := NewAnalytics(1)

	if got := a.ABC(); len(got) != 0 {
		t.Errorf("ABC() on empty session should be empty, got %d", len(got))
	}
	if got := a.RFM(); len(got) != 0 {
		t.Errorf("RFM() on empty session should be empty, got %d", len(got))
	}
	if got := a.Trend(models.PeriodDaily); len(got) != 0 {
		t.Errorf("Trend() on empty session should be empty, got %d", len(got))
	}
}

func BenchmarkAnalytics_ABC(b *testing.B) {
	a := NewAnalytics(1)
	rows := make([]models.Transaction, 1000)
	for i := 0; i < 1000; i++ {
		rows[i] = models.Transaction{
			ProductID: "P" + string(rune('A'+i%26)),
			Revenue:   float64(i) * 1.5,
		}
	}
	a.SetData(rows, fullSchema())

	b.ResetTimer()
	for b.Loop() {
		_ = a.ABC()
	}
}

func BenchmarkAnalytics_RFM(b *testing.B) {
	a := NewAnalytics(1)
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]models.Transaction, 1000)
	for i := 0; i < 1000; i++ {
		rows[i] = models.Transaction{
			CustomerID: "C" + string(rune('A'+i%50)),
			Date:       base.AddDate(0, 0, i%90),
			DateValid:  true,
			Revenue:    float64(i),
		}
	}
	a.SetData(rows, fullSchema())

	b.ResetTimer()
	for b.Loop() {
		_ = a.RFM()
	}
}
