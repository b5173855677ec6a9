package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"brewmetrics/internal/analysis"
	"brewmetrics/internal/models"
	"brewmetrics/internal/services"
	"github.com/starfederation/datastar-go/datastar"
)

const maxTableRows = 50

var abcTableTemplate = template.Must(template.New("abcTable").Parse(`
<div id="abc-content">
<table class="modern-table">
<thead><tr><th>Product</th><th>Revenue</th><th>Cumulative %</th><th>Tier</th></tr></thead>
<tbody>
{{range .Products}}<tr>
<td>{{.ProductID}}</td>
<td><strong>${{printf "%.2f" .Revenue}}</strong></td>
<td>{{printf "%.1f" .CumulativePct}}%</td>
<td><span class="tier-badge tier-{{.Tier}}">{{.Tier}}</span></td>
</tr>{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *SSEHandlers) renderABCTable(products []models.ProductRevenue) (string, error) {
	if len(products) > maxTableRows {
		products = products[:maxTableRows]
	}

	var buf strings.Builder
	err := abcTableTemplate.Execute(&buf, struct{ Products []models.ProductRevenue }{products})
	return buf.String(), err
}

func (h *SSEHandlers) HandleABC(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	if !h.analytics.Loaded() {
		sse.PatchElements(`<div id="abc-content">No dataset loaded yet</div>`)
		return
	}

	html, err := h.renderABCTable(h.analytics.ABC())
	if err != nil {
		h.logger.Error("render abc table", "error", err)
		return
	}

	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleRFM(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	customers := h.analytics.RFM()
	jsonData, err := json.Marshal(map[string]any{
		"rfmData":         customers,
		"recencyGroups":   analysis.GroupDistribution(customers, analysis.DimRecency),
		"frequencyGroups": analysis.GroupDistribution(customers, analysis.DimFrequency),
		"monetaryGroups":  analysis.GroupDistribution(customers, analysis.DimMonetary),
	})
	if err != nil {
		h.logger.Error("marshal rfm data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="rfm-content">✅ Customer segments loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleTrend(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	period := models.Period(r.URL.Query().Get("period"))
	switch period {
	case models.PeriodDaily, models.PeriodWeekly, models.PeriodMonthly:
	default:
		period = models.PeriodDaily
	}

	jsonData, err := json.Marshal(map[string]any{
		"trendData": h.analytics.Trend(period),
		"period":    period,
	})
	if err != nil {
		h.logger.Error("marshal trend data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="trend-content">✅ Sales trend loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	jsonData, err := json.Marshal(map[string]any{
		"reportData": h.analytics.Report(),
	})
	if err != nil {
		h.logger.Error("marshal report data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="report-content">✅ Report generated</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	if !h.analytics.Loaded() {
		sse.PatchElements(`<div id="abc-content">No dataset loaded yet</div>`)
		return
	}

	html, err := h.renderABCTable(h.analytics.ABC())
	if err != nil {
		h.logger.Error("render abc table", "error", err)
		return
	}
	sse.PatchElements(html)

	customers := h.analytics.RFM()
	allSignals, err := json.Marshal(map[string]any{
		"rfmData":    customers,
		"trendData":  h.analytics.Trend(models.PeriodDaily),
		"reportData": h.analytics.Report(),
	})
	if err != nil {
		h.logger.Error("marshal refresh signals", "error", err)
		return
	}
	sse.PatchSignals(allSignals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
