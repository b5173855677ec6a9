package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"brewmetrics/internal/analysis"
	"brewmetrics/internal/dataset"
	"brewmetrics/internal/errors"
	"brewmetrics/internal/models"
	"brewmetrics/internal/observability"
	"brewmetrics/internal/services"
)

const (
	previewRows       = 5
	maxUploadBytes    = 64 << 20
	defaultConfidence = 0.95
	cacheMaxAge       = "public, max-age=300"
)

var validColumns = map[models.Column]bool{
	models.ColTransactionID: true,
	models.ColDate:          true,
	models.ColQuantity:      true,
	models.ColUnitPrice:     true,
	models.ColRevenue:       true,
	models.ColProductID:     true,
	models.ColCustomerID:    true,
	models.ColCustomerName:  true,
}

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// requireData gates analysis endpoints on a loaded session: an empty session
// answers with an explicit NO_DATA error, never a crash or an empty 200.
func (h *APIHandlers) requireData(w http.ResponseWriter, r *http.Request) bool {
	if h.analytics.Loaded() {
		return true
	}
	requestID := observability.GetRequestID(r.Context())
	errors.WriteError(w, h.logger, errors.NoData("no dataset loaded; upload a CSV first"), requestID)
	return false
}

// HandleUpload ingests a multipart CSV and replaces the session table.
func (h *APIHandlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "missing file field"), requestID)
		return
	}
	defer file.Close()

	if err := h.analytics.LoadFromReader(r.Context(), file); err != nil {
		switch err {
		case dataset.ErrEmptyFile, dataset.ErrNoRows:
			errors.WriteError(w, h.logger, errors.ValidationWrap(err, "uploaded file has no data rows"), requestID)
		default:
			errors.WriteError(w, h.logger, errors.InternalWrap(err, "failed to process upload"), requestID)
		}
		return
	}

	errors.WriteSuccess(w, h.analytics.Stats())
}

type overviewResponse struct {
	Head    []models.Transaction `json:"head"`
	Summary []models.ColumnStats `json:"summary"`
}

func (h *APIHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	if !h.requireData(w, r) {
		return
	}

	data := overviewResponse{
		Head:    h.analytics.Head(previewRows),
		Summary: h.analytics.Describe(),
	}

	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": cacheMaxAge})
}

type abcResponse struct {
	Products     []models.ProductRevenue `json:"products"`
	Distribution []models.GroupCount     `json:"distribution"`
}

func (h *APIHandlers) HandleABC(w http.ResponseWriter, r *http.Request) {
	if !h.requireData(w, r) {
		return
	}

	products := h.analytics.ABC()
	data := abcResponse{
		Products:     products,
		Distribution: analysis.TierDistribution(products),
	}

	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": cacheMaxAge})
}

type rfmResponse struct {
	Customers       []models.CustomerRFM `json:"customers"`
	RecencyGroups   []models.GroupCount  `json:"recency_groups"`
	FrequencyGroups []models.GroupCount  `json:"frequency_groups"`
	MonetaryGroups  []models.GroupCount  `json:"monetary_groups"`
}

func (h *APIHandlers) HandleRFM(w http.ResponseWriter, r *http.Request) {
	if !h.requireData(w, r) {
		return
	}

	customers := h.analytics.RFM()
	data := rfmResponse{
		Customers:       customers,
		RecencyGroups:   analysis.GroupDistribution(customers, analysis.DimRecency),
		FrequencyGroups: analysis.GroupDistribution(customers, analysis.DimFrequency),
		MonetaryGroups:  analysis.GroupDistribution(customers, analysis.DimMonetary),
	}

	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": cacheMaxAge})
}

func (h *APIHandlers) HandleTrend(w http.ResponseWriter, r *http.Request) {
	if !h.requireData(w, r) {
		return
	}
	requestID := observability.GetRequestID(r.Context())

	period := models.PeriodDaily
	switch p := r.URL.Query().Get("period"); p {
	case "", string(models.PeriodDaily):
	case string(models.PeriodWeekly):
		period = models.PeriodWeekly
	case string(models.PeriodMonthly):
		period = models.PeriodMonthly
	default:
		errors.WriteError(w, h.logger, errors.BadRequest("period must be daily, weekly, or monthly"), requestID)
		return
	}

	errors.WriteSuccessWithHeaders(w, h.analytics.Trend(period), map[string]string{"Cache-Control": cacheMaxAge})
}

type valueAtRiskResponse struct {
	Confidence  float64    `json:"confidence"`
	ValueAtRisk float64    `json:"value_at_risk"`
	Rolling     []*float64 `json:"rolling"`
	Window      int        `json:"window"`
}

func (h *APIHandlers) HandleValueAtRisk(w http.ResponseWriter, r *http.Request) {
	if !h.requireData(w, r) {
		return
	}
	requestID := observability.GetRequestID(r.Context())

	confidence := defaultConfidence
	if raw := r.URL.Query().Get("confidence"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0.90 || parsed > 0.99 {
			errors.WriteError(w, h.logger, errors.BadRequest("confidence must be a number between 0.90 and 0.99"), requestID)
			return
		}
		confidence = parsed
	}

	customers := h.analytics.RFM()
	if len(customers) == 0 {
		errors.WriteError(w, h.logger, errors.NoData("no customers with valid transaction dates"), requestID)
		return
	}

	data := valueAtRiskResponse{
		Confidence:  confidence,
		ValueAtRisk: analysis.ValueAtRisk(customers, confidence),
		Rolling:     nullableSeries(analysis.RollingValueAtRisk(customers, confidence, analysis.DefaultVaRWindow)),
		Window:      analysis.DefaultVaRWindow,
	}

	errors.WriteSuccess(w, data)
}

type filterResponse struct {
	Column string               `json:"column"`
	Value  string               `json:"value"`
	Values []string             `json:"values,omitempty"`
	Rows   []models.Transaction `json:"rows"`
}

// HandleFilter answers the overview filter: rows where column == value. With
// no value it lists the column's distinct values for the selector. A filter
// matching nothing returns an empty table, not an error.
func (h *APIHandlers) HandleFilter(w http.ResponseWriter, r *http.Request) {
	if !h.requireData(w, r) {
		return
	}
	requestID := observability.GetRequestID(r.Context())

	col := models.Column(r.URL.Query().Get("column"))
	if !validColumns[col] {
		errors.WriteError(w, h.logger, errors.BadRequest("unknown column"), requestID)
		return
	}

	data := filterResponse{Column: string(col)}
	if value, ok := queryValue(r); ok {
		data.Value = value
		data.Rows = h.analytics.Filter(col, value)
		if data.Rows == nil {
			data.Rows = []models.Transaction{}
		}
	} else {
		data.Values = h.analytics.UniqueValues(col)
		data.Rows = []models.Transaction{}
	}

	errors.WriteSuccess(w, data)
}

func (h *APIHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	if !h.requireData(w, r) {
		return
	}

	errors.WriteSuccess(w, h.analytics.Report())
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}

// queryValue distinguishes "value absent" from "value empty": an explicitly
// empty value is a legal filter target (rows whose date failed coercion
// render as "").
func queryValue(r *http.Request) (string, bool) {
	if !r.URL.Query().Has("value") {
		return "", false
	}
	return r.URL.Query().Get("value"), true
}

// nullableSeries converts NaN positions (the unfilled rolling window) to JSON
// nulls, since encoding/json rejects NaN.
func nullableSeries(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		if v == v { // not NaN
			val := v
			out[i] = &val
		}
	}
	return out
}
