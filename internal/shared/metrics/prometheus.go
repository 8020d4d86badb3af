package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Business metrics
	assessmentsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assessments_started_total",
			Help: "Total number of risk assessments started",
		},
	)

	assessmentOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_outcomes_total",
			Help: "Total number of resolved assessment outcomes",
		},
		[]string{"tone"},
	)

	assessmentStageChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_stage_changes_total",
			Help: "Total number of assessment stage transitions",
		},
		[]string{"from_stage", "to_stage"},
	)

	riskTableRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_table_refreshes_total",
			Help: "Total number of risk table refreshes by source",
		},
		[]string{"source", "status"},
	)

	riskTableCountries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "risk_table_countries",
			Help: "Number of countries in the active risk table",
		},
	)

	auditEntriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_entries_total",
			Help: "Total number of audit entries created",
		},
	)

	// Database metrics
	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware creates HTTP metrics middleware
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// normalizePath normalizes URL paths for metrics to avoid cardinality explosion
func normalizePath(path string) string {
	if len(path) > 100 {
		return "/api/..."
	}
	return path
}

// --- Business metric helpers ---

// RecordAssessmentStarted records a new assessment session
func RecordAssessmentStarted() {
	assessmentsStarted.Inc()
}

// RecordAssessmentOutcome records a resolved outcome tone
func RecordAssessmentOutcome(tone string) {
	assessmentOutcomes.WithLabelValues(tone).Inc()
}

// RecordStageChange records an assessment stage transition
func RecordStageChange(fromStage, toStage string) {
	assessmentStageChanges.WithLabelValues(fromStage, toStage).Inc()
}

// RecordRiskTableRefresh records a risk table refresh attempt
func RecordRiskTableRefresh(source, status string) {
	riskTableRefreshes.WithLabelValues(source, status).Inc()
}

// RecordRiskTableSize records the country count of the active table
func RecordRiskTableSize(countries int) {
	riskTableCountries.Set(float64(countries))
}

// RecordAuditEntry records an audit entry creation
func RecordAuditEntry() {
	auditEntriesTotal.Inc()
}

// RecordDBQuery records a database query duration
func RecordDBQuery(operation string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
