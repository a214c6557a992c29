package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"weight_balance/internal/models"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wb_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wb_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	evaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wb_evaluations_total",
			Help: "Weight and balance evaluations by category and verdict.",
		},
		[]string{"category", "verdict"},
	)

	catalogTemplates = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "wb_catalog_templates",
			Help: "Number of aircraft templates in the loaded catalog.",
		},
	)

	catalogReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wb_catalog_reloads_total",
			Help: "Catalog reload attempts by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(evaluationsTotal)
	prometheus.MustRegister(catalogTemplates)
	prometheus.MustRegister(catalogReloadsTotal)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveEvaluation(cat models.Category, v models.Verdict) {
	evaluationsTotal.WithLabelValues(string(cat), string(v)).Inc()
}

func SetCatalogSize(n int) {
	catalogTemplates.Set(float64(n))
}

func ObserveCatalogReload(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	catalogReloadsTotal.WithLabelValues(result).Inc()
}

var knownRoutes = map[string]bool{
	"/health":             true,
	"/metrics":            true,
	"/aircraft/templates": true,
	"/calculate":          true,
	"/envelope/analyze":   true,
	"/envelope/validate":  true,
	"/fleet/validate":     true,
}

// normalizeRoute keeps the path label bounded: template ids collapse to
// one label and anything unknown becomes "other".
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	if rest, ok := strings.CutPrefix(path, "/aircraft/templates/"); ok && rest != "" && !strings.Contains(rest, "/") {
		return "/aircraft/templates/{id}"
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		path := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(path, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(path, r.Method).Observe(duration)
	})
}
