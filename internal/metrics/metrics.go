package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the console's collectors. Each instance registers on its own
// registerer so tests can use a private registry.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequestsTotal   *prometheus.CounterVec
	httpErrorsTotal     *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	fetchTotal    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	sessions      prometheus.Gauge
}

// New registers the collectors on reg and serves them from gatherer
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: gatherer,

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_console_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		}, []string{"method", "route"}),

		httpErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_console_http_errors_total",
			Help: "Total number of HTTP requests resulting in server errors.",
		}, []string{"method", "route", "status"}),

		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clinic_console_http_request_duration_seconds",
			Help:    "Histogram of latencies for HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),

		fetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_console_calendar_fetches_total",
			Help: "Calendar appointment fetches by outcome (published, stale, unavailable, failed).",
		}, []string{"outcome"}),

		fetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clinic_console_calendar_fetch_duration_seconds",
			Help:    "Histogram of calendar fetch latencies across all pages.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),

		sessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "clinic_console_calendar_sessions",
			Help: "Number of live calendar sessions.",
		}),
	}
}

// NewDefault registers on the process-wide Prometheus registry
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// ObserveFetch records one settled calendar fetch
func (m *Metrics) ObserveFetch(outcome string, elapsed time.Duration) {
	m.fetchTotal.WithLabelValues(outcome).Inc()
	m.fetchDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// SetSessions reports the number of live calendar sessions
func (m *Metrics) SetSessions(n int) {
	m.sessions.Set(float64(n))
}

// Middleware records request metrics labelled with the matched mux route template
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		route := routePattern(r)
		method := r.Method
		status := strconv.Itoa(sw.status)

		m.httpRequestsTotal.WithLabelValues(method, route).Inc()
		m.httpRequestDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
		if sw.status >= http.StatusInternalServerError {
			m.httpErrorsTotal.WithLabelValues(method, route, status).Inc()
		}
	})
}

// Handler exposes the Prometheus metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func routePattern(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil && tpl != "" {
			return tpl
		}
	}
	return "unmatched"
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}
