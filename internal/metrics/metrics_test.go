package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	return New(reg, reg)
}

func TestObserveFetch_CountsByOutcome(t *testing.T) {
	m := newTestMetrics()

	m.ObserveFetch("published", 20*time.Millisecond)
	m.ObserveFetch("published", 40*time.Millisecond)
	m.ObserveFetch("stale", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues("published")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues("stale")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues("failed")))
}

func TestMiddleware_LabelsByRouteTemplate(t *testing.T) {
	m := newTestMetrics()

	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/calendar/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	for _, id := range []string{"APT-1", "APT-2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/calendar/events/"+id, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/calendar/events/{id}")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpErrorsTotal.WithLabelValues("GET", "/calendar/events/{id}", "502")))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := newTestMetrics()
	m.SetSessions(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "clinic_console_calendar_sessions 3"))
}
