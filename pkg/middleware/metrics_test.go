package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func metricsRouter(service string, handler http.HandlerFunc) *chi.Mux {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics(service))
	r.Get("/api/v1/cars/{id}", handler)
	return r
}

func TestPrometheusMetrics_CountsByRoutePattern(t *testing.T) {
	r := metricsRouter("metrics-route", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, id := range []string{"c1", "c2", "c3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cars/"+id, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	counter := httpRequestsTotal.WithLabelValues("metrics-route", http.MethodGet, "/api/v1/cars/{id}", "200")
	assert.Equal(t, float64(3), testutil.ToFloat64(counter))
}

func TestPrometheusMetrics_StatusLabel(t *testing.T) {
	tests := []struct {
		service string
		handler http.HandlerFunc
		status  string
	}{
		{"metrics-created", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusCreated) }, "201"},
		{"metrics-missing", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) }, "404"},
		{"metrics-implicit", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) }, "200"},
	}
	for _, tt := range tests {
		t.Run(tt.service, func(t *testing.T) {
			r := metricsRouter(tt.service, tt.handler)
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/cars/c1", nil))

			counter := httpRequestsTotal.WithLabelValues(tt.service, http.MethodGet, "/api/v1/cars/{id}", tt.status)
			assert.Equal(t, float64(1), testutil.ToFloat64(counter))
		})
	}
}

func TestPrometheusMetrics_Duration(t *testing.T) {
	r := metricsRouter("metrics-duration", func(w http.ResponseWriter, r *http.Request) {})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/cars/c1", nil))

	assert.GreaterOrEqual(t, testutil.CollectAndCount(httpRequestDuration), 1)
}

func TestPrometheusMetrics_InFlight(t *testing.T) {
	gauge := httpRequestsInFlight.WithLabelValues("metrics-inflight")
	var during float64
	r := metricsRouter("metrics-inflight", func(w http.ResponseWriter, r *http.Request) {
		during = testutil.ToFloat64(gauge)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/cars/c1", nil))

	assert.Equal(t, float64(1), during)
	assert.Equal(t, float64(0), testutil.ToFloat64(gauge))
}

func TestPrometheusMetrics_UnmatchedRoute(t *testing.T) {
	r := metricsRouter("metrics-unmatched", func(w http.ResponseWriter, r *http.Request) {})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	counter := httpRequestsTotal.WithLabelValues("metrics-unmatched", http.MethodGet, "unknown", "404")
	assert.Equal(t, float64(1), testutil.ToFloat64(counter))
}
