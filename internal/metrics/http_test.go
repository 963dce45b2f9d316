package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPWrapCountsRequests(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := NewHTTP(reg)
	require.NoError(t, err)

	handler := m.Wrap("day", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	for range 2 {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/schedule/day", nil))
	}

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("day", "get", "422")), 1e-9)
	assert.Equal(t, 1, testutil.CollectAndCount(m.latency, "planner_http_request_duration_seconds"))

	again, err := NewHTTP(reg)
	require.NoError(t, err)
	assert.Same(t, m.requests, again.requests)
}

func TestNilHTTPPassesThrough(t *testing.T) {
	t.Parallel()

	var m *HTTP
	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })
	m.Wrap("health", next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}
