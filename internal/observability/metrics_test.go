package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordAggregateOperations(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveAggregateOperation("hierarchy.set_area_parent", "success", 3*time.Millisecond)
	m.ObserveAggregateOperation("hierarchy.set_area_parent", "cycle_detected", time.Millisecond)
	m.IncAggregateConflict("hierarchy.set_area_parent")

	require.Equal(t, 1.0, testutil.ToFloat64(m.aggregateOps.WithLabelValues("hierarchy.set_area_parent", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.aggregateConflicts.WithLabelValues("hierarchy.set_area_parent")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.aggregateRetries.WithLabelValues("hierarchy.set_area_parent")))
}

func TestMetricsHandlerExposesSeries(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ObserveAPI("GET", "/api/areas", "200", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), `climbs_api_requests_total{method="GET",route="/api/areas",status="200"} 1`))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.ObserveAggregateOperation("op", "success", time.Millisecond)
	m.IncPublish("redis", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestOtelHeaders(t *testing.T) {
	require.Nil(t, otelHeaders(""))
	require.Equal(t, map[string]string{"a": "1", "b": "2"}, otelHeaders("a=1, b=2,broken,=x"))
	require.Equal(t, 0.1, sampleRatio(0))
	require.Equal(t, 1.0, sampleRatio(4))
}
