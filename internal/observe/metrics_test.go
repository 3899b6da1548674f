package observe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func counterTotal(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum[int64], got %T", m.Data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestRecordTurn(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordTurn(ctx, "team", "ok", 1500*time.Millisecond)
	m.RecordTurn(ctx, "hotel", "error", time.Second)

	rm := collect(t, reader)
	assert.Equal(t, int64(2), counterTotal(t, findMetric(rm, "wayfarer.turns")))

	h := findMetric(rm, "wayfarer.turn.duration")
	require.NotNil(t, h)
	hist, ok := h.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
}

func TestRecordToolCallAndRouting(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordToolCall(ctx, "search_hotels", "ok", 10*time.Millisecond)
	m.RecordToolCall(ctx, "search_hotels", "validation_error", 0)
	m.RecordRouting(ctx, "hotel_agent")
	m.RoutingErrors.Add(ctx, 1)

	rm := collect(t, reader)
	assert.Equal(t, int64(2), counterTotal(t, findMetric(rm, "wayfarer.tool.calls")))
	assert.Equal(t, int64(1), counterTotal(t, findMetric(rm, "wayfarer.routing.decisions")))
	assert.Equal(t, int64(1), counterTotal(t, findMetric(rm, "wayfarer.routing.errors")))
}

func TestDefaultMetricsSingleton(t *testing.T) {
	assert.Same(t, DefaultMetrics(), DefaultMetrics())
}

func TestStartSpanAndTraceID(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "turn")
	defer span.End()
	assert.NotEmpty(t, TraceID(ctx))

	_, s := StartSpan(ctx, "hop")
	s.End()
}

func TestMetricsHandlerServes(t *testing.T) {
	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
