package otel

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func TestNewTracing(t *testing.T) {
	original := otel.GetTracerProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
	})

	ctx := context.Background()

	tracing, err := NewTracing(ctx, TracingOptions{ServiceName: "acceptjson-test", StdOut: true})
	require.NoError(t, err)
	require.NotNil(t, tracing)

	tracing.SetAsGlobal()
	assert.NotEqual(t, original, otel.GetTracerProvider())
	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")

	shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	assert.NoError(t, tracing.Shutdown(shutdownCtx))
	// A second call has nothing left to stop.
	assert.NoError(t, tracing.Shutdown(shutdownCtx))
}

func TestTracing_NilShutdown(t *testing.T) {
	var tracing *Tracing
	assert.NoError(t, tracing.Shutdown(context.Background()))
}

func TestNewResource(t *testing.T) {
	res, err := newResource("acceptjson-test")
	require.NoError(t, err)

	value, ok := res.Set().Value(attribute.Key("service.name"))
	require.True(t, ok)
	assert.Equal(t, "acceptjson-test", value.AsString())
}

func TestNewMetrics_Enabled(t *testing.T) {
	m, err := NewMetrics("acceptjson-test", true)
	require.NoError(t, err)
	require.True(t, m.Enabled())

	counter, err := m.Meter().Int64Counter("acceptjson.test_events")
	require.NoError(t, err)
	counter.Add(context.Background(), 3, metric.WithAttributes(attribute.Bool("injected", true)))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "acceptjson_test_events")
	assert.Contains(t, string(body), `injected="true"`)

	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestNewMetrics_Disabled(t *testing.T) {
	m, err := NewMetrics("acceptjson-test", false)
	require.NoError(t, err)

	assert.False(t, m.Enabled())
	assert.NotNil(t, m.Meter())

	counter, err := m.Meter().Int64Counter("acceptjson.test_events")
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		counter.Add(context.Background(), 1)
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	assert.NoError(t, m.Shutdown(context.Background()))
	assert.NotPanics(t, m.SetAsGlobal)
}
