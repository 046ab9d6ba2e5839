// Package testutils holds logger and OpenTelemetry fixtures shared by
// package tests.
package testutils

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// NewTestLogger returns a logger that drops everything below error.
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// NewCaptureLogger returns a debug level JSON logger writing to w.
func NewCaptureLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// NewTestMeter returns a meter whose measurements are collected on demand
// through the returned reader.
func NewTestMeter(t *testing.T) (metric.Meter, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})

	return provider.Meter("acceptjson/test"), reader
}

// CounterByBool sums an int64 counter's data points, grouped by the
// boolean attribute key.
func CounterByBool(t *testing.T, reader *sdkmetric.ManualReader, name string, key attribute.Key) map[bool]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[bool]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}

			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)

			for _, dp := range sum.DataPoints {
				value, _ := dp.Attributes.Value(key)
				counts[value.AsBool()] += dp.Value
			}
		}
	}

	return counts
}

// NewSpanRecorder returns a tracer provider that records ended spans.
// With global set, the provider is installed globally until the test ends.
func NewSpanRecorder(t *testing.T, global bool) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	if global {
		original := otel.GetTracerProvider()
		otel.SetTracerProvider(provider)
		t.Cleanup(func() {
			otel.SetTracerProvider(original)
		})
	}

	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})

	return provider, recorder
}

func SpanAttributes(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}

	return attrs
}
