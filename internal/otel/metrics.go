package otel

import (
	"context"
	"fmt"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics owns the meter provider and the Prometheus registry it exports to.
type Metrics struct {
	meter    metric.Meter
	provider *sdkmetric.MeterProvider
	registry *prom.Registry
	enabled  bool
}

// NewMetrics creates a Prometheus backed meter provider. When enabled is
// false the returned Metrics hands out a no-op meter.
func NewMetrics(serviceName string, enabled bool) (*Metrics, error) {
	if !enabled {
		return &Metrics{meter: noop.NewMeterProvider().Meter(serviceName)}, nil
	}

	registry := prom.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Prometheus exporter: %w", err)
	}

	res, err := newResource(serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to build metrics resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)

	return &Metrics{
		meter:    provider.Meter(serviceName),
		provider: provider,
		registry: registry,
		enabled:  true,
	}, nil
}

// Meter returns the meter for custom instrumentation
func (m *Metrics) Meter() metric.Meter {
	return m.meter
}

// Enabled reports whether metrics are exported.
func (m *Metrics) Enabled() bool {
	return m.enabled
}

// Handler returns the handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	if !m.enabled {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "metrics disabled", http.StatusServiceUnavailable)
		})
	}

	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SetAsGlobal registers the provider as the global meter provider
func (m *Metrics) SetAsGlobal() {
	if m.provider != nil {
		otel.SetMeterProvider(m.provider)
	}
}

// Shutdown flushes and stops the meter provider
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}

	return m.provider.Shutdown(ctx)
}
