// Package otel wires the OpenTelemetry SDK: traces exported over OTLP/HTTP
// and metrics scraped through a Prometheus registry.
package otel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"

	"github.com/terrpan/acceptjson/internal/config"
)

// TracingOptions selects the span exporters.
type TracingOptions struct {
	ServiceName string
	// StdOut additionally pretty-prints every span to stdout.
	StdOut bool
}

// Tracing owns the tracer provider and its exporters.
type Tracing struct {
	provider *sdktrace.TracerProvider
}

// NewTracing builds a tracer provider batching spans to the OTLP/HTTP
// endpoint taken from the standard OTEL_EXPORTER_OTLP_* variables.
func NewTracing(ctx context.Context, opts TracingOptions) (*Tracing, error) {
	otlpExporter, err := otlptracehttp.New(ctx, otlptracehttp.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	res, err := newResource(opts.ServiceName)
	if err != nil {
		return nil, errors.Join(
			fmt.Errorf("failed to build trace resource: %w", err),
			otlpExporter.Shutdown(ctx),
		)
	}

	providerOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithBatcher(otlpExporter, sdktrace.WithBatchTimeout(time.Second)),
		sdktrace.WithResource(res),
	}

	if opts.StdOut {
		stdoutExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, errors.Join(
				fmt.Errorf("failed to create stdout trace exporter: %w", err),
				otlpExporter.Shutdown(ctx),
			)
		}

		providerOpts = append(providerOpts, sdktrace.WithBatcher(stdoutExporter))
	}

	return &Tracing{provider: sdktrace.NewTracerProvider(providerOpts...)}, nil
}

// SetAsGlobal installs the provider and W3C trace context propagation.
func (t *Tracing) SetAsGlobal() {
	otel.SetTracerProvider(t.provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// Shutdown flushes pending spans. Calling it more than once is safe.
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}

	provider := t.provider
	t.provider = nil

	return provider.Shutdown(ctx)
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(config.Version),
		),
	)
}
