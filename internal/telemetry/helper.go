// Package telemetry holds the span attribute vocabulary shared by the
// middleware, handlers and services.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Attribute keys recorded on spans.
const (
	AttrAcceptOriginal   = attribute.Key("accept.original")
	AttrAcceptNormalized = attribute.Key("accept.normalized")
	AttrAcceptInjected   = attribute.Key("accept.injected")
	AttrAcceptForced     = attribute.Key("accept.forced")

	AttrNegotiationMediaType = attribute.Key("negotiation.media_type")
	AttrNegotiationWantsJSON = attribute.Key("negotiation.wants_json")

	AttrHealthStatus   = attribute.Key("health.status")
	AttrServiceVersion = attribute.Key("service.version")
)

// Helper starts spans for one instrumentation scope.
type Helper struct {
	tracer oteltrace.Tracer
}

// NewTelemetryHelper returns a Helper whose tracer is resolved from the
// global provider under the given scope name.
func NewTelemetryHelper(scope string) *Helper {
	return &Helper{
		tracer: otel.Tracer(scope),
	}
}

// StartSpan starts an internal span carrying attrs.
func (t *Helper) StartSpan(
	ctx context.Context,
	name string,
	attrs ...attribute.KeyValue,
) (context.Context, oteltrace.Span) {
	return t.tracer.Start(ctx, name,
		oteltrace.WithSpanKind(oteltrace.SpanKindInternal),
		oteltrace.WithAttributes(attrs...),
	)
}

// SetAcceptAttributes records an Accept header rewrite.
func (t *Helper) SetAcceptAttributes(
	span oteltrace.Span,
	original, normalized string,
	injected, forced bool,
) {
	span.SetAttributes(
		AttrAcceptOriginal.String(original),
		AttrAcceptNormalized.String(normalized),
		AttrAcceptInjected.Bool(injected),
		AttrAcceptForced.Bool(forced),
	)
}

// SetNegotiationAttributes records the media type a handler responded for.
func (t *Helper) SetNegotiationAttributes(span oteltrace.Span, mediaType string, wantsJSON bool) {
	span.SetAttributes(
		AttrNegotiationMediaType.String(mediaType),
		AttrNegotiationWantsJSON.Bool(wantsJSON),
	)
}

func (t *Helper) SetHealthAttributes(span oteltrace.Span, status, version string) {
	span.SetAttributes(
		AttrHealthStatus.String(status),
		AttrServiceVersion.String(version),
	)
}

// SetErrorAttribute records err as a span event and marks the span failed.
func (t *Helper) SetErrorAttribute(span oteltrace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
