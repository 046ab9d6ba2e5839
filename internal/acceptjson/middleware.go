package acceptjson

import (
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/terrpan/acceptjson/internal/telemetry"
)

const (
	headerAccept = "Accept"
	meterName    = "acceptjson"

	// RequestsMetric counts requests seen by the middleware, labelled
	// with whether an entry was injected.
	RequestsMetric = "acceptjson.requests"
)

// Option configures the middleware.
type Option func(*Options)

// WithQuality sets the q value of the injected entry.
func WithQuality(quality float64) Option {
	return func(o *Options) {
		o.Quality = quality
	}
}

// WithForce sets whether injection happens even when JSON is already accepted.
func WithForce(force bool) Option {
	return func(o *Options) {
		o.Force = force
	}
}

// WithOptions replaces all options at once.
func WithOptions(opts Options) Option {
	return func(o *Options) {
		*o = opts
	}
}

// Middleware returns net/http middleware that rewrites the Accept header
// with Normalize before calling next. It never writes a response and calls
// next exactly once. A nil logger uses slog.Default and a nil meter
// disables the request counter.
func Middleware(logger *slog.Logger, meter metric.Meter, opts ...Option) func(http.Handler) http.Handler {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	if logger == nil {
		logger = slog.Default()
	}

	requests := newRequestCounter(logger, meter)
	helper := telemetry.NewTelemetryHelper("acceptjson/middleware")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if r.Header == nil {
				r.Header = make(http.Header)
			}

			original := strings.Join(r.Header.Values(headerAccept), ",")
			normalized, injected := NormalizeHeader(original, options)

			// Leave the client's bytes alone when nothing was added.
			if injected {
				r.Header.Set(headerAccept, normalized)
			}

			helper.SetAcceptAttributes(trace.SpanFromContext(ctx), original, normalized, injected, options.Force)
			requests.Add(ctx, 1, metric.WithAttributes(attribute.Bool("injected", injected)))

			logger.DebugContext(ctx, "Normalized accept header",
				"original", original,
				"normalized", normalized,
				"injected", injected,
			)

			next.ServeHTTP(w, r)
		})
	}
}

func newRequestCounter(logger *slog.Logger, meter metric.Meter) metric.Int64Counter {
	fallback, _ := noop.NewMeterProvider().Meter(meterName).Int64Counter(RequestsMetric)
	if meter == nil {
		return fallback
	}

	counter, err := meter.Int64Counter(RequestsMetric,
		metric.WithDescription("Requests whose Accept header was checked for application/json"),
	)
	if err != nil {
		logger.Warn("Failed to create request counter, metrics disabled", "error", err)
		return fallback
	}

	return counter
}
