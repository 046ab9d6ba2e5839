package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/terrpan/acceptjson/internal/services"
	"github.com/terrpan/acceptjson/internal/telemetry"
)

// HealthChecker reports the state of the service and its dependencies.
type HealthChecker interface {
	CheckHealth(ctx context.Context) *services.HealthServiceResponse
}

type HealthHandler struct {
	logger    *slog.Logger
	telemetry *telemetry.Helper
	checker   HealthChecker
}

func NewHealthHandler(logger *slog.Logger, checker HealthChecker) *HealthHandler {
	return &HealthHandler{
		logger:    logger,
		telemetry: telemetry.NewTelemetryHelper("acceptjson/handlers"),
		checker:   checker,
	}
}

// HandleHealthCheck writes the health report. Only an "error" status turns
// into a 503; a degraded service still answers 200 so it stays in rotation.
func (h *HealthHandler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.telemetry.StartSpan(r.Context(), "health.handle")
	defer span.End()

	report := h.checker.CheckHealth(ctx)

	status := healthStatusCode(report.Status)
	if status != http.StatusOK {
		h.logger.WarnContext(ctx, "Health check failed", "status", report.Status)
	}

	w.Header().Set("Cache-Control", "no-store")

	if err := writeJSON(w, status, report); err != nil {
		h.telemetry.SetErrorAttribute(span, err)
		h.logger.ErrorContext(ctx, "Failed to encode health response", "error", err)
	}
}

func healthStatusCode(status string) int {
	if status == services.StatusError {
		return http.StatusServiceUnavailable
	}

	return http.StatusOK
}
