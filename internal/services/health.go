package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/terrpan/acceptjson/internal/accept"
	"github.com/terrpan/acceptjson/internal/acceptjson"
	"github.com/terrpan/acceptjson/internal/config"
	"github.com/terrpan/acceptjson/internal/telemetry"
)

// Health statuses, from best to worst.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
	StatusError    = "error"
)

const (
	// probeAccept is what a browser sends when navigating to a page.
	probeAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

type HealthService struct {
	logger         *slog.Logger
	telemetry      *telemetry.Helper
	options        acceptjson.Options
	metricsEnabled bool
}

type HealthServiceResponse struct {
	ServiceName  string                     `json:"service_name"`
	Status       string                     `json:"status"`
	OS           string                     `json:"os"`
	Arch         string                     `json:"architecture"`
	Version      string                     `json:"version"`
	Commit       string                     `json:"commit"`
	BuildTime    string                     `json:"build_time"`
	GoVersion    string                     `json:"go_version"`
	Dependencies map[string]DependencyCheck `json:"dependencies,omitempty"`
	Timestamp    time.Time                  `json:"timestamp"`
}

type DependencyCheck struct {
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Duration  int64     `json:"duration_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// NewHealthService initializes a new HealthService for the middleware
// options mounted on the API routes.
func NewHealthService(
	logger *slog.Logger,
	options acceptjson.Options,
	metricsEnabled bool,
) *HealthService {
	return &HealthService{
		logger:         logger,
		telemetry:      telemetry.NewTelemetryHelper("acceptjson/services"),
		options:        options,
		metricsEnabled: metricsEnabled,
	}
}

// CheckHealth performs a health check and returns a status message.
func (s *HealthService) CheckHealth(ctx context.Context) *HealthServiceResponse {
	ctx, span := s.telemetry.StartSpan(ctx, "health.check")
	defer span.End()

	s.logger.DebugContext(ctx, "Performing health check")

	dependencies := map[string]DependencyCheck{
		"accept_json": s.checkNormalizer(ctx),
		"metrics":     s.checkMetrics(),
	}

	overallStatus := getOverallStatus(dependencies)
	s.logger.DebugContext(ctx, "Overall health status", "status", overallStatus)

	version, commit, buildTime := config.GetBuildInfo()
	s.telemetry.SetHealthAttributes(span, overallStatus, version)

	return &HealthServiceResponse{
		ServiceName:  "acceptjson",
		Status:       overallStatus,
		OS:           runtime.GOOS,
		Arch:         runtime.GOARCH,
		Version:      version,
		Commit:       commit,
		BuildTime:    buildTime,
		GoVersion:    runtime.Version(),
		Timestamp:    time.Now().UTC(),
		Dependencies: dependencies,
	}
}

// checkNormalizer runs the configured options against a browser style
// header. JSON that no longer ranks first means the quality is too low
// to change what "wants JSON" checks decide.
func (s *HealthService) checkNormalizer(ctx context.Context) DependencyCheck {
	start := time.Now()

	header := accept.Parse(acceptjson.Normalize(probeAccept, s.options))

	check := DependencyCheck{
		Status:  StatusHealthy,
		Message: "application/json ranks first",
	}

	if first, _ := header.First(); first.MediaType != acceptjson.MediaTypeJSON {
		check.Status = StatusDegraded
		check.Message = fmt.Sprintf(
			"application/json with q=%s ranks behind %s",
			accept.FormatQuality(s.options.Quality),
			first.MediaType,
		)
		s.logger.WarnContext(ctx, "Injected JSON entry does not rank first",
			"quality", s.options.Quality,
			"first", first.MediaType,
		)
	}

	check.Duration = time.Since(start).Milliseconds()
	check.Timestamp = time.Now().UTC()

	return check
}

func (s *HealthService) checkMetrics() DependencyCheck {
	check := DependencyCheck{
		Status:    StatusHealthy,
		Message:   "Prometheus exporter enabled",
		Timestamp: time.Now().UTC(),
	}

	if !s.metricsEnabled {
		check.Message = "metrics disabled"
	}

	return check
}

// getOverallStatus aggregates the health status of all dependencies.
func getOverallStatus(dependencies map[string]DependencyCheck) string {
	hasError := false
	hasDegraded := false

	for _, dep := range dependencies {
		switch dep.Status {
		case StatusError:
			hasError = true
		case StatusDegraded:
			hasDegraded = true
		}
	}

	if hasError {
		return StatusError
	}

	if hasDegraded {
		return StatusDegraded
	}

	return StatusHealthy
}
