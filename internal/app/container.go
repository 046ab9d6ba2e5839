// Package app provides the application container and dependency injection system.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/terrpan/acceptjson/internal/acceptjson"
	"github.com/terrpan/acceptjson/internal/config"
	"github.com/terrpan/acceptjson/internal/handlers"
	"github.com/terrpan/acceptjson/internal/otel"
	"github.com/terrpan/acceptjson/internal/services"
)

const (
	serviceName        = "acceptjson"
	defaultMetricsPath = "/metrics"
)

// Container holds all application dependencies using dependency injection pattern.
type Container struct {
	Logger *slog.Logger

	// Telemetry
	Metrics     *otel.Metrics
	MetricsPath string

	// Options for the acceptjson middleware on the API route group
	AcceptOptions acceptjson.Options

	// Business logic services
	HealthService *services.HealthService

	// HTTP request handlers
	HealthHandler *handlers.HealthHandler
	APIHandler    *handlers.APIHandler
}

// NewContainer initializes a new Container with all dependencies.
func NewContainer(ctx context.Context) (*Container, error) {
	if config.AppConfig == nil {
		return nil, errors.New("configuration not initialized")
	}

	c := &Container{
		AcceptOptions: acceptOptions(config.GetAcceptJSONConfig()),
		MetricsPath:   config.AppConfig.Metrics.Path,
	}

	if c.MetricsPath == "" {
		c.MetricsPath = defaultMetricsPath
	}

	c.Logger = config.NewLogger()
	c.Logger.InfoContext(ctx, "Initializing application container")

	if err := c.initializeMetrics(); err != nil {
		return nil, err
	}

	c.initializeServices()
	c.initializeHandlers()

	return c, nil
}

// acceptOptions converts the accept_json config section into middleware options.
func acceptOptions(cfg config.AcceptJSONConfig) acceptjson.Options {
	return acceptjson.Options{
		Quality: cfg.Quality,
		Force:   cfg.Force,
	}
}

// initializeMetrics sets up the meter provider based on configuration.
func (c *Container) initializeMetrics() error {
	enabled := config.AppConfig.Metrics.Enabled
	c.Logger.Info("Initializing metrics", "enabled", enabled, "path", c.MetricsPath)

	var err error

	c.Metrics, err = otel.NewMetrics(serviceName, enabled)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	c.Metrics.SetAsGlobal()

	return nil
}

// initializeServices sets up all business logic services.
func (c *Container) initializeServices() {
	c.HealthService = services.NewHealthService(c.Logger, c.AcceptOptions, c.Metrics.Enabled())

	c.Logger.Info("Services initialized",
		"accept_quality", c.AcceptOptions.Quality,
		"accept_force", c.AcceptOptions.Force,
	)
}

// initializeHandlers sets up HTTP request handlers.
// Handlers manage HTTP request/response processing and depend on the previously initialized services.
func (c *Container) initializeHandlers() {
	c.HealthHandler = handlers.NewHealthHandler(c.Logger, c.HealthService)
	c.APIHandler = handlers.NewAPIHandler(c.Logger)

	c.Logger.Info("Handlers initialized")
}

// Shutdown gracefully stops the container and its dependencies.
func (c *Container) Shutdown(ctx context.Context) error {
	c.Logger.Info("Shutting down application container")

	if c.Metrics != nil {
		if err := c.Metrics.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shut down metrics: %w", err)
		}
	}

	c.Logger.Info("Application container shutdown complete")

	return nil
}
