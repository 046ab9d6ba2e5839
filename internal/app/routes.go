package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/terrpan/acceptjson/internal/acceptjson"
)

func setupRoutes(r chi.Router, container *Container) {
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(container.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", container.HealthHandler.HandleHealthCheck)
	r.Method(http.MethodGet, container.MetricsPath, container.Metrics.Handler())

	// Only API routes see a normalized Accept header.
	r.Route("/api", func(r chi.Router) {
		r.Use(acceptjson.Middleware(
			container.Logger,
			container.Metrics.Meter(),
			acceptjson.WithOptions(container.AcceptOptions),
		))

		r.Get("/accept", container.APIHandler.HandleAccept)
		r.Post("/validate", container.APIHandler.HandleValidate)
	})
}
