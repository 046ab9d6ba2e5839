package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server serves the container's routes over HTTP.
type Server struct {
	httpServer *http.Server
	container  *Container
}

func NewServer(container *Container, port int) *Server {
	router := chi.NewRouter()
	setupRoutes(router, container)

	handler := otelhttp.NewHandler(router, "acceptjson-server",
		otelhttp.WithSpanNameFormatter(routeSpanName),
	)

	return &Server{
		httpServer: &http.Server{
			Addr:              net.JoinHostPort("", strconv.Itoa(port)),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		container: container,
	}
}

// routeSpanName names server spans after the method and request path.
// otelhttp formats the span before chi has matched a route, so the raw
// path is all that is available here.
func routeSpanName(_ string, r *http.Request) string {
	return r.Method + " " + r.URL.Path
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.container.Logger.Error("Failed to listen", "addr", s.httpServer.Addr, "error", err)
		return err
	}

	return s.Serve(ln)
}

// Serve accepts connections on ln. A server that has been shut down returns nil.
func (s *Server) Serve(ln net.Listener) error {
	s.container.Logger.Info("Listening", "addr", ln.Addr().String())

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.container.Logger.Error("Server stopped", "error", err)
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.container.Logger.Info("Stopping server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.container.Logger.Error("Failed to shut down server", "error", err)
		return err
	}

	return nil
}
