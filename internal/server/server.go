// Package server wires HTTP routing and middleware for the status service.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apierrors "github.com/otherjamesbrown/ai-aas/services/status-service/internal/errors"
	"github.com/otherjamesbrown/ai-aas/services/status-service/internal/health"
	"github.com/otherjamesbrown/ai-aas/services/status-service/internal/observability"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

// Options configures the public HTTP server.
type Options struct {
	Address string
	Logger  *zap.Logger
	// Status serves GET /.
	Status http.Handler
}

// AdminOptions configures the admin listener.
type AdminOptions struct {
	Address string
	Health  *health.Registry
}

// New constructs the public HTTP server.
func New(opts Options) *http.Server {
	return &http.Server{
		Addr:              opts.Address,
		Handler:           NewRouter(opts),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// NewRouter builds the public router. Only GET / is registered.
func NewRouter(opts Options) chi.Router {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := chi.NewRouter()
	router.Use(corsMiddleware)
	router.Use(observability.RequestContextMiddleware)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(tracing)

	router.NotFound(notFound)
	router.MethodNotAllowed(methodNotAllowed)

	if opts.Status != nil {
		router.Method(http.MethodGet, "/", opts.Status)
	}

	return router
}

// NewAdmin constructs the admin server exposing /metrics and /healthz.
func NewAdmin(opts AdminOptions) *http.Server {
	return &http.Server{
		Addr:              opts.Address,
		Handler:           NewAdminRouter(opts),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// NewAdminRouter builds the admin router.
func NewAdminRouter(opts AdminOptions) chi.Router {
	reg := opts.Health
	if reg == nil {
		reg = health.NewRegistry()
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/healthz", health.Handler(reg))
	router.Handle("/metrics", promhttp.Handler())

	return router
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeRouteError(w, r, apierrors.CodeNotFound, "route not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeRouteError(w, r, apierrors.CodeMethodNotAllowed, "method "+r.Method+" not allowed")
}

func writeRouteError(w http.ResponseWriter, r *http.Request, code, message string) {
	var opts []apierrors.Option
	if id, ok := observability.RequestIDFromContext(r.Context()); ok {
		opts = append(opts, apierrors.WithRequestID(id))
	}
	apierrors.Write(w, apierrors.New(code, message, opts...))
}
