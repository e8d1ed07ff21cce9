// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires the operator HTTP surface of the harvester: liveness and
readiness probes, the scanner status, the Prometheus registry and the manual
sweep trigger.

Architecture:

  - This package is the only HTTP server in the process; the scan engine
    never depends on it.
  - Handlers read scanner state through small interfaces so tests can drive
    them with fakes.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taibuivan/yomira-harvester/internal/harvest"
	"github.com/taibuivan/yomira-harvester/internal/platform/constants"
	"github.com/taibuivan/yomira-harvester/internal/platform/metrics"
	"github.com/taibuivan/yomira-harvester/internal/platform/middleware"
)

// # Dependencies

// Sweeper exposes the scanner state the operator surface reports on.
type Sweeper interface {
	Status() harvest.Status
}

// RecordCounter reports how many records the store holds.
type RecordCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Dependencies groups everything the handlers need. Nil fields disable the
// feature that uses them.
type Dependencies struct {
	Scanner Sweeper

	// Trigger launches one sweep in the background. It returns
	// [harvest.ErrSweepInProgress] when a sweep already holds the scanner.
	Trigger func() error

	// Token guards POST /sweep; the route is not mounted when empty.
	Token string

	Records RecordCounter
	NextRun func() time.Time
	Metrics *metrics.Metrics

	// CheckDatabase pings the PostgreSQL pool.
	CheckDatabase func(context.Context) error

	// CheckCache pings the Redis client.
	CheckCache func(context.Context) error
}

// # Server Definitions

// Server wraps the chi router and the [http.Server].
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// NewServer constructs the chi router with the middleware chain and registers
// the operator routes.
func NewServer(addr string, log *slog.Logger, deps Dependencies) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.PanicRecovery(log))
	r.Use(chimw.CleanPath)

	// # Probes
	liveness, readiness := NewHealthHandlers(deps, log)
	r.Get("/health", liveness)
	r.Get("/ready", readiness)

	// # Scanner
	handler := &statusHandler{deps: deps}
	r.Get("/status", handler.status)

	if deps.Token != "" && deps.Trigger != nil {
		r.With(middleware.RequireToken(deps.Token)).Post("/sweep", handler.trigger)
	}

	// # Metrics
	if deps.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("ops_server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
