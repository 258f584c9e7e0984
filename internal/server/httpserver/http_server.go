// Package httpserver wires the WebForge HTTP intake: routes, middleware and
// server lifecycle.
package httpserver

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
	"git.home.luguber.info/inful/webforge/internal/metrics"
	"git.home.luguber.info/inful/webforge/internal/server/handlers"
	smw "git.home.luguber.info/inful/webforge/internal/server/middleware"
)

const shutdownTimeout = 10 * time.Second

// Options carries the dependencies of the intake server.
type Options struct {
	Addr         string
	MetricsPath  string
	PageFilename string

	Orders     handlers.OrderProcessor
	Workspaces handlers.WorkspaceLocator
	// History is optional; order listing returns 404 without it.
	History handlers.OrderHistory
	// Clients is optional; the client routes are not mounted without it.
	Clients handlers.ClientDirectory
	// MetricsHandler is optional; the metrics route is not mounted without it.
	MetricsHandler http.Handler
	Recorder       metrics.Recorder
	Logger         *slog.Logger
}

// Server is the HTTP order intake.
type Server struct {
	opts    Options
	handler http.Handler
	srv     *http.Server
}

// New builds the router and middleware chain.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	adapter := errors.NewHTTPErrorAdapter(opts.Logger)

	api := handlers.NewAPIHandlers(opts.Orders, opts.Workspaces, opts.History, opts.PageFilename, adapter)
	monitoring := handlers.NewMonitoringHandlers(time.Now())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders", api.HandleCreateOrder)
	mux.HandleFunc("GET /api/orders", api.HandleListOrders)
	mux.HandleFunc("GET /api/orders/{id}", api.HandleGetOrder)
	mux.HandleFunc("GET /api/workspaces/{client}", api.HandleGetWorkspace)
	if opts.Clients != nil {
		clients := handlers.NewClientHandlers(opts.Clients, adapter)
		mux.HandleFunc("GET /api/clients", clients.HandleListClients)
		mux.HandleFunc("GET /api/clients/{client}", clients.HandleGetClient)
	}
	mux.HandleFunc("GET /healthz", monitoring.HandleHealthCheck)
	if opts.MetricsHandler != nil && opts.MetricsPath != "" {
		mux.Handle("GET "+opts.MetricsPath, opts.MetricsHandler)
	}

	chain := smw.Chain(opts.Logger, adapter, opts.Recorder)
	return &Server{opts: opts, handler: chain(mux)}
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe binds Addr and serves until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return errors.ConfigError("failed to bind intake address").
			WithCause(err).
			WithContext("addr", s.opts.Addr).
			Build()
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.srv = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("HTTP intake listening", slog.String("addr", ln.Addr().String()))
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.InternalError("HTTP intake stopped").WithCause(err).Build()
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return errors.InternalError("HTTP intake shutdown failed").WithCause(err).Build()
	}
	<-errCh
	s.opts.Logger.Info("HTTP intake stopped")
	return nil
}
