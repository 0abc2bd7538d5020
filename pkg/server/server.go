package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"costwise-hq/atlas/pkg/budget"
	"costwise-hq/atlas/pkg/config"
	"costwise-hq/atlas/pkg/orchestrator"
	"costwise-hq/atlas/pkg/telemetry/health"
	"costwise-hq/atlas/pkg/telemetry/metrics"
)

// Server is the Atlas HTTP API server.
type Server struct {
	config  *config.ServerConfig
	orch    *orchestrator.Orchestrator
	budgets *budget.Manager
	checker *health.Checker
	metrics *metrics.Collector

	metricsPath string

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Options collects the server's collaborators. Metrics and Checker are
// optional; nil disables the corresponding endpoints.
type Options struct {
	Orchestrator *orchestrator.Orchestrator
	Budgets      *budget.Manager
	Checker      *health.Checker
	Metrics      *metrics.Collector
	MetricsPath  string
}

// NewServer creates the API server.
func NewServer(cfg *config.ServerConfig, opts Options) *Server {
	metricsPath := opts.MetricsPath
	if metricsPath == "" {
		metricsPath = config.DefaultMetricsPath
	}
	return &Server{
		config:      cfg,
		orch:        opts.Orchestrator,
		budgets:     opts.Budgets,
		checker:     opts.Checker,
		metrics:     opts.Metrics,
		metricsPath: metricsPath,
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting api server", "address", s.config.ListenAddress)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("api server stopped")
	})

	return shutdownErr
}

// Handler returns the configured HTTP handler with the full middleware
// chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/costs", s.handleGetCosts)
	mux.HandleFunc("/v1/budget/usage", s.handleBudgetUsage)
	mux.HandleFunc("/v1/budget/settings", s.handleBudgetSettings)
	mux.HandleFunc("/v1/budget/alerts", s.handleBudgetAlerts)

	if s.checker != nil {
		mux.HandleFunc("/health", s.checker.LivenessHandler())
		mux.HandleFunc("/ready", s.checker.ReadinessHandler())
	}
	if s.metrics != nil {
		mux.Handle(s.metricsPath, s.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = metricsMiddleware(s.metrics)(handler)
	handler = loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)
	// Recovery is outermost so panics anywhere in the chain are caught.
	handler = recoveryMiddleware(handler)

	return handler
}

// IsRunning reports whether the server is accepting requests.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
