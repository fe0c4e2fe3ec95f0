// Package server runs the HTTP server until its context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Config for the HTTP server.
type Config struct {
	Addr              string
	ShutdownTimeout   time.Duration // default 30s
	ReadHeaderTimeout time.Duration // default 10s
}

// Runner manages the HTTP server lifecycle.
type Runner struct {
	handler http.Handler
	config  Config
	logger  *slog.Logger
}

// NewRunner creates a new runner.
func NewRunner(handler http.Handler, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}
	return &Runner{
		handler: handler,
		config:  cfg,
		logger:  logger,
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", r.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", r.config.Addr, err)
	}
	return r.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
// It blocks until the server has stopped.
func (r *Runner) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           r.handler,
		ReadHeaderTimeout: r.config.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r.logger.Info("server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		r.logger.Info("shutting down", "timeout", r.config.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	r.logger.Info("server stopped")
	return nil
}
