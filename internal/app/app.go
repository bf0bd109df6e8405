// Package app provides application lifecycle management for the country cache server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/stacklok/country-cache-server/internal/config"
)

// CountryCacheApp encapsulates all components needed to run the API server
// and the refresh workers, with graceful shutdown
type CountryCacheApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	ctx        context.Context
	cancelFunc context.CancelFunc
	cleanup    func()
	served     atomic.Bool
	coordDone  chan struct{}
}

// Start runs the refresh coordinator in the background and serves HTTP.
// It blocks until the HTTP server stops or fails.
func (app *CountryCacheApp) Start() error {
	ln, err := net.Listen("tcp", app.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.httpServer.Addr, err)
	}
	return app.Serve(ln)
}

// Serve is Start over an existing listener
func (app *CountryCacheApp) Serve(ln net.Listener) error {
	if !app.served.CompareAndSwap(false, true) {
		return fmt.Errorf("server already started")
	}
	go func() {
		defer close(app.coordDone)
		if err := app.components.Coordinator.Start(app.ctx); err != nil {
			slog.Error("Refresh coordinator failed", "error", err)
		}
	}()

	slog.Info("Server listening", "address", ln.Addr().String())
	if err := app.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Stop shuts the HTTP server down first so no new refresh can be triggered,
// then stops the coordinator, which fails queued runs, and releases storage
func (app *CountryCacheApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server forced to shutdown: %w", err))
	}

	if err := app.components.Coordinator.Stop(); err != nil {
		slog.Error("Failed to stop refresh coordinator", "error", err)
	}
	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	if app.served.Load() {
		select {
		case <-app.coordDone:
		case <-shutdownCtx.Done():
			slog.Warn("Refresh coordinator did not stop before the shutdown deadline")
		}
	}

	// after the drain, which still writes failed runs
	if app.cleanup != nil {
		app.cleanup()
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *CountryCacheApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server
func (app *CountryCacheApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// Components returns the wired application components
func (app *CountryCacheApp) Components() *AppComponents {
	return app.components
}
