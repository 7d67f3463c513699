package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	httpadapter "github.com/aretw0/promptflow/pkg/adapters/http"
	"github.com/aretw0/promptflow/pkg/observability"
)

// ShutdownTimeout bounds how long in-flight requests may take after a stop signal.
const ShutdownTimeout = 5 * time.Second

// Handler returns the HTTP API of app.
func (a *App) Handler() http.Handler {
	return httpadapter.NewHandler(a.Sessions, a.Engine.Sequence(),
		httpadapter.WithLogger(a.Logger),
		httpadapter.WithSanitizer(a.Config.Sanitizer()),
		httpadapter.WithMetricsHandler(observability.Handler(a.Registry)),
	)
}

// Serve runs the HTTP API on ln until ctx is canceled, then shuts down gracefully.
func Serve(ctx context.Context, app *App, ln net.Listener) error {
	srv := &http.Server{
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		app.Logger.Info("Starting promptflow server", "address", ln.Addr().String(), "store", app.Config.Store)
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		app.Logger.Info("Start shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Warn("Graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		app.Logger.Info("promptflow server stopped gracefully")
		return nil
	}
}
