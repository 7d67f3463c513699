// Package cli wires configuration, stores, the engine and the transports
// together for the promptflow command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aretw0/promptflow"
	"github.com/aretw0/promptflow/internal/config"
	"github.com/aretw0/promptflow/pkg/observability"
	"github.com/aretw0/promptflow/pkg/session"
)

// App is a fully wired promptflow instance.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Engine   *promptflow.Engine
	Sessions *session.Manager
	Registry *prometheus.Registry

	stores   *config.Stores
	closers  []func(context.Context) error
	traceOut io.Closer
}

// NewApp opens the configured stores and builds the engine and session manager.
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{
		Config:   cfg,
		Logger:   cfg.Logger(),
		Registry: prometheus.NewRegistry(),
	}

	if err := app.setupTracing(); err != nil {
		return nil, err
	}

	seq, err := cfg.Sequence()
	if err != nil {
		app.Close(ctx)
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	stores, err := cfg.OpenStores(ctx, app.Logger)
	if err != nil {
		app.Close(ctx)
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store, err)
	}
	app.stores = stores

	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewMetrics(app.Registry)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}

	app.Engine, err = promptflow.New(
		promptflow.WithSequence(seq),
		promptflow.WithFlowStore(stores.Flows),
		promptflow.WithProfileStore(stores.Profiles),
		promptflow.WithLocale(cfg.Locale),
		promptflow.WithLogger(app.Logger),
		promptflow.WithLifecycleHooks(observability.Combine(
			metrics.Hooks(),
			observability.LogHooks(app.Logger),
		)),
	)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}

	sessionOpts := []session.Option{
		session.WithLogger(app.Logger),
		session.WithLockTTL(cfg.LockTTL),
	}
	if stores.Locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(stores.Locker))
	}
	app.Sessions = session.NewManager(app.Engine, stores.Flows, stores.Profiles, sessionOpts...)

	app.Logger.Debug("promptflow ready",
		"store", cfg.Store,
		"questions", seq.Len(),
		"distributed_lock", stores.Locker != nil,
	)
	return app, nil
}

func (a *App) setupTracing() error {
	var w io.Writer
	switch a.Config.TraceOutput {
	case "":
		return nil
	case "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(a.Config.TraceOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open trace output: %w", err)
		}
		a.traceOut = f
		w = f
	}

	shutdown, err := observability.InitTracing("promptflow", promptflow.Version, w)
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	a.closers = append(a.closers, shutdown)
	return nil
}

// Close flushes traces and releases store connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c(ctx))
	}
	if a.stores != nil {
		errs = append(errs, a.stores.Close())
	}
	if a.traceOut != nil {
		errs = append(errs, a.traceOut.Close())
	}
	return errors.Join(errs...)
}
