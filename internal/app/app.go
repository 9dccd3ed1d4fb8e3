package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/codequest-labs/ai-tutorial-progress/internal/bootstrap"
	"github.com/codequest-labs/ai-tutorial-progress/internal/config"
	"github.com/codequest-labs/ai-tutorial-progress/internal/server"
	"github.com/codequest-labs/ai-tutorial-progress/pkg/catalog"
	"github.com/codequest-labs/ai-tutorial-progress/pkg/notify"
	"github.com/codequest-labs/ai-tutorial-progress/pkg/progress"
	"github.com/codequest-labs/ai-tutorial-progress/pkg/store"
	"github.com/codequest-labs/ai-tutorial-progress/pkg/tutor"
)

// App wires configuration, storage, catalog, rules and the controller.
type App struct {
	cfg               *config.Config
	backend           store.Backend
	catalog           *catalog.Catalog
	controller        *tutor.Controller
	bus               *notify.Bus
	recorder          *notify.Recorder
	health            *store.HealthChecker
	metricsServer     *server.MetricsServer
	shutdownTelemetry func(context.Context) error
	now               func() time.Time
}

// Option configures an App.
type Option func(*options)

type options struct {
	backend store.Backend
	now     func() time.Time
}

// WithBackend bypasses STORE_BACKEND and uses backend.
func WithBackend(backend store.Backend) Option {
	return func(o *options) {
		o.backend = backend
	}
}

// WithClock replaces time.Now in the controller.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New builds an App from cfg.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := &options{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	app := &App{
		cfg:      cfg,
		recorder: &notify.Recorder{},
		now:      o.now,
	}
	app.bus = notify.NewBus(notify.LogNotifier{}, app.recorder)

	if cfg.OtelEnabled {
		shutdown, err := server.SetupTelemetry(ctx, cfg.ServiceName, cfg.Environment, cfg.ZipkinEndpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to setup telemetry: %w", err)
		}
		app.shutdownTelemetry = shutdown
	}

	app.backend = o.backend
	if app.backend == nil {
		backend, err := bootstrap.InitStoreBackend(ctx, cfg)
		if err != nil {
			logrus.Errorf("falling back to in-memory store: %v", err)
			app.bus.Notify(notify.NewEvent(notify.TypeStorageFailure, o.now(), tutor.StorageFailureMessage))
			backend = store.NewMemoryBackend()
		}
		app.backend = backend
	}
	app.health = store.NewHealthChecker(app.backend)

	cat, err := bootstrap.InitCatalog(cfg.CatalogExtensionPath)
	if err != nil {
		return nil, fmt.Errorf("failed to init catalog: %w", err)
	}
	app.catalog = cat

	engine, _, err := bootstrap.InitRuleEngine(cat)
	if err != nil {
		return nil, fmt.Errorf("failed to init rule engine: %w", err)
	}

	adapter := store.NewAdapter(app.backend)
	adapter.OnFailure(tutor.StorageFailureNotifier(app.bus, o.now))
	repo := progress.NewRepository(adapter)

	app.controller = tutor.New(ctx, repo, cat, engine,
		tutor.WithClock(o.now),
		tutor.WithNotifier(app.bus),
	)

	logrus.Debug("application initialized")
	return app, nil
}

// SetupLogging applies LOG_LEVEL and LOG_FORMAT to the standard logger.
// Logs go to stderr so command output on stdout stays machine readable.
func SetupLogging(cfg *config.Config) {
	logrus.SetOutput(os.Stderr)
	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// Controller returns the progress controller.
func (a *App) Controller() *tutor.Controller {
	return a.controller
}

// Catalog returns the loaded lesson and achievement catalog.
func (a *App) Catalog() *catalog.Catalog {
	return a.catalog
}

// Subscribe adds n to the event bus.
func (a *App) Subscribe(n notify.Notifier) {
	a.bus.Subscribe(n)
}

// Events returns and clears the events raised since the last call.
func (a *App) Events() []notify.Event {
	return a.recorder.Drain()
}

// Close releases the store and flushes telemetry.
func (a *App) Close(ctx context.Context) error {
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			logrus.Errorf("metrics server shutdown error: %v", err)
		}
	}

	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			logrus.Errorf("store close error: %v", err)
		}
	}

	if a.shutdownTelemetry != nil {
		if err := a.shutdownTelemetry(ctx); err != nil {
			logrus.Errorf("telemetry shutdown error: %v", err)
		}
	}
	return nil
}
