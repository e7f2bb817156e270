package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/juju/clock"
	"github.com/petcare/catalog-api/internal/config"
	"github.com/petcare/catalog-api/internal/platform/cache"
	"github.com/petcare/catalog-api/internal/platform/filestore"
	"github.com/petcare/catalog-api/internal/platform/memory"
	"github.com/petcare/catalog-api/internal/platform/metrics"
	"github.com/petcare/catalog-api/internal/platform/sqlstore"
	"github.com/petcare/catalog-api/internal/query"
	"github.com/petcare/catalog-api/internal/service"
	"github.com/petcare/catalog-api/internal/service/auth"
	"github.com/petcare/catalog-api/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// sqliteFileName is the database file created under the data directory.
const sqliteFileName = "catalog.db"

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	clock  clock.Clock

	// store is the fully decorated record store for the configured collection
	store store.RecordStore

	// registry exposes store metrics on /metrics
	registry *prometheus.Registry

	offerings  service.OfferingService
	jwtService auth.JWTService

	// closers are released in reverse order by cleanup
	closers []io.Closer
}

// newApplication creates a new application instance with all dependencies initialized.
// On error every resource opened so far is released.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, clk clock.Clock) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   logger,
		clock:    clk,
		registry: prometheus.NewRegistry(),
	}

	if err := app.init(ctx); err != nil {
		app.cleanup()
		return nil, err
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

func (app *application) init(ctx context.Context) error {
	cfg := app.config

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth, app.clock)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	base, err := app.openStore(ctx)
	if err != nil {
		return err
	}
	s := base

	if cfg.Cache.Enabled() {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisAddress, cfg.Cache.TTL())
		if err != nil {
			return fmt.Errorf("failed to initialize cache: %w", err)
		}
		app.closers = append(app.closers, rc)
		s = cache.NewRecordStore(s, rc, cfg.Store.Collection, app.logger)
		app.logger.Info("Redis cache enabled", "ttl", cfg.Cache.TTL())
	}

	collector := metrics.NewCollector()
	if err := app.registry.Register(collector); err != nil {
		return fmt.Errorf("failed to register store metrics: %w", err)
	}
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.store = metrics.NewRecordStore(s, collector, cfg.Store.Collection, app.clock)

	engine := query.NewEngine(app.store, nil, app.logger)
	records, err := service.NewRecordService(app.store, engine, cfg.Store.Collection, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create record service: %w", err)
	}
	app.offerings, err = service.NewOfferingService(records, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create offering service: %w", err)
	}
	return nil
}

// openStore returns the undecorated store for the configured backend.
func (app *application) openStore(ctx context.Context) (store.RecordStore, error) {
	sc := app.config.Store
	log := app.logger.With("store_backend", sc.Backend)

	switch sc.Backend {
	case config.BackendMemory:
		log.Warn("Using the in-memory store; records are lost on restart")
		return memory.NewRecordStore(sc.Collection, app.clock, app.logger), nil

	case config.BackendCSV:
		s, err := filestore.NewRecordStore(filestore.Config{
			Dir:         sc.DataDir,
			Collection:  sc.Collection,
			LockTimeout: sc.LockTimeout,
			Clock:       app.clock,
			Logger:      app.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV store: %w", err)
		}
		log.Info("CSV store opened", "path", s.Path())
		return s, nil

	case config.BackendSQLite:
		if err := os.MkdirAll(sc.DataDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		path := filepath.Join(sc.DataDir, sqliteFileName)
		return app.openSQL(ctx, sqlstore.SQLiteDSN(path), sqlstore.SQLite)

	case config.BackendPostgres:
		return app.openSQL(ctx, app.config.Database.URL, sqlstore.Postgres)

	default:
		return nil, fmt.Errorf("unknown store backend %q", sc.Backend)
	}
}

func (app *application) openSQL(ctx context.Context, dsn string, d sqlstore.Dialect) (store.RecordStore, error) {
	s, err := sqlstore.Open(ctx, dsn, sqlstore.Config{
		Dialect:    d,
		Collection: app.config.Store.Collection,
		Clock:      app.clock,
		Logger:     app.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", d.Name(), err)
	}
	app.closers = append(app.closers, s)
	app.logger.Info("Database store opened", "dialect", d.Name())
	return s, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Error("Error closing resource", "error", err)
		}
	}
	app.closers = nil
}
