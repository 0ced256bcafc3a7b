// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/lexicon/internal/api"
	"github.com/starford/lexicon/internal/index"
	"github.com/starford/lexicon/internal/lexservice"
	"github.com/starford/lexicon/internal/mcpserver"
	"github.com/starford/lexicon/internal/metrics"
	"github.com/starford/lexicon/internal/sse"
	"github.com/starford/lexicon/internal/storage"
)

const metricsNamespace = "lexicon"

// components holds the components shared by the serve and mcp commands.
type components struct {
	cfg     *Config
	logger  *slog.Logger
	store   storage.Provider
	db      *index.DB
	metrics *metrics.Collector
	version string
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// setup initializes logging, the data directory, storage and the archive,
// then runs the initial sync.
func setup(app *application) (*components, error) {
	cfg := app.config

	logger := newLogger(app.logOutput, cfg.App.LogFormat, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("version", app.version),
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("snapshot", cfg.Snapshot.Path()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Snapshot.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Snapshot.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	return &components{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		db:      db,
		metrics: metrics.NewCollector(metricsNamespace),
		version: app.version,
	}, nil
}

func (rt *components) service(opts ...lexservice.Option) *lexservice.Service {
	opts = append([]lexservice.Option{
		lexservice.WithLogger(rt.logger),
		lexservice.WithMetrics(rt.metrics),
	}, opts...)
	svc := lexservice.NewService(rt.store, rt.db, rt.cfg.Snapshot.File, opts...)

	// A missing snapshot is normal before the simulation's first write.
	if _, err := svc.Sync(); err != nil {
		rt.logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	return svc
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := setup(app)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	cfg := rt.cfg
	logger := rt.logger

	broker := sse.NewBroker(cfg.SSE.GraphThrottle)
	defer broker.Close()

	svc := rt.service(lexservice.WithRecordCallback(func(row index.SnapshotRow) {
		broker.PublishSnapshotEvent(row.Generation, row.Checksum)
	}))

	apiRouter := api.NewRouter(svc, api.RouterOptions{
		AuthEnabled:      cfg.Auth.AuthEnabled(),
		Token:            cfg.Auth.Token,
		CORSOrigins:      cfg.App.HTTP.CORSOrigins,
		UploadsPerMinute: cfg.App.HTTP.UploadsPerMinute,
		Events:           broker,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(rt.metrics.Middleware)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := svc.Meta(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"waiting for snapshot"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())

	r.Mount("/api", apiRouter)

	if dir := cfg.App.HTTP.PublicDir; dir != "" {
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			r.Handle("/*", http.FileServer(http.Dir(dir)))
		} else {
			logger.Warn("public dir not found, static hosting disabled", slog.String("dir", dir))
		}
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
		// No WriteTimeout: /api/events streams indefinitely.
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Snapshot.Watch {
		g.Go(func() error {
			if err := index.Watch(gCtx, rt.db, rt.store, cfg.Snapshot.File, logger, svc.Recorded); err != nil {
				logger.Error("watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// SSE handlers only return once their subscriber channel closes.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		// A non-nil return cancels gCtx, which stops the watcher.
		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools on stdin/stdout. Logs go to app.logOutput,
// which must not be stdout.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := setup(app)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	srv := mcpserver.New(rt.service(), rt.version)
	rt.logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}
