// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/gsea-browser/internal/api"
	"github.com/starford/gsea-browser/internal/catalog"
	"github.com/starford/gsea-browser/internal/index"
	"github.com/starford/gsea-browser/internal/mcpserver"
	"github.com/starford/gsea-browser/internal/pipeline"
	"github.com/starford/gsea-browser/internal/sse"
	"github.com/starford/gsea-browser/internal/web"
)

var errConfigRequired = errors.New("config is required")

// core is what both the HTTP and MCP front ends read from.
type core struct {
	cat *catalog.FS
	pl  *pipeline.Pipeline
	db  *index.DB // nil when the index is disabled
}

// gene returns the index as an interface, nil when disabled.
func (c *core) gene() index.GeneIndex {
	if c.db == nil {
		return nil
	}
	return c.db
}

func (c *core) close() {
	if c.db != nil {
		_ = c.db.Close()
	}
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// newCore opens the data root and, if enabled, builds the catalog index.
func newCore(cfg *Config, logger *slog.Logger) (*core, error) {
	cat, err := catalog.NewFS(cfg.Data.Root)
	if err != nil {
		return nil, fmt.Errorf("init catalog: %w", err)
	}
	c := &core{cat: cat, pl: pipeline.New(cat, cfg.Table.PageSize)}
	if !cfg.Index.Enabled {
		return c, nil
	}

	db, err := index.Open(cfg.Index.DSN)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	c.db = db

	start := time.Now()
	if err := index.Sync(db, cat, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	} else {
		logger.Info("initial sync complete", slog.String("took", time.Since(start).String()))
	}
	return c, nil
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Run starts the HTTP dashboard with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(os.Stdout, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_root", cfg.Data.Root),
		slog.Bool("index", cfg.Index.Enabled),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := newCore(cfg, logger)
	if err != nil {
		return err
	}
	defer c.close()

	broker := sse.NewBroker(cfg.Events.Throttle)
	defer broker.Close()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", health)
	r.Get("/health/ready", health)
	r.Get("/", web.Handler(cfg.App.Title, "/api"))
	r.Mount("/api", api.NewRouter(c.pl, c.cat, c.gene(), broker))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Watch.Enabled && c.db != nil {
		g.Go(func() error {
			err := index.Watch(gCtx, c.db, c.cat, logger, broker.PublishCatalogEvent)
			if err != nil {
				// The dashboard still works without live updates.
				logger.Error("watcher stopped", slog.String("error", err.Error()))
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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher exits with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the browser tools over MCP on stdin/stdout. Logs go to
// stderr since stdout carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(os.Stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)

	c, err := newCore(cfg, logger)
	if err != nil {
		return err
	}
	defer c.close()

	if cfg.Watch.Enabled && c.db != nil {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := index.Watch(watchCtx, c.db, c.cat, logger, nil); err != nil {
				logger.Error("watcher stopped", slog.String("error", err.Error()))
			}
		}()
	}

	logger.Info("MCP server starting", slog.String("version", app.version), slog.String("data_root", c.cat.Root()))
	return mcpserver.New(c.pl, c.gene(), app.version).ServeStdio()
}
