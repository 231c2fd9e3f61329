// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
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
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/grapebaby/grape/internal/api"
	"github.com/grapebaby/grape/internal/backup"
	"github.com/grapebaby/grape/internal/inbox"
	"github.com/grapebaby/grape/internal/metrics"
	"github.com/grapebaby/grape/internal/sse"
	"github.com/grapebaby/grape/internal/storage"
	"github.com/grapebaby/grape/internal/store"
	"github.com/grapebaby/grape/internal/trackservice"
)

// stack is the set of components every command shares.
type stack struct {
	cfg     *Config
	logger  *slog.Logger
	db      *store.DB
	files   *storage.FS
	svc     *trackservice.Service
	closers []io.Closer
}

func (rt *stack) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		_ = rt.closers[i].Close()
	}
}

// newLogger installs a JSON slog handler writing to console and, when a
// log file is configured, to a rotated file as well.
func newLogger(cfg *Config, console io.Writer) (*slog.Logger, io.Closer) {
	var out io.Writer = console
	var closer io.Closer
	if cfg.App.Log.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.App.Log.File,
			MaxSize:    cfg.App.Log.MaxSizeMB,
			MaxBackups: cfg.App.Log.MaxBackups,
			MaxAge:     cfg.App.Log.MaxAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(console, lj)
		closer = lj
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger, closer
}

// start opens storage and builds the service. The caller must Close the
// returned stack.
func (a *application) start(ctx context.Context, svcOpts ...trackservice.Option) (*stack, error) {
	if a.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := a.config

	off, err := cfg.Tracking.Offset()
	if err != nil {
		return nil, fmt.Errorf("parse utc offset: %w", err)
	}
	birth, err := cfg.Tracking.Birth()
	if err != nil {
		return nil, fmt.Errorf("parse birth date: %w", err)
	}

	rt := &stack{cfg: cfg}
	var logCloser io.Closer
	rt.logger, logCloser = newLogger(cfg, a.console)
	if logCloser != nil {
		rt.closers = append(rt.closers, logCloser)
	}

	rt.logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_path", cfg.Data.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("utc_offset", off.String()),
		slog.String("subject_id", cfg.Tracking.SubjectID),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Data.Path, 0o755); err != nil {
		rt.Close()
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	rt.files, err = storage.NewFS(cfg.Data.Path)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}

	rt.db, err = store.Open(cfg.SQLite.Path)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("init store: %w", err)
	}
	rt.closers = append(rt.closers, rt.db)

	subject := trackservice.Subject{
		ID:        cfg.Tracking.SubjectID,
		Name:      cfg.Tracking.SubjectName,
		BirthDate: birth,
		Gender:    cfg.Tracking.Gender,
	}
	rt.svc = trackservice.New(rt.db, subject, off, svcOpts...)

	if err := rt.svc.EnsureSubject(ctx); err != nil {
		rt.Close()
		return nil, fmt.Errorf("ensure subject: %w", err)
	}
	return rt, nil
}

// Run starts the HTTP server and its background workers.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)

	// SSE broker.
	throttle := time.Duration(0)
	if app.config != nil {
		throttle = app.config.SSE.Throttle
	}
	broker := sse.NewBroker(throttle)
	defer broker.Close()

	rt, err := app.start(ctx, trackservice.WithChangeFunc(func(action, kind, id, date string) {
		broker.PublishRecordEvent(action, sse.RecordChange{Kind: kind, ID: id, Date: date})
	}))
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg, logger := rt.cfg, rt.logger

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := rt.db.Ping(r.Context()); err != nil {
			logger.Warn("readiness check failed", slog.String("error", err.Error()))
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", metrics.Handler())
	}

	// Mount API routes under /api, including the SSE endpoint.
	r.Mount("/api", api.NewRouter(rt.svc, broker))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(runCtx)

	if cfg.Inbox.Enabled {
		in := inbox.New(rt.svc, rt.db, rt.files, logger)
		g.Go(func() error {
			if _, err := in.Sync(gCtx); err != nil {
				logger.Warn("initial inbox sync failed", slog.String("error", err.Error()))
			}
			if err := in.Watch(gCtx); err != nil {
				logger.Error("inbox watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	if cfg.Backup.Enabled {
		writer := backup.NewWriter(rt.svc, rt.files, cfg.Backup.Keep, logger)
		g.Go(func() error {
			return writer.Loop(gCtx, cfg.Backup.Interval)
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
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

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		// Stop the inbox watcher and backup loop.
		cancel()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
