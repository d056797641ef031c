// Package server wires the PaperTrail API server together: database and
// migrations, services, the HTTP surface and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avoronovs/papertrail/internal/logging"
	"github.com/avoronovs/papertrail/internal/server/config"
	"github.com/avoronovs/papertrail/internal/server/httpapi"
	"github.com/avoronovs/papertrail/internal/server/repositories/repomanager"
	"github.com/avoronovs/papertrail/internal/server/services"
)

// tombstonePurgeInterval is how often the retention sweep runs.
const tombstonePurgeInterval = 24 * time.Hour

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler http.Handler
	sync    *services.SyncService
}

// NewApp opens the database, runs migrations and builds the full service and
// handler stack.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	userService := services.NewUserService(db, rm, cfg)
	documentService := services.NewDocumentService(db, rm)
	deviceService := services.NewDeviceService(db, rm)
	syncService := services.NewSyncService(db, rm, cfg, logger)
	imageService := services.NewImageService(cfg)

	handler := httpapi.NewHandler(
		userService, documentService, deviceService, syncService, imageService,
		cfg, logger)

	return &App{
		config:  cfg,
		logger:  logger,
		db:      db,
		handler: handler.Routes(),
		sync:    syncService,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// runTombstonePurge sweeps expired tombstones once a day until ctx ends.
func (app *App) runTombstonePurge(ctx context.Context) {
	ticker := time.NewTicker(tombstonePurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := app.sync.PurgeTombstones(ctx); err != nil {
				app.logger.Error(ctx, "tombstone purge failed", "error", err)
			}
		}
	}
}

// Run serves HTTP until the context is cancelled or a signal arrives, then
// shuts down gracefully.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	server := &http.Server{
		Addr:         app.config.EndpointAddr,
		Handler:      app.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go app.runTombstonePurge(ctx)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "shutdown error", "error", err)
	}
	return app.db.Close()
}
