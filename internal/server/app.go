// Package server initializes and runs the blog application server. It wires
// the configured asset backend and the Postgres repositories to the services,
// starts the HTTP endpoint and the orphan sweeper, and handles graceful
// shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/blogkeeper/internal/logging"
	"github.com/dmitrijs2005/blogkeeper/internal/server/assets"
	"github.com/dmitrijs2005/blogkeeper/internal/server/config"
	"github.com/dmitrijs2005/blogkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/blogkeeper/internal/server/services"
	"github.com/dmitrijs2005/blogkeeper/internal/server/shared/db"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	manager     db.RepositoryManager
	assetStore  assets.Store
	userService *services.UserService
	postService *services.PostService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	rm, err := db.NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store, err := newAssetStore(ctx, cfg, rm)
	if err != nil {
		return nil, fmt.Errorf("asset store init error: %w", err)
	}

	us := services.NewUserService(rm.Users(), cfg)
	ps := services.NewPostService(rm.Posts(), store, logger)

	return &App{
		config:      cfg,
		logger:      logger,
		manager:     rm,
		assetStore:  store,
		userService: us,
		postService: ps,
	}, nil
}

func newAssetStore(ctx context.Context, cfg *config.Config, rm db.RepositoryManager) (assets.Store, error) {
	switch cfg.AssetBackend {
	case config.AssetBackendPostgres:
		return assets.NewPostgresStore(rm.Conn()), nil
	case config.AssetBackendS3:
		return assets.NewS3Store(ctx, assets.S3Config{
			RootUser:     cfg.S3RootUser,
			RootPassword: cfg.S3RootPassword,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
	case config.AssetBackendMemory:
		return assets.NewMemStore(), nil
	default:
		return nil, fmt.Errorf("unknown asset backend %q", cfg.AssetBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := httpapi.NewHTTPServer(app.config.EndpointAddr, app.logger,
		app.userService, app.postService, app.config.CORSAllowedOrigin)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// startSweeper periodically reclaims assets no post references. Disabled
// when SweepInterval is zero.
func (app *App) startSweeper(ctx context.Context) {

	if app.config.SweepInterval <= 0 {
		return
	}

	ticker := time.NewTicker(app.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := app.postService.SweepOrphans(ctx, app.config.SweepMinAge); err != nil {
				app.logger.Error(ctx, "orphan sweep failed", "error", err.Error())
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startSweeper(ctx)
	}()

	wg.Wait()

	if err := app.assetStore.Close(); err != nil {
		app.logger.Error(ctx, "error closing asset store", "error", err.Error())
	}
	if err := app.manager.Close(); err != nil {
		app.logger.Error(ctx, "error closing db", "error", err.Error())
	}
}
