// Package server initializes and runs the teamboard backend. It opens the
// database, picks the change feed and revocation store from configuration,
// wires the services and runs the gRPC and ops servers until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/teamboard/internal/logging"
	"github.com/dmitrijs2005/teamboard/internal/server/changefeed"
	"github.com/dmitrijs2005/teamboard/internal/server/config"
	"github.com/dmitrijs2005/teamboard/internal/server/metrics"
	"github.com/dmitrijs2005/teamboard/internal/server/ops"
	"github.com/dmitrijs2005/teamboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/teamboard/internal/server/revocation"
	"github.com/dmitrijs2005/teamboard/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/teamboard/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	feed        changefeed.Feed
	revoked     revocation.Store
	redis       *redis.Client
	metrics     *metrics.Metrics
	services    gs.Services
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: repomanager.NewPostgresRepositoryManager(),
		metrics:     metrics.New(),
	}

	if err := app.initFeed(); err != nil {
		app.close(ctx)
		return nil, err
	}
	if err := app.initRevocation(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}

	app.initServices()
	return app, nil
}

// initFeed uses NATS when a URL is configured and the in-process feed
// otherwise.
func (app *App) initFeed() error {
	if app.config.NATSURL == "" {
		app.feed = changefeed.NewMemory()
		return nil
	}
	feed, err := changefeed.NewNATS(app.config.NATSURL, app.logger)
	if err != nil {
		return err
	}
	app.feed = feed
	return nil
}

// initRevocation uses Redis when an address is configured and keeps the list
// in memory otherwise.
func (app *App) initRevocation(ctx context.Context) error {
	if app.config.RedisAddr == "" {
		app.revoked = revocation.NewMemory()
		return nil
	}
	app.redis = redis.NewClient(&redis.Options{
		Addr:     app.config.RedisAddr,
		Password: app.config.RedisPassword,
	})
	if err := app.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis init error: %w", err)
	}
	app.revoked = revocation.NewRedis(app.redis)
	return nil
}

func (app *App) initServices() {
	access := services.NewAccess(app.repomanager, app.config)
	app.services = gs.Services{
		Identity:   services.NewIdentityService(app.db, app.repomanager, app.config, app.revoked, app.logger),
		Profiles:   services.NewProfileService(app.db, app.repomanager, access),
		Posts:      services.NewPostService(app.db, app.repomanager, app.feed, app.logger),
		Tasks:      services.NewTaskService(app.db, app.repomanager, access, app.feed, app.logger),
		EmailLists: services.NewEmailListService(app.db, app.repomanager, access, app.config),
		Batch:      services.NewBatchService(app.db, app.repomanager, access, app.feed, app.logger),
		Avatars:    services.NewAvatarService(app.config),
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

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.services, gs.Options{
		Feed:          app.feed,
		Revoked:       app.revoked,
		Metrics:       app.metrics,
		SecretKey:     app.config.SecretKey,
		AuthRateLimit: app.config.AuthRateLimit,
		AuthRateBurst: app.config.AuthRateBurst,
	})

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startOpsServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := ops.NewServer(app.config.EndpointAddrOps, app.db, app.metrics.Handler(), app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run migrates the schema and serves until a signal arrives or one of the
// servers fails.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.close(ctx)

	app.logger.Info(ctx, "Starting app...")

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startOpsServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.logger.Info(ctx, "App stopped")
	return nil
}

func (app *App) close(ctx context.Context) {
	if app.feed != nil {
		if err := app.feed.Close(); err != nil {
			app.logger.Warn(ctx, "close change feed", "error", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "close redis", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "close db", "error", err)
	}
}
