// Package server initializes and runs the marketplace application: it
// opens the database pool, runs migrations, wires the services and the
// HTTP server together, and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mkravec/rastlinka/internal/logging"
	"github.com/mkravec/rastlinka/internal/server/auth"
	"github.com/mkravec/rastlinka/internal/server/config"
	"github.com/mkravec/rastlinka/internal/server/httpapi"
	"github.com/mkravec/rastlinka/internal/server/ratelimit"
	"github.com/mkravec/rastlinka/internal/server/repositories/repomanager"
	"github.com/mkravec/rastlinka/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	server *httpapi.Server
	close  func() error
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSONLogger()

	db, err := repomanager.Open(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		limiter, err = ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			db.Close()
			return nil, err
		}
		logger.Info(ctx, "rate limiting via redis", "addr", cfg.RedisAddr)
	} else {
		limiter = ratelimit.NewMemoryLimiter()
	}

	tokens := auth.NewTokenManager([]byte(cfg.SecretKey), cfg.TokenValidityDuration)
	authorizer := auth.NewAuthorizer(tokens, rm.Users(db))

	srv := httpapi.NewServer(cfg, httpapi.Deps{
		Users:      services.NewUserService(db, rm, tokens),
		Products:   services.NewProductService(db, rm, cfg),
		Orders:     services.NewOrderService(db, rm, cfg),
		Reviews:    services.NewReviewService(db, rm),
		Authorizer: authorizer,
		Limiter:    limiter,
		Logger:     logger,
	})

	return &App{
		config: cfg,
		logger: logger,
		server: srv,
		close:  db.Close,
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

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, "http server error", "error", err)
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
