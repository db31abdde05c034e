package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/lgrosz/climb-catalog/internal/data/db"
	"github.com/lgrosz/climb-catalog/internal/data/repos"
	httpx "github.com/lgrosz/climb-catalog/internal/http"
	"github.com/lgrosz/climb-catalog/internal/observability"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
)

type App struct {
	Log        *logger.Logger
	Cfg        Config
	DB         *gorm.DB
	Router     *gin.Engine
	Metrics    *observability.Metrics
	Repos      repos.Set
	Aggregates Aggregates
	Services   Services
	Publishers Publishers

	store        db.Service
	otelShutdown func(context.Context) error
}

// New opens every dependency, migrates and seeds the schema, and builds the
// router. Nothing listens until Run.
func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)
	metrics := observability.Init(log)

	store, err := OpenDatabase(log, cfg)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	theDB := store.DB()
	metrics.RegisterDBStats(log, theDB)

	pubs, err := wirePublishers(ctx, log, cfg, metrics)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	reposet := repos.NewSet(theDB, log)
	aggs := wireAggregates(theDB, log, &reposet, metrics, pubs.Fanout)
	svcs := wireServices(theDB, log, reposet, aggs)
	handlers := wireHandlers(theDB, log, svcs, aggs)
	router := wireRouter(log, cfg, metrics, handlers)

	return &App{
		Log:          log,
		Cfg:          cfg,
		DB:           theDB,
		Router:       router,
		Metrics:      metrics,
		Repos:        reposet,
		Aggregates:   aggs,
		Services:     svcs,
		Publishers:   pubs,
		store:        store,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP until ctx is cancelled or the listener fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	if a.Publishers.Bus != nil {
		a.Metrics.StartRedisCollector(gctx, a.Log, a.Publishers.Bus.Client())
	}
	g.Go(func() error {
		a.Log.Info("HTTP listening", "addr", a.Cfg.HTTPAddr)
		srv := &httpx.Server{Engine: a.Router}
		return srv.Run(gctx, a.Cfg.HTTPAddr)
	})
	return g.Wait()
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	a.Publishers.Close(ctx)
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Log.Warn("close database", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
	}
	a.Log.Sync()
}
