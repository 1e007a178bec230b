package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/appregistry-backend/internal/data/db"
	apphttp "github.com/yungbote/appregistry-backend/internal/http"
	"github.com/yungbote/appregistry-backend/internal/observability"
	"github.com/yungbote/appregistry-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *db.Service
	Metrics  *observability.Metrics
	Repos    Repos
	Services Services
	Server   *apphttp.Server

	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	LoadDotEnv()

	bootLog, err := logger.New(envMode())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	bootLog.Info("Loading configuration...")
	cfg, err := LoadConfig(bootLog)
	if err != nil {
		bootLog.Sync()
		return nil, err
	}
	log := bootLog.With("app", cfg.Otel.ServiceName)

	a := &App{Log: log, Cfg: cfg, Metrics: observability.NewMetrics()}
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel)

	if cfg.DB.Driver != DriverMemory {
		dbs, err := db.Open(cfg.DB, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init database: %w", err)
		}
		a.DB = dbs
	}

	clock := time.Now
	a.Repos = wireRepos(a.DB, log, a.Metrics, clock)

	a.Services, err = wireServices(ctx, log, cfg, a.Repos, a.Metrics, clock)
	if err != nil {
		a.Close()
		return nil, err
	}

	handlers := wireHandlers(log, a.Services, a.DB)
	middleware := wireMiddleware(log, cfg)
	a.Server = wireServer(log, cfg, a.Metrics, handlers, middleware)
	return a, nil
}

// Run serves HTTP until ctx is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTPAddr)
		return a.Server.Run(gctx, a.Cfg.ShutdownTimeout)
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("Shutting down...")
		return nil
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.Services.EventSink != nil {
		if err := a.Services.EventSink.Close(); err != nil {
			a.Log.Warn("close change event sink", "error", err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("close database", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
