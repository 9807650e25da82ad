package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/betoojeda/tienda-facil/internal/data/db"
	"github.com/betoojeda/tienda-facil/internal/http"
	"github.com/betoojeda/tienda-facil/internal/jobs"
	"github.com/betoojeda/tienda-facil/internal/observability"
	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
	"github.com/betoojeda/tienda-facil/internal/platform/gcp"
	"github.com/betoojeda/tienda-facil/internal/realtime"
	"github.com/betoojeda/tienda-facil/internal/realtime/bus"
	"github.com/betoojeda/tienda-facil/internal/services"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	SSEHub   *realtime.SSEHub
	Server   *http.Server

	dbs          *db.DatabaseService
	bus          bus.Bus
	sweeper      *jobs.Sweeper
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
	sweeperDone  <-chan struct{}
}

// New builds the application from the environment: database, services and
// the HTTP server. Nothing runs until Start.
func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := build(ctx, cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, cfg Config, log *logger.Logger) (*App, error) {
	a := &App{Log: log, Cfg: cfg}
	if cfg.UsesDefaultSecret() {
		log.Warn("JWT_SECRET_KEY not set; using the development default")
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel())

	a.dbs, err = db.NewDatabaseService(cfg.DBOptions(), log)
	if err != nil {
		a.closeResources()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(a.dbs.DB()); err != nil {
		a.closeResources()
		return nil, err
	}
	a.DB = a.dbs.DB()
	a.Repos = wireRepos(a.DB, log)

	a.SSEHub = realtime.NewSSEHub(log)
	var fwd realtime.Forwarder
	if cfg.RedisAddr != "" {
		a.bus, err = bus.NewRedisBus(cfg.RedisAddr, cfg.RedisChannel, log)
		if err != nil {
			a.closeResources()
			return nil, fmt.Errorf("init redis bus: %w", err)
		}
		fwd = a.bus
	}

	bucket, err := gcp.NewBucketService(log, cfg.StorageConfig())
	if err != nil {
		a.closeResources()
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	receipts, err := services.NewReceiptRenderer(cfg.ReceiptFont, loc)
	if err != nil {
		a.closeResources()
		return nil, err
	}
	llm, err := services.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Warn("Gemini client unavailable; assistant will apologise", "error", err)
	}
	if llm == nil {
		log.Info("Assistant running without a model")
	}

	a.Services = wireServices(a.DB, log, a.Repos, serviceDeps{
		cfg:      cfg,
		loc:      loc,
		events:   realtime.NewPublisher(a.SSEHub, fwd, log),
		bucket:   bucket,
		receipts: receipts,
		llm:      llm,
	})

	if err := a.Services.Admin.EnsureSuperAdmin(ctx, cfg.AdminPassword); err != nil {
		a.closeResources()
		return nil, err
	}
	if err := a.Services.Admin.LoadPlans(ctx, cfg.PlansFile); err != nil {
		a.closeResources()
		return nil, err
	}

	a.sweeper = jobs.NewSweeper(log, a.Services.Maintenance, cfg.ExpirySweepInterval)
	a.Server = wireServer(a.DB, log, cfg, a.Services, a.SSEHub)
	return a, nil
}

// Start launches the background pieces: the bus subscriber and the sweeper.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	if a.bus != nil {
		if err := a.bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			cancel()
			a.cancel = nil
			return fmt.Errorf("start event forwarder: %w", err)
		}
	}
	a.sweeperDone = a.sweeper.Start(ctx)
	return nil
}

// Run serves HTTP until ctx ends.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("Listening", "addr", addr)
	return a.Server.Run(ctx, addr, a.Cfg.ShutdownGrace)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
		if a.sweeperDone != nil {
			<-a.sweeperDone
		}
	}
	a.closeResources()
	if a.Log != nil {
		a.Log.Sync()
	}
}

func (a *App) closeResources() {
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			a.Log.Warn("Closing redis bus failed", "error", err)
		}
		a.bus = nil
	}
	if a.dbs != nil {
		if err := a.dbs.Close(); err != nil {
			a.Log.Warn("Closing database failed", "error", err)
		}
		a.dbs = nil
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("Flushing traces failed", "error", err)
		}
		a.otelShutdown = nil
	}
}
