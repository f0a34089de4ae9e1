package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sprintflow/sprintflow-backend/internal/data/repos"
	"github.com/sprintflow/sprintflow-backend/internal/db"
	sfhttp "github.com/sprintflow/sprintflow-backend/internal/http"
	"github.com/sprintflow/sprintflow-backend/internal/pkg/logger"
	"github.com/sprintflow/sprintflow-backend/internal/realtime"
	"github.com/sprintflow/sprintflow-backend/internal/realtime/bus"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    repos.Set
	Services Services
	Hub      *realtime.Hub
	Bus      bus.Bus

	cancel context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	hub := realtime.NewHub(log)

	var b bus.Bus
	if cfg.RedisAddr != "" {
		b, err = bus.NewRedisBus(log)
		if err != nil {
			log.Sync()
			return nil, fmt.Errorf("init redis bus: %w", err)
		}
	} else {
		log.Info("REDIS_ADDR not set, using in-process event bus")
		b = bus.NewLocalBus()
	}

	reposet := repos.NewSet(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, b)
	handlerset := wireHandlers(log, serviceset, hub)
	middleware := wireMiddleware(log, serviceset)

	router := sfhttp.NewRouter(sfhttp.RouterConfig{
		Log:               log,
		AuthMiddleware:    middleware.Auth,
		AuthHandler:       handlerset.Auth,
		UserHandler:       handlerset.User,
		SprintHandler:     handlerset.Sprint,
		PointsHandler:     handlerset.Points,
		CompletionHandler: handlerset.Completion,
		RealtimeHandler:   handlerset.Realtime,
		HealthHandler:     handlerset.Health,
	})

	return &App{
		Log:      log,
		DB:       theDB,
		Router:   router,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		Hub:      hub,
		Bus:      b,
	}, nil
}

// Start wires the bus into the SSE hub so published events reach clients.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	return a.Bus.StartForwarder(ctx, func(m realtime.Message) {
		a.Hub.Broadcast(m)
	})
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(":" + a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			a.Log.Warn("closing event bus", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
