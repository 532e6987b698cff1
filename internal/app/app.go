package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/mastery-engine/internal/db"
	httpserver "github.com/yungbote/mastery-engine/internal/http"
	"github.com/yungbote/mastery-engine/internal/pkg/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	Server   *httpserver.Server
}

func New() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

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

	repos := wireRepos(theDB, log)
	services, err := wireServices(theDB, log, cfg, repos)
	if err != nil {
		log.Sync()
		return nil, err
	}
	handlers := wireHandlers(log, services, repos)

	server := httpserver.NewServer(httpserver.RouterConfig{
		Log:             log,
		HealthHandler:   handlers.Health,
		SessionHandler:  handlers.Session,
		MaterialHandler: handlers.Material,
	})

	return &App{
		Log:      log,
		DB:       theDB,
		Cfg:      cfg,
		Repos:    repos,
		Services: services,
		Server:   server,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Starting HTTP server", "addr", a.Cfg.HTTPAddr)
	return a.Server.Run(a.Cfg.HTTPAddr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Services.Bus != nil {
		_ = a.Services.Bus.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
