package routes

import (
	"log"

	"skill-resolve/internal/config"
	"skill-resolve/internal/database"
	"skill-resolve/internal/delivery/http/handler"
	"skill-resolve/internal/infrastructure/cache"
	"skill-resolve/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	cfg    config.Config
	db     database.DB
	cache  *cache.Redis
	hub    *ws.Hub
	logger *log.Logger

	health *handler.HealthHandler
}

func NewRegistry(cfg config.Config, db database.DB, cacheClient *cache.Redis, hub *ws.Hub, logger *log.Logger) *Registry {
	return &Registry{
		cfg:    cfg,
		db:     db,
		cache:  cacheClient,
		hub:    hub,
		logger: logger,
		health: handler.NewHealthHandler(db),
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.health.RegisterRoutes(app)

	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.cfg, r.db, r.cache, r.logger)

	if r.hub != nil {
		wsHandler := ws.NewHandler(r.hub, r.logger)
		app.Get("/ws/imports", wsHandler.HandleImportWS)
	}
}
