package routes

import (
	"log"

	"skill-resolve/internal/config"
	"skill-resolve/internal/database"
	v1 "skill-resolve/internal/delivery/http/routes/v1"
	"skill-resolve/internal/infrastructure/cache"

	"github.com/gofiber/fiber/v3"
)

func RegisterV1(r fiber.Router, cfg config.Config, db database.DB, cacheClient *cache.Redis, logger *log.Logger) {
	if r == nil {
		return
	}

	v1.Register(r, cfg, db, cacheClient, logger)
}
