package v1

import (
	"log"

	"skill-resolve/internal/config"
	"skill-resolve/internal/database"
	"skill-resolve/internal/delivery/http/handler"
	"skill-resolve/internal/delivery/http/middleware"
	"skill-resolve/internal/domain/resolution"
	"skill-resolve/internal/infrastructure/cache"
	"skill-resolve/internal/infrastructure/embedding"
	"skill-resolve/internal/pkg/jwt"
	"skill-resolve/internal/repository"
	"skill-resolve/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

func Register(r fiber.Router, cfg config.Config, db database.DB, cacheClient *cache.Redis, logger *log.Logger) {
	if r == nil {
		return
	}
	if logger == nil {
		logger = log.Default()
	}

	skillRepo := repository.NewPostgresSkillRepository(db)
	aliasRepo := repository.NewPostgresAliasRepository(db)
	embeddingRepo := repository.NewPostgresEmbeddingRepository(db)
	importJobRepo := repository.NewPostgresImportJobRepository(db)

	provider, downgradeReason := embedding.NewProvider(cfg.Embedding)

	opts := resolution.Options{
		ModelName:           cfg.Embedding.Model,
		AutoAcceptThreshold: cfg.Embedding.AutoAcceptThreshold,
		ReviewThreshold:     cfg.Embedding.ReviewThreshold,
		TopK:                cfg.Embedding.TopK,
	}
	if provider != nil {
		opts.ModelName = provider.ModelName()
	}

	builder := usecase.NewResolverBuilder(skillRepo, aliasRepo, embeddingRepo, provider, opts, downgradeReason, logger)

	resolveUC := usecase.NewResolutionUsecase(builder)
	skillUC := usecase.NewSkillUsecase(skillRepo)
	aliasUC := usecase.NewAliasUsecase(skillRepo, aliasRepo)
	syncUC := usecase.NewEmbeddingSyncUsecase(skillRepo, aliasRepo, embeddingRepo, provider, cacheClient, logger)
	importUC := usecase.NewTokenImportUsecase(importJobRepo, builder, cacheClient, logger)

	resolveHandler := handler.NewResolveHandler(resolveUC)
	skillHandler := handler.NewSkillHandler(skillUC)
	aliasHandler := handler.NewAliasHandler(aliasUC)
	syncHandler := handler.NewEmbeddingSyncHandler(syncUC)
	importHandler := handler.NewImportHandler(importUC)

	resolveHandler.RegisterRoutes(r)

	admin := r
	if cfg.Auth.AccessSecret != "" {
		jwtSvc := jwt.NewHMACService(cfg.Auth.AccessSecret, cfg.Auth.AccessExpiresIn)
		authMw := middleware.NewAuthMiddleware(jwtSvc)
		admin = r.Group("", authMw.Middleware())
	} else {
		logger.Printf("[Routes] JWT_ACCESS_SECRET not set, admin routes are unauthenticated")
	}

	skillHandler.RegisterRoutes(admin)
	aliasHandler.RegisterRoutes(admin)
	syncHandler.RegisterRoutes(admin)
	importHandler.RegisterRoutes(admin)
}
