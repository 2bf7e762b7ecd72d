package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"skill-resolve/internal/app"
	"skill-resolve/internal/config"
	"skill-resolve/internal/database/migration"
	"skill-resolve/internal/infrastructure/embedding"
	"skill-resolve/internal/repository"
	"skill-resolve/internal/usecase"

	"github.com/google/uuid"
)

// embedsync regenerates stale skill embeddings from the command line,
// typically after a bulk taxonomy change.
func main() {
	ids := flag.String("ids", "", "comma-separated skill ids (empty = whole catalog)")
	timeout := flag.Duration("timeout", 30*time.Minute, "run timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	c, err := app.NewContainer(cfg)
	if err != nil {
		log.Fatalf("failed to init container: %v", err)
	}
	defer func() {
		_ = c.Close()
	}()

	migCtx, migCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer migCancel()
	r := migration.Runner{Dir: "migrations"}
	if err := r.Run(migCtx, c.DB.SQLDB()); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	provider, reason := embedding.NewProvider(cfg.Embedding)
	if provider == nil {
		log.Fatalf("no embedding backend: %s", reason)
	}

	skillRepo := repository.NewPostgresSkillRepository(c.DB)
	aliasRepo := repository.NewPostgresAliasRepository(c.DB)
	embeddingRepo := repository.NewPostgresEmbeddingRepository(c.DB)
	syncUC := usecase.NewEmbeddingSyncUsecase(skillRepo, aliasRepo, embeddingRepo, provider, c.Cache, c.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if !syncUC.AcquireRunLock(ctx, *timeout) {
		log.Fatalf("another sync run holds the lock")
	}

	var report usecase.SyncReport
	if strings.TrimSpace(*ids) == "" {
		report, err = syncUC.EnsureAllEmbeddings(ctx)
	} else {
		report, err = syncUC.EnsureEmbeddingsForIDs(ctx, parseIDs(*ids))
	}
	if err != nil {
		log.Fatalf("sync failed: %v", err)
	}

	log.Printf("sync done model=%s succeeded=%d skipped=%d failed=%d",
		provider.ModelName(), len(report.Succeeded), len(report.Skipped), len(report.Failed))
	for _, f := range report.Failed {
		log.Printf("failed skill=%q id=%s err=%s", f.Name, f.SkillID, f.Error)
	}
}

func parseIDs(raw string) []uuid.UUID {
	parts := strings.Split(raw, ",")
	out := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		id, err := uuid.Parse(strings.TrimSpace(p))
		if err != nil {
			log.Fatalf("invalid skill id %q", p)
		}
		out = append(out, id)
	}
	return out
}
