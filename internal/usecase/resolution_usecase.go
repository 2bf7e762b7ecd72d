package usecase

import (
	"context"
	"log"

	"skill-resolve/internal/domain/resolution"
	"skill-resolve/internal/infrastructure/embedding"
	"skill-resolve/internal/repository"

	"github.com/google/uuid"
)

// ResolverBuilder assembles a resolver over a fresh read-only snapshot of
// the skill catalog. A resolver sees the catalog as it was when Build ran;
// callers wanting newer catalog state build a new one. One resolver per
// batch run, one per ad-hoc resolve.
type ResolverBuilder struct {
	skills     repository.SkillRepository
	aliases    repository.AliasRepository
	embeddings repository.EmbeddingRepository
	provider   embedding.Provider
	opts       resolution.Options
	logger     *log.Logger

	// Set when no provider could be constructed; the engine then runs
	// exact+alias-only and the reason is logged once per builder.
	downgradeReason string
	warned          bool
}

func NewResolverBuilder(
	skills repository.SkillRepository,
	aliases repository.AliasRepository,
	embeddings repository.EmbeddingRepository,
	provider embedding.Provider,
	opts resolution.Options,
	downgradeReason string,
	logger *log.Logger,
) *ResolverBuilder {
	if logger == nil {
		logger = log.Default()
	}
	return &ResolverBuilder{
		skills:          skills,
		aliases:         aliases,
		embeddings:      embeddings,
		provider:        provider,
		opts:            opts,
		downgradeReason: downgradeReason,
		logger:          logger,
	}
}

func (b *ResolverBuilder) Build(ctx context.Context) (*resolution.Resolver, error) {
	skills, err := b.skills.GetAllSkills(ctx)
	if err != nil {
		return nil, err
	}
	aliases, err := b.aliases.GetAllAliases(ctx)
	if err != nil {
		return nil, err
	}

	exact := resolution.NewExactMatcher(skills)
	alias := resolution.NewAliasMatcher(aliases)

	var embedder resolution.Embedder
	var searcher resolution.CandidateSearcher
	if b.provider != nil && b.embeddings != nil {
		embedder = b.provider
		searcher = b.embeddings
	} else if !b.warned {
		b.warned = true
		reason := b.downgradeReason
		if reason == "" {
			reason = "no embedding backend configured"
		}
		b.logger.Printf("[Resolver] Embedding layer disabled, running exact+alias only: %s", reason)
	}

	return resolution.NewResolver(exact, alias, embedder, searcher, b.opts, b.logger), nil
}

type ResolveOutcome struct {
	SkillID    *uuid.UUID
	Method     string
	Confidence *float64
}

type ResolutionUsecase interface {
	Resolve(ctx context.Context, raw string) (ResolveOutcome, error)
}

type Resolution struct {
	builder *ResolverBuilder
}

func NewResolutionUsecase(builder *ResolverBuilder) *Resolution {
	return &Resolution{builder: builder}
}

// Resolve maps one ad-hoc token against a snapshot taken for this call, so
// an alias added a moment ago is already visible.
func (u *Resolution) Resolve(ctx context.Context, raw string) (ResolveOutcome, error) {
	resolver, err := u.builder.Build(ctx)
	if err != nil {
		return ResolveOutcome{}, ErrInternal
	}

	res := resolver.Resolve(ctx, raw)
	return ResolveOutcome{SkillID: res.SkillID, Method: res.Method, Confidence: res.Confidence}, nil
}
