package resolution

import (
	"context"
	"log"

	"github.com/google/uuid"
)

const (
	MethodExact       = "exact"
	MethodAlias       = "alias"
	MethodEmbedding   = "embedding"
	MethodNeedsReview = "needs_review"
	MethodUnresolved  = "unresolved"
)

// Threshold defaults are product policy, surfaced as configuration but
// never re-derived here.
const (
	DefaultAutoAcceptThreshold = 0.88
	DefaultReviewThreshold     = 0.80
	DefaultTopK                = 5
)

type Result struct {
	SkillID    *uuid.UUID
	Method     string
	Confidence *float64
}

type Candidate struct {
	SkillID    uuid.UUID
	Similarity float64
}

// Embedder turns text into a vector. An error means this one call failed;
// the resolver degrades that token to unresolved and keeps going.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CandidateSearcher returns up to k stored candidates ordered by
// descending similarity in [0,1].
type CandidateSearcher interface {
	FindTopK(ctx context.Context, vec []float32, k int, modelName string) ([]Candidate, error)
}

type Options struct {
	ModelName           string
	AutoAcceptThreshold float64
	ReviewThreshold     float64
	TopK                int
}

func (o Options) withDefaults() Options {
	if o.AutoAcceptThreshold <= 0 {
		o.AutoAcceptThreshold = DefaultAutoAcceptThreshold
	}
	if o.ReviewThreshold <= 0 {
		o.ReviewThreshold = DefaultReviewThreshold
	}
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	return o
}

type Stats struct {
	Exact       int
	Alias       int
	Embedding   int
	NeedsReview int
	Unresolved  int
}

// Resolver maps one raw token at a time to a skill id. Layer order is
// fixed: exact, then alias, then embedding similarity. Curated aliases
// must never be shadowed by coincidental semantic similarity.
type Resolver struct {
	exact    Matcher
	alias    Matcher
	embedder Embedder
	search   CandidateSearcher
	opts     Options
	logger   *log.Logger

	stats           Stats
	unresolvedSeen  map[string]struct{}
	unresolvedTexts []string
}

// NewResolver builds a resolver over read-only matcher snapshots. Pass a
// nil embedder or searcher to run in exact+alias-only mode.
func NewResolver(exact, alias Matcher, embedder Embedder, search CandidateSearcher, opts Options, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		exact:          exact,
		alias:          alias,
		embedder:       embedder,
		search:         search,
		opts:           opts.withDefaults(),
		logger:         logger,
		unresolvedSeen: make(map[string]struct{}),
	}
}

func (r *Resolver) EmbeddingEnabled() bool {
	return r != nil && r.embedder != nil && r.search != nil
}

func (r *Resolver) Resolve(ctx context.Context, raw string) Result {
	cleaned, ok := CleanAndValidate(raw)
	if !ok {
		return r.unresolved(raw, nil)
	}

	normalized := Normalize(cleaned)

	if id, ok := r.exact.Lookup(normalized); ok {
		r.stats.Exact++
		return hit(id, MethodExact)
	}
	if id, ok := r.alias.Lookup(normalized); ok {
		r.stats.Alias++
		return hit(id, MethodAlias)
	}

	if !r.EmbeddingEnabled() {
		return r.unresolved(raw, nil)
	}

	vec, err := r.embedder.Embed(ctx, cleaned)
	if err != nil {
		r.logger.Printf("[Resolver] Embedding generation failed text=%q err=%v", cleaned, err)
		return r.unresolved(raw, nil)
	}

	candidates, err := r.search.FindTopK(ctx, vec, r.opts.TopK, r.opts.ModelName)
	if err != nil {
		r.logger.Printf("[Resolver] Similarity search failed text=%q err=%v", cleaned, err)
		return r.unresolved(raw, nil)
	}
	if len(candidates) == 0 {
		return r.unresolved(raw, nil)
	}

	// Ranks 2..K are retrieved for future disambiguation but only the best
	// candidate drives the decision.
	best := candidates[0]
	switch {
	case best.Similarity >= r.opts.AutoAcceptThreshold:
		r.stats.Embedding++
		id := best.SkillID
		return Result{SkillID: &id, Method: MethodEmbedding, Confidence: &best.Similarity}
	case best.Similarity >= r.opts.ReviewThreshold:
		r.stats.NeedsReview++
		return Result{Method: MethodNeedsReview, Confidence: &best.Similarity}
	default:
		return r.unresolved(raw, &best.Similarity)
	}
}

func (r *Resolver) Stats() Stats {
	return r.stats
}

// UnresolvedTexts returns distinct unresolved raw tokens in first-seen order.
func (r *Resolver) UnresolvedTexts() []string {
	out := make([]string, len(r.unresolvedTexts))
	copy(out, r.unresolvedTexts)
	return out
}

func (r *Resolver) unresolved(raw string, confidence *float64) Result {
	r.stats.Unresolved++
	if _, seen := r.unresolvedSeen[raw]; !seen {
		r.unresolvedSeen[raw] = struct{}{}
		r.unresolvedTexts = append(r.unresolvedTexts, raw)
	}
	return Result{Method: MethodUnresolved, Confidence: confidence}
}

func hit(id uuid.UUID, method string) Result {
	confidence := 1.0
	return Result{SkillID: &id, Method: method, Confidence: &confidence}
}
