package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	"skill-resolve/internal/domain/resolution"
	"skill-resolve/internal/repository"
	"skill-resolve/internal/ws"

	"github.com/google/uuid"
)

const progressUpdateEvery = 25

type ImportJobView struct {
	ID              uuid.UUID
	Status          string
	TotalTokens     int
	Processed       int
	Stats           resolution.Stats
	UnresolvedTexts []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type TokenImportUsecase interface {
	StartImport(ctx context.Context, tokens []string) (uuid.UUID, error)
	GetJob(ctx context.Context, id uuid.UUID) (ImportJobView, error)
}

// TokenImport resolves a batch of raw tokens in the background. The
// triggering request returns a job id immediately; the worker resolves
// tokens sequentially against one catalog snapshot and persists progress
// counters outside any long transaction, so pollers see them mid-run.
type TokenImport struct {
	jobs    repository.ImportJobRepository
	builder *ResolverBuilder
	cache   ResultCache
	logger  *log.Logger

	// jobTimeout bounds one whole import run.
	jobTimeout time.Duration
}

func NewTokenImportUsecase(jobs repository.ImportJobRepository, builder *ResolverBuilder, cache ResultCache, logger *log.Logger) *TokenImport {
	if logger == nil {
		logger = log.Default()
	}
	return &TokenImport{
		jobs:       jobs,
		builder:    builder,
		cache:      cache,
		logger:     logger,
		jobTimeout: 30 * time.Minute,
	}
}

func (u *TokenImport) StartImport(ctx context.Context, tokens []string) (uuid.UUID, error) {
	cleaned := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if strings.TrimSpace(t) != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return uuid.Nil, ErrInvalidInput
	}

	jobID := uuid.New()
	if err := u.jobs.Create(ctx, jobID, len(cleaned)); err != nil {
		return uuid.Nil, ErrInternal
	}

	go u.run(jobID, cleaned)

	return jobID, nil
}

func (u *TokenImport) GetJob(ctx context.Context, id uuid.UUID) (ImportJobView, error) {
	cacheKey := "imports:job:" + id.String()
	if u.cache != nil {
		var cached ImportJobView
		if hit, err := u.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	job, found, err := u.jobs.GetByID(ctx, id)
	if err != nil {
		return ImportJobView{}, ErrInternal
	}
	if !found {
		return ImportJobView{}, ErrNotFound
	}
	view := ImportJobView{
		ID:              job.ID,
		Status:          job.Status,
		TotalTokens:     job.TotalTokens,
		Processed:       job.Processed,
		Stats:           job.Stats,
		UnresolvedTexts: job.UnresolvedTexts,
		CreatedAt:       job.CreatedAt,
		UpdatedAt:       job.UpdatedAt,
	}

	// Only terminal jobs are cached; running ones keep changing.
	if u.cache != nil && (view.Status == repository.ImportJobStatusCompleted || view.Status == repository.ImportJobStatusFailed) {
		if err := u.cache.SetJSON(ctx, cacheKey, view, 10*time.Minute); err != nil {
			u.logger.Printf("[Import] Cache job view failed job=%s err=%v", id, err)
		}
	}
	return view, nil
}

func (u *TokenImport) run(jobID uuid.UUID, tokens []string) {
	ctx, cancel := context.WithTimeout(context.Background(), u.jobTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			u.logger.Printf("[Import] Worker panic job=%s err=%v", jobID, r)
			_ = u.jobs.Finish(ctx, jobID, repository.ImportJobStatusFailed, resolution.Stats{}, nil)
			ws.NotifyImportProgress(jobID, repository.ImportJobStatusFailed, 0, len(tokens))
		}
	}()

	if err := u.jobs.MarkRunning(ctx, jobID); err != nil {
		u.logger.Printf("[Import] Mark running failed job=%s err=%v", jobID, err)
	}
	ws.NotifyImportProgress(jobID, repository.ImportJobStatusRunning, 0, len(tokens))

	// One snapshot per job: aliases added while this job runs are picked up
	// by the next job, not this one.
	resolver, err := u.builder.Build(ctx)
	if err != nil {
		u.logger.Printf("[Import] Resolver build failed job=%s err=%v", jobID, err)
		_ = u.jobs.Finish(ctx, jobID, repository.ImportJobStatusFailed, resolution.Stats{}, nil)
		ws.NotifyImportProgress(jobID, repository.ImportJobStatusFailed, 0, len(tokens))
		return
	}

	for i, token := range tokens {
		resolver.Resolve(ctx, token)

		processed := i + 1
		if processed%progressUpdateEvery == 0 && processed < len(tokens) {
			if err := u.jobs.UpdateProgress(ctx, jobID, processed, resolver.Stats()); err != nil {
				u.logger.Printf("[Import] Progress update failed job=%s err=%v", jobID, err)
			}
			ws.NotifyImportProgress(jobID, repository.ImportJobStatusRunning, processed, len(tokens))
		}
	}

	stats := resolver.Stats()
	if err := u.jobs.Finish(ctx, jobID, repository.ImportJobStatusCompleted, stats, resolver.UnresolvedTexts()); err != nil {
		u.logger.Printf("[Import] Finish failed job=%s err=%v", jobID, err)
		return
	}
	ws.NotifyImportProgress(jobID, repository.ImportJobStatusCompleted, len(tokens), len(tokens))

	u.logger.Printf("[Import] Completed job=%s tokens=%d exact=%d alias=%d embedding=%d needs_review=%d unresolved=%d",
		jobID, len(tokens), stats.Exact, stats.Alias, stats.Embedding, stats.NeedsReview, stats.Unresolved)
}
