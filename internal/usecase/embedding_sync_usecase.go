package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"skill-resolve/internal/domain/resolution"
	"skill-resolve/internal/domain/skill"
	"skill-resolve/internal/infrastructure/embedding"
	"skill-resolve/internal/repository"

	"github.com/google/uuid"
)

// FreshnessTracker decides whether a stored embedding still reflects the
// current textual representation of its skill. A record is fresh only when
// both its logical version and its content hash match what would be
// generated right now; a renamed skill or a changed alias set flips the
// hash without any dirty-bit bookkeeping.
type FreshnessTracker struct {
	embeddings repository.EmbeddingRepository
}

func NewFreshnessTracker(embeddings repository.EmbeddingRepository) *FreshnessTracker {
	return &FreshnessTracker{embeddings: embeddings}
}

func (t *FreshnessTracker) IsUpToDate(ctx context.Context, s skill.Skill, aliasTexts []string, modelName string) (bool, error) {
	rec, ok, err := t.embeddings.Get(ctx, s.ID, modelName)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	want := resolution.NewVersionToken(resolution.BuildEmbeddingText(s, aliasTexts))
	return rec.Version == want, nil
}

type SyncFailure struct {
	SkillID uuid.UUID `json:"skill_id"`
	Name    string    `json:"name"`
	Error   string    `json:"error"`
}

type SyncReport struct {
	Succeeded []uuid.UUID   `json:"succeeded"`
	Failed    []SyncFailure `json:"failed"`
	Skipped   []uuid.UUID   `json:"skipped"`
}

type SyncStatus struct {
	ModelName      string `json:"model_name"`
	EmbeddingCount int    `json:"embedding_count"`
}

type syncLock interface {
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
}

type EmbeddingSyncUsecase interface {
	EnsureEmbeddingsForIDs(ctx context.Context, ids []uuid.UUID) (SyncReport, error)
	EnsureAllEmbeddings(ctx context.Context) (SyncReport, error)
	Status(ctx context.Context) (SyncStatus, error)
	AcquireRunLock(ctx context.Context, ttl time.Duration) bool
}

// EmbeddingSync keeps the embedding index aligned with the skill catalog.
// Failures are isolated per skill; one bad row never aborts the batch.
type EmbeddingSync struct {
	skills     repository.SkillRepository
	aliases    repository.AliasRepository
	embeddings repository.EmbeddingRepository
	freshness  *FreshnessTracker
	provider   embedding.Provider
	lock       syncLock
	logger     *log.Logger
	now        func() time.Time
}

func NewEmbeddingSyncUsecase(
	skills repository.SkillRepository,
	aliases repository.AliasRepository,
	embeddings repository.EmbeddingRepository,
	provider embedding.Provider,
	lock syncLock,
	logger *log.Logger,
) *EmbeddingSync {
	if logger == nil {
		logger = log.Default()
	}
	return &EmbeddingSync{
		skills:     skills,
		aliases:    aliases,
		embeddings: embeddings,
		freshness:  NewFreshnessTracker(embeddings),
		provider:   provider,
		lock:       lock,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *EmbeddingSync) EnsureEmbeddingsForIDs(ctx context.Context, ids []uuid.UUID) (SyncReport, error) {
	report := SyncReport{
		Succeeded: []uuid.UUID{},
		Failed:    []SyncFailure{},
		Skipped:   []uuid.UUID{},
	}
	if s.provider == nil {
		return SyncReport{}, embedding.ErrProviderUnavailable
	}
	if len(ids) == 0 {
		return report, nil
	}

	skills, err := s.skills.GetSkillsByIDs(ctx, ids)
	if err != nil {
		return SyncReport{}, err
	}
	aliasTexts, err := s.aliases.GetAliasTextsBySkillIDs(ctx, ids)
	if err != nil {
		return SyncReport{}, err
	}

	byID := make(map[uuid.UUID]skill.Skill, len(skills))
	for _, sk := range skills {
		byID[sk.ID] = sk
	}

	for _, id := range ids {
		sk, ok := byID[id]
		if !ok {
			report.Failed = append(report.Failed, SyncFailure{SkillID: id, Error: "skill not found"})
			continue
		}

		outcome := s.syncOne(ctx, sk, aliasTexts[id])
		switch {
		case outcome == nil:
			report.Succeeded = append(report.Succeeded, id)
		case outcome == errSkipFresh:
			report.Skipped = append(report.Skipped, id)
		default:
			s.logger.Printf("[EmbeddingSync] Sync failed skill=%q id=%s err=%v", sk.Name, id, outcome)
			report.Failed = append(report.Failed, SyncFailure{SkillID: id, Name: sk.Name, Error: outcome.Error()})
		}
	}

	return report, nil
}

func (s *EmbeddingSync) EnsureAllEmbeddings(ctx context.Context) (SyncReport, error) {
	all, err := s.skills.GetAllSkills(ctx)
	if err != nil {
		return SyncReport{}, err
	}
	ids := make([]uuid.UUID, 0, len(all))
	for _, sk := range all {
		ids = append(ids, sk.ID)
	}
	return s.EnsureEmbeddingsForIDs(ctx, ids)
}

func (s *EmbeddingSync) Status(ctx context.Context) (SyncStatus, error) {
	if s.provider == nil {
		return SyncStatus{}, embedding.ErrProviderUnavailable
	}
	n, err := s.embeddings.Count(ctx, s.provider.ModelName())
	if err != nil {
		return SyncStatus{}, err
	}
	return SyncStatus{ModelName: s.provider.ModelName(), EmbeddingCount: n}, nil
}

// AcquireRunLock prevents two full-catalog syncs overlapping. A missing
// cache backend means no lock; the upsert key converges anyway.
func (s *EmbeddingSync) AcquireRunLock(ctx context.Context, ttl time.Duration) bool {
	if s.lock == nil {
		return true
	}
	ok, err := s.lock.SetIfNotExists(ctx, "embeddings:sync:lock", "1", ttl)
	if err != nil {
		return true
	}
	return ok
}

var errSkipFresh = errors.New("fresh")

// syncOne is the per-skill fault boundary: any error is reported for this
// skill alone. Returns nil on success, errSkipFresh when no work is needed.
func (s *EmbeddingSync) syncOne(ctx context.Context, sk skill.Skill, aliasTexts []string) error {
	fresh, err := s.freshness.IsUpToDate(ctx, sk, aliasTexts, s.provider.ModelName())
	if err != nil {
		return fmt.Errorf("freshness check: %w", err)
	}
	if fresh {
		return errSkipFresh
	}

	text := resolution.BuildEmbeddingText(sk, aliasTexts)
	vec, err := s.provider.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}

	rec := skill.EmbeddingRecord{
		SkillID:   sk.ID,
		ModelName: s.provider.ModelName(),
		Vector:    vec,
		Version:   resolution.NewVersionToken(text),
		UpdatedAt: s.now().UTC(),
	}
	if err := s.embeddings.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}
