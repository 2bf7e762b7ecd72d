package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"skill-resolve/internal/domain/resolution"
	"skill-resolve/internal/domain/skill"
	"skill-resolve/internal/infrastructure/embedding"

	"github.com/google/uuid"
)

type mockSkillRepo struct {
	skills []skill.Skill
	err    error
}

func (m mockSkillRepo) GetAllSkills(context.Context) ([]skill.Skill, error) {
	return m.skills, m.err
}
func (m mockSkillRepo) GetSkillsByIDs(_ context.Context, ids []uuid.UUID) ([]skill.Skill, error) {
	if m.err != nil {
		return nil, m.err
	}
	want := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]skill.Skill, 0, len(ids))
	for _, s := range m.skills {
		if _, ok := want[s.ID]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}
func (m mockSkillRepo) GetSkillByID(_ context.Context, id uuid.UUID) (skill.Skill, bool, error) {
	for _, s := range m.skills {
		if s.ID == id {
			return s, true, nil
		}
	}
	return skill.Skill{}, false, m.err
}
func (m mockSkillRepo) CreateSkill(context.Context, string, string, string) (skill.Skill, error) {
	return skill.Skill{}, nil
}

type mockAliasRepo struct {
	texts map[uuid.UUID][]string
}

func (m mockAliasRepo) GetAllAliases(context.Context) ([]skill.Alias, error) { return nil, nil }
func (m mockAliasRepo) GetAliasTextsBySkillIDs(context.Context, []uuid.UUID) (map[uuid.UUID][]string, error) {
	return m.texts, nil
}
func (m mockAliasRepo) CreateAlias(context.Context, uuid.UUID, string, string, *float64) (skill.Alias, error) {
	return skill.Alias{}, nil
}

type mockEmbeddingRepo struct {
	records map[uuid.UUID]skill.EmbeddingRecord
	upserts int
}

func (m *mockEmbeddingRepo) Upsert(_ context.Context, rec skill.EmbeddingRecord) error {
	m.upserts++
	if m.records == nil {
		m.records = map[uuid.UUID]skill.EmbeddingRecord{}
	}
	m.records[rec.SkillID] = rec
	return nil
}
func (m *mockEmbeddingRepo) Get(_ context.Context, skillID uuid.UUID, _ string) (skill.EmbeddingRecord, bool, error) {
	rec, ok := m.records[skillID]
	return rec, ok, nil
}
func (m *mockEmbeddingRepo) FindTopK(context.Context, []float32, int, string) ([]resolution.Candidate, error) {
	return nil, nil
}
func (m *mockEmbeddingRepo) Count(context.Context, string) (int, error) {
	return len(m.records), nil
}
func (m *mockEmbeddingRepo) HasEmbedding(_ context.Context, skillID uuid.UUID, _ string) (bool, error) {
	_, ok := m.records[skillID]
	return ok, nil
}

type mockProvider struct {
	failOn map[string]struct{}
	calls  int
}

func (p *mockProvider) Embed(_ context.Context, text string) ([]float32, error) {
	p.calls++
	if _, ok := p.failOn[text]; ok {
		return nil, errors.New("embedding backend rejected the request")
	}
	return []float32{1, 0, 0}, nil
}
func (p *mockProvider) ModelName() string { return "mock-model" }
func (p *mockProvider) Dimension() int    { return 3 }

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestEmbeddingSync_NoProvider(t *testing.T) {
	uc := NewEmbeddingSyncUsecase(mockSkillRepo{}, mockAliasRepo{}, &mockEmbeddingRepo{}, nil, nil, testLogger())

	_, err := uc.EnsureEmbeddingsForIDs(context.Background(), []uuid.UUID{uuid.New()})
	if !errors.Is(err, embedding.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if _, err := uc.Status(context.Background()); !errors.Is(err, embedding.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable from status, got %v", err)
	}
}

func TestEmbeddingSync_FailureIsolatedPerSkill(t *testing.T) {
	a := skill.Skill{ID: uuid.New(), Name: "Go"}
	b := skill.Skill{ID: uuid.New(), Name: "Rust"}
	c := skill.Skill{ID: uuid.New(), Name: "Zig"}

	provider := &mockProvider{failOn: map[string]struct{}{
		resolution.BuildEmbeddingText(b, nil): {},
	}}
	repo := &mockEmbeddingRepo{}
	uc := NewEmbeddingSyncUsecase(mockSkillRepo{skills: []skill.Skill{a, b, c}}, mockAliasRepo{}, repo, provider, nil, testLogger())

	report, err := uc.EnsureEmbeddingsForIDs(context.Background(), []uuid.UUID{a.ID, b.ID, c.ID})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(report.Succeeded) != 2 || report.Succeeded[0] != a.ID || report.Succeeded[1] != c.ID {
		t.Fatalf("expected a and c to succeed, got %v", report.Succeeded)
	}
	if len(report.Failed) != 1 || report.Failed[0].SkillID != b.ID {
		t.Fatalf("expected only b to fail, got %v", report.Failed)
	}
	if report.Failed[0].Name != "Rust" {
		t.Fatalf("failure should name the skill, got %q", report.Failed[0].Name)
	}
	if repo.upserts != 2 {
		t.Fatalf("expected 2 upserts, got %d", repo.upserts)
	}
}

func TestEmbeddingSync_SkipsFreshRecords(t *testing.T) {
	s := skill.Skill{ID: uuid.New(), Name: "Go"}
	provider := &mockProvider{}
	repo := &mockEmbeddingRepo{}
	uc := NewEmbeddingSyncUsecase(mockSkillRepo{skills: []skill.Skill{s}}, mockAliasRepo{}, repo, provider, nil, testLogger())

	first, err := uc.EnsureEmbeddingsForIDs(context.Background(), []uuid.UUID{s.ID})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(first.Succeeded) != 1 {
		t.Fatalf("expected first run to embed, got %+v", first)
	}

	second, err := uc.EnsureEmbeddingsForIDs(context.Background(), []uuid.UUID{s.ID})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(second.Skipped) != 1 || second.Skipped[0] != s.ID {
		t.Fatalf("expected second run to skip fresh record, got %+v", second)
	}
	if provider.calls != 1 {
		t.Fatalf("fresh record must not be re-embedded, provider called %d times", provider.calls)
	}
}

func TestEmbeddingSync_RenameInvalidatesFreshness(t *testing.T) {
	id := uuid.New()
	original := skill.Skill{ID: id, Name: "PostgreSQL"}
	renamed := skill.Skill{ID: id, Name: "Postgres"}

	provider := &mockProvider{}
	repo := &mockEmbeddingRepo{}

	uc := NewEmbeddingSyncUsecase(mockSkillRepo{skills: []skill.Skill{original}}, mockAliasRepo{}, repo, provider, nil, testLogger())
	if _, err := uc.EnsureEmbeddingsForIDs(context.Background(), []uuid.UUID{id}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	tracker := NewFreshnessTracker(repo)
	fresh, err := tracker.IsUpToDate(context.Background(), renamed, nil, provider.ModelName())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if fresh {
		t.Fatalf("renamed skill must not be considered fresh")
	}

	uc2 := NewEmbeddingSyncUsecase(mockSkillRepo{skills: []skill.Skill{renamed}}, mockAliasRepo{}, repo, provider, nil, testLogger())
	report, err := uc2.EnsureEmbeddingsForIDs(context.Background(), []uuid.UUID{id})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(report.Succeeded) != 1 {
		t.Fatalf("expected re-sync after rename, got %+v", report)
	}

	fresh, err = tracker.IsUpToDate(context.Background(), renamed, nil, provider.ModelName())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !fresh {
		t.Fatalf("expected record fresh again after re-sync")
	}
}

func TestEmbeddingSync_MissingSkillReported(t *testing.T) {
	ghost := uuid.New()
	uc := NewEmbeddingSyncUsecase(mockSkillRepo{}, mockAliasRepo{}, &mockEmbeddingRepo{}, &mockProvider{}, nil, testLogger())

	report, err := uc.EnsureEmbeddingsForIDs(context.Background(), []uuid.UUID{ghost})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(report.Failed) != 1 || report.Failed[0].SkillID != ghost {
		t.Fatalf("expected missing skill reported as failure, got %+v", report)
	}
}

type stubLock struct {
	acquired bool
	err      error
	key      string
}

func (l *stubLock) SetIfNotExists(_ context.Context, key, _ string, _ time.Duration) (bool, error) {
	l.key = key
	return l.acquired, l.err
}

func TestEmbeddingSync_AcquireRunLock(t *testing.T) {
	uc := NewEmbeddingSyncUsecase(mockSkillRepo{}, mockAliasRepo{}, &mockEmbeddingRepo{}, &mockProvider{}, nil, testLogger())
	if !uc.AcquireRunLock(context.Background(), time.Minute) {
		t.Fatalf("nil lock backend must not block syncs")
	}

	lock := &stubLock{acquired: false}
	uc = NewEmbeddingSyncUsecase(mockSkillRepo{}, mockAliasRepo{}, &mockEmbeddingRepo{}, &mockProvider{}, lock, testLogger())
	if uc.AcquireRunLock(context.Background(), time.Minute) {
		t.Fatalf("held lock must block a second run")
	}
	if lock.key != "embeddings:sync:lock" {
		t.Fatalf("unexpected lock key %q", lock.key)
	}

	lock = &stubLock{acquired: false, err: errors.New("redis down")}
	uc = NewEmbeddingSyncUsecase(mockSkillRepo{}, mockAliasRepo{}, &mockEmbeddingRepo{}, &mockProvider{}, lock, testLogger())
	if !uc.AcquireRunLock(context.Background(), time.Minute) {
		t.Fatalf("lock backend failure must not block syncs")
	}
}
