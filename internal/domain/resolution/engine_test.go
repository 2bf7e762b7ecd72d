package resolution

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/google/uuid"
)

type countingMatcher struct {
	id    uuid.UUID
	calls int
}

func (m *countingMatcher) Lookup(string) (uuid.UUID, bool) {
	m.calls++
	if m.id == uuid.Nil {
		return uuid.Nil, false
	}
	return m.id, true
}

type stubEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (e *stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	e.calls++
	return e.vec, e.err
}

type stubSearcher struct {
	candidates []Candidate
	err        error
	gotK       int
	gotModel   string
}

func (s *stubSearcher) FindTopK(_ context.Context, _ []float32, k int, modelName string) ([]Candidate, error) {
	s.gotK = k
	s.gotModel = modelName
	return s.candidates, s.err
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestResolver_ExactShadowsAlias(t *testing.T) {
	exactID := uuid.New()
	exact := &countingMatcher{id: exactID}
	alias := &countingMatcher{id: uuid.New()}
	embedder := &stubEmbedder{}

	r := NewResolver(exact, alias, embedder, &stubSearcher{}, Options{}, quietLogger())
	res := r.Resolve(context.Background(), "Go")

	if res.Method != MethodExact {
		t.Fatalf("expected method exact, got %s", res.Method)
	}
	if res.SkillID == nil || *res.SkillID != exactID {
		t.Fatalf("expected exact skill id %s, got %v", exactID, res.SkillID)
	}
	if res.Confidence == nil || *res.Confidence != 1.0 {
		t.Fatalf("expected confidence 1.0, got %v", res.Confidence)
	}
	if alias.calls != 0 {
		t.Fatalf("alias layer must not be consulted after an exact hit, got %d calls", alias.calls)
	}
	if embedder.calls != 0 {
		t.Fatalf("embedding layer must not be consulted after an exact hit")
	}
}

func TestResolver_AliasShadowsEmbedding(t *testing.T) {
	aliasID := uuid.New()
	exact := &countingMatcher{}
	alias := &countingMatcher{id: aliasID}
	embedder := &stubEmbedder{}

	r := NewResolver(exact, alias, embedder, &stubSearcher{}, Options{}, quietLogger())
	res := r.Resolve(context.Background(), "golang")

	if res.Method != MethodAlias {
		t.Fatalf("expected method alias, got %s", res.Method)
	}
	if res.SkillID == nil || *res.SkillID != aliasID {
		t.Fatalf("expected alias skill id %s, got %v", aliasID, res.SkillID)
	}
	if embedder.calls != 0 {
		t.Fatalf("embedding layer must not run when an alias hits")
	}
}

func TestResolver_EmbeddingThresholds(t *testing.T) {
	candidateID := uuid.New()

	run := func(similarity float64) Result {
		r := NewResolver(
			&countingMatcher{}, &countingMatcher{},
			&stubEmbedder{vec: []float32{0.1, 0.2}},
			&stubSearcher{candidates: []Candidate{{SkillID: candidateID, Similarity: similarity}}},
			Options{ModelName: "test-model"},
			quietLogger(),
		)
		return r.Resolve(context.Background(), "Reactive Streams")
	}

	res := run(0.88)
	if res.Method != MethodEmbedding {
		t.Fatalf("at 0.88 expected embedding, got %s", res.Method)
	}
	if res.SkillID == nil || *res.SkillID != candidateID {
		t.Fatalf("auto-accept must carry the candidate id")
	}
	if res.Confidence == nil || *res.Confidence != 0.88 {
		t.Fatalf("expected confidence 0.88, got %v", res.Confidence)
	}

	res = run(0.8799)
	if res.Method != MethodNeedsReview {
		t.Fatalf("just below auto-accept expected needs_review, got %s", res.Method)
	}
	if res.SkillID != nil {
		t.Fatalf("needs_review must not carry a skill id")
	}
	if res.Confidence == nil || *res.Confidence != 0.8799 {
		t.Fatalf("needs_review must expose the similarity, got %v", res.Confidence)
	}

	res = run(0.80)
	if res.Method != MethodNeedsReview {
		t.Fatalf("at 0.80 expected needs_review, got %s", res.Method)
	}

	res = run(0.79)
	if res.Method != MethodUnresolved {
		t.Fatalf("below 0.80 expected unresolved, got %s", res.Method)
	}
	if res.SkillID != nil {
		t.Fatalf("unresolved must not carry a skill id")
	}
}

func TestResolver_PassesConfiguredKAndModel(t *testing.T) {
	search := &stubSearcher{}
	r := NewResolver(
		&countingMatcher{}, &countingMatcher{},
		&stubEmbedder{vec: []float32{1}},
		search,
		Options{ModelName: "text-embedding-3-small", TopK: 7},
		quietLogger(),
	)
	r.Resolve(context.Background(), "Terraform")

	if search.gotK != 7 {
		t.Fatalf("expected k=7, got %d", search.gotK)
	}
	if search.gotModel != "text-embedding-3-small" {
		t.Fatalf("expected model name forwarded, got %q", search.gotModel)
	}
}

func TestResolver_InvalidTokenSkipsAllLayers(t *testing.T) {
	exact := &countingMatcher{id: uuid.New()}
	alias := &countingMatcher{id: uuid.New()}
	embedder := &stubEmbedder{}

	r := NewResolver(exact, alias, embedder, &stubSearcher{}, Options{}, quietLogger())
	res := r.Resolve(context.Background(), ")")

	if res.Method != MethodUnresolved {
		t.Fatalf("expected unresolved, got %s", res.Method)
	}
	if exact.calls != 0 || alias.calls != 0 || embedder.calls != 0 {
		t.Fatalf("rejected token must not reach any layer: exact=%d alias=%d embed=%d",
			exact.calls, alias.calls, embedder.calls)
	}
}

func TestResolver_EmbeddingDisabledFallsThrough(t *testing.T) {
	r := NewResolver(&countingMatcher{}, &countingMatcher{}, nil, nil, Options{}, quietLogger())

	if r.EmbeddingEnabled() {
		t.Fatalf("expected embedding layer disabled")
	}
	res := r.Resolve(context.Background(), "Kafka")
	if res.Method != MethodUnresolved {
		t.Fatalf("expected unresolved, got %s", res.Method)
	}
}

func TestResolver_EmbedderFailureIsContained(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("provider down")}
	r := NewResolver(&countingMatcher{}, &countingMatcher{}, embedder, &stubSearcher{}, Options{}, quietLogger())

	res := r.Resolve(context.Background(), "Kafka")
	if res.Method != MethodUnresolved {
		t.Fatalf("embed failure must degrade to unresolved, got %s", res.Method)
	}

	// Next token still goes through the pipeline.
	embedder.err = nil
	embedder.vec = []float32{1}
	res = r.Resolve(context.Background(), "Kafka Streams")
	if res.Method != MethodUnresolved {
		t.Fatalf("expected unresolved with no candidates, got %s", res.Method)
	}
	if embedder.calls != 2 {
		t.Fatalf("expected embedder called again after a failure, got %d calls", embedder.calls)
	}
}

func TestResolver_SearchFailureIsContained(t *testing.T) {
	r := NewResolver(
		&countingMatcher{}, &countingMatcher{},
		&stubEmbedder{vec: []float32{1}},
		&stubSearcher{err: errors.New("similarity search failed")},
		Options{},
		quietLogger(),
	)
	res := r.Resolve(context.Background(), "Kafka")
	if res.Method != MethodUnresolved {
		t.Fatalf("search failure must degrade to unresolved, got %s", res.Method)
	}
}

func TestResolver_Deterministic(t *testing.T) {
	candidateID := uuid.New()
	r := NewResolver(
		&countingMatcher{}, &countingMatcher{},
		&stubEmbedder{vec: []float32{0.5}},
		&stubSearcher{candidates: []Candidate{{SkillID: candidateID, Similarity: 0.91}}},
		Options{},
		quietLogger(),
	)

	first := r.Resolve(context.Background(), "Event Sourcing")
	second := r.Resolve(context.Background(), "Event Sourcing")

	if first.Method != second.Method || *first.SkillID != *second.SkillID || *first.Confidence != *second.Confidence {
		t.Fatalf("same token against same snapshot must resolve identically")
	}
}

func TestResolver_StatsAndUnresolvedTexts(t *testing.T) {
	exactID := uuid.New()

	r := NewResolver(&countingMatcher{id: exactID}, &countingMatcher{}, nil, nil, Options{}, quietLogger())
	r.Resolve(context.Background(), "Go")

	r2 := NewResolver(&countingMatcher{}, &countingMatcher{}, nil, nil, Options{}, quietLogger())
	r2.Resolve(context.Background(), "frobnicator")
	r2.Resolve(context.Background(), "frobnicator")
	r2.Resolve(context.Background(), "widgetry")

	if got := r.Stats(); got.Exact != 1 {
		t.Fatalf("expected one exact hit, got %+v", got)
	}
	stats := r2.Stats()
	if stats.Unresolved != 3 {
		t.Fatalf("unresolved counter counts occurrences, got %d", stats.Unresolved)
	}
	texts := r2.UnresolvedTexts()
	if len(texts) != 2 || texts[0] != "frobnicator" || texts[1] != "widgetry" {
		t.Fatalf("expected deduplicated first-seen order, got %v", texts)
	}
}
