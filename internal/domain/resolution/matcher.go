package resolution

import (
	"strings"

	"skill-resolve/internal/domain/skill"

	"github.com/google/uuid"
)

// Normalize is applied identically when lookup keys are built and when a
// token is resolved. Write/read symmetry here is what makes the
// deterministic layers work at all.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

type Matcher interface {
	Lookup(normalized string) (uuid.UUID, bool)
}

// snapshotMatcher is a read-only view of the catalog built once per
// resolver lifetime. Catalog changes made while a resolver is live are not
// visible to it; construct a new resolver to pick them up.
type snapshotMatcher struct {
	byText map[string]uuid.UUID
}

func (m *snapshotMatcher) Lookup(normalized string) (uuid.UUID, bool) {
	if m == nil || len(m.byText) == 0 {
		return uuid.Nil, false
	}
	id, ok := m.byText[normalized]
	return id, ok
}

func NewExactMatcher(skills []skill.Skill) Matcher {
	byText := make(map[string]uuid.UUID, len(skills))
	for _, s := range skills {
		key := Normalize(s.Name)
		if key == "" || s.ID == uuid.Nil {
			continue
		}
		byText[key] = s.ID
	}
	return &snapshotMatcher{byText: byText}
}

func NewAliasMatcher(aliases []skill.Alias) Matcher {
	byText := make(map[string]uuid.UUID, len(aliases))
	for _, a := range aliases {
		key := Normalize(a.Text)
		if key == "" || a.SkillID == uuid.Nil {
			continue
		}
		byText[key] = a.SkillID
	}
	return &snapshotMatcher{byText: byText}
}
