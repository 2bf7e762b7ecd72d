package usecase

import (
	"context"
	"errors"
	"testing"

	"skill-resolve/internal/domain/skill"

	"github.com/google/uuid"
)

type createSkillRepo struct {
	mockSkillRepo

	gotName        string
	gotCategory    string
	gotSubcategory string
}

func (m *createSkillRepo) CreateSkill(_ context.Context, name, category, subcategory string) (skill.Skill, error) {
	m.gotName = name
	m.gotCategory = category
	m.gotSubcategory = subcategory
	return skill.Skill{ID: uuid.New(), Name: name, Category: category, Subcategory: subcategory}, nil
}

func TestSkill_AddSkill_TrimsInput(t *testing.T) {
	repo := &createSkillRepo{}
	uc := NewSkillUsecase(repo)

	item, err := uc.AddSkill(context.Background(), "  Go ", " Programming Language ", "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if repo.gotName != "Go" || repo.gotCategory != "Programming Language" || repo.gotSubcategory != "" {
		t.Fatalf("expected trimmed fields, got %q %q %q", repo.gotName, repo.gotCategory, repo.gotSubcategory)
	}
	if item.Name != "Go" {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestSkill_AddSkill_RejectsBlankName(t *testing.T) {
	uc := NewSkillUsecase(&createSkillRepo{})
	if _, err := uc.AddSkill(context.Background(), "   ", "", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSkill_ListSkills(t *testing.T) {
	id := uuid.New()
	uc := NewSkillUsecase(mockSkillRepo{skills: []skill.Skill{{ID: id, Name: "Go", Category: "Programming Language"}}})

	items, err := uc.ListSkills(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(items) != 1 || items[0].ID != id || items[0].Category != "Programming Language" {
		t.Fatalf("unexpected items %v", items)
	}
}
