package usecase

import (
	"context"

	"skill-resolve/internal/domain/resolution"
	"skill-resolve/internal/domain/skill"
	"skill-resolve/internal/repository"

	"github.com/google/uuid"
)

type AliasItem struct {
	ID      uuid.UUID
	SkillID uuid.UUID
	Text    string
	Source  string
}

type AliasUsecase interface {
	MapUnresolved(ctx context.Context, skillID uuid.UUID, rawText string) (AliasItem, error)
}

// Alias implements the map-unresolved feedback loop: a human confirms that
// some raw text denotes a known skill, and the stored alias makes the next
// import resolve it deterministically. The alias is stored in the same
// cleaned+normalized form the resolver will look it up in.
type Alias struct {
	skills  repository.SkillRepository
	aliases repository.AliasRepository
}

func NewAliasUsecase(skills repository.SkillRepository, aliases repository.AliasRepository) *Alias {
	return &Alias{skills: skills, aliases: aliases}
}

func (u *Alias) MapUnresolved(ctx context.Context, skillID uuid.UUID, rawText string) (AliasItem, error) {
	if skillID == uuid.Nil {
		return AliasItem{}, ErrInvalidInput
	}

	cleaned, ok := resolution.CleanAndValidate(rawText)
	if !ok {
		return AliasItem{}, ErrInvalidInput
	}
	normalized := resolution.Normalize(cleaned)

	_, found, err := u.skills.GetSkillByID(ctx, skillID)
	if err != nil {
		return AliasItem{}, ErrInternal
	}
	if !found {
		return AliasItem{}, ErrNotFound
	}

	created, err := u.aliases.CreateAlias(ctx, skillID, normalized, skill.AliasSourceManual, nil)
	if err != nil {
		return AliasItem{}, ErrInternal
	}
	return AliasItem{ID: created.ID, SkillID: created.SkillID, Text: created.Text, Source: created.Source}, nil
}
