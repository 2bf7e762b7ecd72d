package repository

import (
	"context"

	"skill-resolve/internal/database"
	"skill-resolve/internal/domain/skill"

	"github.com/google/uuid"
)

type AliasRepository interface {
	GetAllAliases(ctx context.Context) ([]skill.Alias, error)
	GetAliasTextsBySkillIDs(ctx context.Context, skillIDs []uuid.UUID) (map[uuid.UUID][]string, error)
	CreateAlias(ctx context.Context, skillID uuid.UUID, text, source string, confidence *float64) (skill.Alias, error)
}

type PostgresAliasRepository struct {
	db database.DB
}

func NewPostgresAliasRepository(db database.DB) *PostgresAliasRepository {
	return &PostgresAliasRepository{db: db}
}

func (r *PostgresAliasRepository) GetAllAliases(ctx context.Context) ([]skill.Alias, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, skill_id, alias_text, source, confidence, created_at
		 FROM skill_aliases
		 ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]skill.Alias, 0)
	for rows.Next() {
		var a skill.Alias
		if err := rows.Scan(&a.ID, &a.SkillID, &a.Text, &a.Source, &a.Confidence, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresAliasRepository) GetAliasTextsBySkillIDs(ctx context.Context, skillIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	out := make(map[uuid.UUID][]string, len(skillIDs))
	if len(skillIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT skill_id, alias_text
		 FROM skill_aliases
		 WHERE skill_id = ANY($1)
		 ORDER BY alias_text ASC`,
		skillIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var text string
		if err := rows.Scan(&id, &text); err != nil {
			return nil, err
		}
		out[id] = append(out[id], text)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresAliasRepository) CreateAlias(ctx context.Context, skillID uuid.UUID, text, source string, confidence *float64) (skill.Alias, error) {
	id := uuid.New()
	_, err := r.db.Exec(ctx,
		`INSERT INTO skill_aliases (id, skill_id, alias_text, source, confidence)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (skill_id, alias_text) DO NOTHING`,
		id, skillID, text, source, confidence)
	if err != nil {
		return skill.Alias{}, err
	}
	return skill.Alias{ID: id, SkillID: skillID, Text: text, Source: source, Confidence: confidence}, nil
}
