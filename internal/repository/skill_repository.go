package repository

import (
	"context"

	"skill-resolve/internal/database"
	"skill-resolve/internal/domain/skill"

	"github.com/google/uuid"
)

type SkillRepository interface {
	GetAllSkills(ctx context.Context) ([]skill.Skill, error)
	GetSkillsByIDs(ctx context.Context, ids []uuid.UUID) ([]skill.Skill, error)
	GetSkillByID(ctx context.Context, id uuid.UUID) (skill.Skill, bool, error)
	CreateSkill(ctx context.Context, name, category, subcategory string) (skill.Skill, error)
}

type PostgresSkillRepository struct {
	db database.DB
}

func NewPostgresSkillRepository(db database.DB) *PostgresSkillRepository {
	return &PostgresSkillRepository{db: db}
}

func (r *PostgresSkillRepository) GetAllSkills(ctx context.Context) ([]skill.Skill, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, COALESCE(category, ''), COALESCE(subcategory, ''), created_at
		 FROM skills
		 ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSkills(rows)
}

func (r *PostgresSkillRepository) GetSkillsByIDs(ctx context.Context, ids []uuid.UUID) ([]skill.Skill, error) {
	if len(ids) == 0 {
		return []skill.Skill{}, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, name, COALESCE(category, ''), COALESCE(subcategory, ''), created_at
		 FROM skills
		 WHERE id = ANY($1)
		 ORDER BY name ASC`,
		ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSkills(rows)
}

func (r *PostgresSkillRepository) GetSkillByID(ctx context.Context, id uuid.UUID) (skill.Skill, bool, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, COALESCE(category, ''), COALESCE(subcategory, ''), created_at
		 FROM skills
		 WHERE id = $1`,
		id)

	var s skill.Skill
	if err := row.Scan(&s.ID, &s.Name, &s.Category, &s.Subcategory, &s.CreatedAt); err != nil {
		if isNoRows(err) {
			return skill.Skill{}, false, nil
		}
		return skill.Skill{}, false, err
	}
	return s, true, nil
}

func (r *PostgresSkillRepository) CreateSkill(ctx context.Context, name, category, subcategory string) (skill.Skill, error) {
	id := uuid.New()
	_, err := r.db.Exec(ctx,
		`INSERT INTO skills (id, name, category, subcategory) VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))`,
		id, name, category, subcategory)
	if err != nil {
		return skill.Skill{}, err
	}
	return skill.Skill{ID: id, Name: name, Category: category, Subcategory: subcategory}, nil
}

func scanSkills(rows database.Rows) ([]skill.Skill, error) {
	out := make([]skill.Skill, 0)
	for rows.Next() {
		var s skill.Skill
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.Subcategory, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
