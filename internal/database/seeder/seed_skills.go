package seeder

import (
	"context"
	"fmt"

	"skill-resolve/internal/database"
	"skill-resolve/internal/domain/resolution"
	"skill-resolve/internal/domain/skill"
)

type SkillsSeeder struct{}

func (SkillsSeeder) Name() string { return "skills" }

func (SkillsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "skills", "id", "name", "category", "subcategory", "created_at"); err != nil {
		return err
	}
	if err := EnsureTableColumns(ctx, db, "skill_aliases", "id", "skill_id", "alias_text", "source", "created_at"); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	items := []struct {
		Name        string
		Category    string
		Subcategory string
		Aliases     []string
	}{
		{Name: "Go", Category: "Programming Language", Aliases: []string{"golang"}},
		{Name: "JavaScript", Category: "Programming Language", Aliases: []string{"js", "ecmascript"}},
		{Name: "TypeScript", Category: "Programming Language", Aliases: []string{"ts"}},
		{Name: "C++", Category: "Programming Language", Aliases: []string{"cpp"}},
		{Name: "C#", Category: "Programming Language", Aliases: []string{"csharp", "c sharp"}},
		{Name: ".NET", Category: "Framework", Aliases: []string{"dotnet"}},
		{Name: "Node.js", Category: "Runtime", Aliases: []string{"node", "nodejs"}},
		{Name: "PostgreSQL", Category: "Database", Aliases: []string{"postgres", "psql"}},
		{Name: "Redis", Category: "Database"},
		{Name: "Docker", Category: "DevOps", Subcategory: "Containers"},
		{Name: "Kubernetes", Category: "DevOps", Subcategory: "Containers", Aliases: []string{"k8s"}},
		{Name: "Azure Kubernetes Service", Category: "Cloud", Subcategory: "Azure", Aliases: []string{"aks"}},
		{Name: "AWS", Category: "Cloud", Aliases: []string{"amazon web services"}},
		{Name: "GCP", Category: "Cloud", Aliases: []string{"google cloud platform", "google cloud"}},
	}

	for _, it := range items {
		_, err := tx.Exec(
			ctx,
			`INSERT INTO skills (id, name, category, subcategory)
			 VALUES (gen_random_uuid(), $1, $2, NULLIF($3, ''))
			 ON CONFLICT (name) DO NOTHING`,
			it.Name,
			it.Category,
			it.Subcategory,
		)
		if err != nil {
			return err
		}

		for _, alias := range it.Aliases {
			_, err := tx.Exec(
				ctx,
				`INSERT INTO skill_aliases (id, skill_id, alias_text, source)
				 SELECT gen_random_uuid(), s.id, $2, $3 FROM skills s WHERE s.name = $1
				 ON CONFLICT (skill_id, alias_text) DO NOTHING`,
				it.Name,
				resolution.Normalize(alias),
				skill.AliasSourceImport,
			)
			if err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
