package repository

import (
	"context"
	"errors"
	"fmt"

	"skill-resolve/internal/database"
	"skill-resolve/internal/domain/resolution"
	"skill-resolve/internal/domain/skill"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// ErrSimilaritySearchFailed wraps failures of the vector-search query
// itself. Callers treat it as "no candidates", never as a batch-fatal error.
var ErrSimilaritySearchFailed = errors.New("similarity search failed")

type EmbeddingRepository interface {
	Upsert(ctx context.Context, rec skill.EmbeddingRecord) error
	Get(ctx context.Context, skillID uuid.UUID, modelName string) (skill.EmbeddingRecord, bool, error)
	FindTopK(ctx context.Context, vec []float32, k int, modelName string) ([]resolution.Candidate, error)
	Count(ctx context.Context, modelName string) (int, error)
	HasEmbedding(ctx context.Context, skillID uuid.UUID, modelName string) (bool, error)
}

// PostgresEmbeddingRepository stores one row per (skill_id, model_name) in
// a pgvector column. Concurrent upserts of the same key rely on row-level
// last-writer-wins; both writers derive the value from the same skill
// content so they converge.
type PostgresEmbeddingRepository struct {
	db database.DB
}

func NewPostgresEmbeddingRepository(db database.DB) *PostgresEmbeddingRepository {
	return &PostgresEmbeddingRepository{db: db}
}

func (r *PostgresEmbeddingRepository) Upsert(ctx context.Context, rec skill.EmbeddingRecord) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO skill_embeddings (skill_id, model_name, embedding, embedding_version, content_hash, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (skill_id, model_name) DO UPDATE SET
		   embedding = EXCLUDED.embedding,
		   embedding_version = EXCLUDED.embedding_version,
		   content_hash = EXCLUDED.content_hash,
		   updated_at = EXCLUDED.updated_at`,
		rec.SkillID,
		rec.ModelName,
		pgvector.NewVector(rec.Vector),
		rec.Version.LogicalVersion,
		rec.Version.ContentHash,
		rec.UpdatedAt,
	)
	return err
}

func (r *PostgresEmbeddingRepository) Get(ctx context.Context, skillID uuid.UUID, modelName string) (skill.EmbeddingRecord, bool, error) {
	row := r.db.QueryRow(ctx,
		`SELECT skill_id, model_name, embedding, embedding_version, content_hash, updated_at
		 FROM skill_embeddings
		 WHERE skill_id = $1 AND model_name = $2`,
		skillID, modelName)

	var rec skill.EmbeddingRecord
	var vec pgvector.Vector
	err := row.Scan(&rec.SkillID, &rec.ModelName, &vec, &rec.Version.LogicalVersion, &rec.Version.ContentHash, &rec.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return skill.EmbeddingRecord{}, false, nil
		}
		return skill.EmbeddingRecord{}, false, err
	}
	rec.Vector = vec.Slice()
	return rec, true, nil
}

// FindTopK runs the similarity query inside its own transaction so a failed
// query can be rolled back explicitly and does not poison the session for
// whatever runs next. Cosine distance over [0,2] maps to similarity via
// 1 - d/2, clamped to [0,1].
func (r *PostgresEmbeddingRepository) FindTopK(ctx context.Context, vec []float32, k int, modelName string) ([]resolution.Candidate, error) {
	if k <= 0 {
		k = resolution.DefaultTopK
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSimilaritySearchFailed, err)
	}

	rows, err := tx.Query(ctx,
		`SELECT skill_id, 1 - (embedding <=> $1) / 2.0 AS similarity
		 FROM skill_embeddings
		 WHERE model_name = $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		pgvector.NewVector(vec), modelName, k)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("%w: %v", ErrSimilaritySearchFailed, err)
	}
	defer rows.Close()

	out := make([]resolution.Candidate, 0, k)
	for rows.Next() {
		var c resolution.Candidate
		if err := rows.Scan(&c.SkillID, &c.Similarity); err != nil {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("%w: %v", ErrSimilaritySearchFailed, err)
		}
		c.Similarity = clampSimilarity(c.Similarity)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("%w: %v", ErrSimilaritySearchFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSimilaritySearchFailed, err)
	}
	return out, nil
}

func (r *PostgresEmbeddingRepository) Count(ctx context.Context, modelName string) (int, error) {
	var n int
	row := r.db.QueryRow(ctx,
		`SELECT COUNT(1) FROM skill_embeddings WHERE model_name = $1`, modelName)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostgresEmbeddingRepository) HasEmbedding(ctx context.Context, skillID uuid.UUID, modelName string) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM skill_embeddings WHERE skill_id = $1 AND model_name = $2)`,
		skillID, modelName)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func clampSimilarity(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
