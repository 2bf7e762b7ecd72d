package repository

import (
	"context"
	"time"

	"skill-resolve/internal/database"
	"skill-resolve/internal/domain/resolution"

	"github.com/google/uuid"
)

const (
	ImportJobStatusPending   = "pending"
	ImportJobStatusRunning   = "running"
	ImportJobStatusCompleted = "completed"
	ImportJobStatusFailed    = "failed"
)

type ImportJob struct {
	ID              uuid.UUID
	Status          string
	TotalTokens     int
	Processed       int
	Stats           resolution.Stats
	UnresolvedTexts []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type ImportJobRepository interface {
	Create(ctx context.Context, id uuid.UUID, totalTokens int) error
	MarkRunning(ctx context.Context, id uuid.UUID) error
	UpdateProgress(ctx context.Context, id uuid.UUID, processed int, stats resolution.Stats) error
	Finish(ctx context.Context, id uuid.UUID, status string, stats resolution.Stats, unresolved []string) error
	GetByID(ctx context.Context, id uuid.UUID) (ImportJob, bool, error)
}

type PostgresImportJobRepository struct {
	db database.DB
}

func NewPostgresImportJobRepository(db database.DB) *PostgresImportJobRepository {
	return &PostgresImportJobRepository{db: db}
}

func (r *PostgresImportJobRepository) Create(ctx context.Context, id uuid.UUID, totalTokens int) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO import_jobs (id, status, total_tokens) VALUES ($1, $2, $3)`,
		id, ImportJobStatusPending, totalTokens)
	return err
}

func (r *PostgresImportJobRepository) MarkRunning(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE import_jobs SET status = $2, updated_at = now() WHERE id = $1`,
		id, ImportJobStatusRunning)
	return err
}

func (r *PostgresImportJobRepository) UpdateProgress(ctx context.Context, id uuid.UUID, processed int, stats resolution.Stats) error {
	_, err := r.db.Exec(ctx,
		`UPDATE import_jobs SET
		   processed = $2,
		   resolved_exact = $3,
		   resolved_alias = $4,
		   resolved_embedding = $5,
		   needs_review = $6,
		   unresolved = $7,
		   updated_at = now()
		 WHERE id = $1`,
		id, processed, stats.Exact, stats.Alias, stats.Embedding, stats.NeedsReview, stats.Unresolved)
	return err
}

func (r *PostgresImportJobRepository) Finish(ctx context.Context, id uuid.UUID, status string, stats resolution.Stats, unresolved []string) error {
	if unresolved == nil {
		unresolved = []string{}
	}
	_, err := r.db.Exec(ctx,
		`UPDATE import_jobs SET
		   status = $2,
		   processed = total_tokens,
		   resolved_exact = $3,
		   resolved_alias = $4,
		   resolved_embedding = $5,
		   needs_review = $6,
		   unresolved = $7,
		   unresolved_texts = $8,
		   updated_at = now()
		 WHERE id = $1`,
		id, status, stats.Exact, stats.Alias, stats.Embedding, stats.NeedsReview, stats.Unresolved, unresolved)
	return err
}

func (r *PostgresImportJobRepository) GetByID(ctx context.Context, id uuid.UUID) (ImportJob, bool, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, status, total_tokens, processed,
		        resolved_exact, resolved_alias, resolved_embedding, needs_review, unresolved,
		        unresolved_texts, created_at, updated_at
		 FROM import_jobs
		 WHERE id = $1`,
		id)

	var job ImportJob
	err := row.Scan(
		&job.ID, &job.Status, &job.TotalTokens, &job.Processed,
		&job.Stats.Exact, &job.Stats.Alias, &job.Stats.Embedding, &job.Stats.NeedsReview, &job.Stats.Unresolved,
		&job.UnresolvedTexts, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return ImportJob{}, false, nil
		}
		return ImportJob{}, false, err
	}
	return job, true, nil
}
