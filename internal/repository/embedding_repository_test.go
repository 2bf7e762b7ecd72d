package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"skill-resolve/internal/database"

	"github.com/google/uuid"
)

type fakeRows struct {
	rows [][]any
	idx  int
}

func (r *fakeRows) Close()    {}
func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}
func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan dest mismatch")
	}
	for i := range dest {
		switch d := dest[i].(type) {
		case *uuid.UUID:
			*d = row[i].(uuid.UUID)
		case *float64:
			*d = row[i].(float64)
		default:
			return fmt.Errorf("unsupported scan type")
		}
	}
	return nil
}

type fakeTx struct {
	rows     *fakeRows
	queryErr error

	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(context.Context, string, ...any) (int64, error) { return 0, nil }
func (t *fakeTx) Query(context.Context, string, ...any) (database.Rows, error) {
	if t.queryErr != nil {
		return nil, t.queryErr
	}
	return t.rows, nil
}
func (t *fakeTx) QueryRow(context.Context, string, ...any) database.Row { return nil }
func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}
func (t *fakeTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeDB struct {
	tx       *fakeTx
	beginErr error
}

func (d *fakeDB) Ping(context.Context) error { return nil }
func (d *fakeDB) Close() error               { return nil }
func (d *fakeDB) Exec(context.Context, string, ...any) (int64, error) {
	return 0, nil
}
func (d *fakeDB) Query(context.Context, string, ...any) (database.Rows, error) {
	return nil, nil
}
func (d *fakeDB) QueryRow(context.Context, string, ...any) database.Row { return nil }
func (d *fakeDB) Begin(context.Context) (database.Tx, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	return d.tx, nil
}
func (d *fakeDB) SQLDB() *sql.DB { return nil }

func TestFindTopK_ClampsAndCommits(t *testing.T) {
	idA := uuid.New()
	idB := uuid.New()
	tx := &fakeTx{rows: &fakeRows{rows: [][]any{
		{idA, 1.0000002},
		{idB, -0.03},
	}}}
	repo := NewPostgresEmbeddingRepository(&fakeDB{tx: tx})

	got, err := repo.FindTopK(context.Background(), []float32{1, 0}, 5, "test-model")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].Similarity != 1 || got[1].Similarity != 0 {
		t.Fatalf("expected similarities clamped to [0,1], got %v", got)
	}
	if !tx.committed || tx.rolledBack {
		t.Fatalf("expected commit without rollback, committed=%v rolledBack=%v", tx.committed, tx.rolledBack)
	}
}

func TestFindTopK_RollsBackOnQueryFailure(t *testing.T) {
	tx := &fakeTx{queryErr: errors.New(`operator does not exist: vector <=> unknown`)}
	repo := NewPostgresEmbeddingRepository(&fakeDB{tx: tx})

	_, err := repo.FindTopK(context.Background(), []float32{1, 0}, 5, "test-model")
	if !errors.Is(err, ErrSimilaritySearchFailed) {
		t.Fatalf("expected ErrSimilaritySearchFailed, got %v", err)
	}
	if !tx.rolledBack || tx.committed {
		t.Fatalf("failed search must roll back its transaction, committed=%v rolledBack=%v", tx.committed, tx.rolledBack)
	}
}

func TestFindTopK_BeginFailure(t *testing.T) {
	repo := NewPostgresEmbeddingRepository(&fakeDB{beginErr: errors.New("pool exhausted")})

	_, err := repo.FindTopK(context.Background(), []float32{1, 0}, 5, "test-model")
	if !errors.Is(err, ErrSimilaritySearchFailed) {
		t.Fatalf("expected ErrSimilaritySearchFailed, got %v", err)
	}
}
