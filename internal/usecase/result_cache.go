package usecase

import (
	"context"
	"time"
)

// ResultCache is the slice of the cache layer the usecases need. Completed
// import jobs are immutable, so their views cache without invalidation; the
// key-if-absent primitive doubles as the full-sync run lock.
type ResultCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
}
