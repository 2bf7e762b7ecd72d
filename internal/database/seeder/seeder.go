package seeder

import (
	"context"

	"skill-resolve/internal/database"
)

// Seeder loads one slice of starter catalog data. Implementations must be
// idempotent: the runner executes on every development startup.
type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}
