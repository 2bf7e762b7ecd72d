package skill

import (
	"time"

	"github.com/google/uuid"
)

const (
	AliasSourceImport = "import"
	AliasSourceManual = "manual"
)

type Skill struct {
	ID          uuid.UUID
	Name        string
	Category    string
	Subcategory string
	CreatedAt   time.Time
}

type Alias struct {
	ID         uuid.UUID
	SkillID    uuid.UUID
	Text       string
	Source     string
	Confidence *float64
	CreatedAt  time.Time
}

// VersionToken identifies the generation recipe of a stored embedding.
// LogicalVersion changes when the embedding-input format changes;
// ContentHash changes when the skill's own text changes.
type VersionToken struct {
	LogicalVersion int
	ContentHash    string
}

type EmbeddingRecord struct {
	SkillID   uuid.UUID
	ModelName string
	Vector    []float32
	Version   VersionToken
	UpdatedAt time.Time
}
