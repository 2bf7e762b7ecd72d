package resolution

import (
	"strings"
	"testing"

	"skill-resolve/internal/domain/skill"
)

func TestBuildEmbeddingText_AliasOrderIndependent(t *testing.T) {
	s := skill.Skill{Name: "Go", Category: "Programming Language"}

	a := BuildEmbeddingText(s, []string{"golang", "go lang"})
	b := BuildEmbeddingText(s, []string{"go lang", "golang"})
	if a != b {
		t.Fatalf("alias order must not change embedding text: %q vs %q", a, b)
	}
	if a != "Go | aka: go lang, golang | category: Programming Language" {
		t.Fatalf("unexpected embedding text %q", a)
	}
}

func TestBuildEmbeddingText_OmitsEmptyParts(t *testing.T) {
	got := BuildEmbeddingText(skill.Skill{Name: "Rust"}, []string{"  ", ""})
	if got != "Rust" {
		t.Fatalf("expected bare name, got %q", got)
	}
	if strings.Contains(got, "aka") || strings.Contains(got, "category") {
		t.Fatalf("blank fields must not appear in %q", got)
	}
}

func TestNewVersionToken_TracksContent(t *testing.T) {
	s := skill.Skill{Name: "PostgreSQL"}

	before := NewVersionToken(BuildEmbeddingText(s, nil))
	same := NewVersionToken(BuildEmbeddingText(s, nil))
	if before != same {
		t.Fatalf("identical content must produce identical tokens")
	}
	if before.LogicalVersion != EmbeddingLogicalVersion {
		t.Fatalf("expected logical version %d, got %d", EmbeddingLogicalVersion, before.LogicalVersion)
	}

	s.Name = "Postgres"
	after := NewVersionToken(BuildEmbeddingText(s, nil))
	if before == after {
		t.Fatalf("a rename must change the version token")
	}

	withAlias := NewVersionToken(BuildEmbeddingText(skill.Skill{Name: "PostgreSQL"}, []string{"pg"}))
	if before == withAlias {
		t.Fatalf("an alias change must change the version token")
	}
}
