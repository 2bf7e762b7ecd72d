package resolution

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"skill-resolve/internal/domain/skill"
)

// EmbeddingLogicalVersion changes whenever BuildEmbeddingText changes its
// output format, invalidating every stored vector at once.
const EmbeddingLogicalVersion = 1

// BuildEmbeddingText assembles the text that gets embedded for a skill:
// canonical name plus alias and category context with explicit separators.
// Aliases are sorted so the output (and its hash) does not depend on
// database row order.
func BuildEmbeddingText(s skill.Skill, aliasTexts []string) string {
	parts := []string{strings.TrimSpace(s.Name)}

	aliases := make([]string, 0, len(aliasTexts))
	for _, a := range aliasTexts {
		a = strings.TrimSpace(a)
		if a != "" {
			aliases = append(aliases, a)
		}
	}
	if len(aliases) > 0 {
		sort.Strings(aliases)
		parts = append(parts, "aka: "+strings.Join(aliases, ", "))
	}
	if c := strings.TrimSpace(s.Category); c != "" {
		parts = append(parts, "category: "+c)
	}
	if sc := strings.TrimSpace(s.Subcategory); sc != "" {
		parts = append(parts, "subcategory: "+sc)
	}

	return strings.Join(parts, " | ")
}

func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func NewVersionToken(embeddingText string) skill.VersionToken {
	return skill.VersionToken{
		LogicalVersion: EmbeddingLogicalVersion,
		ContentHash:    ContentHash(embeddingText),
	}
}
