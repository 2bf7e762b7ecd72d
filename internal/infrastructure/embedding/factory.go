package embedding

import (
	"fmt"
	"strings"

	"skill-resolve/internal/config"
)

// NewProvider builds the configured backend. A nil provider with a
// non-empty reason means the engine must run exact+alias-only for this
// process; the caller logs the reason once.
func NewProvider(cfg config.EmbeddingConfig) (Provider, string) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendDisabled, "":
		return nil, "embedding disabled by configuration"
	case BackendOffline:
		return NewOfflineProvider(cfg.Dimension), ""
	case BackendOpenAI:
		p, err := NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.Dimension)
		if err != nil {
			return nil, fmt.Sprintf("openai backend unavailable: %v", err)
		}
		return p, ""
	default:
		return nil, fmt.Sprintf("unknown embedding backend %q", cfg.Backend)
	}
}
