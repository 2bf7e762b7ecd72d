package embedding

import (
	"context"
	"errors"
)

const (
	BackendOpenAI   = "openai"
	BackendOffline  = "offline"
	BackendDisabled = "disabled"
)

// ErrProviderUnavailable means no provider could be constructed at all
// (missing key, unknown backend). The engine then runs exact+alias-only
// for the rest of the process; the downgrade is logged once, not per item.
var ErrProviderUnavailable = errors.New("embedding provider unavailable")

// Provider turns text into a fixed-dimension vector. A non-nil error from
// Embed covers that single call only and is recoverable per item.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	ModelName() string
	Dimension() int
}
