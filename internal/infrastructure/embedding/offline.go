package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
)

const offlineModelName = "offline-sha256"

// OfflineProvider derives a unit vector from a hash chain over the input
// text: same input, same output, no network. Used in tests and in
// environments without access to an embedding service.
type OfflineProvider struct {
	dimension int
}

func NewOfflineProvider(dimension int) *OfflineProvider {
	if dimension <= 0 {
		dimension = 1536
	}
	return &OfflineProvider{dimension: dimension}
}

func (p *OfflineProvider) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, p.dimension)
	block := sha256.Sum256([]byte(text))

	for i := range vec {
		j := i % 8
		if j == 0 && i > 0 {
			block = sha256.Sum256(block[:])
		}
		u := binary.BigEndian.Uint32(block[j*4 : j*4+4])
		vec[i] = float32(u)/float32(math.MaxUint32)*2 - 1
	}

	normalize(vec)
	return vec, nil
}

func (p *OfflineProvider) ModelName() string { return offlineModelName }

func (p *OfflineProvider) Dimension() int { return p.dimension }

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}
