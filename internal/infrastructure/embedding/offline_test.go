package embedding

import (
	"context"
	"math"
	"testing"
)

func TestOfflineProvider_Deterministic(t *testing.T) {
	p := NewOfflineProvider(64)

	a, err := p.Embed(context.Background(), "Kubernetes")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	b, err := p.Embed(context.Background(), "Kubernetes")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(a) != 64 || len(b) != 64 {
		t.Fatalf("expected dimension 64, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same input must embed identically, differs at %d", i)
		}
	}

	c, err := p.Embed(context.Background(), "kubernetes")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different inputs should not collide")
	}
}

func TestOfflineProvider_UnitNorm(t *testing.T) {
	p := NewOfflineProvider(0)
	if p.Dimension() != 1536 {
		t.Fatalf("expected default dimension 1536, got %d", p.Dimension())
	}
	if p.ModelName() != "offline-sha256" {
		t.Fatalf("unexpected model name %q", p.ModelName())
	}

	vec, err := p.Embed(context.Background(), "Go")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(sum)-1) > 1e-3 {
		t.Fatalf("expected unit norm, got %f", math.Sqrt(sum))
	}
}
