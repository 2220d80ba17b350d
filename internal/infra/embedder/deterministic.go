package embedder

import (
	"context"
	"hash/fnv"

	"github.com/ecomly/support-ai/internal/domain/suggest"
)

// Deterministic avoids network calls by hashing text into a vector.
// Identical texts always map to identical vectors, which keeps cosine
// ranking meaningful enough for local development and tests.
type Deterministic struct {
	dim int
}

// NewDeterministic constructs the embedder.
func NewDeterministic(dim int) *Deterministic {
	if dim <= 0 {
		dim = 32
	}
	return &Deterministic{dim: dim}
}

// Embed converts the text into a pseudo-random vector.
func (e *Deterministic) Embed(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, e.dim)
	hash := fnv.New64a()
	_, _ = hash.Write([]byte(text))
	seed := hash.Sum64()
	for j := 0; j < e.dim; j++ {
		seed = seed*1099511628211 + 1469598103934665603
		vector[j] = float32(seed%997) / 997.0
	}
	return vector, nil
}

var _ suggest.Embedder = (*Deterministic)(nil)
