package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/ecomly/support-ai/internal/domain/suggest"
	apperrors "github.com/ecomly/support-ai/pkg/errors"
)

// Memory is an in-memory FAQ vector index. The first upserted record
// establishes the store dimension; every later vector must match it.
// Reads take a shared lock so concurrent searches never block each
// other; writes are exclusive.
type Memory struct {
	mu      sync.RWMutex
	records []suggest.FAQRecord
	byID    map[string]int
	dim     int
}

// NewMemory constructs an empty store.
func NewMemory() *Memory {
	return &Memory{byID: make(map[string]int)}
}

// Upsert inserts a new record or replaces the record with the same ID
// in place, keeping its original insertion rank.
func (m *Memory) Upsert(_ context.Context, record suggest.FAQRecord) error {
	if len(record.Embedding) == 0 {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "record embedding cannot be empty", nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dim == 0 {
		m.dim = len(record.Embedding)
	} else if len(record.Embedding) != m.dim {
		return apperrors.Wrap(apperrors.CodeDimensionMismatch,
			fmt.Sprintf("record %q has dimension %d, store dimension is %d", record.ID, len(record.Embedding), m.dim), nil)
	}

	if idx, ok := m.byID[record.ID]; ok {
		m.records[idx] = record
		return nil
	}
	m.byID[record.ID] = len(m.records)
	m.records = append(m.records, record)
	return nil
}

// Search returns up to k matches sorted by similarity descending.
// Equal similarities keep insertion order. An empty store yields an
// empty slice; degradation policy belongs to the caller.
func (m *Memory) Search(_ context.Context, query []float32, k int) ([]suggest.RankedMatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.records) == 0 {
		return []suggest.RankedMatch{}, nil
	}
	if len(query) != m.dim {
		return nil, apperrors.Wrap(apperrors.CodeDimensionMismatch,
			fmt.Sprintf("query has dimension %d, store dimension is %d", len(query), m.dim), nil)
	}

	matches := make([]suggest.RankedMatch, 0, len(m.records))
	for _, record := range m.records {
		matches = append(matches, suggest.RankedMatch{
			Record:     record,
			Similarity: clamp01(Cosine(query, record.Embedding)),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Len reports the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Dimension reports the established vector dimension, 0 while empty.
func (m *Memory) Dimension() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dim
}

// Cosine computes dot(a,b) / (||a||*||b||). Either norm being zero
// yields 0.0 rather than a division error. Callers are responsible for
// matching lengths; the store checks dimensions before calling.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	den := math.Sqrt(magA) * math.Sqrt(magB)
	if den == 0 {
		return 0
	}
	return dot / den
}

// clamp01 maps raw cosine into [0,1]: negative correlation is treated
// as zero relevance.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var _ suggest.VectorStore = (*Memory)(nil)
