package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/stroytech/stroybot/internal/domain"
)

// MemoryStore is a brute-force cosine similarity index kept entirely in
// memory. It is the store used in tests and when no database is configured.
// Concurrent readers are allowed during search; writes take the exclusive
// lock.
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	entries   []Entry
	byID      map[string]int
}

// NewMemoryStore creates a store for vectors of the given dimension.
func NewMemoryStore(dimension int) (*MemoryStore, error) {
	if dimension <= 0 {
		return nil, domain.NewDomainError(domain.ErrCodeConfiguration, "vector dimension must be positive")
	}
	return &MemoryStore{
		dimension: dimension,
		byID:      make(map[string]int),
	}, nil
}

// Upsert inserts new entries or overwrites entries whose ID already exists.
// An overwrite keeps the entry's original insertion position so tie-breaking
// stays stable across re-ingestion.
func (s *MemoryStore) Upsert(ctx context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		if len(e.Vector) != s.dimension {
			return domain.NewDomainErrorWithCause(domain.ErrCodeConfiguration,
				"entry vector dimension mismatch", domain.ErrDimensionMismatch)
		}
		if pos, ok := s.byID[e.ID]; ok {
			s.entries[pos] = e
			continue
		}
		s.byID[e.ID] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return nil
}

// Search returns the k entries with the highest cosine similarity to the
// query vector, sorted descending, ties broken by insertion order. An empty
// store yields an empty result without error.
func (s *MemoryStore) Search(ctx context.Context, vector []float32, k int) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(vector) != s.dimension {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeConfiguration,
			"query vector dimension mismatch", domain.ErrDimensionMismatch)
	}
	if k <= 0 || len(s.entries) == 0 {
		return []Match{}, nil
	}

	type scored struct {
		pos   int
		score float32
	}
	candidates := make([]scored, len(s.entries))
	for i, e := range s.entries {
		candidates[i] = scored{pos: i, score: CosineSimilarity(vector, e.Vector)}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	matches := make([]Match, 0, k)
	for _, c := range candidates[:k] {
		matches = append(matches, Match{Entry: s.entries[c.pos], Score: c.score})
	}
	return matches, nil
}

// Count returns the number of stored entries.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Sample returns up to limit entries in insertion order for inspection.
func (s *MemoryStore) Sample(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.entries) {
		limit = len(s.entries)
	}
	sample := make([]Entry, limit)
	copy(sample, s.entries[:limit])
	return sample, nil
}

// CosineSimilarity computes the cosine similarity of two vectors, clamped to
// [0, 1]. Vectors are not assumed to be normalized.
func CosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return float32(sim)
}
