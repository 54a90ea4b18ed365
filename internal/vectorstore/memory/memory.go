// ABOUTME: In-memory vector store with brute-force cosine similarity search
// ABOUTME: Backs tests and local runs where no Qdrant instance is available
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/harbourview/oceanrag/internal/models"
	"github.com/harbourview/oceanrag/internal/vectorstore"
)

// Store keeps points in a map keyed by ID. Safe for concurrent readers
// and writers.
type Store struct {
	mu        sync.RWMutex
	dimension int
	points    map[string]models.EmbeddedPoint
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{points: make(map[string]models.EmbeddedPoint)}
}

// EnsureCollection fixes the store's dimensionality. Calling it again
// with a different dimension fails rather than silently re-creating.
func (s *Store) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && s.dimension != dimension {
		return fmt.Errorf("collection has dimension %d, requested %d: %w",
			s.dimension, dimension, vectorstore.ErrDimensionMismatch)
	}
	s.dimension = dimension
	return nil
}

// Upsert stores points, replacing existing ones by ID.
func (s *Store) Upsert(ctx context.Context, points []models.EmbeddedPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range points {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
		if s.dimension != 0 && len(p.Vector) != s.dimension {
			return fmt.Errorf("point %s has %d dimensions, collection has %d: %w",
				p.ID, len(p.Vector), s.dimension, vectorstore.ErrDimensionMismatch)
		}
		s.points[p.ID] = p
	}
	return nil
}

// Search scores every stored point against the query vector and returns
// the top limit by cosine similarity.
func (s *Store) Search(ctx context.Context, vector []float64, limit int, withPayload bool) ([]models.RetrievalCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]models.RetrievalCandidate, 0, len(s.points))
	for _, p := range s.points {
		candidate := models.RetrievalCandidate{Score: cosineSimilarity(vector, p.Vector)}
		if withPayload {
			candidate.Text = p.Payload.Text
			candidate.Payload = p.Payload
		}
		results = append(results, candidate)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Len reports the number of stored points.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

// cosineSimilarity calculates cosine similarity between two vectors
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
