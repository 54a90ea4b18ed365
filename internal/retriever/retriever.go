// ABOUTME: First-stage retrieval: embed query, similarity search, threshold filter
// ABOUTME: Produces the candidate pool handed to the cross-encoder reranker
package retriever

import (
	"context"
	"fmt"

	"github.com/harbourview/oceanrag/internal/embedding"
	"github.com/harbourview/oceanrag/internal/models"
	"github.com/harbourview/oceanrag/internal/vectorstore"
)

// Default retrieval tuning. A wide candidate pool gives the reranker
// room to work; the threshold keeps implausible matches out of it.
const (
	DefaultLimit          = 100
	DefaultScoreThreshold = 0.4
)

// Retriever turns a raw query string into a filtered, scored candidate
// list. It holds the long-lived embedder and store handles; construction
// happens once and the value is safe for concurrent use.
type Retriever struct {
	embedder embedding.Embedder
	store    vectorstore.Store
}

// New creates a Retriever over the given embedder and store.
func New(embedder embedding.Embedder, store vectorstore.Store) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Retrieve encodes the query, searches the top k nearest points and
// drops every candidate scoring strictly below threshold. The result is
// in descending score order. An empty result means no relevant context
// was found; it is not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int, threshold float64) ([]models.RetrievalCandidate, error) {
	if k <= 0 {
		k = DefaultLimit
	}

	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	candidates, err := r.store.Search(ctx, vector, k, true)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	// The store returns candidates in descending score order, so the
	// filtered slice keeps that order.
	var kept []models.RetrievalCandidate
	for _, c := range candidates {
		if c.Score >= threshold {
			kept = append(kept, c)
		}
	}
	return kept, nil
}
