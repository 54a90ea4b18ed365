// ABOUTME: RAG facade wiring retriever and reranker behind one entry point
// ABOUTME: GetDocuments is the single operation the chat orchestrator consumes
package rag

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/harbourview/oceanrag/internal/config"
	"github.com/harbourview/oceanrag/internal/embedding"
	"github.com/harbourview/oceanrag/internal/rerank"
	"github.com/harbourview/oceanrag/internal/retriever"
	"github.com/harbourview/oceanrag/internal/vectorstore"
	"github.com/harbourview/oceanrag/internal/vectorstore/qdrant"
)

// Table is the uniform tabular result handed to the orchestrator: one
// text column, one passage per row, ready for prompt formatting.
type Table struct {
	Contents []string
}

// Len reports the number of rows.
func (t Table) Len() int { return len(t.Contents) }

// IsEmpty reports whether no relevant context was found.
func (t Table) IsEmpty() bool { return len(t.Contents) == 0 }

// Options tunes the two retrieval stages. Zero values fall back to the
// package defaults.
type Options struct {
	RetrieveLimit  int
	ScoreThreshold float64
	RerankTopN     int
	// Timeout bounds one GetDocuments call end to end. Zero disables
	// the internal deadline; the caller's context still applies.
	Timeout time.Duration
}

// RAG owns the long-lived handles of the retrieval pipeline. Construct
// it once at startup and share it across concurrent calls; nothing is
// mutated after construction.
type RAG struct {
	retriever *retriever.Retriever
	reranker  rerank.Reranker
	opts      Options
}

// New wires a RAG facade from explicitly constructed components.
func New(embedder embedding.Embedder, store vectorstore.Store, reranker rerank.Reranker, opts Options) *RAG {
	if opts.RetrieveLimit <= 0 {
		opts.RetrieveLimit = retriever.DefaultLimit
	}
	if opts.RerankTopN <= 0 {
		opts.RerankTopN = rerank.DefaultTopN
	}
	return &RAG{
		retriever: retriever.New(embedder, store),
		reranker:  reranker,
		opts:      opts,
	}
}

// FromConfig builds the production pipeline: the configured embedding
// provider, a Qdrant store and a cross-encoder reranker.
func FromConfig(cfg *config.Config) (*RAG, error) {
	embedder, err := NewEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	store := qdrant.New(qdrant.Config{
		URL:        cfg.QdrantURL,
		APIKey:     cfg.QdrantAPIKey,
		Collection: cfg.Collection,
		Timeout:    cfg.IndexTimeout,
	})

	reranker, err := rerank.NewCrossEncoder(rerank.Config{
		BaseURL:    cfg.RerankerBaseURL,
		APIKey:     cfg.RerankerAPIKey,
		Model:      cfg.RerankerModel,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	})
	if err != nil {
		return nil, err
	}

	return New(embedder, store, reranker, Options{
		RetrieveLimit:  cfg.RetrieveLimit,
		ScoreThreshold: cfg.ScoreThreshold,
		RerankTopN:     cfg.RerankTopN,
		Timeout:        cfg.RetrievalTimeout,
	}), nil
}

// NewEmbedder constructs the embedding client selected by the config.
func NewEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case config.ProviderOpenAI:
		return embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
			APIKey:     cfg.EmbeddingAPIKey,
			BaseURL:    cfg.EmbeddingBaseURL,
			Model:      cfg.EmbeddingModel,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
		})
	case config.ProviderJina:
		return embedding.NewJinaEmbedder(embedding.JinaConfig{
			BaseURL:    cfg.EmbeddingBaseURL,
			APIKey:     cfg.EmbeddingAPIKey,
			Model:      cfg.EmbeddingModel,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
}

// GetDocuments retrieves, reranks and projects the passages relevant to
// a question. A question with no sufficiently similar passages yields a
// zero-row table without invoking the reranker. On timeout the caller
// receives a retrieval-unavailable error rather than a silently
// truncated result.
func (r *RAG) GetDocuments(ctx context.Context, question string) (Table, error) {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	candidates, err := r.retriever.Retrieve(ctx, question, r.opts.RetrieveLimit, r.opts.ScoreThreshold)
	if err != nil {
		return Table{}, r.classify(err)
	}
	if len(candidates) == 0 {
		log.Printf("rag: no passages above threshold %.2f for question", r.opts.ScoreThreshold)
		return Table{}, nil
	}

	reranked, err := r.reranker.Rerank(ctx, question, candidates, r.opts.RerankTopN)
	if err != nil {
		return Table{}, r.classify(err)
	}

	contents := make([]string, len(reranked))
	for i, c := range reranked {
		contents[i] = c.Text
	}
	return Table{Contents: contents}, nil
}

// classify folds deadline expiry into the unavailable condition so the
// orchestrator sees one degradation signal.
func (r *RAG) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("retrieval unavailable: %w", vectorstore.ErrUnavailable)
	}
	return err
}
