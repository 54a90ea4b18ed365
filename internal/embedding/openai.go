// ABOUTME: OpenAI embeddings client for symmetric models
// ABOUTME: Document and query paths share one encoding; retries with backoff
package embedding

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/harbourview/oceanrag/internal/util"
)

// maxBatchSize bounds one embeddings request. The API accepts more, but
// large ingestion batches are friendlier to rate limits in slices.
const maxBatchSize = 128

// OpenAIConfig configures the OpenAI embeddings client.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxRetries int
	RetryDelay time.Duration
}

// OpenAIEmbedder wraps the go-openai client. OpenAI embedding models are
// symmetric: the same encoding serves both documents and queries, so
// both interface paths call the same endpoint.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	maxRetries int
	retryDelay time.Duration
	dimension  atomic.Int64
}

// NewOpenAIEmbedder creates a new OpenAI embeddings client.
func NewOpenAIEmbedder(cfg OpenAIConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	model := openai.EmbeddingModel(cfg.Model)
	if cfg.Model == "" {
		model = openai.SmallEmbedding3
	}
	retryDelay := cfg.RetryDelay
	if retryDelay == 0 {
		retryDelay = 2 * time.Second
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      model,
		maxRetries: cfg.MaxRetries,
		retryDelay: retryDelay,
	}, nil
}

// EmbedDocuments encodes passages in batches.
func (e *OpenAIEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := e.embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

// EmbedQuery encodes a single query string.
func (e *OpenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	vectors, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Dimension returns the vector length seen on the first successful call.
func (e *OpenAIEmbedder) Dimension() int {
	return int(e.dimension.Load())
}

func (e *OpenAIEmbedder) embed(ctx context.Context, texts []string) ([][]float64, error) {
	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(util.CalculateBackoff(e.retryDelay, attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: texts,
			Model: e.model,
		})
		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if len(resp.Data) != len(texts) {
			lastErr = fmt.Errorf("attempt %d: expected %d embeddings, got %d", attempt+1, len(texts), len(resp.Data))
			continue
		}

		vectors := make([][]float64, len(texts))
		for i, d := range resp.Data {
			vec := make([]float64, len(d.Embedding))
			for j, v := range d.Embedding {
				vec[j] = float64(v)
			}
			vectors[i] = vec
		}
		e.dimension.CompareAndSwap(0, int64(len(vectors[0])))
		return vectors, nil
	}
	return nil, fmt.Errorf("embeddings failed after %d attempts: %w", e.maxRetries+1, lastErr)
}
