// ABOUTME: Jina-style embeddings client with retrieval task variants
// ABOUTME: OpenAI-compatible REST surface plus the task field for asymmetric encoding
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/harbourview/oceanrag/internal/util"
	"github.com/harbourview/oceanrag/internal/vectorstore"
)

// Task variants for asymmetric retrieval. Passages and queries are
// encoded differently and calibrated to be compared against each other.
const (
	taskPassage = "retrieval.passage"
	taskQuery   = "retrieval.query"
)

// JinaConfig configures the Jina-compatible embeddings client.
type JinaConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// JinaEmbedder talks to a Jina-style /embeddings endpoint. The endpoint
// is OpenAI-compatible except for the extra task field selecting the
// encoding variant.
type JinaEmbedder struct {
	baseURL    string
	apiKey     string
	model      string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
	dimension  atomic.Int64
}

// NewJinaEmbedder creates the client. No model is loaded locally; the
// first network call validates the configuration.
func NewJinaEmbedder(cfg JinaConfig) (*JinaEmbedder, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("embedding base URL is required")
	}
	if cfg.Model == "" {
		cfg.Model = "jina-embeddings-v3"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	retryDelay := cfg.RetryDelay
	if retryDelay == 0 {
		retryDelay = 2 * time.Second
	}
	return &JinaEmbedder{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		client:     &http.Client{Timeout: timeout},
		maxRetries: cfg.MaxRetries,
		retryDelay: retryDelay,
	}, nil
}

// EmbedDocuments encodes passages with the passage task variant.
func (e *JinaEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return e.embed(ctx, texts, taskPassage)
}

// EmbedQuery encodes a query with the query task variant.
func (e *JinaEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	vectors, err := e.embed(ctx, []string{text}, taskQuery)
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vectors))
	}
	return vectors[0], nil
}

// Dimension returns the vector length seen on the first successful call.
func (e *JinaEmbedder) Dimension() int {
	return int(e.dimension.Load())
}

type jinaRequest struct {
	Model string   `json:"model"`
	Task  string   `json:"task"`
	Input []string `json:"input"`
}

type jinaResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

func (e *JinaEmbedder) embed(ctx context.Context, texts []string, task string) ([][]float64, error) {
	body, err := json.Marshal(jinaRequest{Model: e.model, Task: task, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(util.CalculateBackoff(e.retryDelay, attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		vectors, retryable, err := e.once(ctx, body, len(texts))
		if err == nil {
			return vectors, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, fmt.Errorf("embeddings failed after %d attempts: %w", e.maxRetries+1, lastErr)
}

// once performs a single request. The bool reports whether the failure
// is worth retrying.
func (e *JinaEmbedder) once(ctx context.Context, body []byte, want int) ([][]float64, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("%w: %v", vectorstore.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		if delay, ok := util.ParseRetryAfter(resp.Header.Get("Retry-After")); ok {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, false, ctx.Err()
			}
		}
		return nil, true, fmt.Errorf("embeddings endpoint: %s: %w", resp.Status, vectorstore.ErrUnavailable)
	}
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, false, fmt.Errorf("embeddings endpoint: %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var out jinaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, true, fmt.Errorf("decoding response: %w", err)
	}
	if len(out.Data) != want {
		return nil, false, fmt.Errorf("expected %d embeddings, got %d", want, len(out.Data))
	}

	// The API may return entries out of order; index is authoritative.
	vectors := make([][]float64, want)
	for _, d := range out.Data {
		if d.Index < 0 || d.Index >= want || len(d.Embedding) == 0 {
			return nil, false, fmt.Errorf("malformed embedding entry at index %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	e.dimension.CompareAndSwap(0, int64(len(vectors[0])))
	return vectors, false, nil
}
