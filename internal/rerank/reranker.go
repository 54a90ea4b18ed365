// ABOUTME: Cross-encoder reranking over the retriever's candidate pool
// ABOUTME: Interface plus a REST client for TEI-style rerank endpoints
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/harbourview/oceanrag/internal/models"
	"github.com/harbourview/oceanrag/internal/util"
	"github.com/harbourview/oceanrag/internal/vectorstore"
)

// DefaultTopN is the number of passages forwarded to the language
// model's context window after reranking.
const DefaultTopN = 5

// Reranker re-scores (query, document) pairs jointly, producing a
// higher-precision ordering than embedding similarity alone. It only
// ever reorders and truncates its input; it never introduces documents.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []models.RetrievalCandidate, topN int) ([]models.RetrievalCandidate, error)
}

// Config configures the cross-encoder REST client.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// CrossEncoder calls a text-embeddings-inference style /rerank endpoint:
// the request carries the query and the candidate texts, the response a
// relevance score per input index.
type CrossEncoder struct {
	baseURL    string
	apiKey     string
	model      string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
}

// NewCrossEncoder creates the client.
func NewCrossEncoder(cfg Config) (*CrossEncoder, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("reranker base URL is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	retryDelay := cfg.RetryDelay
	if retryDelay == 0 {
		retryDelay = 2 * time.Second
	}
	return &CrossEncoder{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		client:     &http.Client{Timeout: timeout},
		maxRetries: cfg.MaxRetries,
		retryDelay: retryDelay,
	}, nil
}

type rerankRequest struct {
	Model     string   `json:"model,omitempty"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Results []struct {
		Index int     `json:"index"`
		Score float64 `json:"relevance_score"`
	} `json:"results"`
}

// Rerank scores each candidate against the query and returns the topN
// highest, descending. An empty candidate set short-circuits without a
// network call.
func (c *CrossEncoder) Rerank(ctx context.Context, query string, candidates []models.RetrievalCandidate, topN int) ([]models.RetrievalCandidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	texts := make([]string, len(candidates))
	for i, cand := range candidates {
		texts[i] = cand.Text
	}

	scores, err := c.score(ctx, query, texts)
	if err != nil {
		return nil, err
	}

	reranked := make([]models.RetrievalCandidate, len(candidates))
	for i, cand := range candidates {
		cand.Score = scores[i]
		reranked[i] = cand
	}
	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Score > reranked[j].Score
	})
	if len(reranked) > topN {
		reranked = reranked[:topN]
	}
	return reranked, nil
}

func (c *CrossEncoder) score(ctx context.Context, query string, texts []string) ([]float64, error) {
	body, err := json.Marshal(rerankRequest{Model: c.model, Query: query, Documents: texts})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(util.CalculateBackoff(c.retryDelay, attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		scores, retryable, err := c.once(ctx, body, len(texts))
		if err == nil {
			return scores, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, fmt.Errorf("rerank failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *CrossEncoder) once(ctx context.Context, body []byte, want int) ([]float64, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
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
		return nil, true, fmt.Errorf("rerank endpoint: %s: %w", resp.Status, vectorstore.ErrUnavailable)
	}
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, false, fmt.Errorf("rerank endpoint: %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var out rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, true, fmt.Errorf("decoding response: %w", err)
	}

	scores := make([]float64, want)
	seen := make([]bool, want)
	for _, r := range out.Results {
		if r.Index < 0 || r.Index >= want {
			return nil, false, fmt.Errorf("rerank result index %d out of range", r.Index)
		}
		scores[r.Index] = r.Score
		seen[r.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, false, fmt.Errorf("rerank response missing score for document %d", i)
		}
	}
	return scores, false, nil
}
