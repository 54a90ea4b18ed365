// ABOUTME: Minimal Qdrant REST client assuming cosine distance
// ABOUTME: Maps transport and dimension failures onto the store error taxonomy
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/harbourview/oceanrag/internal/models"
	"github.com/harbourview/oceanrag/internal/vectorstore"
)

// Store is a REST client bound to one Qdrant collection.
type Store struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

// Config contains connection details for a Qdrant backend.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// New creates a Store. The connection itself is lazy; nothing is sent
// until the first call.
func New(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:        strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// EnsureCollection creates the collection with cosine distance if it is
// missing. Qdrant answers 200 for an existing collection with the same
// schema, so the call is safe to repeat.
func (s *Store) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	s.dimension = dimension
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return s.do(ctx, http.MethodPut, s.collectionURL(""), body, nil)
}

// Upsert writes points by ID. Vector lengths are validated locally
// before anything is sent so a misconfigured embedder cannot corrupt
// the index.
func (s *Store) Upsert(ctx context.Context, points []models.EmbeddedPoint) error {
	if len(points) == 0 {
		return nil
	}
	payload := make([]map[string]any, len(points))
	for i, p := range points {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
		if s.dimension > 0 && len(p.Vector) != s.dimension {
			return fmt.Errorf("point %s has %d dimensions, collection has %d: %w",
				p.ID, len(p.Vector), s.dimension, vectorstore.ErrDimensionMismatch)
		}
		payload[i] = map[string]any{
			"id":      p.ID,
			"vector":  p.Vector,
			"payload": p.Payload,
		}
	}
	body := map[string]any{"points": payload}
	return s.do(ctx, http.MethodPut, s.collectionURL("/points?wait=true"), body, nil)
}

// Search returns the nearest neighbours ordered by descending score.
func (s *Store) Search(ctx context.Context, vector []float64, limit int, withPayload bool) ([]models.RetrievalCandidate, error) {
	if limit <= 0 {
		limit = 10
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": withPayload,
		"with_vector":  false,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload models.Payload `json:"payload"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, s.collectionURL("/points/search"), req, &resp); err != nil {
		return nil, err
	}
	candidates := make([]models.RetrievalCandidate, 0, len(resp.Result))
	for _, r := range resp.Result {
		candidates = append(candidates, models.RetrievalCandidate{
			Text:    r.Payload.Text,
			Score:   r.Score,
			Payload: r.Payload,
		})
	}
	return candidates, nil
}

func (s *Store) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.url, s.collection, suffix)
}

func (s *Store) do(ctx context.Context, method, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", vectorstore.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if isDimensionError(resp.StatusCode, detail) {
			return fmt.Errorf("qdrant %s %s: %s: %w", method, url, strings.TrimSpace(string(detail)), vectorstore.ErrDimensionMismatch)
		}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusServiceUnavailable {
			return fmt.Errorf("qdrant %s %s: %s: %w", method, url, resp.Status, vectorstore.ErrUnavailable)
		}
		return fmt.Errorf("qdrant %s %s failed: %s: %s", method, url, resp.Status, strings.TrimSpace(string(detail)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// isDimensionError recognises Qdrant's bad-request complaint about a
// vector whose length does not match the collection schema.
func isDimensionError(status int, body []byte) bool {
	return status == http.StatusBadRequest && bytes.Contains(bytes.ToLower(body), []byte("dimension"))
}
