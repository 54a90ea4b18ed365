// ABOUTME: Tests for cross-encoder reranking against a stub HTTP server
// ABOUTME: Verifies output size, subset property, ordering and empty short-circuit
package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harbourview/oceanrag/internal/models"
)

func newTestEncoder(t *testing.T, url string) *CrossEncoder {
	t.Helper()
	c, err := NewCrossEncoder(Config{
		BaseURL:    url,
		Model:      "BAAI/bge-reranker-base",
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewCrossEncoder: %v", err)
	}
	return c
}

// scoreServer answers /rerank with the given score per input index.
func scoreServer(t *testing.T, scores []float64, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		if r.URL.Path != "/rerank" {
			t.Errorf("path = %s, want /rerank", r.URL.Path)
		}
		var req rerankRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		results := make([]map[string]any, len(req.Documents))
		for i := range req.Documents {
			results[i] = map[string]any{"index": i, "relevance_score": scores[i]}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
}

func namedCandidates(names ...string) []models.RetrievalCandidate {
	out := make([]models.RetrievalCandidate, len(names))
	for i, n := range names {
		out[i] = models.RetrievalCandidate{Text: n, Score: 0.5}
	}
	return out
}

func TestRerank_ReordersByRelevance(t *testing.T) {
	// Candidate "b" gets the highest cross-encoder score.
	srv := scoreServer(t, []float64{0.2, 0.9, 0.5}, nil)
	defer srv.Close()

	c := newTestEncoder(t, srv.URL)
	got, err := c.Rerank(context.Background(), "query", namedCandidates("a", "b", "c"), 3)
	if err != nil {
		t.Fatalf("Rerank: %v", err)
	}

	want := []string{"b", "c", "a"}
	if len(got) != 3 {
		t.Fatalf("got %d results", len(got))
	}
	for i := range want {
		if got[i].Text != want[i] {
			t.Errorf("position %d = %q, want %q", i, got[i].Text, want[i])
		}
	}
	if got[0].Score != 0.9 {
		t.Errorf("top score = %f, want cross-encoder score 0.9", got[0].Score)
	}
}

func TestRerank_OutputSize(t *testing.T) {
	tests := []struct {
		name       string
		candidates int
		topN       int
		wantSize   int
	}{
		{"truncates to topN", 10, 5, 5},
		{"fewer candidates than topN returns all", 3, 5, 3},
		{"topN one", 4, 1, 1},
		{"zero topN uses default", 10, 0, DefaultTopN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores := make([]float64, tt.candidates)
			names := make([]string, tt.candidates)
			for i := range scores {
				scores[i] = float64(i) / 10
				names[i] = "doc"
			}
			srv := scoreServer(t, scores, nil)
			defer srv.Close()

			c := newTestEncoder(t, srv.URL)
			got, err := c.Rerank(context.Background(), "q", namedCandidates(names...), tt.topN)
			if err != nil {
				t.Fatalf("Rerank: %v", err)
			}
			if len(got) != tt.wantSize {
				t.Errorf("output size = %d, want %d", len(got), tt.wantSize)
			}
		})
	}
}

func TestRerank_SubsetOfInput(t *testing.T) {
	srv := scoreServer(t, []float64{0.1, 0.8, 0.3, 0.6}, nil)
	defer srv.Close()

	input := namedCandidates("w", "x", "y", "z")
	inputTexts := map[string]bool{}
	for _, c := range input {
		inputTexts[c.Text] = true
	}

	c := newTestEncoder(t, srv.URL)
	got, err := c.Rerank(context.Background(), "q", input, 2)
	if err != nil {
		t.Fatalf("Rerank: %v", err)
	}
	for _, cand := range got {
		if !inputTexts[cand.Text] {
			t.Errorf("output contains document absent from input: %q", cand.Text)
		}
	}
}

func TestRerank_EmptyInputShortCircuits(t *testing.T) {
	var calls atomic.Int32
	srv := scoreServer(t, nil, &calls)
	defer srv.Close()

	c := newTestEncoder(t, srv.URL)
	got, err := c.Rerank(context.Background(), "q", nil, 5)
	if err != nil {
		t.Fatalf("Rerank on empty input: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil result, got %v", got)
	}
	if calls.Load() != 0 {
		t.Errorf("empty input still hit the endpoint %d times", calls.Load())
	}
}

func TestRerank_SendsModelAndQuery(t *testing.T) {
	var gotReq rerankRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"index": 0, "relevance_score": 0.7}},
		})
	}))
	defer srv.Close()

	c := newTestEncoder(t, srv.URL)
	if _, err := c.Rerank(context.Background(), "What is measured?", namedCandidates("doc"), 1); err != nil {
		t.Fatalf("Rerank: %v", err)
	}
	if gotReq.Model != "BAAI/bge-reranker-base" || gotReq.Query != "What is measured?" {
		t.Errorf("request = %+v", gotReq)
	}
	if len(gotReq.Documents) != 1 || gotReq.Documents[0] != "doc" {
		t.Errorf("documents = %v", gotReq.Documents)
	}
}

func TestRerank_MissingScoreRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Two documents in, one score out.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"index": 0, "relevance_score": 0.7}},
		})
	}))
	defer srv.Close()

	c := newTestEncoder(t, srv.URL)
	if _, err := c.Rerank(context.Background(), "q", namedCandidates("a", "b"), 2); err == nil {
		t.Error("expected error for missing score")
	}
}
