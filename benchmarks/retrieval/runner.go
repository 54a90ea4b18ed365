// ABOUTME: Benchmark runner for retrieval quality scenarios
// ABOUTME: Indexes each corpus in memory, runs the retriever, and scores the ranking

package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"os"
	"strings"
	"time"

	"github.com/harbourview/oceanrag/internal/chunker"
	"github.com/harbourview/oceanrag/internal/models"
	"github.com/harbourview/oceanrag/internal/retriever"
	"github.com/harbourview/oceanrag/internal/vectorstore/memory"
)

// lexicalDim is the dimensionality of the hashed bag-of-words vectors.
const lexicalDim = 256

// lexicalEmbedder is a deterministic offline embedder: tokens are hashed
// into a fixed-size vector and the result is L2-normalised. It makes the
// benchmark self-contained; absolute scores are not comparable to a real
// embedding model, only the ranking is.
type lexicalEmbedder struct{}

func (lexicalEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vectors[i] = hashEmbed(text)
	}
	return vectors, nil
}

func (lexicalEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	return hashEmbed(text), nil
}

func (lexicalEmbedder) Dimension() int { return lexicalDim }

func hashEmbed(text string) []float64 {
	vec := make([]float64, lexicalDim)
	for _, token := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vec[h.Sum32()%lexicalDim]++
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	var tokens []string
	for _, f := range fields {
		if len(f) > 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Runner executes retrieval benchmark scenarios.
type Runner struct {
	verbose bool
}

// NewRunner creates a benchmark runner.
func NewRunner(verbose bool) *Runner {
	return &Runner{verbose: verbose}
}

// RunScenario indexes the scenario corpus into a fresh in-memory store,
// retrieves for the query, and scores the resulting source ranking.
func (r *Runner) RunScenario(ctx context.Context, scenario Scenario) (Result, error) {
	if r.verbose {
		fmt.Printf("\n=== %s ===\n%s\n", scenario.Name, scenario.Description)
	}

	embedder := lexicalEmbedder{}
	store := memory.New()
	splitter := chunker.NewSplitter(chunker.DefaultMaxTokens, chunker.DefaultOverlap)

	chunks := chunker.ChunkRecords(scenario.Corpus, splitter)
	if len(chunks) == 0 {
		return Result{}, fmt.Errorf("scenario %s has an empty corpus", scenario.ID)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return Result{}, fmt.Errorf("embedding corpus: %w", err)
	}

	if err := store.EnsureCollection(ctx, lexicalDim); err != nil {
		return Result{}, err
	}
	points := make([]models.EmbeddedPoint, len(chunks))
	for i, c := range chunks {
		points[i] = models.EmbeddedPoint{
			ID:     models.PointID(c.SourceID, i),
			Vector: vectors[i],
			Payload: models.Payload{
				Text:           c.Text,
				Source:         c.Source,
				SectionHeading: c.Heading,
				ChunkIndex:     c.Index,
			},
		}
	}
	if err := store.Upsert(ctx, points); err != nil {
		return Result{}, fmt.Errorf("indexing corpus: %w", err)
	}

	// Ranking quality is the subject here, so retrieve with no score
	// threshold; lexical scores are not on the same scale as a real
	// embedding model.
	ret := retriever.New(embedder, store)
	candidates, err := ret.Retrieve(ctx, scenario.Query, len(points), 0)
	if err != nil {
		return Result{}, fmt.Errorf("retrieving: %w", err)
	}

	ranked := rankedSources(candidates)
	result := Evaluate(scenario, ranked)

	if r.verbose {
		fmt.Printf("Query: %s\n", scenario.Query)
		fmt.Printf("Ranked sources: %v\n", ranked)
		fmt.Printf("Recall@%d: %.2f  MRR: %.2f  %s\n",
			scenario.TopK, result.RecallAtK, result.MRR, result.Status)
	}

	return result, nil
}

// RunAll executes every scenario.
func (r *Runner) RunAll(ctx context.Context) ([]Result, error) {
	scenarios := AllScenarios()
	results := make([]Result, 0, len(scenarios))
	for _, scenario := range scenarios {
		result, err := r.RunScenario(ctx, scenario)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.ID, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// ExportResults writes a JSON summary of the benchmark run.
func (r *Runner) ExportResults(results []Result, outputPath string) error {
	passed := 0
	for _, result := range results {
		if result.Status == "PASS" {
			passed++
		}
	}
	summary := map[string]any{
		"timestamp":       time.Now().Format(time.RFC3339),
		"total_scenarios": len(results),
		"passed":          passed,
		"failed":          len(results) - passed,
		"results":         results,
	}

	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}
	if err := os.WriteFile(outputPath, jsonData, 0o644); err != nil {
		return fmt.Errorf("writing results file: %w", err)
	}
	return nil
}

// rankedSources collapses the candidate list to a source ranking,
// keeping the first (best-scoring) occurrence of each source.
func rankedSources(candidates []models.RetrievalCandidate) []string {
	seen := make(map[string]bool)
	var ranked []string
	for _, c := range candidates {
		if !seen[c.Payload.Source] {
			seen[c.Payload.Source] = true
			ranked = append(ranked, c.Payload.Source)
		}
	}
	return ranked
}
