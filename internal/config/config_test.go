// ABOUTME: Tests for centralized configuration system
// ABOUTME: Verifies environment variable parsing and validation
package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear environment to test defaults
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Verify defaults
	if cfg.QdrantURL != "http://localhost:6333" {
		t.Errorf("QdrantURL = %s, want http://localhost:6333", cfg.QdrantURL)
	}
	if cfg.Collection != "oceanrag" {
		t.Errorf("Collection = %s, want oceanrag", cfg.Collection)
	}
	if cfg.EmbeddingProvider != ProviderJina {
		t.Errorf("EmbeddingProvider = %s, want %s", cfg.EmbeddingProvider, ProviderJina)
	}
	if cfg.EmbeddingModel != "jina-embeddings-v3" {
		t.Errorf("EmbeddingModel = %s, want jina-embeddings-v3", cfg.EmbeddingModel)
	}
	if cfg.VectorDim != 1024 {
		t.Errorf("VectorDim = %d, want 1024", cfg.VectorDim)
	}
	if cfg.RetrieveLimit != 100 {
		t.Errorf("RetrieveLimit = %d, want 100", cfg.RetrieveLimit)
	}
	if cfg.ScoreThreshold != 0.4 {
		t.Errorf("ScoreThreshold = %f, want 0.4", cfg.ScoreThreshold)
	}
	if cfg.RerankTopN != 5 {
		t.Errorf("RerankTopN = %d, want 5", cfg.RerankTopN)
	}
	if cfg.ChunkMaxTokens != 300 {
		t.Errorf("ChunkMaxTokens = %d, want 300", cfg.ChunkMaxTokens)
	}
	if cfg.ChunkOverlap != 50 {
		t.Errorf("ChunkOverlap = %d, want 50", cfg.ChunkOverlap)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.RetryDelay != 2*time.Second {
		t.Errorf("RetryDelay = %v, want 2s", cfg.RetryDelay)
	}
	if cfg.RetrievalTimeout != 15*time.Second {
		t.Errorf("RetrievalTimeout = %v, want 15s", cfg.RetrievalTimeout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Clearenv()
	t.Setenv("QDRANT_URL", "https://qdrant.example.com:6333")
	t.Setenv("QDRANT_COLLECTION", "cambridge-bay")
	t.Setenv("SCORE_THRESHOLD", "0.55")
	t.Setenv("RETRIEVE_LIMIT", "50")
	t.Setenv("RERANK_TOP_N", "3")
	t.Setenv("RETRIEVAL_TIMEOUT", "5s")
	t.Setenv("EMBEDDING_PROVIDER", "openai")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.QdrantURL != "https://qdrant.example.com:6333" {
		t.Errorf("QdrantURL = %s", cfg.QdrantURL)
	}
	if cfg.Collection != "cambridge-bay" {
		t.Errorf("Collection = %s", cfg.Collection)
	}
	if cfg.ScoreThreshold != 0.55 {
		t.Errorf("ScoreThreshold = %f, want 0.55", cfg.ScoreThreshold)
	}
	if cfg.RetrieveLimit != 50 {
		t.Errorf("RetrieveLimit = %d, want 50", cfg.RetrieveLimit)
	}
	if cfg.RerankTopN != 3 {
		t.Errorf("RerankTopN = %d, want 3", cfg.RerankTopN)
	}
	if cfg.RetrievalTimeout != 5*time.Second {
		t.Errorf("RetrievalTimeout = %v, want 5s", cfg.RetrievalTimeout)
	}
	if cfg.EmbeddingProvider != ProviderOpenAI {
		t.Errorf("EmbeddingProvider = %s, want openai", cfg.EmbeddingProvider)
	}
}

func TestValidate_Bounds(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"threshold above 1", func(c *Config) { c.ScoreThreshold = 1.5 }, true},
		{"threshold below 0", func(c *Config) { c.ScoreThreshold = -0.1 }, true},
		{"threshold at 1 allowed", func(c *Config) { c.ScoreThreshold = 1.0 }, false},
		{"zero retrieve limit", func(c *Config) { c.RetrieveLimit = 0 }, true},
		{"zero top n", func(c *Config) { c.RerankTopN = 0 }, true},
		{"zero max tokens", func(c *Config) { c.ChunkMaxTokens = 0 }, true},
		{"overlap equal to max tokens", func(c *Config) { c.ChunkOverlap = c.ChunkMaxTokens }, true},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }, true},
		{"retries above 10", func(c *Config) { c.MaxRetries = 11 }, true},
		{"unknown provider", func(c *Config) { c.EmbeddingProvider = "huggingface" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
