// ABOUTME: Centralized configuration for the retrieval pipeline and ingestion driver
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Embedding provider identifiers accepted by EMBEDDING_PROVIDER.
const (
	ProviderJina   = "jina"
	ProviderOpenAI = "openai"
)

// Config holds all configuration for the retrieval pipeline
type Config struct {
	// Qdrant settings
	QdrantURL     string
	QdrantAPIKey  string
	Collection    string
	VectorDim     int
	IndexTimeout  time.Duration

	// Embedding settings
	EmbeddingProvider string
	EmbeddingBaseURL  string
	EmbeddingAPIKey   string
	EmbeddingModel    string

	// Reranker settings
	RerankerBaseURL string
	RerankerAPIKey  string
	RerankerModel   string

	// Retrieval tuning (empirically calibrated, kept configurable)
	RetrieveLimit    int
	ScoreThreshold   float64
	RerankTopN       int
	RetrievalTimeout time.Duration

	// Chunking settings
	ChunkMaxTokens int
	ChunkOverlap   int

	// Remote call retry settings
	MaxRetries int
	RetryDelay time.Duration

	// Ingestion ledger
	LedgerPath string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		QdrantURL:         getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:      os.Getenv("QDRANT_API_KEY"),
		Collection:        getEnv("QDRANT_COLLECTION", "oceanrag"),
		VectorDim:         getEnvInt("VECTOR_DIMENSION", 1024),
		IndexTimeout:      getEnvDuration("QDRANT_TIMEOUT", 15*time.Second),
		EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", ProviderJina),
		EmbeddingBaseURL:  getEnv("EMBEDDING_BASE_URL", "https://api.jina.ai/v1"),
		EmbeddingAPIKey:   os.Getenv("EMBEDDING_API_KEY"),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", "jina-embeddings-v3"),
		RerankerBaseURL:   getEnv("RERANKER_BASE_URL", "http://localhost:8087"),
		RerankerAPIKey:    os.Getenv("RERANKER_API_KEY"),
		RerankerModel:     getEnv("RERANKER_MODEL", "BAAI/bge-reranker-base"),
		RetrieveLimit:     getEnvInt("RETRIEVE_LIMIT", 100),
		ScoreThreshold:    getEnvFloat("SCORE_THRESHOLD", 0.4),
		RerankTopN:        getEnvInt("RERANK_TOP_N", 5),
		RetrievalTimeout:  getEnvDuration("RETRIEVAL_TIMEOUT", 15*time.Second),
		ChunkMaxTokens:    getEnvInt("CHUNK_MAX_TOKENS", 300),
		ChunkOverlap:      getEnvInt("CHUNK_OVERLAP", 50),
		MaxRetries:        getEnvInt("MAX_RETRIES", 3),
		RetryDelay:        getEnvDuration("RETRY_DELAY", 2*time.Second),
		LedgerPath:        getEnv("LEDGER_PATH", defaultLedgerPath()),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.ScoreThreshold < 0 || c.ScoreThreshold > 1 {
		return fmt.Errorf("SCORE_THRESHOLD must be 0-1, got %f", c.ScoreThreshold)
	}
	if c.RetrieveLimit <= 0 {
		return fmt.Errorf("RETRIEVE_LIMIT must be positive, got %d", c.RetrieveLimit)
	}
	if c.RerankTopN <= 0 {
		return fmt.Errorf("RERANK_TOP_N must be positive, got %d", c.RerankTopN)
	}
	if c.ChunkMaxTokens <= 0 {
		return fmt.Errorf("CHUNK_MAX_TOKENS must be positive, got %d", c.ChunkMaxTokens)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkMaxTokens {
		return fmt.Errorf("CHUNK_OVERLAP must be 0 to CHUNK_MAX_TOKENS-1, got %d", c.ChunkOverlap)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.EmbeddingProvider != ProviderJina && c.EmbeddingProvider != ProviderOpenAI {
		return fmt.Errorf("EMBEDDING_PROVIDER must be %q or %q, got %q", ProviderJina, ProviderOpenAI, c.EmbeddingProvider)
	}
	return nil
}

// defaultLedgerPath places the ingestion ledger in the XDG data directory.
func defaultLedgerPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".local", "share", "oceanrag", "ledger.db")
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "oceanrag", "ledger.db")
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
