// ABOUTME: Embedder interface for asymmetric document/query text encoding
// ABOUTME: Implemented by the Jina REST client and the go-openai client
package embedding

import "context"

// Embedder maps text to fixed-length dense vectors. Document-side and
// query-side encodings may differ for the same text: asymmetric models
// calibrate the two variants to be compared against each other, so
// callers must not mix same-side vectors when computing similarity.
//
// Implementations are immutable after construction and safe for
// concurrent use.
type Embedder interface {
	// EmbedDocuments encodes passages for storage in the index.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error)

	// EmbedQuery encodes a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float64, error)

	// Dimension returns the vector length this embedder produces, or 0
	// before the first successful call when the model does not declare
	// it up front.
	Dimension() int
}
