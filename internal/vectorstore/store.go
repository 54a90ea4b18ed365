// ABOUTME: Vector store interface and error taxonomy for the retrieval pipeline
// ABOUTME: Implemented by the Qdrant REST client and the in-memory store
package vectorstore

import (
	"context"
	"errors"

	"github.com/harbourview/oceanrag/internal/models"
)

// ErrUnavailable marks an unreachable similarity-search backend. The
// orchestrator degrades to answering without retrieved context rather
// than failing the whole chat turn.
var ErrUnavailable = errors.New("vector store unavailable")

// ErrDimensionMismatch marks a vector whose length disagrees with the
// collection's configured dimensionality. Fatal for the upload batch;
// malformed points must never reach the index.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Store owns the connection to a similarity-search backend and a single
// target collection.
type Store interface {
	// EnsureCollection creates the collection with the given vector
	// dimensionality if it does not already exist.
	EnsureCollection(ctx context.Context, dimension int) error

	// Upsert writes points idempotently by ID: re-uploading a point
	// replaces its vector and payload, never duplicates it.
	Upsert(ctx context.Context, points []models.EmbeddedPoint) error

	// Search returns up to limit nearest neighbours ordered by
	// descending similarity score. When withPayload is false the
	// response carries scores only, saving bandwidth.
	Search(ctx context.Context, vector []float64, limit int, withPayload bool) ([]models.RetrievalCandidate, error)
}
