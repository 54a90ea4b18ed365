// ABOUTME: EmbeddedPoint and RetrievalCandidate models for vector storage and search
// ABOUTME: Defines the persisted point shape and the transient per-query result
package models

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// pointNamespace scopes deterministic point IDs to this pipeline.
var pointNamespace = uuid.MustParse("7f1c6f6e-9b1a-45d2-8a37-c2a14c1a8e02")

// Payload is the metadata stored alongside each vector in the index.
type Payload struct {
	Text           string `json:"text"`
	Source         string `json:"source"`
	SectionHeading string `json:"section_heading,omitempty"`
	Pages          []int  `json:"page_numbers,omitempty"`
	ChunkIndex     int    `json:"chunk_index"`
}

// EmbeddedPoint is the persisted unit in the vector index: one point per
// chunk, identified by a deterministic ID so re-uploads upsert in place.
type EmbeddedPoint struct {
	ID      string    `json:"id"`
	Vector  []float64 `json:"vector"`
	Payload Payload   `json:"payload"`
}

// Validate checks the fields the index requires for an upsert.
func (p EmbeddedPoint) Validate() error {
	if p.ID == "" {
		return errors.New("point id is empty")
	}
	if _, err := uuid.Parse(p.ID); err != nil {
		return fmt.Errorf("point id %q is not a UUID: %w", p.ID, err)
	}
	if len(p.Vector) == 0 {
		return errors.New("point vector is empty")
	}
	if p.Payload.Text == "" {
		return errors.New("point payload text is empty")
	}
	return nil
}

// PointID derives a deterministic UUID for a chunk from its source ID and
// index. Qdrant only accepts UUIDs or unsigned integers as point IDs, and
// deriving the UUID from stable inputs makes uploads idempotent.
func PointID(sourceID string, chunkIndex int) string {
	name := fmt.Sprintf("%s:%d", sourceID, chunkIndex)
	return uuid.NewSHA1(pointNamespace, []byte(name)).String()
}

// RetrievalCandidate is a transient similarity-search hit: payload plus
// score, created per query and discarded after the call completes.
type RetrievalCandidate struct {
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
	Payload Payload `json:"payload"`
}
