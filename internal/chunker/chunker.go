// ABOUTME: Chunker entry points for pre-structured catalog records
// ABOUTME: Defines the Record input shape and the parse error sentinel
package chunker

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/harbourview/oceanrag/internal/models"
)

// ErrParse marks a source document that could not be read or decoded.
// Ingestion skips the offending source and continues with the rest of
// the batch.
var ErrParse = errors.New("unparseable source document")

// Record is a pre-structured input from the sensor platform's own
// device and location catalog. It bypasses PDF layout inference and goes
// straight to the splitting stage.
type Record struct {
	ID         string   `json:"id"`
	Source     string   `json:"source"`
	Heading    string   `json:"heading"`
	Paragraphs []string `json:"paragraphs"`
	Page       int      `json:"page"`
}

// ChunkRecords applies the chunking stage to caller-supplied records.
// Records with no text are skipped; an empty input produces no chunks.
func ChunkRecords(records []Record, sp Splitter) []models.Chunk {
	var chunks []models.Chunk
	for _, rec := range records {
		section := models.Section{
			Heading:    rec.Heading,
			Paragraphs: rec.Paragraphs,
			SourceID:   rec.ID,
			Source:     rec.Source,
		}
		if rec.Page > 0 {
			section.Pages = []int{rec.Page}
		}
		chunks = append(chunks, ChunkSection(section, sp)...)
	}
	return chunks
}

// DecodeRecords reads a JSON array of records, as exported by the
// platform catalog scraper.
func DecodeRecords(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: decoding records: %v", ErrParse, err)
	}
	for i, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("%w: record %d has no id", ErrParse, i)
		}
	}
	return records, nil
}
