// ABOUTME: Chunk and its precursors (Line, Section) for document ingestion
// ABOUTME: Typed records passed between extraction, sectioning and chunking stages
package models

import "errors"

// Line is a single line of text extracted from a source document,
// carrying the layout metadata used for section detection.
type Line struct {
	Text     string  `json:"text"`
	Page     int     `json:"page"`
	FontSize float64 `json:"font_size"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// Section groups consecutive lines under one heading. A section with no
// heading (text before the first oversized line) has an empty Heading.
type Section struct {
	Heading    string   `json:"heading"`
	Paragraphs []string `json:"paragraphs"`
	Pages      []int    `json:"pages"`
	SourceID   string   `json:"source_id"`
	Source     string   `json:"source"`
}

// HasHeading reports whether a heading line was detected for this section.
func (s Section) HasHeading() bool {
	return s.Heading != ""
}

// Chunk is the unit of embedding and retrieval: one token-bounded passage
// from a section, prefixed with that section's heading. Chunks are
// immutable once embedded.
type Chunk struct {
	// Text is the full embeddable content: Heading + "\n" + Body when a
	// heading exists, otherwise Body alone.
	Text    string `json:"text"`
	Heading string `json:"heading,omitempty"`
	Body    string `json:"body"`
	Pages   []int  `json:"pages"`
	// SourceID identifies the origin document or record.
	SourceID string `json:"source_id"`
	// Source is a human-readable origin such as a file name.
	Source string `json:"source"`
	// Index is the zero-based position of this chunk within its section.
	Index int `json:"chunk_index"`
}

// Validate checks the fields required before a chunk may be embedded.
func (c Chunk) Validate() error {
	if c.Text == "" {
		return errors.New("chunk text is empty")
	}
	if c.SourceID == "" {
		return errors.New("chunk source id is empty")
	}
	if c.Index < 0 {
		return errors.New("chunk index is negative")
	}
	return nil
}
