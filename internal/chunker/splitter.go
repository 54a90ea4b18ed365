// ABOUTME: Sentence-boundary text splitting with a token budget and word overlap
// ABOUTME: Packs section text into heading-prefixed chunks for embedding
package chunker

import (
	"regexp"
	"strings"

	"github.com/harbourview/oceanrag/internal/models"
)

// Default chunking parameters. Small chunks match and rank better than
// page-sized ones against short natural-language questions.
const (
	DefaultMaxTokens = 300
	DefaultOverlap   = 50
)

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)

// Splitter packs sentences into chunks bounded by a token budget, where a
// token is a whitespace-delimited word. The last Overlap words of each
// chunk are carried into the start of the next so local context survives
// a chunk boundary.
type Splitter struct {
	MaxTokens int
	Overlap   int
}

// NewSplitter returns a Splitter, substituting defaults for out-of-range
// parameters.
func NewSplitter(maxTokens, overlap int) Splitter {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= maxTokens {
		overlap = maxTokens - 1
	}
	return Splitter{MaxTokens: maxTokens, Overlap: overlap}
}

// Split chunks a text blob under the given heading. Sentences are packed
// until adding the next one would exceed the budget; a single sentence
// longer than the budget still becomes one oversized chunk rather than
// being cut mid-sentence.
func (sp Splitter) Split(text, heading string) []string {
	var bodies []string
	var current []string

	for _, sentence := range splitSentences(text) {
		words := strings.Fields(sentence)
		if len(words) == 0 {
			continue
		}
		if len(current) > 0 && len(current)+len(words) > sp.MaxTokens {
			bodies = append(bodies, strings.Join(current, " "))
			current = overlapTail(current, sp.Overlap)
		}
		current = append(current, words...)
	}
	if len(current) > 0 {
		bodies = append(bodies, strings.Join(current, " "))
	}

	chunks := make([]string, len(bodies))
	for i, body := range bodies {
		chunks[i] = joinHeading(heading, body)
	}
	return chunks
}

// SplitBodies is Split without the heading prefix, returning raw chunk
// bodies. Used where heading and body must stay separable.
func (sp Splitter) SplitBodies(text string) []string {
	return sp.Split(text, "")
}

// splitSentences tokenizes on sentence-ending punctuation. A trailing
// fragment without terminal punctuation is kept as a final sentence so
// no source text is dropped.
func splitSentences(text string) []string {
	matches := sentencePattern.FindAllStringIndex(text, -1)
	var sentences []string
	last := 0
	for _, m := range matches {
		s := strings.TrimSpace(text[m[0]:m[1]])
		if s != "" {
			sentences = append(sentences, s)
		}
		last = m[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

func overlapTail(words []string, overlap int) []string {
	if overlap <= 0 {
		return nil
	}
	if overlap >= len(words) {
		overlap = len(words)
	}
	tail := make([]string, overlap)
	copy(tail, words[len(words)-overlap:])
	return tail
}

func joinHeading(heading, body string) string {
	if heading == "" {
		return body
	}
	return heading + "\n" + body
}

// ChunkSection splits one section into validated chunks, prefixing each
// with the section heading when present.
func ChunkSection(section models.Section, sp Splitter) []models.Chunk {
	text := strings.Join(section.Paragraphs, " ")
	bodies := sp.SplitBodies(text)

	var chunks []models.Chunk
	for i, body := range bodies {
		chunk := models.Chunk{
			Text:     joinHeading(section.Heading, body),
			Heading:  section.Heading,
			Body:     body,
			Pages:    section.Pages,
			SourceID: section.SourceID,
			Source:   section.Source,
			Index:    i,
		}
		if chunk.Validate() != nil {
			continue
		}
		chunks = append(chunks, chunk)
	}

	// A heading with no paragraph text is still worth indexing on its own.
	if len(chunks) == 0 && section.HasHeading() {
		chunk := models.Chunk{
			Text:     section.Heading,
			Heading:  section.Heading,
			Pages:    section.Pages,
			SourceID: section.SourceID,
			Source:   section.Source,
			Index:    0,
		}
		if chunk.Validate() == nil {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// ChunkSections flattens a section list into chunks.
func ChunkSections(sections []models.Section, sp Splitter) []models.Chunk {
	var chunks []models.Chunk
	for _, section := range sections {
		chunks = append(chunks, ChunkSection(section, sp)...)
	}
	return chunks
}
