// ABOUTME: Ingestion pipeline: chunk sources, embed passages, upload points
// ABOUTME: Batch-tolerant; single-source failures are reported, not fatal
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/harbourview/oceanrag/internal/chunker"
	"github.com/harbourview/oceanrag/internal/embedding"
	"github.com/harbourview/oceanrag/internal/models"
	"github.com/harbourview/oceanrag/internal/vectorstore"
)

// Source kinds accepted by the pipeline.
const (
	KindPDF     = "pdf"
	KindRecords = "records"
)

// uploadBatchSize bounds one upsert request to the index.
const uploadBatchSize = 64

// Source names one input to ingest: a PDF file or a JSON file of
// pre-structured catalog records.
type Source struct {
	Kind string `yaml:"kind"`
	Path string `yaml:"path"`
	// ID overrides the source identifier; defaults to the file base name.
	ID string `yaml:"id,omitempty"`
}

// SourceError pairs a failed source with its error.
type SourceError struct {
	Source string
	Err    error
}

// Report summarises one ingestion run. Failures never abort the batch;
// the driver decides what to do with them.
type Report struct {
	Ingested int
	Chunks   int
	Skipped  []string
	Failures []SourceError
}

// OK reports whether every source was ingested or deliberately skipped.
func (r Report) OK() bool { return len(r.Failures) == 0 }

// Pipeline owns the handles needed to turn sources into indexed points.
// The ledger is optional; without it every source is re-ingested.
type Pipeline struct {
	splitter chunker.Splitter
	embedder embedding.Embedder
	store    vectorstore.Store
	ledger   *Ledger

	collectionReady bool
}

// New creates a Pipeline.
func New(splitter chunker.Splitter, embedder embedding.Embedder, store vectorstore.Store, ledger *Ledger) *Pipeline {
	return &Pipeline{splitter: splitter, embedder: embedder, store: store, ledger: ledger}
}

// Run ingests each source in order. Parse failures skip the offending
// source and continue; upload failures are likewise recorded per source
// so one bad input cannot lose the rest of the batch silently.
func (p *Pipeline) Run(ctx context.Context, sources []Source) Report {
	var report Report
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			report.Failures = append(report.Failures, SourceError{Source: src.Path, Err: err})
			return report
		}
		chunks, skipped, err := p.ingestOne(ctx, src)
		switch {
		case err != nil:
			log.Printf("ingest: %s failed: %v", src.Path, err)
			report.Failures = append(report.Failures, SourceError{Source: src.Path, Err: err})
		case skipped:
			report.Skipped = append(report.Skipped, src.Path)
		default:
			report.Ingested++
			report.Chunks += chunks
		}
	}
	return report
}

func (p *Pipeline) ingestOne(ctx context.Context, src Source) (int, bool, error) {
	sourceID := src.ID
	if sourceID == "" {
		sourceID = filepath.Base(src.Path)
	}

	digest, err := fileDigest(src.Path)
	if err != nil {
		return 0, false, fmt.Errorf("%w: reading %s: %v", chunker.ErrParse, src.Path, err)
	}
	if p.ledger != nil {
		seen, err := p.ledger.Seen(sourceID, digest)
		if err != nil {
			return 0, false, fmt.Errorf("consulting ledger: %w", err)
		}
		if seen {
			return 0, true, nil
		}
	}

	chunks, err := p.chunk(src, sourceID)
	if err != nil {
		return 0, false, err
	}
	if len(chunks) == 0 {
		// An empty document is not an error; record it so the next run
		// skips it too.
		if p.ledger != nil {
			if err := p.ledger.Record(sourceID, digest, 0); err != nil {
				return 0, false, fmt.Errorf("recording in ledger: %w", err)
			}
		}
		return 0, false, nil
	}

	if err := p.upload(ctx, sourceID, chunks); err != nil {
		return 0, false, err
	}

	if p.ledger != nil {
		if err := p.ledger.Record(sourceID, digest, len(chunks)); err != nil {
			return 0, false, fmt.Errorf("recording in ledger: %w", err)
		}
	}
	return len(chunks), false, nil
}

func (p *Pipeline) chunk(src Source, sourceID string) ([]models.Chunk, error) {
	switch src.Kind {
	case KindPDF:
		return chunker.ChunkPDF(src.Path, sourceID, p.splitter)
	case KindRecords:
		f, err := os.Open(src.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: opening %s: %v", chunker.ErrParse, src.Path, err)
		}
		defer f.Close()
		records, err := chunker.DecodeRecords(f)
		if err != nil {
			return nil, err
		}
		return chunker.ChunkRecords(records, p.splitter), nil
	default:
		return nil, fmt.Errorf("%w: unknown source kind %q", chunker.ErrParse, src.Kind)
	}
}

// upload embeds the chunks and upserts them in batches. Point IDs use
// the chunk's running position within the source, not its per-section
// index, so two sections cannot collide on an ID.
func (p *Pipeline) upload(ctx context.Context, sourceID string, chunks []models.Chunk) error {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	if !p.collectionReady {
		if err := p.store.EnsureCollection(ctx, len(vectors[0])); err != nil {
			return fmt.Errorf("ensuring collection: %w", err)
		}
		p.collectionReady = true
	}

	points := make([]models.EmbeddedPoint, len(chunks))
	for i, c := range chunks {
		points[i] = models.EmbeddedPoint{
			ID:     models.PointID(sourceID, i),
			Vector: vectors[i],
			Payload: models.Payload{
				Text:           c.Text,
				Source:         c.Source,
				SectionHeading: c.Heading,
				Pages:          c.Pages,
				ChunkIndex:     c.Index,
			},
		}
	}

	for start := 0; start < len(points); start += uploadBatchSize {
		end := start + uploadBatchSize
		if end > len(points) {
			end = len(points)
		}
		if err := p.store.Upsert(ctx, points[start:end]); err != nil {
			return fmt.Errorf("uploading points %d-%d: %w", start, end, err)
		}
	}
	return nil
}

func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
