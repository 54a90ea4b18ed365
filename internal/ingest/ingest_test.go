// ABOUTME: Tests for the ingestion pipeline over the in-memory store
// ABOUTME: Covers partial-batch tolerance, ledger skipping and point construction
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/harbourview/oceanrag/internal/chunker"
	"github.com/harbourview/oceanrag/internal/vectorstore/memory"
)

// countingEmbedder produces deterministic vectors and counts calls.
type countingEmbedder struct {
	calls int
	fail  bool
}

func (e *countingEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	e.calls++
	if e.fail {
		return nil, fmt.Errorf("embedding service down")
	}
	vectors := make([][]float64, len(texts))
	for i := range texts {
		vectors[i] = []float64{float64(len(texts[i])), 1, 0}
	}
	return vectors, nil
}

func (e *countingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	return []float64{float64(len(text)), 1, 0}, nil
}

func (e *countingEmbedder) Dimension() int { return 3 }

func writeRecordsFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

const validRecords = `[
	{"id": "location:CBYIP", "source": "locations", "heading": "Cambridge Bay",
	 "paragraphs": ["The platform sits at 8 metres depth.", "It hosts a CTD and a hydrophone."], "page": 1}
]`

func TestRun_IngestsRecords(t *testing.T) {
	dir := t.TempDir()
	path := writeRecordsFile(t, dir, "locations.json", validRecords)

	store := memory.New()
	pipeline := New(chunker.NewSplitter(300, 50), &countingEmbedder{}, store, nil)

	report := pipeline.Run(context.Background(), []Source{{Kind: KindRecords, Path: path}})

	if !report.OK() {
		t.Fatalf("failures: %+v", report.Failures)
	}
	if report.Ingested != 1 || report.Chunks != 1 {
		t.Errorf("report = %+v, want 1 source and 1 chunk", report)
	}
	if store.Len() != 1 {
		t.Errorf("store has %d points, want 1", store.Len())
	}
}

func TestRun_PartialBatchTolerance(t *testing.T) {
	dir := t.TempDir()
	good := writeRecordsFile(t, dir, "good.json", validRecords)
	bad := writeRecordsFile(t, dir, "bad.json", `{"not": "an array"`)

	store := memory.New()
	pipeline := New(chunker.NewSplitter(300, 50), &countingEmbedder{}, store, nil)

	report := pipeline.Run(context.Background(), []Source{
		{Kind: KindRecords, Path: bad},
		{Kind: KindRecords, Path: good},
	})

	if report.Ingested != 1 {
		t.Errorf("good source not ingested after bad one: %+v", report)
	}
	if len(report.Failures) != 1 || report.Failures[0].Source != bad {
		t.Errorf("failures = %+v, want the bad source only", report.Failures)
	}
	if store.Len() != 1 {
		t.Errorf("store has %d points, want 1", store.Len())
	}
}

func TestRun_UnknownKindFails(t *testing.T) {
	dir := t.TempDir()
	path := writeRecordsFile(t, dir, "x.csv", "a,b,c")

	pipeline := New(chunker.NewSplitter(300, 50), &countingEmbedder{}, memory.New(), nil)
	report := pipeline.Run(context.Background(), []Source{{Kind: "csv", Path: path}})

	if report.OK() {
		t.Error("unknown kind should fail")
	}
}

func TestRun_MissingFileFails(t *testing.T) {
	pipeline := New(chunker.NewSplitter(300, 50), &countingEmbedder{}, memory.New(), nil)
	report := pipeline.Run(context.Background(), []Source{{Kind: KindRecords, Path: "/nonexistent/file.json"}})
	if report.OK() {
		t.Error("missing file should fail")
	}
}

func TestRun_EmbeddingFailureSurfaced(t *testing.T) {
	dir := t.TempDir()
	path := writeRecordsFile(t, dir, "locations.json", validRecords)

	pipeline := New(chunker.NewSplitter(300, 50), &countingEmbedder{fail: true}, memory.New(), nil)
	report := pipeline.Run(context.Background(), []Source{{Kind: KindRecords, Path: path}})

	if report.OK() {
		t.Error("embedding failure must appear in the report")
	}
}

func TestRun_LedgerSkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := writeRecordsFile(t, dir, "locations.json", validRecords)

	ledger, err := OpenLedger(filepath.Join(dir, "ledger.db"))
	if err != nil {
		t.Fatalf("OpenLedger: %v", err)
	}
	defer ledger.Close()

	embedder := &countingEmbedder{}
	pipeline := New(chunker.NewSplitter(300, 50), embedder, memory.New(), ledger)
	sources := []Source{{Kind: KindRecords, Path: path, ID: "locations"}}

	first := pipeline.Run(context.Background(), sources)
	if first.Ingested != 1 {
		t.Fatalf("first run: %+v", first)
	}

	second := pipeline.Run(context.Background(), sources)
	if second.Ingested != 0 || len(second.Skipped) != 1 {
		t.Errorf("second run should skip unchanged source: %+v", second)
	}
	if embedder.calls != 1 {
		t.Errorf("embedder called %d times, want 1", embedder.calls)
	}

	// Changing the content must trigger re-ingestion.
	writeRecordsFile(t, dir, "locations.json",
		`[{"id": "location:CBYIP", "source": "locations", "heading": "Cambridge Bay", "paragraphs": ["Updated description."]}]`)
	third := pipeline.Run(context.Background(), sources)
	if third.Ingested != 1 {
		t.Errorf("changed source not re-ingested: %+v", third)
	}
}

func TestLedger_Entries(t *testing.T) {
	dir := t.TempDir()
	ledger, err := OpenLedger(filepath.Join(dir, "ledger.db"))
	if err != nil {
		t.Fatalf("OpenLedger: %v", err)
	}
	defer ledger.Close()

	if err := ledger.Record("handbook.pdf", "abc123", 42); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := ledger.Record("handbook.pdf", "def456", 40); err != nil {
		t.Fatalf("Record update: %v", err)
	}

	entries, err := ledger.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1 (upsert by source id)", len(entries))
	}
	if entries[0].Digest != "def456" || entries[0].Chunks != 40 {
		t.Errorf("entry = %+v, want latest digest and count", entries[0])
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr bool
		wantLen int
	}{
		{
			name: "valid manifest",
			content: `sources:
  - kind: pdf
    path: docs/handbook.pdf
  - kind: records
    path: catalog/locations.json
    id: locations`,
			wantLen: 2,
		},
		{
			name:    "empty manifest rejected",
			content: `sources: []`,
			wantErr: true,
		},
		{
			name: "unknown kind rejected",
			content: `sources:
  - kind: docx
    path: a.docx`,
			wantErr: true,
		},
		{
			name: "missing path rejected",
			content: `sources:
  - kind: pdf`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRecordsFile(t, dir, "manifest.yaml", tt.content)
			m, err := LoadManifest(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadManifest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && len(m.Sources) != tt.wantLen {
				t.Errorf("sources = %d, want %d", len(m.Sources), tt.wantLen)
			}
		})
	}
}
