// ABOUTME: CLI command to ingest documents into the vector index
// ABOUTME: Accepts PDF and record files directly or via a YAML manifest
package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harbourview/oceanrag/internal/chunker"
	"github.com/harbourview/oceanrag/internal/config"
	"github.com/harbourview/oceanrag/internal/ingest"
	"github.com/harbourview/oceanrag/internal/rag"
	"github.com/harbourview/oceanrag/internal/vectorstore"
	"github.com/harbourview/oceanrag/internal/vectorstore/memory"
	"github.com/harbourview/oceanrag/internal/vectorstore/qdrant"
	"github.com/joho/godotenv"
)

var (
	ingestManifest string
	ingestKind     string
	ingestStore    string
	ingestNoLedger bool
)

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Ingest documents into the vector index",
		Long: `Ingest documents into the vector index.

Each file is chunked by section, embedded, and upserted into the
configured collection. PDF files are sectioned by font size; record
files are pre-structured JSON. A source that fails to parse is skipped
and reported without aborting the batch.

Examples:
  oceanrag ingest manual.pdf deployment-notes.pdf
  oceanrag ingest --kind records catalog.json
  oceanrag ingest --manifest sources.yaml
  oceanrag ingest --store memory --format json manual.pdf`,
		RunE: runIngest,
	}

	cmd.Flags().StringVar(&ingestManifest, "manifest", "", "YAML manifest listing sources to ingest")
	cmd.Flags().StringVar(&ingestKind, "kind", ingest.KindPDF, "Kind of the listed files (pdf, records)")
	cmd.Flags().StringVar(&ingestStore, "store", "qdrant", "Vector index backend (qdrant, memory)")
	cmd.Flags().BoolVar(&ingestNoLedger, "no-ledger", false, "Re-ingest sources even if already recorded")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	sources, err := collectSources(args)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("nothing to ingest: pass files or --manifest")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	embedder, err := rag.NewEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("building embedder: %w", err)
	}

	store, err := selectStore(cfg)
	if err != nil {
		return err
	}

	var ledger *ingest.Ledger
	if !ingestNoLedger {
		ledger, err = ingest.OpenLedger(cfg.LedgerPath)
		if err != nil {
			return fmt.Errorf("opening ledger: %w", err)
		}
		defer ledger.Close()
	}

	splitter := chunker.NewSplitter(cfg.ChunkMaxTokens, cfg.ChunkOverlap)
	pipeline := ingest.New(splitter, embedder, store, ledger)

	report := pipeline.Run(cmd.Context(), sources)
	if err := printReport(cmd, report); err != nil {
		return err
	}
	if !report.OK() {
		return fmt.Errorf("%d source(s) failed", len(report.Failures))
	}
	return nil
}

// collectSources merges positional files with an optional manifest.
func collectSources(args []string) ([]ingest.Source, error) {
	var sources []ingest.Source

	if ingestManifest != "" {
		m, err := ingest.LoadManifest(ingestManifest)
		if err != nil {
			return nil, fmt.Errorf("loading manifest: %w", err)
		}
		sources = append(sources, m.Sources...)
	}

	if len(args) > 0 {
		kind := strings.ToLower(ingestKind)
		if kind != ingest.KindPDF && kind != ingest.KindRecords {
			return nil, fmt.Errorf("unknown kind %q (want pdf or records)", ingestKind)
		}
		for _, path := range args {
			sources = append(sources, ingest.Source{Kind: kind, Path: path})
		}
	}

	return sources, nil
}

// selectStore picks the index backend for this run. The in-memory store
// only lives for the process, which is enough for dry runs and tests.
func selectStore(cfg *config.Config) (vectorstore.Store, error) {
	switch ingestStore {
	case "qdrant":
		return qdrant.New(qdrant.Config{
			URL:        cfg.QdrantURL,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.Collection,
			Timeout:    cfg.IndexTimeout,
		}), nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store %q (want qdrant or memory)", ingestStore)
	}
}

func printReport(cmd *cobra.Command, report ingest.Report) error {
	if outputFormat == "json" {
		type failure struct {
			Source string `json:"source"`
			Error  string `json:"error"`
		}
		out := struct {
			Ingested int       `json:"ingested"`
			Chunks   int       `json:"chunks"`
			Skipped  []string  `json:"skipped,omitempty"`
			Failures []failure `json:"failures,omitempty"`
		}{Ingested: report.Ingested, Chunks: report.Chunks, Skipped: report.Skipped}
		for _, f := range report.Failures {
			out.Failures = append(out.Failures, failure{Source: f.Source, Error: f.Err.Error()})
		}
		jsonData, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d source(s), %d chunk(s)\n", report.Ingested, report.Chunks)
		for _, s := range report.Skipped {
			fmt.Fprintf(cmd.OutOrStdout(), "Skipped (unchanged): %s\n", s)
		}
	}
	if len(report.Failures) > 0 {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "FAILED SOURCE\tERROR\n")
		for _, f := range report.Failures {
			fmt.Fprintf(w, "%s\t%s\n", f.Source, truncate(f.Err.Error(), 80))
		}
		w.Flush()
	}
	return nil
}
