// ABOUTME: CLI command to retrieve passages for a question
// ABOUTME: Runs embed, vector search, threshold filter and rerank stages
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harbourview/oceanrag/internal/config"
	"github.com/harbourview/oceanrag/internal/rag"
	"github.com/joho/godotenv"
)

var (
	queryLimit     int
	queryTopN      int
	queryThreshold float64
)

// NewQueryCmd creates the query command
func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Retrieve relevant passages for a question",
		Long: `Retrieve relevant passages for a question.

The question is embedded with the query-side task variant, matched
against the collection by cosine similarity, filtered by the score
threshold, and the survivors are reranked by the cross-encoder. A
question that matches nothing prints no passages and exits cleanly.

Examples:
  oceanrag query "What is the sampling rate of the CTD?"
  oceanrag query --top-n 3 "hydrophone calibration"
  oceanrag query --threshold 0.5 --format json "mooring depth"`,
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}

	cmd.Flags().IntVar(&queryLimit, "limit", 0, "Candidates to retrieve before reranking (default from config)")
	cmd.Flags().IntVar(&queryTopN, "top-n", 0, "Passages to keep after reranking (default from config)")
	cmd.Flags().Float64Var(&queryThreshold, "threshold", -1, "Minimum similarity score (default from config)")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	question := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyQueryFlags(cfg, cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}

	pipeline, err := rag.FromConfig(cfg)
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}

	table, err := pipeline.GetDocuments(cmd.Context(), question)
	if err != nil {
		return fmt.Errorf("retrieving documents: %w", err)
	}

	if table.IsEmpty() {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No passages found for question: %s\n", question)
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(table, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	for i, text := range table.Contents {
		fmt.Fprintf(cmd.OutOrStdout(), "--- [%d] ---\n%s\n\n", i+1, text)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Found %d passage(s)\n", table.Len())
	}
	return nil
}

// applyQueryFlags overlays explicitly set flags onto the loaded config.
func applyQueryFlags(cfg *config.Config, cmd *cobra.Command) {
	if cmd.Flags().Changed("limit") {
		cfg.RetrieveLimit = queryLimit
	}
	if cmd.Flags().Changed("top-n") {
		cfg.RerankTopN = queryTopN
	}
	if cmd.Flags().Changed("threshold") {
		cfg.ScoreThreshold = queryThreshold
	}
}
