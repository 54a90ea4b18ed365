// ABOUTME: Root command for the oceanrag CLI
// ABOUTME: Defines global flags and registers all subcommands
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

// NewRootCmd creates the root command for oceanrag
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "oceanrag",
		Short: "Retrieval pipeline for oceanographic sensor documents",
		Long: `oceanrag ingests oceanographic reference documents (instrument
manuals, deployment records, pre-structured JSON) into a vector index and
answers queries with reranked passages.

Documents are chunked by section, embedded, and stored in Qdrant (or an
in-memory index for local work). Queries retrieve by cosine similarity,
filter by score threshold, and rerank with a cross-encoder.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format (auto, table, json)")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	// Register subcommands
	rootCmd.AddCommand(NewIngestCmd())
	rootCmd.AddCommand(NewQueryCmd())
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
