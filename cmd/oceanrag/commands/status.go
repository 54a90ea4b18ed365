// ABOUTME: CLI command to show what the ingestion ledger has recorded
// ABOUTME: Lists ingested sources with chunk counts and ingest times
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harbourview/oceanrag/internal/config"
	"github.com/harbourview/oceanrag/internal/ingest"
	"github.com/joho/godotenv"
)

var (
	statusLimit int
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show ingested sources",
		Long: `Show what the ingestion ledger has recorded.

Lists each ingested source with its chunk count, content digest and
ingest time. The ledger tracks what this machine has uploaded; the
vector index itself remains the source of truth for the points.

Examples:
  oceanrag status
  oceanrag status --limit 10
  oceanrag status --format json`,
		RunE: runStatus,
	}

	cmd.Flags().IntVar(&statusLimit, "limit", 50, "Maximum sources to list")

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	if err := validatePositiveInt(statusLimit, "limit"); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ledger, err := ingest.OpenLedger(cfg.LedgerPath)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer ledger.Close()

	entries, err := ledger.Entries()
	if err != nil {
		return fmt.Errorf("reading ledger: %w", err)
	}
	if len(entries) > statusLimit {
		entries = entries[:statusLimit]
	}

	if len(entries) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No sources ingested yet\n")
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SOURCE\tCHUNKS\tDIGEST\tINGESTED\n")
	fmt.Fprintf(w, "------\t------\t------\t--------\n")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			truncate(e.SourceID, 40),
			e.Chunks,
			truncate(e.Digest, 12),
			formatTime(e.IngestedAt))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d source(s) in ledger at %s\n", len(entries), cfg.LedgerPath)
	}
	return nil
}
