// ABOUTME: Command-line runner for retrieval quality benchmarks
// ABOUTME: Executes scenarios against the in-memory index and outputs JSON results

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/harbourview/oceanrag/benchmarks/retrieval"
)

func main() {
	scenarioID := flag.String("scenario", "", "Run a single scenario by ID. If empty, runs all scenarios.")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	fmt.Println("========================================")
	fmt.Println("oceanrag retrieval benchmarks")
	fmt.Println("========================================")

	runner := retrieval.NewRunner(*verbose)
	ctx := context.Background()

	var results []retrieval.Result
	var err error

	if *scenarioID == "" {
		results, err = runner.RunAll(ctx)
		if err != nil {
			log.Fatalf("Benchmark failed: %v", err)
		}
	} else {
		scenario, ok := retrieval.ScenarioByID(*scenarioID)
		if !ok {
			log.Fatalf("Unknown scenario ID: %s", *scenarioID)
		}
		result, err := runner.RunScenario(ctx, scenario)
		if err != nil {
			log.Fatalf("Scenario failed: %v", err)
		}
		results = []retrieval.Result{result}
	}

	passed := 0
	failed := 0
	for _, result := range results {
		fmt.Printf("\n%s: %s\n", result.ScenarioID, result.Name)
		fmt.Printf("  Recall@K: %.2f\n", result.RecallAtK)
		fmt.Printf("  MRR:      %.2f\n", result.MRR)
		fmt.Printf("  Status:   %s\n", result.Status)
		if result.Status == "PASS" {
			passed++
		} else {
			failed++
		}
	}

	fmt.Println("\n========================================")
	fmt.Printf("Scenarios: %d  Passed: %d  Failed: %d\n", len(results), passed, failed)
	fmt.Println("========================================")

	if err = runner.ExportResults(results, *outputPath); err != nil {
		log.Fatalf("Failed to export results: %v", err)
	}
	fmt.Printf("Results exported to: %s\n", *outputPath)

	if failed > 0 {
		os.Exit(1)
	}
}
