// ABOUTME: Retrieval quality metrics for benchmark scenarios
// ABOUTME: Computes recall at K and mean reciprocal rank against ground truth

package retrieval

import "fmt"

// passRecall is the minimum recall@K a scenario needs to pass.
const passRecall = 1.0

// RecallAtK reports what fraction of relevant sources appear in the
// first k ranked sources.
func RecallAtK(ranked []string, relevant []string, k int) float64 {
	if len(relevant) == 0 {
		return 1.0
	}
	if k > len(ranked) {
		k = len(ranked)
	}
	seen := make(map[string]bool, k)
	for _, id := range ranked[:k] {
		seen[id] = true
	}
	found := 0
	for _, id := range relevant {
		if seen[id] {
			found++
		}
	}
	return float64(found) / float64(len(relevant))
}

// ReciprocalRank returns 1/rank of the first relevant source in the
// ranked list, or 0 when none appears.
func ReciprocalRank(ranked []string, relevant []string) float64 {
	want := make(map[string]bool, len(relevant))
	for _, id := range relevant {
		want[id] = true
	}
	for i, id := range ranked {
		if want[id] {
			return 1.0 / float64(i+1)
		}
	}
	return 0
}

// Evaluate scores one scenario against the ranked sources it produced.
func Evaluate(scenario Scenario, ranked []string) Result {
	recall := RecallAtK(ranked, scenario.RelevantSources, scenario.TopK)
	mrr := ReciprocalRank(ranked, scenario.RelevantSources)

	status := "FAIL"
	if recall >= passRecall {
		status = "PASS"
	}

	return Result{
		ScenarioID: scenario.ID,
		Name:       scenario.Name,
		RecallAtK:  recall,
		MRR:        mrr,
		Status:     status,
		Details: map[string]any{
			"top_k":      scenario.TopK,
			"ranked":     ranked,
			"relevant":   scenario.RelevantSources,
			"rank_first": fmt.Sprintf("%.3f", mrr),
		},
	}
}
