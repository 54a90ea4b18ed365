// ABOUTME: Test scenario data for retrieval quality benchmarks
// ABOUTME: Defines document corpora, queries, and ground truth for each scenario

package retrieval

import "github.com/harbourview/oceanrag/internal/chunker"

// Scenario is one retrieval benchmark: a corpus, a query, and the
// sources a good retriever should surface for it.
type Scenario struct {
	ID          string
	Name        string
	Description string
	Corpus      []chunker.Record
	Query       string

	// RelevantSources are the source titles that answer the query.
	RelevantSources []string
	// TopK bounds the candidate list inspected for recall.
	TopK int
}

// Result is the outcome of one benchmark scenario.
type Result struct {
	ScenarioID string         `json:"scenario_id"`
	Name       string         `json:"name"`
	RecallAtK  float64        `json:"recall_at_k"`
	MRR        float64        `json:"mrr"`
	Status     string         `json:"status"` // "PASS" or "FAIL"
	Details    map[string]any `json:"details,omitempty"`
}

// instrumentCorpus is a shared corpus of instrument reference records.
var instrumentCorpus = []chunker.Record{
	{
		ID:      "ctd-sbe37",
		Source:  "SBE 37-SM MicroCAT manual",
		Heading: "Sampling configuration",
		Paragraphs: []string{
			"The MicroCAT CTD samples conductivity, temperature and pressure at a configurable interval between 6 seconds and 6 hours.",
			"Default deployments on the shelf array use a 60 second sampling interval to balance resolution against battery life.",
		},
	},
	{
		ID:      "hydrophone-icListen",
		Source:  "icListen HF hydrophone datasheet",
		Heading: "Calibration",
		Paragraphs: []string{
			"Each hydrophone ships with a factory calibration sheet giving sensitivity in dB re 1 V/uPa across the usable band.",
			"Annual recalibration is recommended for instruments deployed below 200 metres.",
		},
	},
	{
		ID:      "adcp-workhorse",
		Source:  "Workhorse ADCP deployment guide",
		Heading: "Mooring placement",
		Paragraphs: []string{
			"Upward-looking ADCPs should be moored with at least 2 metres of clearance from the seabed to avoid sidelobe contamination.",
			"Bin size and blanking distance trade profiling range against velocity resolution.",
		},
	},
	{
		ID:      "oxygen-sbe63",
		Source:  "SBE 63 optical oxygen sensor manual",
		Heading: "Drift characteristics",
		Paragraphs: []string{
			"Optical oxygen sensors drift less than 2 percent per year when the sensing foil is kept clean.",
			"Biofouling is the dominant error source in coastal deployments.",
		},
	},
	{
		ID:      "node-barkley",
		Source:  "Barkley Canyon node description",
		Heading: "Power and communications",
		Paragraphs: []string{
			"The node provides 400 volt DC power and gigabit optical Ethernet to attached instrument platforms.",
			"Serial instruments attach through terminal servers on the junction box.",
		},
	},
}

// sampingRateScenario asks for the CTD sampling interval.
func samplingRateScenario() Scenario {
	return Scenario{
		ID:              "sampling-rate",
		Name:            "CTD sampling interval lookup",
		Description:     "The CTD record must rank first for a sampling rate question",
		Corpus:          instrumentCorpus,
		Query:           "How often does the MicroCAT CTD sample temperature and conductivity?",
		RelevantSources: []string{"SBE 37-SM MicroCAT manual"},
		TopK:            3,
	}
}

// calibrationScenario asks about hydrophone calibration.
func calibrationScenario() Scenario {
	return Scenario{
		ID:              "hydrophone-calibration",
		Name:            "Hydrophone calibration lookup",
		Description:     "The hydrophone datasheet must surface for a calibration question",
		Corpus:          instrumentCorpus,
		Query:           "What is the recommended recalibration schedule for a deep hydrophone?",
		RelevantSources: []string{"icListen HF hydrophone datasheet"},
		TopK:            3,
	}
}

// mooringScenario needs the ADCP record despite lexical overlap with others.
func mooringScenario() Scenario {
	return Scenario{
		ID:              "adcp-mooring",
		Name:            "ADCP mooring clearance lookup",
		Description:     "The deployment guide must surface for a seabed clearance question",
		Corpus:          instrumentCorpus,
		Query:           "How much clearance from the seabed does an upward-looking ADCP mooring need?",
		RelevantSources: []string{"Workhorse ADCP deployment guide"},
		TopK:            3,
	}
}

// AllScenarios returns every benchmark scenario.
func AllScenarios() []Scenario {
	return []Scenario{
		samplingRateScenario(),
		calibrationScenario(),
		mooringScenario(),
	}
}

// ScenarioByID returns the named scenario, or false if unknown.
func ScenarioByID(id string) (Scenario, bool) {
	for _, s := range AllScenarios() {
		if s.ID == id {
			return s, true
		}
	}
	return Scenario{}, false
}
