// ABOUTME: YAML manifest listing sources for one ingestion run
// ABOUTME: Lets the driver ingest a curated document set in one invocation
package ingest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the file format accepted by `oceanrag ingest --manifest`.
type Manifest struct {
	Sources []Source `yaml:"sources"`
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if len(m.Sources) == 0 {
		return nil, fmt.Errorf("manifest %s lists no sources", path)
	}
	for i, src := range m.Sources {
		if src.Path == "" {
			return nil, fmt.Errorf("manifest source %d has no path", i)
		}
		if src.Kind != KindPDF && src.Kind != KindRecords {
			return nil, fmt.Errorf("manifest source %s has unknown kind %q", src.Path, src.Kind)
		}
	}
	return &m, nil
}
