// ABOUTME: Tests for query command
// ABOUTME: Verifies query command structure and flag overlay onto config

package commands

import (
	"strings"
	"testing"

	"github.com/harbourview/oceanrag/internal/config"
)

func TestNewQueryCmd(t *testing.T) {
	cmd := NewQueryCmd()

	if cmd.Use != "query <question>" {
		t.Errorf("Use = %q, want %q", cmd.Use, "query <question>")
	}

	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}

	if cmd.Long == "" {
		t.Error("Long description should not be empty")
	}
}

func TestQueryCmd_Flags(t *testing.T) {
	cmd := NewQueryCmd()

	tests := []struct {
		flagName string
		defValue string
	}{
		{"limit", "0"},
		{"top-n", "0"},
		{"threshold", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := cmd.Flags().Lookup(tt.flagName)
			if flag == nil {
				t.Fatalf("--%s flag not found", tt.flagName)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("--%s default = %q, want %q", tt.flagName, flag.DefValue, tt.defValue)
			}
		})
	}
}

func TestQueryCmd_ArgsValidation(t *testing.T) {
	cmd := NewQueryCmd()

	if cmd.Args == nil {
		t.Error("Args validator should be set")
	}
}

func TestApplyQueryFlags(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		wantLimit     int
		wantTopN      int
		wantThreshold float64
	}{
		{
			name:          "no flags keeps config values",
			args:          []string{},
			wantLimit:     100,
			wantTopN:      5,
			wantThreshold: 0.4,
		},
		{
			name:          "explicit flags override config",
			args:          []string{"--limit", "20", "--top-n", "3", "--threshold", "0.6"},
			wantLimit:     20,
			wantTopN:      3,
			wantThreshold: 0.6,
		},
		{
			name:          "partial override",
			args:          []string{"--top-n", "2"},
			wantLimit:     100,
			wantTopN:      2,
			wantThreshold: 0.4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewQueryCmd()
			if err := cmd.Flags().Parse(tt.args); err != nil {
				t.Fatalf("parsing flags: %v", err)
			}

			cfg := &config.Config{
				RetrieveLimit:  100,
				RerankTopN:     5,
				ScoreThreshold: 0.4,
			}
			applyQueryFlags(cfg, cmd)

			if cfg.RetrieveLimit != tt.wantLimit {
				t.Errorf("RetrieveLimit = %d, want %d", cfg.RetrieveLimit, tt.wantLimit)
			}
			if cfg.RerankTopN != tt.wantTopN {
				t.Errorf("RerankTopN = %d, want %d", cfg.RerankTopN, tt.wantTopN)
			}
			if cfg.ScoreThreshold != tt.wantThreshold {
				t.Errorf("ScoreThreshold = %g, want %g", cfg.ScoreThreshold, tt.wantThreshold)
			}
		})
	}
}

func TestQueryCmd_Examples(t *testing.T) {
	cmd := NewQueryCmd()

	expectedParts := []string{
		"--top-n",
		"--threshold",
		"--format json",
	}

	for _, part := range expectedParts {
		if !strings.Contains(cmd.Long, part) {
			t.Errorf("Long description should contain %q", part)
		}
	}
}
