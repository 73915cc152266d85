package usecase

import (
	"strings"
	"testing"

	"FinSim/pkg/config"
	"FinSim/pkg/logger"
)

const hostConfig = `
market:
  id: MKT
  initial_price: 100
  warmup_ticks: 1
agents:
  - prefix: trend
    count: 3
    seed: 10
    cash: 5000
    position: 20
    settings:
      fundamentalWeight: {uniform: [0.5, 1.5]}
      chartWeight: 1
      feedbackAsymmetry: 1
      noiseWeight: 1
      noiseAsymmetry: 0
      noiseScale: 0.001
      timeWindowSize: 10
      riskAversionTerm: 0.1
  - prefix: value
    count: 2
    seed: 100
    cash: 5000
    position: 20
    settings:
      fundamentalWeight: 2
      chartWeight: 0
      feedbackAsymmetry: 0
      noiseWeight: 1
      noiseAsymmetry: 0
      noiseScale: 0.001
      timeWindowSize: 10
      riskAversionTerm: 0.1
`

func loadHostConfig(t *testing.T) *config.Config {
	t.Helper()
	c, err := config.Parse([]byte(hostConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return c
}

func TestBuildAgents(t *testing.T) {
	c := loadHostConfig(t)
	specs, err := BuildAgents(c.Agents, c.Market.ID, logger.Nop())
	if err != nil {
		t.Fatalf("BuildAgents: %v", err)
	}
	if len(specs) != 5 {
		t.Fatalf("agents = %d, want 5", len(specs))
	}
	want := []string{"trend-0", "trend-1", "trend-2", "value-0", "value-1"}
	for i, s := range specs {
		if s.Agent.ID() != want[i] {
			t.Fatalf("agent %d id = %s, want %s", i, s.Agent.ID(), want[i])
		}
		if len(s.Markets) != 1 || s.Markets[0] != "MKT" {
			t.Fatalf("default markets = %v", s.Markets)
		}
		if s.Cash != 5000 || s.Position != 20 {
			t.Fatalf("funding = %v/%d", s.Cash, s.Position)
		}
	}
	if specs[0].Agent.Params().FundamentalWeight == specs[1].Agent.Params().FundamentalWeight {
		t.Fatalf("agents in a group should draw their own parameters")
	}
	if specs[3].Agent.Params().FundamentalWeight != 2 {
		t.Fatalf("fixed setting not applied: %+v", specs[3].Agent.Params())
	}
}

func TestDecodeSettingsRequiresFields(t *testing.T) {
	c, err := config.Parse([]byte(strings.Replace(hostConfig, "      riskAversionTerm: 0.1\n", "", 1)))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := DecodeSettings(c.Agents[0]); err == nil || !strings.Contains(err.Error(), "RiskAversionTerm") {
		t.Fatalf("expected missing riskAversionTerm, got %v", err)
	}
}

func TestDecodeSettingsRejectsEmptyBlock(t *testing.T) {
	if _, err := DecodeSettings(config.Agent{Prefix: "x"}); err == nil {
		t.Fatalf("expected error for missing settings")
	}
}
