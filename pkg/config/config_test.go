package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalConfig = `
market:
  id: ACME
agents:
  - prefix: afcn
    count: 3
    settings:
      fundamentalWeight: 1
      chartWeight: {uniform: [0, 2]}
      feedbackAsymmetry: 1
      noiseWeight: 1
      noiseAsymmetry: 0
      noiseScale: 0.001
      timeWindowSize: 100
      riskAversionTerm: 0.1
`

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte(minimalConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Environment != "development" || c.Server.Port != 8080 {
		t.Fatalf("server defaults not applied: %+v", c.Server)
	}
	if c.Server.ShutdownTimeout != 10*time.Second {
		t.Fatalf("shutdown timeout = %v", c.Server.ShutdownTimeout)
	}
	if c.Market.ID != "ACME" || c.Market.InitialPrice != 300 || c.Market.TickSize != 0.01 {
		t.Fatalf("market = %+v", c.Market)
	}
	if c.Session.Steps != 1000 || c.Backend.Sink != "none" || c.Backend.State != "memory" {
		t.Fatalf("session/backend defaults not applied")
	}
	a := c.Agents[0]
	if a.Count != 3 || a.Cash != 10000 {
		t.Fatalf("agent = %+v", a)
	}
	if c.UsesKafka() || c.UsesClickHouse() {
		t.Fatalf("no external sink expected")
	}
}

func TestParseKeepsSettingsNode(t *testing.T) {
	c, err := Parse([]byte(minimalConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var settings map[string]*Param
	if err := c.Agents[0].Settings.Decode(&settings); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if p := settings["chartWeight"]; p == nil || p.Kind != DistUniform {
		t.Fatalf("chartWeight = %+v", p)
	}
}

func TestParseValidation(t *testing.T) {
	cases := map[string]string{
		"no agents":     "market: {id: X}\n",
		"bad sink":      minimalConfig + "backend: {sink: s3}\n",
		"kafka brokers": minimalConfig + "backend: {sink: kafka}\n",
		"bad level":     minimalConfig + "logging: {level: loud}\n",
		"no settings":   "agents:\n  - prefix: a\n",
		"negative cash": strings.Replace(minimalConfig, "count: 3", "count: 3\n    cash: -1", 1),
	}
	for name, src := range cases {
		if _, err := Parse([]byte(src)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadWithEnv(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(minimalConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	envPath := filepath.Join(dir, "test.env")
	if err := os.WriteFile(envPath, []byte("SESSION_SEED=99\nKAFKA_BROKERS=k1:9092,k2:9092\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SESSION_SEED", "")
	t.Setenv("KAFKA_BROKERS", "")
	os.Unsetenv("SESSION_SEED")
	os.Unsetenv("KAFKA_BROKERS")

	c, err := LoadWithEnv(cfgPath, envPath, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if c.Session.Seed != 99 {
		t.Fatalf("seed = %d, want 99", c.Session.Seed)
	}
	if len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("brokers = %v", c.Kafka.Brokers)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
