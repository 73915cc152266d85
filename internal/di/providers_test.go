package di

import (
	"context"
	"testing"

	"FinSim/pkg/config"
)

const simConfig = `
logging:
  level: error
session:
  steps: 15
  seed: 3
market:
  id: MKT
  initial_price: 100
agents:
  - prefix: afcn
    count: 4
    seed: 5
    cash: 10000
    position: 10
    settings:
      fundamentalWeight: 1
      chartWeight: {uniform: [0, 1]}
      feedbackAsymmetry: 0.5
      noiseWeight: 1
      noiseAsymmetry: 0.5
      noiseScale: 0.001
      timeWindowSize: 5
      riskAversionTerm: 0.1
`

func TestInitializeAppInMemory(t *testing.T) {
	cfg, err := config.Parse([]byte(simConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	app, err := InitializeApp(cfg)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	sum, err := app.Simulate(context.Background())
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if sum.Ticks != 15 {
		t.Fatalf("ticks = %d, want 15", sum.Ticks)
	}
	if sum.Decisions != 15*4 {
		t.Fatalf("decisions = %d, want %d", sum.Decisions, 15*4)
	}
	if got := len(app.Session().Agents()); got != 4 {
		t.Fatalf("agents = %d, want 4", got)
	}
}

func TestOptionalBackendsStayNil(t *testing.T) {
	cfg, err := config.Parse([]byte(simConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ch, err := ProvideClickHouseClient(cfg)
	if err != nil || ch != nil {
		t.Fatalf("clickhouse = %v, %v; want nil, nil", ch, err)
	}
	p, err := ProvideKafkaProducer(cfg, ProvideRegistry(), nil)
	if err != nil || p != nil {
		t.Fatalf("producer = %v, %v; want nil, nil", p, err)
	}
	c, err := ProvideKafkaConsumer(cfg, ProvideRegistry(), nil)
	if err != nil || c != nil {
		t.Fatalf("consumer = %v, %v; want nil, nil", c, err)
	}
	if h := ProvideFillsHandler(cfg, nil, nil); h != nil {
		t.Fatalf("fills handler should be nil without a fills topic")
	}
}
