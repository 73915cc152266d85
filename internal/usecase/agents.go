package usecase

import (
	"fmt"

	"FinSim/internal/services/afcn"
	"FinSim/pkg/config"
	"FinSim/pkg/logger"

	"github.com/go-playground/validator/v10"
)

var settingsValidator = validator.New()

// DecodeSettings turns an agent group's settings block into afcn.Settings.
func DecodeSettings(g config.Agent) (afcn.Settings, error) {
	var s afcn.Settings
	if g.Settings.Kind == 0 {
		return s, fmt.Errorf("agent group %s: settings block is required", g.Prefix)
	}
	if err := g.Settings.Decode(&s); err != nil {
		return s, fmt.Errorf("agent group %s: decode settings: %w", g.Prefix, err)
	}
	if err := settingsValidator.Struct(s); err != nil {
		return s, fmt.Errorf("agent group %s: %w", g.Prefix, err)
	}
	return s, nil
}

// AgentSpec is one agent ready to be set up and funded.
type AgentSpec struct {
	Agent    *afcn.Agent
	Cash     float64
	Position int
	Markets  []string
}

// BuildAgents creates and sets up every agent of every group. Groups without
// an explicit market list trade defaultMarket.
func BuildAgents(groups []config.Agent, defaultMarket string, l *logger.Logger, opts ...afcn.Option) ([]AgentSpec, error) {
	var out []AgentSpec
	for _, g := range groups {
		settings, err := DecodeSettings(g)
		if err != nil {
			return nil, err
		}
		markets := g.Markets
		if len(markets) == 0 {
			markets = []string{defaultMarket}
		}
		for i := 0; i < g.Count; i++ {
			id := fmt.Sprintf("%s-%d", g.Prefix, i)
			a := afcn.New(id, g.Seed+int64(i), append([]afcn.Option{afcn.WithLogger(l)}, opts...)...)
			if err := a.Setup(settings, markets); err != nil {
				return nil, err
			}
			out = append(out, AgentSpec{Agent: a, Cash: g.Cash, Position: g.Position, Markets: markets})
		}
	}
	return out, nil
}
