package afcn

import (
	"fmt"
	"math"

	"FinSim/internal/domain/repository"
)

// Weights are the per-invocation belief weights. All three are non-negative.
type Weights struct {
	Fundamental float64
	Chart       float64
	Noise       float64
}

// Sum returns the blend denominator.
func (w Weights) Sum() float64 {
	return w.Fundamental + w.Chart + w.Noise
}

// ScaledReturn is the per-tick log return over window, in percent.
func ScaledReturn(m repository.Market, window int) (float64, error) {
	tick := m.CurrentTick()
	past, err := m.PriceAt(tick - window)
	if err != nil {
		return 0, fmt.Errorf("price at tick %d: %w", tick-window, err)
	}
	r := 100 * math.Log(m.CurrentPrice()/past) / float64(max(window, 1))
	if err := guard("scaled_return", r); err != nil {
		return 0, err
	}
	return r, nil
}

// MixWeights amplifies chart and noise weights on negative recent returns.
// Positive returns leave the base weights unchanged.
func MixWeights(p Params, scaledReturn float64) Weights {
	return Weights{
		Fundamental: p.FundamentalWeight,
		Chart:       math.Max(0, p.ChartWeight-math.Min(0, p.FeedbackAsymmetry*scaledReturn)),
		Noise:       math.Max(0, p.NoiseWeight-math.Min(0, p.NoiseAsymmetry*scaledReturn)),
	}
}
