package afcn

import "math"

// Horizon is the temporal lookback and risk aversion of one invocation.
type Horizon struct {
	Window       int
	RiskAversion float64
}

// AdjustHorizon stretches the lookback and risk aversion for fundamentalist
// leaning weights and shrinks them for chartist leaning ones.
func AdjustHorizon(p Params, window, tick int, w Weights) (Horizon, error) {
	ratio := (1 + w.Fundamental) / (1 + w.Chart)
	if !(ratio >= 0) || math.IsInf(ratio, 0) {
		return Horizon{}, configErrorf("weight ratio must be finite and >= 0, got %v", ratio)
	}
	// compare in float space; the stretched window may not fit an int
	h := Horizon{Window: tick, RiskAversion: p.RiskAversion * ratio}
	if stretched := float64(window) * ratio; stretched < float64(tick) {
		h.Window = int(stretched)
	}
	if h.Window < 0 {
		return Horizon{}, configErrorf("temporal window must be >= 0, got %d", h.Window)
	}
	if !(h.RiskAversion > 0) || !IsFinite(h.RiskAversion) {
		return Horizon{}, configErrorf("temporal risk aversion must be > 0, got %v", h.RiskAversion)
	}
	return h, nil
}
