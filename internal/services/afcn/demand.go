package afcn

import "math"

// DemandModel is the CARA demand curve for one invocation. Its inputs are
// fixed once the forecast is known.
type DemandModel struct {
	ExpectedPrice float64
	RiskAversion  float64
	Volatility    float64
}

// Demand is the holding the agent wants at price p. It is zero at the
// expected price, positive below it and negative above it.
func (d DemandModel) Demand(p float64) float64 {
	return math.Log(d.ExpectedPrice/p) / (d.RiskAversion * d.Volatility * p)
}

// AdditionalDemand is how much more (less, if negative) the agent wants to hold.
func (d DemandModel) AdditionalDemand(p float64, position int) float64 {
	return d.Demand(p) - float64(position)
}

// RemainingCash is the cash left after trading to Demand(p) at price p.
func (d DemandModel) RemainingCash(p float64, position int, cash float64) float64 {
	return cash - p*(d.Demand(p)-float64(position))
}
