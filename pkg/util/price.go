package util

import (
	"github.com/shopspring/decimal"
)

// RoundToTick snaps price onto the tick grid. Bids round down and asks round
// up so the snapped price never improves on what the agent asked for.
// A non-positive tick leaves the price untouched.
func RoundToTick(price, tick float64, roundDown bool) decimal.Decimal {
	p := decimal.NewFromFloat(price)
	if tick <= 0 {
		return p
	}
	t := decimal.NewFromFloat(tick)
	steps := p.Div(t)
	if roundDown {
		steps = steps.Floor()
	} else {
		steps = steps.Ceil()
	}
	out := steps.Mul(t)
	if out.Sign() <= 0 {
		return t
	}
	return out
}

// RoundToTickFloat is RoundToTick returning a float64.
func RoundToTickFloat(price, tick float64, roundDown bool) float64 {
	f, _ := RoundToTick(price, tick, roundDown).Float64()
	return f
}

// Notional returns price*volume computed in decimal.
func Notional(price float64, volume int) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(volume)))
}
