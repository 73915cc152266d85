package afcn

import (
	"fmt"
	"math"
)

type fakeMarket struct {
	id          string
	prices      []float64 // index is the tick
	fundamental float64
	bestBuy     *float64
	bestSell    *float64
}

func (m *fakeMarket) ID() string            { return m.id }
func (m *fakeMarket) CurrentTick() int      { return len(m.prices) - 1 }
func (m *fakeMarket) CurrentPrice() float64 { return m.prices[len(m.prices)-1] }
func (m *fakeMarket) FundamentalPrice() float64 {
	return m.fundamental
}

func (m *fakeMarket) PriceAt(tick int) (float64, error) {
	if tick < 0 || tick >= len(m.prices) {
		return 0, fmt.Errorf("tick %d outside history", tick)
	}
	return m.prices[tick], nil
}

func (m *fakeMarket) BestBuyQuote() (float64, bool) {
	if m.bestBuy == nil {
		return 0, false
	}
	return *m.bestBuy, true
}

func (m *fakeMarket) BestSellQuote() (float64, bool) {
	if m.bestSell == nil {
		return 0, false
	}
	return *m.bestSell, true
}

type fakePortfolio struct {
	position int
	cash     float64
}

func (p fakePortfolio) Position(string) int { return p.position }
func (p fakePortfolio) Cash() float64       { return p.cash }

func flatMarket(id string, n int, price float64) *fakeMarket {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = price
	}
	return &fakeMarket{id: id, prices: prices, fundamental: price}
}

// wavyMarket oscillates around price so the volatility estimate is non-trivial.
func wavyMarket(id string, n int, price float64) *fakeMarket {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = price * (1 + 0.01*math.Sin(float64(i)))
	}
	return &fakeMarket{id: id, prices: prices, fundamental: price}
}

func ptr(v float64) *float64 { return &v }

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
