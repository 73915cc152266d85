package afcn

import (
	"fmt"
	"math"

	"FinSim/internal/domain/repository"
)

const volatilityFloor = 1e-10

// ExpectedPrice blends fundamental, chart and noise log returns and compounds
// the result over the base window. noiseDraw is a standard normal sample.
func ExpectedPrice(p Params, m repository.Market, w Weights, window int, noiseDraw float64) (float64, error) {
	tick := m.CurrentTick()
	price := m.CurrentPrice()

	fundamental := math.Log(m.FundamentalPrice()/price) / float64(max(p.MeanReversionTime, 1))
	if err := guard("fundamental_log_return", fundamental); err != nil {
		return 0, err
	}

	past, err := m.PriceAt(tick - window)
	if err != nil {
		return 0, fmt.Errorf("price at tick %d: %w", tick-window, err)
	}
	chart := math.Log(price/past) / float64(max(window, 1))
	if err := guard("chart_log_return", chart); err != nil {
		return 0, err
	}

	noise := p.NoiseScale * noiseDraw
	if err := guard("noise_log_return", noise); err != nil {
		return 0, err
	}

	total := w.Sum()
	if total == 0 {
		return 0, fmt.Errorf("%w: belief weights sum to zero", ErrDegenerateMarket)
	}
	expected := (w.Fundamental*fundamental + w.Chart*chart + w.Noise*noise) / total
	if err := guard("expected_log_return", expected); err != nil {
		return 0, err
	}

	future := price * math.Exp(expected*float64(p.TimeWindowSize))
	if err := guard("expected_future_price", future); err != nil {
		return 0, err
	}
	return future, nil
}

// ExpectedVolatility is the population variance of consecutive log returns over
// [tick-window, tick], floored so the demand curve stays non-singular.
func ExpectedVolatility(m repository.Market, window int) (float64, error) {
	tick := m.CurrentTick()
	prices := make([]float64, 0, window+1)
	for t := tick - window; t <= tick; t++ {
		px, err := m.PriceAt(t)
		if err != nil {
			return 0, fmt.Errorf("price at tick %d: %w", t, err)
		}
		prices = append(prices, px)
	}

	returns := make([]float64, 0, window)
	sum := 0.0
	for i := 1; i < len(prices); i++ {
		r := math.Log(prices[i]) - math.Log(prices[i-1])
		returns = append(returns, r)
		sum += r
	}
	n := float64(window) + 1e-10
	mean := sum / n
	ss := 0.0
	for _, r := range returns {
		ss += (r - mean) * (r - mean)
	}
	vol := ss / n
	if err := guard("expected_volatility", vol); err != nil {
		return 0, err
	}
	return math.Max(volatilityFloor, vol), nil
}
