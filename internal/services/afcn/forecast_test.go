package afcn

import (
	"errors"
	"math"
	"testing"
)

func TestExpectedPriceComponents(t *testing.T) {
	base := Params{MeanReversionTime: 10, TimeWindowSize: 20}

	t.Run("fundamental", func(t *testing.T) {
		m := flatMarket("m", 21, 100)
		m.fundamental = 110
		got, err := ExpectedPrice(base, m, Weights{Fundamental: 1}, 20, 0)
		if err != nil {
			t.Fatalf("ExpectedPrice: %v", err)
		}
		// log(1.1)/10 compounded over 20 ticks
		if !approx(got, 121, 1e-9) {
			t.Fatalf("expected price = %v, want 121", got)
		}
	})

	t.Run("chart", func(t *testing.T) {
		m := flatMarket("m", 11, 100)
		m.prices[10] = 110
		got, err := ExpectedPrice(base, m, Weights{Chart: 1}, 10, 0)
		if err != nil {
			t.Fatalf("ExpectedPrice: %v", err)
		}
		if !approx(got, 133.1, 1e-9) {
			t.Fatalf("expected price = %v, want 133.1", got)
		}
	})

	t.Run("noise", func(t *testing.T) {
		p := base
		p.NoiseScale = 0.01
		m := flatMarket("m", 5, 100)
		got, err := ExpectedPrice(p, m, Weights{Noise: 2}, 4, 1.5)
		if err != nil {
			t.Fatalf("ExpectedPrice: %v", err)
		}
		if want := 100 * math.Exp(0.3); !approx(got, want, 1e-9) {
			t.Fatalf("expected price = %v, want %v", got, want)
		}
	})

	t.Run("compounds over base window", func(t *testing.T) {
		m := flatMarket("m", 21, 100)
		m.fundamental = 110
		short, _ := ExpectedPrice(base, m, Weights{Fundamental: 1}, 2, 0)
		long, _ := ExpectedPrice(base, m, Weights{Fundamental: 1}, 20, 0)
		if short != long {
			t.Fatalf("temporal window must not change compounding: %v vs %v", short, long)
		}
	})
}

func TestExpectedPriceZeroWeights(t *testing.T) {
	m := flatMarket("m", 3, 100)
	_, err := ExpectedPrice(Params{TimeWindowSize: 2, MeanReversionTime: 2}, m, Weights{}, 2, 0.3)
	if !errors.Is(err, ErrDegenerateMarket) {
		t.Fatalf("expected ErrDegenerateMarket, got %v", err)
	}
}

func TestExpectedPriceInvalidFundamental(t *testing.T) {
	m := flatMarket("m", 3, 100)
	m.fundamental = 0
	_, err := ExpectedPrice(Params{TimeWindowSize: 2, MeanReversionTime: 2}, m, Weights{Fundamental: 1}, 2, 0)
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}

func TestExpectedPriceMissingHistory(t *testing.T) {
	m := flatMarket("m", 3, 100)
	if _, err := ExpectedPrice(Params{TimeWindowSize: 2, MeanReversionTime: 2}, m, Weights{Chart: 1}, 5, 0); err == nil {
		t.Fatalf("expected error for window beyond history")
	}
}

func TestExpectedVolatilityFlatHistory(t *testing.T) {
	m := flatMarket("m", 50, 100)
	for _, window := range []int{0, 1, 10, 49} {
		vol, err := ExpectedVolatility(m, window)
		if err != nil {
			t.Fatalf("window %d: %v", window, err)
		}
		if vol != 1e-10 {
			t.Fatalf("window %d: volatility = %v, want floor 1e-10", window, vol)
		}
	}
}

func TestExpectedVolatilityAlternating(t *testing.T) {
	m := &fakeMarket{id: "m", prices: []float64{100, 110, 100, 110, 100}, fundamental: 100}
	vol, err := ExpectedVolatility(m, 4)
	if err != nil {
		t.Fatalf("ExpectedVolatility: %v", err)
	}
	r := math.Log(1.1)
	if !approx(vol, r*r, 1e-12) {
		t.Fatalf("volatility = %v, want %v", vol, r*r)
	}
}
