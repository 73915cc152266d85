package afcn

import (
	"errors"
	"testing"
)

func TestAdjustHorizon(t *testing.T) {
	cases := []struct {
		name       string
		window     int
		tick       int
		w          Weights
		wantWindow int
		wantRA     float64
	}{
		{"chartist shortens", 100, 1000, Weights{Fundamental: 1, Chart: 3}, 50, 0.25},
		{"fundamentalist lengthens", 100, 1000, Weights{Fundamental: 3, Chart: 1}, 200, 1.0},
		{"capped by tick", 100, 20, Weights{Fundamental: 1, Chart: 3}, 20, 0.25},
		{"neutral", 10, 1000, Weights{Fundamental: 1, Chart: 1}, 10, 0.5},
		{"opening tick", 0, 0, Weights{Fundamental: 1, Chart: 0}, 0, 1.0},
	}
	p := Params{RiskAversion: 0.5}
	for _, c := range cases {
		h, err := AdjustHorizon(p, c.window, c.tick, c.w)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if h.Window != c.wantWindow {
			t.Fatalf("%s: window = %d, want %d", c.name, h.Window, c.wantWindow)
		}
		if !approx(h.RiskAversion, c.wantRA, 1e-12) {
			t.Fatalf("%s: risk aversion = %v, want %v", c.name, h.RiskAversion, c.wantRA)
		}
	}
}

func TestAdjustHorizonRejectsBadRiskAversion(t *testing.T) {
	_, err := AdjustHorizon(Params{RiskAversion: -1}, 10, 100, Weights{})
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestAdjustHorizonRejectsNegativeWindow(t *testing.T) {
	_, err := AdjustHorizon(Params{RiskAversion: 1}, 10, -5, Weights{})
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestAdjustHorizonHugeFundamentalWeight(t *testing.T) {
	w := Weights{Fundamental: 1e300, Chart: 0}
	h, err := AdjustHorizon(Params{RiskAversion: 1e-300}, 200, 500, w)
	if err != nil {
		t.Fatalf("AdjustHorizon: %v", err)
	}
	if h.Window != 500 {
		t.Fatalf("window = %d, want it capped at tick 500", h.Window)
	}
}
