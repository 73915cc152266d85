package afcn

import "testing"

func TestDemandZeroAtExpectedPrice(t *testing.T) {
	for _, e := range []float64{0.5, 1, 99.75, 100, 12345.678} {
		d := DemandModel{ExpectedPrice: e, RiskAversion: 0.3, Volatility: 1e-4}
		if got := d.Demand(e); got != 0 {
			t.Fatalf("Demand(%v) = %v, want exactly 0", e, got)
		}
	}
}

func TestDemandSign(t *testing.T) {
	d := DemandModel{ExpectedPrice: 100, RiskAversion: 1, Volatility: 1e-3}
	if d.Demand(90) <= 0 {
		t.Fatalf("demand below expected price must be positive")
	}
	if d.Demand(110) >= 0 {
		t.Fatalf("demand above expected price must be negative")
	}
	if d.Demand(80) <= d.Demand(90) {
		t.Fatalf("demand must decrease with price")
	}
}

func TestDerivedFunctions(t *testing.T) {
	d := DemandModel{ExpectedPrice: 100, RiskAversion: 1, Volatility: 1e-3}
	p := 95.0
	if got, want := d.AdditionalDemand(p, 7), d.Demand(p)-7; got != want {
		t.Fatalf("AdditionalDemand = %v, want %v", got, want)
	}
	if got, want := d.RemainingCash(p, 7, 5000), 5000-p*(d.Demand(p)-7); got != want {
		t.Fatalf("RemainingCash = %v, want %v", got, want)
	}
	if got := d.RemainingCash(100, 0, 5000); got != 5000 {
		t.Fatalf("no trade at expected price must leave cash untouched, got %v", got)
	}
}
