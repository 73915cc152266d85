package afcn

import (
	"errors"
	"math"
	"testing"

	"FinSim/internal/domain/models"
	"FinSim/internal/domain/repository"
)

func scenarioBounds(t *testing.T) (DemandModel, Bounds) {
	t.Helper()
	d := DemandModel{ExpectedPrice: 110, RiskAversion: 1, Volatility: 1e-4}
	b, err := SolveBounds(d, 0, 1000)
	if err != nil {
		t.Fatalf("SolveBounds: %v", err)
	}
	return d, b
}

func TestProposeBuyClipsToBestSell(t *testing.T) {
	d, b := scenarioBounds(t)
	m := flatMarket("m", 10, 100)
	m.bestSell = ptr(101)

	got := mustPropose(t, d, b, m, 0, 105)
	if got.Side != models.SideBuy || got.Price != 101 {
		t.Fatalf("proposal = %+v, want buy at 101", got)
	}
	if want := int(d.Demand(101)); got.Volume != want {
		t.Fatalf("volume = %d, want %d", got.Volume, want)
	}
	if got.Volume == int(d.Demand(105)) {
		t.Fatalf("volume must be recomputed at the clipped price")
	}
}

func TestProposeBuyKeepsTrialBelowQuote(t *testing.T) {
	d, b := scenarioBounds(t)
	m := flatMarket("m", 10, 100)
	m.bestSell = ptr(107)

	got := mustPropose(t, d, b, m, 0, 105)
	if got.Side != models.SideBuy || got.Price != 105 {
		t.Fatalf("proposal = %+v, want buy at 105", got)
	}
	if want := int(d.Demand(105)); got.Volume != want {
		t.Fatalf("volume = %d, want %d", got.Volume, want)
	}
}

func TestProposeBuyFallsBackToMarketPrice(t *testing.T) {
	d, b := scenarioBounds(t)
	m := flatMarket("m", 10, 100)

	got := mustPropose(t, d, b, m, 0, 105)
	if got.Price != 100 {
		t.Fatalf("price = %v, want market price 100", got.Price)
	}
}

func TestProposeBuyClampsQuoteToBounds(t *testing.T) {
	d, b := scenarioBounds(t)
	m := flatMarket("m", 10, 100)
	m.bestSell = ptr(50)

	got := mustPropose(t, d, b, m, 0, 105)
	if got.Price != b.MinBuy {
		t.Fatalf("price = %v, want min buy %v", got.Price, b.MinBuy)
	}
}

func TestProposeSell(t *testing.T) {
	d := DemandModel{ExpectedPrice: 110, RiskAversion: 1, Volatility: 1e-4}
	b := Bounds{MinBuy: 99, Satisfaction: 105, MaxSell: 110}
	m := flatMarket("m", 10, 100)

	got := mustPropose(t, d, b, m, 10, 110)
	if got.Side != models.SideSell || got.Price != 110 || got.Volume != 10 {
		t.Fatalf("proposal = %+v, want sell 10 at 110", got)
	}

	m.bestBuy = ptr(120)
	got = mustPropose(t, d, b, m, 10, 106)
	if got.Side != models.SideSell || got.Price != 110 {
		t.Fatalf("proposal = %+v, want sell clipped to 110", got)
	}
}

func TestProposeNonPositiveVolume(t *testing.T) {
	d := DemandModel{ExpectedPrice: 110, RiskAversion: 1, Volatility: 1e-4}
	b := Bounds{MinBuy: 99, Satisfaction: 105, MaxSell: 110}
	m := flatMarket("m", 10, 100)

	// holding nothing, there is nothing to sell
	if got := mustPropose(t, d, b, m, 0, 108); got.Volume != 0 {
		t.Fatalf("volume = %d, want 0", got.Volume)
	}
}

func mustPropose(t *testing.T, d DemandModel, b Bounds, m repository.Market, position int, trial float64) Proposal {
	t.Helper()
	p, err := Propose(d, b, m, position, trial)
	if err != nil {
		t.Fatalf("Propose: %v", err)
	}
	return p
}

func TestVolume(t *testing.T) {
	cases := map[float64]int{
		-3:          0,
		0:           0,
		0.99:        0,
		1:           1,
		8.7:         8,
		1<<31 - 1.5: 1<<31 - 2,
	}
	for q, want := range cases {
		got, err := volume(q)
		if err != nil || got != want {
			t.Fatalf("volume(%v) = %d, %v; want %d", q, got, err, want)
		}
	}
}

func TestVolumeRejectsUnrepresentable(t *testing.T) {
	for _, q := range []float64{1e12, math.Inf(1), math.NaN()} {
		if _, err := volume(q); !errors.Is(err, ErrInvalidValue) {
			t.Fatalf("volume(%v): expected ErrInvalidValue, got %v", q, err)
		}
	}
}

func TestProposeRejectsHugeVolume(t *testing.T) {
	// a near-zero volatility turns a small price gap into an enormous demand
	d := DemandModel{ExpectedPrice: 110, RiskAversion: 1, Volatility: 1e-12}
	b := Bounds{MinBuy: 1, Satisfaction: 109, MaxSell: 110}
	m := flatMarket("m", 10, 100)

	_, err := Propose(d, b, m, 0, 50)
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}

func trackedIn(marketID, id string, remaining int) models.TrackedOrder {
	return models.TrackedOrder{
		Order:     models.NewOrder{ID: id, AgentID: "a", MarketID: marketID, Side: models.SideBuy, Price: 100, Volume: 5, TTL: 20},
		Remaining: remaining,
	}
}

func TestCancelStaleAllFilled(t *testing.T) {
	a := New("a", 1)
	a.Restore([]models.TrackedOrder{trackedIn("m", "o1", 0), trackedIn("m", "o2", 0)})

	if got := a.cancelStale("m", 3); len(got) != 0 {
		t.Fatalf("expected no cancels for filled orders, got %d", len(got))
	}
	if n := len(a.TrackedOrders()); n != 0 {
		t.Fatalf("tracked list should be empty, has %d entries", n)
	}
}

func TestCancelStaleIdempotent(t *testing.T) {
	a := New("a", 1)
	a.Restore([]models.TrackedOrder{
		trackedIn("m", "o1", 5),
		trackedIn("other", "o2", 5),
		trackedIn("m", "o3", 2),
		trackedIn("m", "o4", 0),
	})

	first := a.cancelStale("m", 3)
	if len(first) != 2 {
		t.Fatalf("cancels = %d, want 2", len(first))
	}
	for i, want := range []string{"o1", "o3"} {
		c := first[i]
		if c.Kind != models.IntentCancel || c.Cancel.OrderID != want || c.Cancel.Tick != 3 {
			t.Fatalf("cancel %d = %+v, want cancel of %s", i, c.Cancel, want)
		}
	}

	if again := a.cancelStale("m", 3); len(again) != 0 {
		t.Fatalf("second pass emitted %d cancels", len(again))
	}
	left := a.TrackedOrders()
	if len(left) != 1 || left[0].Order.ID != "o2" {
		t.Fatalf("orders in other markets must be kept, got %+v", left)
	}
}
