package afcn

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestIsFinite(t *testing.T) {
	cases := []struct {
		x    float64
		want bool
	}{
		{0, true},
		{-3.5, true},
		{math.MaxFloat64, true},
		{math.NaN(), false},
		{math.Inf(1), false},
		{math.Inf(-1), false},
	}
	for _, c := range cases {
		if got := IsFinite(c.x); got != c.want {
			t.Fatalf("IsFinite(%v) = %v, want %v", c.x, got, c.want)
		}
	}
}

func TestGuardWrapsInvalidValue(t *testing.T) {
	if err := guard("x", 1); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	err := guard("x", math.NaN())
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}

func TestReason(t *testing.T) {
	cases := map[string]error{
		"none":              nil,
		"configuration":     configErrorf("bad"),
		"invalid_value":     fmt.Errorf("wrap: %w", ErrInvalidValue),
		"convergence":       fmt.Errorf("wrap: %w", ErrNumericalConvergence),
		"degenerate_market": ErrDegenerateMarket,
		"unknown":           errors.New("boom"),
	}
	for want, err := range cases {
		if got := Reason(err); got != want {
			t.Fatalf("Reason(%v) = %q, want %q", err, got, want)
		}
	}
}
