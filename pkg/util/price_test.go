package util

import "testing"

func TestRoundToTick(t *testing.T) {
	cases := []struct {
		name      string
		price     float64
		tick      float64
		roundDown bool
		want      string
	}{
		{"bid rounds down", 100.237, 0.01, true, "100.23"},
		{"ask rounds up", 100.231, 0.01, false, "100.24"},
		{"on grid", 100.25, 0.05, true, "100.25"},
		{"no tick", 1.23456, 0, true, "1.23456"},
		{"never below one tick", 0.001, 0.01, true, "0.01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RoundToTick(tc.price, tc.tick, tc.roundDown)
			if got.String() != tc.want {
				t.Fatalf("RoundToTick(%v, %v) = %s, want %s", tc.price, tc.tick, got, tc.want)
			}
		})
	}
}

func TestNotional(t *testing.T) {
	if got := Notional(0.1, 3).String(); got != "0.3" {
		t.Fatalf("Notional = %s, want 0.3", got)
	}
}

func TestParseIntDefault(t *testing.T) {
	if ParseIntDefault(" 12 ", 5) != 12 {
		t.Fatalf("expected 12")
	}
	if ParseIntDefault("x", 5) != 5 {
		t.Fatalf("expected default on invalid input")
	}
	if ClampInt(500, 1, 100) != 100 || ClampInt(-3, 1, 100) != 1 {
		t.Fatalf("ClampInt out of range")
	}
}
