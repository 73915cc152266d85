package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	applogger "FinSim/pkg/logger"

	"github.com/labstack/echo/v4"
)

func TestLimiterRefill(t *testing.T) {
	now := time.Unix(0, 0)
	lim := NewLimiter(2, 1)
	lim.now = func() time.Time { return now }

	if !lim.Allow("a") || !lim.Allow("a") {
		t.Fatalf("expected burst of 2 to pass")
	}
	if lim.Allow("a") {
		t.Fatalf("expected empty bucket to reject")
	}
	if !lim.Allow("b") {
		t.Fatalf("keys must not share buckets")
	}

	now = now.Add(1500 * time.Millisecond)
	if !lim.Allow("a") {
		t.Fatalf("expected refill after 1.5s")
	}
	if lim.Allow("a") {
		t.Fatalf("expected half a token left, got a full one")
	}
}

func TestLimiterEvictsRefilledBuckets(t *testing.T) {
	now := time.Unix(0, 0)
	lim := NewLimiter(5, 1)
	lim.now = func() time.Time { return now }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		lim.Allow(ip)
	}
	for i := 0; i < 5; i++ {
		lim.Allow("10.0.0.9")
	}
	if n := lim.Len(); n != 4 {
		t.Fatalf("len = %d, want 4", n)
	}

	// nothing is dropped inside the sweep interval
	now = now.Add(3 * time.Second)
	lim.Allow("10.0.0.9")
	if n := lim.Len(); n != 4 {
		t.Fatalf("swept before the interval elapsed: len = %d", n)
	}

	now = now.Add(sweepInterval)
	lim.Allow("10.0.0.7")
	if n := lim.Len(); n != 1 {
		t.Fatalf("len after sweep = %d, want 1", n)
	}
}

func TestLimiterKeepsDrainedBucketAcrossSweep(t *testing.T) {
	now := time.Unix(0, 0)
	lim := NewLimiter(2, 0)
	lim.now = func() time.Time { return now }

	lim.Allow("a")
	lim.Allow("a")
	now = now.Add(2 * sweepInterval)
	if lim.Allow("a") {
		t.Fatalf("sweep must not reset a bucket that has not refilled")
	}
	if n := lim.Len(); n != 1 {
		t.Fatalf("len = %d, want 1", n)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	e := echo.New()
	e.POST("/step", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RateLimit(applogger.Nop(), NewLimiter(1, 0)))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/step", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v, want [200 429]", codes)
	}
}
