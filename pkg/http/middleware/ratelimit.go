package middleware

import (
	"net/http"
	"sync"
	"time"

	applogger "FinSim/pkg/logger"

	"github.com/labstack/echo/v4"
)

type bucket struct {
	tokens float64
	last   time.Time
}

// full reports whether b has refilled to capacity by now.
func (b *bucket) full(now time.Time, capacity, rate float64) bool {
	return b.tokens+now.Sub(b.last).Seconds()*rate >= capacity
}

const sweepInterval = time.Minute

// Limiter is a token bucket per key. Buckets start full, so a bucket that
// has refilled is dropped on the next sweep and recreated on demand.
type Limiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	capacity  float64
	rate      float64 // tokens per second
	now       func() time.Time
	lastSweep time.Time
}

func NewLimiter(capacity, refillPerSec float64) *Limiter {
	return &Limiter{
		buckets:  make(map[string]*bucket),
		capacity: max(capacity, 1),
		rate:     refillPerSec,
		now:      time.Now,
	}
}

// Len is the number of buckets currently tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) sweep(now time.Time) {
	if l.lastSweep.IsZero() {
		l.lastSweep = now
		return
	}
	if now.Sub(l.lastSweep) < sweepInterval {
		return
	}
	l.lastSweep = now
	for k, b := range l.buckets {
		if b.full(now, l.capacity, l.rate) {
			delete(l.buckets, k)
		}
	}
}

// Allow consumes one token for key if one is available.
func (l *Limiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, last: now}
		l.buckets[key] = b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = min(l.capacity, b.tokens+elapsed*l.rate)
		b.last = now
	}
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// RateLimit rejects requests from a client IP whose bucket is empty with a
// 429 HTTPError, left to the server's error handler to render.
func RateLimit(l *applogger.Logger, lim *Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if lim.Allow(ip) {
				return next(c)
			}
			l.Warn("rate limited",
				applogger.String("route", c.Path()),
				applogger.String("remote", ip),
			)
			return echo.NewHTTPError(http.StatusTooManyRequests, "step rate exceeded, retry later")
		}
	}
}
