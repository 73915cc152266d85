package repository

import (
	"context"
	"testing"
	"time"

	"FinSim/internal/domain/models"
	"FinSim/pkg/cache"
)

func TestCacheStateStoreRoundTrip(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	store := NewCacheStateStore(mc, time.Hour)
	ctx := context.Background()

	empty, err := store.LoadTracked(ctx, "nobody")
	if err != nil || len(empty) != 0 {
		t.Fatalf("LoadTracked(missing) = %v, %v", empty, err)
	}

	in := []models.TrackedOrder{{
		Order:     models.NewOrder{ID: "o1", AgentID: "a", MarketID: "m", Side: models.SideSell, Price: 101.5, Volume: 3, TTL: 20, Tick: 4},
		Remaining: 2,
	}}
	if err := store.SaveTracked(ctx, "a", in); err != nil {
		t.Fatalf("SaveTracked: %v", err)
	}
	out, err := store.LoadTracked(ctx, "a")
	if err != nil {
		t.Fatalf("LoadTracked: %v", err)
	}
	if len(out) != 1 || out[0] != in[0] {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestCacheStateStoreLock(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	store := NewCacheStateStore(mc, 0)
	ctx := context.Background()

	if ok, _ := store.TryLock(ctx, "session", time.Minute); !ok {
		t.Fatalf("first lock failed")
	}
	if ok, _ := store.TryLock(ctx, "session", time.Minute); ok {
		t.Fatalf("lock acquired twice")
	}
	_ = store.Unlock(ctx, "session")
	if ok, _ := store.TryLock(ctx, "session", time.Minute); !ok {
		t.Fatalf("lock not released")
	}
}
