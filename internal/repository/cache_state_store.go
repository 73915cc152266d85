package repository

import (
	"context"
	"errors"
	"time"

	"FinSim/internal/domain/models"
	"FinSim/internal/domain/repository"
	"FinSim/pkg/cache"
)

// CacheStateStore implements StateStore on a cache.Service, Redis or memory.
type CacheStateStore struct {
	cache cache.Service
	ttl   time.Duration
}

func NewCacheStateStore(c cache.Service, ttl time.Duration) *CacheStateStore {
	return &CacheStateStore{cache: c, ttl: ttl}
}

func trackedKey(agentID string) string {
	return cache.Key("tracked", agentID)
}

func lockKey(name string) string {
	return cache.Key("lock", name)
}

func (s *CacheStateStore) SaveTracked(ctx context.Context, agentID string, orders []models.TrackedOrder) error {
	if orders == nil {
		orders = []models.TrackedOrder{}
	}
	return s.cache.Set(ctx, trackedKey(agentID), orders, s.ttl)
}

// LoadTracked returns an empty list for agents without a snapshot.
func (s *CacheStateStore) LoadTracked(ctx context.Context, agentID string) ([]models.TrackedOrder, error) {
	var orders []models.TrackedOrder
	err := s.cache.Get(ctx, trackedKey(agentID), &orders)
	if errors.Is(err, cache.ErrCacheMiss) {
		return []models.TrackedOrder{}, nil
	}
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *CacheStateStore) TryLock(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	return s.cache.TryLock(ctx, lockKey(name), ttl)
}

func (s *CacheStateStore) Unlock(ctx context.Context, name string) error {
	return s.cache.Unlock(ctx, lockKey(name))
}

var _ repository.StateStore = (*CacheStateStore)(nil)
