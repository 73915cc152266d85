package paper

import "sync"

// Account is an agent's cash and per-market positions.
type Account struct {
	mu        sync.RWMutex
	cash      float64
	positions map[string]int
}

func newAccount(cash float64) *Account {
	return &Account{cash: cash, positions: make(map[string]int)}
}

func (a *Account) Cash() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cash
}

func (a *Account) Position(marketID string) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.positions[marketID]
}

func (a *Account) apply(marketID string, cashDelta float64, posDelta int) {
	a.mu.Lock()
	a.cash += cashDelta
	a.positions[marketID] += posDelta
	a.mu.Unlock()
}
