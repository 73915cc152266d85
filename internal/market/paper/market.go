// Package paper is an in-process single-asset exchange used to host agents:
// a continuous double auction with integer ticks and a fundamental price
// that follows a seeded geometric random walk.
package paper

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"FinSim/internal/domain/models"
	"FinSim/internal/domain/repository"
	"FinSim/pkg/logger"
	"FinSim/pkg/util"
)

var (
	ErrTickOutOfRange = errors.New("paper: tick out of range")
	ErrWrongMarket    = errors.New("paper: intent targets another market")
	ErrInvalidOrder   = errors.New("paper: invalid order")
)

// Option configures a Market.
type Option func(*Market)

func WithInitialPrice(p float64) Option {
	return func(m *Market) {
		if p > 0 {
			m.prices[0] = p
			m.fundamental = p
		}
	}
}

// WithFundamentalVolatility sets the per-tick log volatility of the
// fundamental walk. Zero keeps the fundamental constant.
func WithFundamentalVolatility(v float64) Option {
	return func(m *Market) { m.fundVol = math.Max(0, v) }
}

func WithTickSize(t float64) Option {
	return func(m *Market) { m.tickSize = math.Max(0, t) }
}

func WithSeed(seed int64) Option {
	return func(m *Market) { m.rng = rand.New(rand.NewSource(seed)) }
}

// WithWarmup advances n ticks without trading so agents start with history.
func WithWarmup(n int) Option {
	return func(m *Market) { m.warmup = max(0, n) }
}

func WithLogger(l *logger.Logger) Option {
	return func(m *Market) {
		if l != nil {
			m.log = l
		}
	}
}

// Market implements repository.Exchange.
type Market struct {
	mu          sync.RWMutex
	id          string
	tick        int
	prices      []float64
	fundamental float64
	fundVol     float64
	tickSize    float64
	warmup      int
	rng         *rand.Rand
	book        book
	accounts    map[string]*Account
	seq         uint64
	volume      int
	log         *logger.Logger
}

// New creates a market. Defaults: price 300, tick size 0.01, seed 1.
func New(id string, opts ...Option) *Market {
	m := &Market{
		id:          id,
		prices:      []float64{300},
		fundamental: 300,
		tickSize:    0.01,
		rng:         rand.New(rand.NewSource(1)),
		accounts:    make(map[string]*Account),
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	for i := 0; i < m.warmup; i++ {
		m.Advance()
	}
	return m
}

func (m *Market) ID() string { return m.id }

func (m *Market) CurrentTick() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tick
}

func (m *Market) CurrentPrice() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prices[m.tick]
}

func (m *Market) PriceAt(tick int) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if tick < 0 || tick > m.tick {
		return 0, fmt.Errorf("%w: %d not in [0, %d]", ErrTickOutOfRange, tick, m.tick)
	}
	return m.prices[tick], nil
}

func (m *Market) FundamentalPrice() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fundamental
}

func (m *Market) BestBuyQuote() (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.book.best(models.SideBuy)
}

func (m *Market) BestSellQuote() (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.book.best(models.SideSell)
}

// OpenAccount creates or replaces an agent's account.
func (m *Market) OpenAccount(agentID string, cash float64, position int) {
	acc := newAccount(cash)
	acc.positions[m.id] = position
	m.mu.Lock()
	m.accounts[agentID] = acc
	m.mu.Unlock()
}

// Account returns the agent's holdings. Unknown agents get an empty account.
func (m *Market) Account(agentID string) repository.Portfolio {
	return m.account(agentID)
}

func (m *Market) account(agentID string) *Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[agentID]
	if !ok {
		acc = newAccount(0)
		m.accounts[agentID] = acc
	}
	return acc
}

// Submit applies intents in order. Cancels for unknown orders are ignored.
// New orders match against the opposite side at the resting price and any
// remainder rests until tick+ttl. Invalid intents are skipped and reported.
func (m *Market) Submit(agentID string, intents []models.OrderIntent) ([]models.Fill, error) {
	m.account(agentID)

	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		fills []models.Fill
		errs  []error
	)
	for _, in := range intents {
		if in.MarketID() != m.id {
			errs = append(errs, fmt.Errorf("%w: %q", ErrWrongMarket, in.MarketID()))
			continue
		}
		switch in.Kind {
		case models.IntentCancel:
			if in.Cancel != nil {
				m.book.remove(in.Cancel.OrderID, agentID)
			}
		case models.IntentNew:
			if err := validOrder(in.New); err != nil {
				errs = append(errs, err)
				continue
			}
			fills = append(fills, m.match(agentID, *in.New)...)
		}
	}
	return fills, errors.Join(errs...)
}

func validOrder(o *models.NewOrder) error {
	switch {
	case o == nil:
		return fmt.Errorf("%w: empty", ErrInvalidOrder)
	case o.Volume <= 0:
		return fmt.Errorf("%w: %s volume %d", ErrInvalidOrder, o.ID, o.Volume)
	case o.Price <= 0 || math.IsNaN(o.Price) || math.IsInf(o.Price, 0):
		return fmt.Errorf("%w: %s price %v", ErrInvalidOrder, o.ID, o.Price)
	case o.Side != models.SideBuy && o.Side != models.SideSell:
		return fmt.Errorf("%w: %s side %q", ErrInvalidOrder, o.ID, o.Side)
	}
	return nil
}

// match must be called with the mutex held.
func (m *Market) match(agentID string, o models.NewOrder) []models.Fill {
	o.AgentID = agentID
	o.Price = util.RoundToTickFloat(o.Price, m.tickSize, o.Side == models.SideBuy)
	remaining := o.Volume
	now := time.Now()

	var fills []models.Fill
	levels := m.book.side(opposite(o.Side))
	for remaining > 0 && len(*levels) > 0 {
		r := (*levels)[0]
		if !crosses(o.Side, o.Price, r) {
			break
		}
		qty := min(remaining, r.remaining)
		px := r.order.Price
		remaining -= qty
		r.remaining -= qty
		if r.remaining == 0 {
			*levels = (*levels)[1:]
		}

		m.settle(o.AgentID, o.Side, px, qty)
		m.settle(r.order.AgentID, r.order.Side, px, qty)
		m.prices[m.tick] = px
		m.volume += qty

		fills = append(fills,
			models.Fill{OrderID: o.ID, AgentID: o.AgentID, MarketID: m.id, Side: o.Side, Price: px, Volume: qty, Tick: m.tick, At: now},
			models.Fill{OrderID: r.order.ID, AgentID: r.order.AgentID, MarketID: m.id, Side: r.order.Side, Price: px, Volume: qty, Tick: m.tick, At: now},
		)
	}

	if remaining > 0 {
		m.seq++
		m.book.insert(&resting{
			order:     o,
			remaining: remaining,
			expireAt:  m.tick + max(o.TTL, 1),
			seq:       m.seq,
		})
	}
	return fills
}

func (m *Market) settle(agentID string, side models.Side, px float64, qty int) {
	acc, ok := m.accounts[agentID]
	if !ok {
		acc = newAccount(0)
		m.accounts[agentID] = acc
	}
	notional, _ := util.Notional(px, qty).Float64()
	if side == models.SideBuy {
		acc.apply(m.id, -notional, qty)
	} else {
		acc.apply(m.id, notional, -qty)
	}
}

// Advance moves to the next tick: the price carries over, the fundamental
// takes one step of its walk and expired orders leave the book.
func (m *Market) Advance() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tick++
	m.prices = append(m.prices, m.prices[m.tick-1])
	if m.fundVol > 0 {
		m.fundamental *= math.Exp(m.fundVol * m.rng.NormFloat64())
	}
	if n := m.book.expire(m.tick); n > 0 {
		m.log.Debug("orders expired",
			logger.String("market_id", m.id),
			logger.Int("tick", m.tick),
			logger.Int("count", n),
		)
	}
	m.volume = 0
}

// Snapshot returns a serializable view of the current state.
func (m *Market) Snapshot() models.MarketSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := models.MarketSnapshot{
		MarketID:    m.id,
		Tick:        m.tick,
		Price:       m.prices[m.tick],
		Fundamental: m.fundamental,
		Volume:      m.volume,
		Bids:        len(m.book.bids),
		Asks:        len(m.book.asks),
	}
	if p, ok := m.book.best(models.SideBuy); ok {
		s.BestBuy = &p
	}
	if p, ok := m.book.best(models.SideSell); ok {
		s.BestSell = &p
	}
	return s
}

var _ repository.Exchange = (*Market)(nil)
