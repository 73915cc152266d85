// Package afcn implements the asymmetric fundamentalist-chartist-noise (aFCN)
// trading participant. Each invocation mixes three belief signals whose
// weights react asymmetrically to recent returns, derives a temporal horizon
// and risk aversion from them, forecasts price and volatility, and solves a
// CARA demand curve for the interval in which the agent is willing to trade.
//
// An Agent is not safe for concurrent use; the host serializes calls.
package afcn

import (
	"errors"
	"fmt"
	"math/rand"

	"FinSim/internal/domain/models"
	"FinSim/internal/domain/repository"
	domsvc "FinSim/internal/domain/service"
	"FinSim/pkg/logger"

	"github.com/google/uuid"
)

// Decision is the full trace of one agent/market invocation.
type Decision struct {
	MarketID string
	Tick     int
	Price    float64
	Intents  []models.OrderIntent
	Cancels  int
	Beliefs  models.Beliefs
	Proposal Proposal
	Err      error
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the diagnostics logger.
func WithLogger(l *logger.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.log = l
		}
	}
}

// WithIDGenerator overrides how order IDs are minted.
func WithIDGenerator(gen func() string) Option {
	return func(a *Agent) {
		if gen != nil {
			a.newID = gen
		}
	}
}

// Agent is one aFCN participant. Its generator serves every random draw:
// parameter sampling at setup, the noise term and the trial price.
type Agent struct {
	id         string
	params     Params
	rng        *rand.Rand
	accessible map[string]struct{}
	tracked    []models.TrackedOrder
	log        *logger.Logger
	newID      func() string
	ready      bool
}

// New creates an agent with its own generator seeded by seed.
func New(id string, seed int64, opts ...Option) *Agent {
	a := &Agent{
		id:         id,
		rng:        rand.New(rand.NewSource(seed)),
		accessible: make(map[string]struct{}),
		log:        logger.Nop(),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Setup resolves settings and records the markets the agent may trade.
func (a *Agent) Setup(s Settings, accessibleMarkets []string) error {
	if len(accessibleMarkets) >= 2 {
		a.log.Warn("order decision for multiple assets is not supported; markets are decided independently",
			logger.String("agent_id", a.id),
			logger.Strings("markets", accessibleMarkets),
		)
	}
	p, err := s.Resolve(a.rng)
	if err != nil {
		return fmt.Errorf("agent %s setup: %w", a.id, err)
	}
	a.params = p
	a.accessible = make(map[string]struct{}, len(accessibleMarkets))
	for _, id := range accessibleMarkets {
		a.accessible[id] = struct{}{}
	}
	a.tracked = nil
	a.ready = true
	return nil
}

// ID returns the agent identifier.
func (a *Agent) ID() string { return a.id }

// Params returns the resolved base parameters.
func (a *Agent) Params() Params { return a.params }

// Decide returns the intents for all markets in caller order, cancels before
// the new order of each market. Markets that fail keep their cancels but emit
// no new order; their errors are joined into the returned diagnostic.
func (a *Agent) Decide(markets []repository.Market, portfolio repository.Portfolio) ([]models.OrderIntent, error) {
	var (
		intents []models.OrderIntent
		errs    []error
	)
	for _, d := range a.Trace(markets, portfolio) {
		intents = append(intents, d.Intents...)
		if d.Err != nil {
			errs = append(errs, fmt.Errorf("market %s tick %d: %w", d.MarketID, d.Tick, d.Err))
		}
	}
	return intents, errors.Join(errs...)
}

// Trace is Decide with the per-market beliefs kept for auditing.
func (a *Agent) Trace(markets []repository.Market, portfolio repository.Portfolio) []Decision {
	out := make([]Decision, 0, len(markets))
	for _, m := range markets {
		if _, ok := a.accessible[m.ID()]; a.ready && !ok {
			continue
		}
		out = append(out, a.decideMarket(m, portfolio))
	}
	return out
}

func (a *Agent) decideMarket(m repository.Market, portfolio repository.Portfolio) Decision {
	tick := m.CurrentTick()
	d := Decision{MarketID: m.ID(), Tick: tick, Price: m.CurrentPrice()}
	if !a.ready {
		d.Err = configErrorf("agent %s used before setup", a.id)
		return d
	}

	d.Intents = a.cancelStale(m.ID(), tick)
	d.Cancels = len(d.Intents)

	window := min(tick, a.params.TimeWindowSize)
	ret, err := ScaledReturn(m, window)
	if err != nil {
		d.Err = err
		return d
	}
	w := MixWeights(a.params, ret)
	d.Beliefs.FundamentalWeight = w.Fundamental
	d.Beliefs.ChartWeight = w.Chart
	d.Beliefs.NoiseWeight = w.Noise

	h, err := AdjustHorizon(a.params, window, tick, w)
	if err != nil {
		d.Err = err
		return d
	}
	d.Beliefs.TemporalWindow = h.Window
	d.Beliefs.TemporalRiskAversion = h.RiskAversion

	future, err := ExpectedPrice(a.params, m, w, h.Window, a.rng.NormFloat64())
	if err != nil {
		d.Err = err
		return d
	}
	d.Beliefs.ExpectedPrice = future

	vol, err := ExpectedVolatility(m, h.Window)
	if err != nil {
		d.Err = err
		return d
	}
	d.Beliefs.ExpectedVolatility = vol

	dm := DemandModel{ExpectedPrice: future, RiskAversion: h.RiskAversion, Volatility: vol}
	position := portfolio.Position(m.ID())
	b, err := SolveBounds(dm, position, portfolio.Cash())
	if err != nil {
		d.Err = err
		return d
	}
	d.Beliefs.SatisfactionPrice = b.Satisfaction
	d.Beliefs.MinBuyPrice = b.MinBuy
	d.Beliefs.MaxSellPrice = b.MaxSell

	trial := b.MinBuy + (b.MaxSell-b.MinBuy)*a.rng.Float64()
	d.Proposal, err = Propose(dm, b, m, position, trial)
	if err != nil {
		d.Err = err
		return d
	}
	if d.Proposal.Volume == 0 {
		return d
	}

	order := models.NewOrder{
		ID:       a.newID(),
		AgentID:  a.id,
		MarketID: m.ID(),
		Side:     d.Proposal.Side,
		Price:    d.Proposal.Price,
		Volume:   d.Proposal.Volume,
		TTL:      a.params.TimeWindowSize,
		Tick:     tick,
	}
	a.tracked = append(a.tracked, models.TrackedOrder{Order: order, Remaining: order.Volume})
	d.Intents = append(d.Intents, models.NewOrderIntent(order))
	return d
}

// OnFill reconciles a fill reported by the host with the tracked list.
func (a *Agent) OnFill(f models.Fill) {
	for i := range a.tracked {
		if a.tracked[i].Order.ID != f.OrderID {
			continue
		}
		a.tracked[i].Remaining = max(0, a.tracked[i].Remaining-f.Volume)
		return
	}
}

// TrackedOrders returns a copy of the unexecuted-order list.
func (a *Agent) TrackedOrders() []models.TrackedOrder {
	out := make([]models.TrackedOrder, len(a.tracked))
	copy(out, a.tracked)
	return out
}

// Restore replaces the tracked list, e.g. from a state snapshot.
func (a *Agent) Restore(orders []models.TrackedOrder) {
	a.tracked = append([]models.TrackedOrder(nil), orders...)
}

var _ domsvc.Participant = (*Agent)(nil)
